package pickplace

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
)

const altiumExport = `Altium Designer Pick and Place Locations
D:\projects\board\Project Outputs\Pick Place for board.txt

========================================================================================================================
File Design Information:

Date:       01/02/24
Time:       10:11
Revision:   Not in VersionControl
Variant:    No variations
Units used: mm

"Designator","Comment","Layer","Footprint","Center-X(mm)","Center-Y(mm)","Rotation","Description"
"R10","10k","TopLayer","0603","30.000","5.000","90","Resistor"
"R2","10k","TopLayer","0603","20.000","5.000","0","Resistor"
"C1","100n","BottomLayer","0402","12.500","7.250","180","Capacitor"
"FID1","","MultiLayer","FIDUCIAL","1.000","1.000","0",""
"U1","MCU","TopLayer","QFN32","bad","7.000","0","Microcontroller"
"R1","10k","TopLayer","0603","10.000","5.000","","Resistor"
`

func TestParseAltiumExport(t *testing.T) {
	res, err := Parse(strings.NewReader(altiumExport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Units != "mm" || res.Encoding != EncodingUTF8 {
		t.Errorf("units=%q encoding=%q", res.Units, res.Encoding)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (FID1 layer, U1 coordinate)", res.Skipped)
	}

	var got []string
	for _, c := range res.Components {
		got = append(got, c.Designator)
	}
	if want := "R10,R2,C1,R1"; strings.Join(got, ",") != want {
		t.Fatalf("designators = %v, want %s", got, want)
	}

	c1 := res.Components[2]
	want := board.Component{
		Designator: "C1", Comment: "100n", Face: board.Bottom, Footprint: "0402",
		X: 12.5, Y: 7.25, Rotation: 180, Description: "Capacitor",
	}
	if c1 != want {
		t.Errorf("C1 = %+v\nwant %+v", c1, want)
	}
	if r1 := res.Components[3]; r1.Rotation != 0 {
		t.Errorf("blank rotation should be 0, got %v", r1.Rotation)
	}
}

func TestParseMilColumns(t *testing.T) {
	data := "Designator,Comment,Layer,Center-X(mil),Center-Y(mil),Rotation\n" +
		"R1,1k,Top,1000,500,0\n"
	res, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Units != "mil" {
		t.Errorf("Units = %q", res.Units)
	}
	c := res.Components[0]
	if math.Abs(c.X-25.4) > 1e-9 || math.Abs(c.Y-12.7) > 1e-9 {
		t.Errorf("position = (%v, %v), want (25.4, 12.7)", c.X, c.Y)
	}
}

func TestParseLayerIsCaseSensitive(t *testing.T) {
	data := "Designator,Comment,Layer,Center-X(mm),Center-Y(mm)\n" +
		"R1,1k,top,1,1\n" +
		"R2,1k,Top,1,1\n"
	res, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Components) != 1 || res.Components[0].Designator != "R2" {
		t.Errorf("components = %+v", res.Components)
	}
}

func TestParseDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no header", "Ref,Val,X,Y\nR1,1k,1,2\n"},
		{"no coordinates", "Designator,Comment,Layer\nR1,1k,Top\n"},
		{"no y column", "Designator,Layer,Center-X(mm)\nR1,Top,1\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(tt.data))
			if err == nil {
				t.Fatalf("expected error, got %+v", res)
			}
			if !errors.Is(err, errors.ErrCodeDecodeFailure) {
				t.Errorf("code = %v, want DECODE_FAILURE", errors.GetCode(err))
			}
		})
	}
}

func TestDecodeEncodings(t *testing.T) {
	const csvText = "\"Designator\",\"Comment\",\"Layer\",\"Center-X(mm)\",\"Center-Y(mm)\"\r\n" +
		"\"R1\",\"10µ\",\"TopLayer\",\"1\",\"2\"\r\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(csvText)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		raw     []byte
		enc     string
		comment string
	}{
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, csvText...), EncodingUTF8BOM, "10µ"},
		{"utf-16 bom", []byte(utf16), EncodingUTF16, "10µ"},
		{"utf-8", []byte(csvText), EncodingUTF8, "10µ"},
		{"windows-1252", []byte(strings.Replace(csvText, "10µ", "10\x80", 1)), EncodingWindows1252, "10€"},
		{"latin-1 fallback", []byte(strings.Replace(csvText, "10µ", "10\x81\xe9", 1)), EncodingLatin1, "10\u0081é"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(string(tt.raw)))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if res.Encoding != tt.enc {
				t.Errorf("Encoding = %q, want %q", res.Encoding, tt.enc)
			}
			if len(res.Components) != 1 {
				t.Fatalf("got %d components", len(res.Components))
			}
			if got := res.Components[0].Comment; got != tt.comment {
				t.Errorf("Comment = %q, want %q", got, tt.comment)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnp.csv")
	if err := os.WriteFile(path, []byte(altiumExport), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(res.Components) != 4 {
		t.Errorf("got %d components, want 4", len(res.Components))
	}

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
}
