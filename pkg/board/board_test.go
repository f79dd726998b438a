package board

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/boardview/pkg/errors"
)

func TestParseFace(t *testing.T) {
	tests := []struct {
		input   string
		want    Face
		wantErr bool
	}{
		{"top", Top, false},
		{"Top", Top, false},
		{"t", Top, false},
		{"bottom", Bottom, false},
		{" BOTTOM ", Bottom, false},
		{"b", Bottom, false},
		{"side", Top, true},
		{"", Top, true},
	}

	for _, tt := range tests {
		got, err := ParseFace(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFace(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFace) {
			t.Errorf("ParseFace(%q) error code = %v", tt.input, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseFace(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFaceOpposite(t *testing.T) {
	if Top.Opposite() != Bottom || Bottom.Opposite() != Top {
		t.Error("Opposite should swap faces")
	}
}

func TestFaceJSON(t *testing.T) {
	data, err := json.Marshal(Component{Designator: "R1", Face: Bottom})
	if err != nil {
		t.Fatal(err)
	}
	var c Component
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatal(err)
	}
	if c.Face != Bottom {
		t.Errorf("round-tripped face = %v, want bottom", c.Face)
	}
}

func TestFaceFromLayer(t *testing.T) {
	tests := []struct {
		layer  string
		want   Face
		wantOK bool
	}{
		{"TopLayer", Top, true},
		{"BottomLayer", Bottom, true},
		{"Top", Top, true},
		{"top", Top, false},
		{"MidLayer1", Top, false},
		{"", Top, false},
	}

	for _, tt := range tests {
		got, ok := FaceFromLayer(tt.layer)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("FaceFromLayer(%q) = %v, %v; want %v, %v", tt.layer, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{XMin: -5, YMin: 10, XMax: 15, YMax: 40}
	if b.Width() != 20 || b.Height() != 30 {
		t.Errorf("size = %vx%v, want 20x30", b.Width(), b.Height())
	}
	if b.CenterX() != 5 {
		t.Errorf("CenterX = %v, want 5", b.CenterX())
	}
	if !b.Valid() {
		t.Error("bounds should be valid")
	}
	if (Bounds{XMin: 1, XMax: 0}).Valid() {
		t.Error("inverted bounds should be invalid")
	}

	u := b.Union(Bounds{XMin: 0, YMin: 0, XMax: 20, YMax: 20})
	want := Bounds{XMin: -5, YMin: 0, XMax: 20, YMax: 40}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}

	e := Bounds{}.Expand(3, -2)
	if e != (Bounds{XMin: 0, YMin: -2, XMax: 3, YMax: 0}) {
		t.Errorf("Expand = %+v", e)
	}
}

func TestDefaultBounds(t *testing.T) {
	d := DefaultBounds()
	if d.Width() <= 0 || d.Height() <= 0 {
		t.Errorf("default bounds must have area, got %v", d)
	}
}

func TestIndexAndCount(t *testing.T) {
	cs := []Component{
		{Designator: "R1", Face: Top},
		{Designator: "R2", Face: Bottom},
		{Designator: "C1", Face: Top},
	}
	idx := Index(cs)
	if len(idx) != 3 || idx["R2"].Face != Bottom {
		t.Errorf("Index = %v", idx)
	}
	top, bottom := CountByFace(cs)
	if top != 2 || bottom != 1 {
		t.Errorf("CountByFace = %d, %d", top, bottom)
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "board.GTL", "board.gbl", "board.GTO", "board.GBO", "board.GTS", "board.GBS", "board.GKO", "board.GM1", "notes.txt")

	set, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	checks := map[string]string{
		"TopCopper":    set.TopCopper,
		"BottomCopper": set.BottomCopper,
		"TopSilk":      set.TopSilk,
		"BottomSilk":   set.BottomSilk,
		"TopMask":      set.TopMask,
		"BottomMask":   set.BottomMask,
	}
	for name, p := range checks {
		if p == "" {
			t.Errorf("%s not discovered", name)
		}
	}
	if filepath.Base(set.Outline) != "board.GM1" {
		t.Errorf("Outline = %q, want GM1 preferred over GKO", set.Outline)
	}

	if got := len(set.BoundsLayers()); got != 5 {
		t.Errorf("BoundsLayers() = %d layers, want 5 (no soldermask)", got)
	}
	if got := len(set.Paths()); got != 7 {
		t.Errorf("Paths() = %d layers, want 7", got)
	}
}

func TestDiscoverErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Discover(filepath.Join(dir, "missing")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing folder error = %v", err)
	}

	set, err := Discover(dir)
	if err != nil {
		t.Fatalf("empty folder: %v", err)
	}
	if !set.Empty() {
		t.Error("empty folder should give an empty layer set")
	}
}

func TestForFace(t *testing.T) {
	set := LayerSet{Outline: "o", TopCopper: "tc", BottomCopper: "bc", TopMask: "tm", BottomMask: "bm", TopSilk: "ts", BottomSilk: "bs"}
	if got := set.ForFace(Top); got != (FaceStack{"o", "tc", "tm", "ts"}) {
		t.Errorf("ForFace(Top) = %+v", got)
	}
	if got := set.ForFace(Bottom); got != (FaceStack{"o", "bc", "bm", "bs"}) {
		t.Errorf("ForFace(Bottom) = %+v", got)
	}
}

func TestLayerSetHash(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, "x.GTL", "x.GKO")
	writeFiles(t, b, "x.GTL", "x.GKO")

	sa, _ := Discover(a)
	sb, _ := Discover(b)
	ha, err := sa.Hash()
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := sb.Hash()
	if ha != hb {
		t.Error("identical layer contents should hash the same")
	}

	if err := os.WriteFile(sb.TopCopper, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	hb2, _ := sb.Hash()
	if hb2 == ha {
		t.Error("changed layer contents should change the hash")
	}
}
