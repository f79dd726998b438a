// Package pickplace reads pick-and-place CSV exports into board components.
//
// The format is the one produced by common EDA tools: a free-form preamble
// followed by a header row whose first field is "Designator", then one row
// per placed part. Positions come from the Center-X/Center-Y columns in
// millimeters, or in mils when only mil columns are present. The Layer
// column decides the face; rows on neither face are dropped.
package pickplace

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
)

const mmPerMil = 0.0254

// Column names recognized in the header row.
const (
	ColDesignator  = "Designator"
	ColComment     = "Comment"
	ColLayer       = "Layer"
	ColFootprint   = "Footprint"
	ColRotation    = "Rotation"
	ColDescription = "Description"
	ColXmm         = "Center-X(mm)"
	ColYmm         = "Center-Y(mm)"
	ColXmil        = "Center-X(mil)"
	ColYmil        = "Center-Y(mil)"
)

// Result is a decoded pick-and-place file.
type Result struct {
	Components []board.Component
	Encoding   string // name of the text encoding that decoded the file
	Units      string // "mm" or "mil"
	Skipped    int    // data rows dropped for a blank designator, unknown layer or bad number
}

// ParseFile reads and decodes the pick-and-place file at path.
func ParseFile(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return decode(raw)
}

// Parse decodes pick-and-place data from r.
func Parse(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read pick-and-place data")
	}
	return decode(raw)
}

func decode(raw []byte) (*Result, error) {
	text, enc, err := decodeText(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "no supported text encoding")
	}

	body, ok := fromHeader(text)
	if !ok {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "no header row with a %q column", ColDesignator)
	}

	cr := csv.NewReader(strings.NewReader(body))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read header row")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	res := &Result{Encoding: enc, Units: "mm"}
	xCol, yCol, scale := ColXmm, ColYmm, 1.0
	if _, ok := cols[ColXmm]; !ok {
		xCol, yCol, scale = ColXmil, ColYmil, mmPerMil
		res.Units = "mil"
	}
	if _, ok := cols[xCol]; !ok {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "no %s or %s column", ColXmm, ColXmil)
	}
	if _, ok := cols[yCol]; !ok {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "no %s column", yCol)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read row")
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		c, ok := component(field, xCol, yCol, scale)
		if !ok {
			if !blank(rec) {
				res.Skipped++
			}
			continue
		}
		res.Components = append(res.Components, c)
	}
	return res, nil
}

func component(field func(string) string, xCol, yCol string, scale float64) (board.Component, bool) {
	des := field(ColDesignator)
	if des == "" {
		return board.Component{}, false
	}
	face, ok := board.FaceFromLayer(field(ColLayer))
	if !ok {
		return board.Component{}, false
	}

	x, err := strconv.ParseFloat(field(xCol), 64)
	if err != nil {
		return board.Component{}, false
	}
	y, err := strconv.ParseFloat(field(yCol), 64)
	if err != nil {
		return board.Component{}, false
	}
	var rot float64
	if s := field(ColRotation); s != "" {
		if rot, err = strconv.ParseFloat(s, 64); err != nil {
			return board.Component{}, false
		}
	}

	return board.Component{
		Designator:  des,
		Comment:     field(ColComment),
		Face:        face,
		Footprint:   field(ColFootprint),
		X:           x * scale,
		Y:           y * scale,
		Rotation:    rot,
		Description: field(ColDescription),
	}, true
}

// fromHeader returns text starting at the header row, the first line whose
// first field is Designator, quoted or not.
func fromHeader(text string) (string, bool) {
	offset := 0
	for offset < len(text) {
		line := text[offset:]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if isHeader(line) {
			return text[offset:], true
		}
		offset += len(line) + 1
	}
	return "", false
}

func isHeader(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, `"`+ColDesignator+`"`) {
		return true
	}
	rest, ok := strings.CutPrefix(line, ColDesignator)
	return ok && (rest == "" || rest[0] == ',' || rest[0] == ' ' || rest[0] == '\t')
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
