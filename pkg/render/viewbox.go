package render

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
)

// ParseViewBox returns the viewBox declared on the root <svg> element of
// an SVG document. The mapper depends on this rectangle rather than on the
// bounds the document was rendered from, so an image produced elsewhere
// maps the same way.
func ParseViewBox(svg []byte) (geometry.Rect, error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return geometry.Rect{}, errors.New(errors.ErrCodeInvalidFormat, "no <svg> element")
		}
		if err != nil {
			return geometry.Rect{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read svg")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return geometry.Rect{}, errors.New(errors.ErrCodeInvalidFormat, "root element is <%s>, not <svg>", start.Name.Local)
		}
		for _, a := range start.Attr {
			if a.Name.Local == "viewBox" {
				return parseViewBoxAttr(a.Value)
			}
		}
		return geometry.Rect{}, errors.New(errors.ErrCodeInvalidFormat, "<svg> has no viewBox")
	}
}

func parseViewBoxAttr(s string) (geometry.Rect, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return geometry.Rect{}, errors.New(errors.ErrCodeInvalidFormat, "viewBox %q: want 4 numbers", s)
	}
	var v [4]float64
	for i, fld := range fields {
		n, err := strconv.ParseFloat(fld, 64)
		if err != nil {
			return geometry.Rect{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "viewBox %q", s)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return geometry.Rect{}, errors.New(errors.ErrCodeInvalidFormat, "viewBox %q: negative size", s)
	}
	return geometry.R(v[0], v[1], v[2], v[3]), nil
}
