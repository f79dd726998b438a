package board

import (
	"strings"

	"github.com/matzehuels/boardview/pkg/errors"
)

// Face is the side of the board a component is mounted on or an image shows.
type Face int

const (
	Top Face = iota
	Bottom
)

// Faces lists both faces in display order.
var Faces = []Face{Top, Bottom}

// String returns "top" or "bottom".
func (f Face) String() string {
	if f == Bottom {
		return "bottom"
	}
	return "top"
}

// Title returns "Top" or "Bottom" for display.
func (f Face) Title() string {
	if f == Bottom {
		return "Bottom"
	}
	return "Top"
}

// Opposite returns the other face.
func (f Face) Opposite() Face {
	if f == Bottom {
		return Top
	}
	return Bottom
}

// ParseFace parses a face name case-insensitively. "t"/"b" are accepted.
func ParseFace(s string) (Face, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "t":
		return Top, nil
	case "bottom", "bot", "b":
		return Bottom, nil
	}
	return Top, errors.New(errors.ErrCodeInvalidFace, "unknown face %q (must be top or bottom)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Face) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Face) UnmarshalText(b []byte) error {
	parsed, err := ParseFace(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// FaceFromLayer classifies a pick-and-place layer column. The match is a
// case-sensitive substring test for "Top" then "Bottom"; ok is false when
// neither appears.
func FaceFromLayer(layer string) (Face, bool) {
	switch {
	case strings.Contains(layer, "Top"):
		return Top, true
	case strings.Contains(layer, "Bottom"):
		return Bottom, true
	}
	return Top, false
}
