// Package mapper converts board coordinates to positions on a displayed
// board image and back.
//
// A board position goes through three spaces:
//
//  1. Board millimeters, origin at the board datum, y up. On the bottom face
//     x is mirrored about the board's vertical center line: x' = xmin+xmax-x.
//  2. The image's viewBox, normalized to [0,1] with y flipped, since image
//     rows grow downward.
//  3. Scene units: the normalized point scaled into the rectangle the image
//     occupies in the scene.
//
// A Mapper only answers while an image is loaded, and only for the face that
// image was rendered for. Switching faces resets it until the new image
// arrives, so a marker can never be placed using the previous face's
// geometry.
package mapper

import (
	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/geometry"
)

// Mapper holds the board bounds and the geometry of the loaded image.
// It is not safe for concurrent use.
type Mapper struct {
	bounds board.Bounds

	loaded  bool
	face    board.Face
	viewBox geometry.Rect
	item    geometry.Rect
}

// New returns a Mapper for a board with the given bounds and no image.
func New(bounds board.Bounds) *Mapper {
	return &Mapper{bounds: bounds}
}

// Bounds returns the board bounds the mapper mirrors about.
func (m *Mapper) Bounds() board.Bounds { return m.bounds }

// Load records the image now on display: the face it shows, its declared
// viewBox and the scene rectangle it occupies. All three are replaced
// together.
func (m *Mapper) Load(face board.Face, viewBox, item geometry.Rect) {
	m.loaded = true
	m.face = face
	m.viewBox = viewBox
	m.item = item
}

// Reset forgets the loaded image.
func (m *Mapper) Reset() {
	m.loaded = false
	m.viewBox = geometry.Rect{}
	m.item = geometry.Rect{}
}

// Loaded returns the face of the loaded image; ok is false when none is.
func (m *Mapper) Loaded() (face board.Face, ok bool) {
	return m.face, m.loaded
}

// ToScene maps a board position on face to scene coordinates. ok is false
// when no image is loaded or the loaded image shows the other face.
func (m *Mapper) ToScene(x, y float64, face board.Face) (p geometry.Point, ok bool) {
	if !m.loaded || face != m.face {
		return geometry.Point{}, false
	}

	if face == board.Bottom {
		x = m.bounds.XMin + m.bounds.XMax - x
	}

	var nx, ny float64
	if m.viewBox.Width != 0 {
		nx = (x - m.viewBox.X) / m.viewBox.Width
	}
	if m.viewBox.Height != 0 {
		ny = 1 - (y-m.viewBox.Y)/m.viewBox.Height
	}

	return geometry.Pt(m.item.X+nx*m.item.Width, m.item.Y+ny*m.item.Height), true
}

// ToBoard maps a scene position back to board millimeters on face. ok is
// false under the same conditions as ToScene, or when the image occupies no
// area.
func (m *Mapper) ToBoard(p geometry.Point, face board.Face) (x, y float64, ok bool) {
	if !m.loaded || face != m.face || m.item.Empty() {
		return 0, 0, false
	}

	nx := (p.X - m.item.X) / m.item.Width
	ny := (p.Y - m.item.Y) / m.item.Height

	x = m.viewBox.X + nx*m.viewBox.Width
	y = m.viewBox.Y + (1-ny)*m.viewBox.Height
	if face == board.Bottom {
		x = m.bounds.XMin + m.bounds.XMax - x
	}
	return x, y, true
}
