package board

import (
	"fmt"
	"math"

	"github.com/matzehuels/boardview/pkg/geometry"
)

// Bounds is an axis-aligned rectangle in board millimeters.
type Bounds struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// DefaultBounds is used when no layer yields geometry, so downstream code
// never divides by a zero-sized board.
func DefaultBounds() Bounds {
	return Bounds{XMin: 0, YMin: 0, XMax: 100, YMax: 100}
}

// Width returns XMax - XMin.
func (b Bounds) Width() float64 { return b.XMax - b.XMin }

// Height returns YMax - YMin.
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

// CenterX returns the horizontal center in millimeters.
func (b Bounds) CenterX() float64 { return b.XMin + b.Width()/2 }

// Valid reports whether the bounds are finite and not inverted.
func (b Bounds) Valid() bool {
	for _, v := range []float64{b.XMin, b.YMin, b.XMax, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.XMax >= b.XMin && b.YMax >= b.YMin
}

// Union returns the component-wise min/max of both bounds.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		XMin: math.Min(b.XMin, o.XMin),
		YMin: math.Min(b.YMin, o.YMin),
		XMax: math.Max(b.XMax, o.XMax),
		YMax: math.Max(b.YMax, o.YMax),
	}
}

// Expand grows the bounds to include the point (x, y).
func (b Bounds) Expand(x, y float64) Bounds {
	return b.Union(Bounds{XMin: x, YMin: y, XMax: x, YMax: y})
}

// Rect returns the bounds as an origin/size rectangle.
func (b Bounds) Rect() geometry.Rect {
	return geometry.R(b.XMin, b.YMin, b.Width(), b.Height())
}

// String formats the bounds for logs.
func (b Bounds) String() string {
	return fmt.Sprintf("[%.3f,%.3f]-[%.3f,%.3f] (%.3f x %.3f mm)",
		b.XMin, b.YMin, b.XMax, b.YMax, b.Width(), b.Height())
}
