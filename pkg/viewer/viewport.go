package viewer

import (
	"math"

	"github.com/matzehuels/boardview/pkg/geometry"
)

// WheelFactor is the zoom change per wheel notch.
const WheelFactor = 1.15

// Viewport maps scene coordinates to a view of a given pixel size. The
// scene point at Center is drawn in the middle of the view, Scale view
// pixels per scene unit.
type Viewport struct {
	Width, Height float64
	Scale         float64
	Center        geometry.Point
}

// NewViewport returns a viewport of the given size at scale 1.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height, Scale: 1}
}

// Resize changes the view size, keeping the center and scale.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// ZoomToFit centers r and scales it to fill the view while keeping its
// aspect ratio. An empty r only recenters.
func (v *Viewport) ZoomToFit(r geometry.Rect) {
	v.Center = r.Center()
	if r.Empty() || v.Width <= 0 || v.Height <= 0 {
		return
	}
	v.Scale = math.Min(v.Width/r.Width, v.Height/r.Height)
}

// Wheel zooms by WheelFactor per notch: positive notches zoom in, negative
// zoom out.
func (v *Viewport) Wheel(notches int) {
	if notches == 0 {
		return
	}
	v.Scale *= math.Pow(WheelFactor, float64(notches))
}

// CenterOn moves the view so p is in the middle.
func (v *Viewport) CenterOn(p geometry.Point) {
	v.Center = p
}

// Pan moves the view by a distance in view pixels.
func (v *Viewport) Pan(dx, dy float64) {
	if v.Scale == 0 {
		return
	}
	v.Center = v.Center.Add(geometry.Pt(dx/v.Scale, dy/v.Scale))
}

// SceneToView converts a scene point to view pixels.
func (v *Viewport) SceneToView(p geometry.Point) geometry.Point {
	return p.Sub(v.Center).Scale(v.Scale).Add(geometry.Pt(v.Width/2, v.Height/2))
}

// ViewToScene converts view pixels to a scene point.
func (v *Viewport) ViewToScene(p geometry.Point) geometry.Point {
	if v.Scale == 0 {
		return v.Center
	}
	return p.Sub(geometry.Pt(v.Width/2, v.Height/2)).Scale(1 / v.Scale).Add(v.Center)
}

// Visible returns the scene rectangle currently in view.
func (v *Viewport) Visible() geometry.Rect {
	if v.Scale == 0 {
		return geometry.Rect{}
	}
	w, h := v.Width/v.Scale, v.Height/v.Scale
	return geometry.R(v.Center.X-w/2, v.Center.Y-h/2, w, h)
}
