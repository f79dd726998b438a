package gerber

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/geometry"
)

// Shape is an aperture shape.
type Shape int

const (
	ShapeMacro Shape = iota // aperture macro, drawn as a point
	ShapeCircle
	ShapeRect
	ShapeObround
	ShapePolygon // drawn as its circumscribed circle
)

// Aperture is a defined aperture with its size in millimeters.
type Aperture struct {
	Number int
	Shape  Shape
	Width  float64
	Height float64
}

// StrokeWidth is the line width the aperture draws with.
func (a Aperture) StrokeWidth() float64 {
	if a.Shape == ShapeRect || a.Shape == ShapeObround {
		return math.Min(a.Width, a.Height)
	}
	return a.Width
}

// Stroke is a straight draw of a given width.
type Stroke struct {
	From, To geometry.Point
	Width    float64
}

// Flash is an aperture image placed at a point.
type Flash struct {
	At       geometry.Point
	Aperture Aperture
}

// Region is a filled contour.
type Region struct {
	Points []geometry.Point
}

// File is a parsed Gerber layer.
type File struct {
	Path    string
	Units   string // units declared by the file; geometry is always mm
	Strokes []Stroke
	Flashes []Flash
	Regions []Region

	ended bool
}

// Empty reports whether the file produced no geometry.
func (f *File) Empty() bool {
	return len(f.Strokes) == 0 && len(f.Flashes) == 0 && len(f.Regions) == 0
}

// Bounds returns the extent of every primitive, including stroke widths and
// aperture sizes. ok is false when the file has no geometry.
func (f *File) Bounds() (b board.Bounds, ok bool) {
	first := true
	add := func(xmin, ymin, xmax, ymax float64) {
		nb := board.Bounds{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
		if first {
			b, first = nb, false
			return
		}
		b = b.Union(nb)
	}

	for _, s := range f.Strokes {
		h := s.Width / 2
		add(math.Min(s.From.X, s.To.X)-h, math.Min(s.From.Y, s.To.Y)-h,
			math.Max(s.From.X, s.To.X)+h, math.Max(s.From.Y, s.To.Y)+h)
	}
	for _, fl := range f.Flashes {
		hw, hh := fl.Aperture.Width/2, fl.Aperture.Height/2
		add(fl.At.X-hw, fl.At.Y-hh, fl.At.X+hw, fl.At.Y+hh)
	}
	for _, r := range f.Regions {
		for _, p := range r.Points {
			add(p.X, p.Y, p.X, p.Y)
		}
	}
	return b, !first
}

// minStrokeWidth keeps zero-width outline draws visible.
const minStrokeWidth = 0.05

// SVG renders the layer as SVG elements in millimeter coordinates, filled
// and stroked with color. The caller supplies the enclosing <svg> and any
// transform.
func (f *File) SVG(color string) string {
	var b strings.Builder

	for _, r := range f.Regions {
		b.WriteString(`<path d="`)
		for i, p := range r.Points {
			if i == 0 {
				fmt.Fprintf(&b, "M%s %s", num(p.X), num(p.Y))
			} else {
				fmt.Fprintf(&b, " L%s %s", num(p.X), num(p.Y))
			}
		}
		fmt.Fprintf(&b, ` Z" fill="%s"/>`+"\n", color)
	}

	// One path per stroke width keeps the output compact.
	var widths []float64
	paths := make(map[float64]*strings.Builder)
	for _, s := range f.Strokes {
		w := math.Max(s.Width, minStrokeWidth)
		pb, ok := paths[w]
		if !ok {
			pb = &strings.Builder{}
			paths[w] = pb
			widths = append(widths, w)
		}
		if pb.Len() > 0 {
			pb.WriteByte(' ')
		}
		fmt.Fprintf(pb, "M%s %s L%s %s", num(s.From.X), num(s.From.Y), num(s.To.X), num(s.To.Y))
	}
	for _, w := range widths {
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
			paths[w].String(), color, num(w))
	}

	for _, fl := range f.Flashes {
		ap := fl.Aperture
		if ap.Width <= 0 {
			continue
		}
		switch ap.Shape {
		case ShapeRect, ShapeObround:
			rx := ""
			if ap.Shape == ShapeObround {
				rx = fmt.Sprintf(` rx="%s"`, num(math.Min(ap.Width, ap.Height)/2))
			}
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s"%s fill="%s"/>`+"\n",
				num(fl.At.X-ap.Width/2), num(fl.At.Y-ap.Height/2), num(ap.Width), num(ap.Height), rx, color)
		default:
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
				num(fl.At.X), num(fl.At.Y), num(ap.Width/2), color)
		}
	}

	return b.String()
}

// num formats a millimeter value with at most four decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
