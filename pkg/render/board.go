package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/geometry"
)

var discardLogger = log.New(io.Discard)

// DefaultPxPerMM is the scene resolution of a rendered board at 96 DPI.
const DefaultPxPerMM = 96 / 25.4

// Palette holds the layer colors of a board rendering.
type Palette struct {
	Background  string  `toml:"background" json:"background"`
	Outline     string  `toml:"outline" json:"outline"`
	Copper      string  `toml:"copper" json:"copper"`
	Mask        string  `toml:"mask" json:"mask"`
	MaskOpacity float64 `toml:"mask_opacity" json:"mask_opacity"`
	Pads        string  `toml:"pads" json:"pads"`
	Silk        string  `toml:"silk" json:"silk"`
}

// DefaultPalette is a dark board with green mask, gold pads and white silk.
func DefaultPalette() Palette {
	return Palette{
		Background:  "#1a1a1a",
		Outline:     "#1a3d1a",
		Copper:      "#b87333",
		Mask:        "#1a5f1a",
		MaskOpacity: 0.85,
		Pads:        "#d4af37",
		Silk:        "#ffffff",
	}
}

// String identifies the palette in cache keys.
func (p Palette) String() string {
	return fmt.Sprintf("%s/%s/%s/%s@%g/%s/%s",
		p.Background, p.Outline, p.Copper, p.Mask, p.MaskOpacity, p.Pads, p.Silk)
}

// Image is a rendered board face.
type Image struct {
	SVG     []byte        `json:"-"`
	ViewBox geometry.Rect `json:"viewbox"`
	Face    board.Face    `json:"face"`
}

// ItemBounds is the rectangle the image occupies once placed in the scene:
// origin (0,0), size the viewbox scaled by pxPerMM.
func (img *Image) ItemBounds(pxPerMM float64) geometry.Rect {
	return geometry.R(0, 0, img.ViewBox.Width*pxPerMM, img.ViewBox.Height*pxPerMM)
}

// Option configures RenderBoard.
type Option func(*boardRenderer)

type boardRenderer struct {
	palette Palette
	logger  *log.Logger
}

func WithPalette(p Palette) Option    { return func(r *boardRenderer) { r.palette = p } }
func WithLogger(l *log.Logger) Option { return func(r *boardRenderer) { r.logger = l } }

// RenderBoard draws one face of the board as an SVG document whose viewBox
// is the board bounds in millimeters. The top face is flipped vertically so
// y grows upward; the bottom face is additionally mirrored about the board's
// vertical center line, as seen when the board is turned over.
//
// Layers that fail to render are logged and left out.
func RenderBoard(ctx context.Context, layers board.LayerSet, face board.Face, bounds board.Bounds, src LayerSource, opts ...Option) (*Image, error) {
	r := boardRenderer{palette: DefaultPalette(), logger: discardLogger}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := bounds.Width(), bounds.Height()
	var transform string
	if face == board.Bottom {
		transform = fmt.Sprintf("scale(-1,-1) translate(%s,%s)", f(-2*bounds.CenterX()), f(-(bounds.YMin + bounds.YMax)))
	} else {
		transform = fmt.Sprintf("scale(1,-1) translate(0,%s)", f(-(bounds.YMin + bounds.YMax)))
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg width="%smm" height="%smm" viewBox="%s %s %s %s" style="background-color:%s" xmlns="http://www.w3.org/2000/svg">`+"\n",
		f(w), f(h), f(bounds.XMin), f(bounds.YMin), f(w), f(h), r.palette.Background)
	fmt.Fprintf(&buf, `<g transform="%s">`+"\n", transform)

	stack := layers.ForFace(face)
	p := r.palette
	steps := []struct {
		name    string
		path    string
		color   string
		opacity float64
	}{
		{"outline", stack.Outline, p.Outline, 0},
		{"copper", stack.Copper, p.Copper, 0},
		{"mask", stack.Mask, p.Mask, p.MaskOpacity},
		{"pads", stack.Mask, p.Pads, 0},
		{"silk", stack.Silk, p.Silk, 0},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frag, err := src.RenderLayer(s.path, s.color)
		if err != nil {
			r.logger.Warn("skipping layer", "face", face, "layer", s.name, "path", s.path, "err", err)
			continue
		}
		if s.opacity > 0 && s.opacity < 1 {
			fmt.Fprintf(&buf, `<g opacity="%s">`+"\n%s</g>\n", f(s.opacity), frag)
		} else {
			buf.WriteString(frag)
		}
	}

	buf.WriteString("</g>\n</svg>\n")

	return &Image{
		SVG:     buf.Bytes(),
		ViewBox: geometry.R(bounds.XMin, bounds.YMin, w, h),
		Face:    face,
	}, nil
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
