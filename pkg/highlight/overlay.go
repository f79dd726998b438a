package highlight

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/boardview/pkg/geometry"
)

// Style controls how markers are drawn.
type Style struct {
	Stroke      string         `toml:"stroke" json:"stroke"`
	StrokeWidth float64        `toml:"stroke_width" json:"stroke_width"`
	Fill        string         `toml:"fill" json:"fill"`
	FillOpacity float64        `toml:"fill_opacity" json:"fill_opacity"`
	Label       string         `toml:"label" json:"label"`
	FontSize    float64        `toml:"font_size" json:"font_size"`
	LabelOffset geometry.Point `toml:"-" json:"label_offset"`
}

// DefaultStyle is a red ring with a translucent yellow fill and a yellow
// designator label up and to the right of the center.
func DefaultStyle() Style {
	return Style{
		Stroke:      "#ff0000",
		StrokeWidth: 1,
		Fill:        "#ffff00",
		FillOpacity: 80.0 / 255.0,
		Label:       "#ffff00",
		FontSize:    12,
		LabelOffset: geometry.Pt(10, -10),
	}
}

// OverlaySVG renders marker geometry as an SVG group in scene coordinates.
// Rings and crosshairs are drawn first and labels on top.
func OverlaySVG(geoms []Geometry, style Style) string {
	stroke, fill, label := attr(style.Stroke), attr(style.Fill), attr(style.Label)

	var buf bytes.Buffer
	buf.WriteString(`<g class="markers">` + "\n")
	for _, g := range geoms {
		c := g.Center
		fmt.Fprintf(&buf, `<circle cx="%s" cy="%s" r="%s" stroke="%s" stroke-width="%s" fill="%s" fill-opacity="%s"/>`+"\n",
			n(c.X), n(c.Y), n(g.Radius), stroke, n(style.StrokeWidth), fill, n(style.FillOpacity))
		fmt.Fprintf(&buf, `<path d="M%s %s H%s M%s %s V%s" stroke="%s" stroke-width="%s"/>`+"\n",
			n(c.X-g.Arm), n(c.Y), n(c.X+g.Arm), n(c.X), n(c.Y-g.Arm), n(c.Y+g.Arm), stroke, n(style.StrokeWidth))
	}
	for _, g := range geoms {
		p := g.Center.Add(style.LabelOffset)
		fmt.Fprintf(&buf, `<text x="%s" y="%s" fill="%s" font-family="sans-serif" font-size="%s">`,
			n(p.X), n(p.Y), label, n(style.FontSize))
		xml.EscapeText(&buf, []byte(g.Designator))
		buf.WriteString("</text>\n")
	}
	buf.WriteString("</g>\n")
	return buf.String()
}

// Compose produces a standalone SVG of a board image with markers on top.
// The board document is embedded as a data URI placed at item, the
// rectangle it occupies in the scene.
func Compose(boardSVG []byte, item geometry.Rect, geoms []Geometry, style Style) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		n(item.Width), n(item.Height), n(item.X), n(item.Y), n(item.Width), n(item.Height))
	fmt.Fprintf(&buf, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" href="data:image/svg+xml;base64,%s"/>`+"\n",
		n(item.X), n(item.Y), n(item.Width), n(item.Height), base64.StdEncoding.EncodeToString(boardSVG))
	buf.WriteString(OverlaySVG(geoms, style))
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// attr escapes a configured value for use inside a quoted attribute.
func attr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func n(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
