// Package viewer holds the state of one board on display: the loaded
// components, the face shown, the image geometry, the active highlight and
// the viewport.
//
// A Viewer is driven from a single control flow. Rendering happens
// elsewhere; results are handed back with ShowImage, which rejects images
// of a face that is no longer current.
package viewer

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
	"github.com/matzehuels/boardview/pkg/group"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/mapper"
	"github.com/matzehuels/boardview/pkg/render"
)

// Viewer coordinates mapper, grouping, highlight and viewport for one board.
type Viewer struct {
	logger  *log.Logger
	pxPerMM float64

	face       board.Face
	components []board.Component
	index      map[string]board.Component
	groups     []group.Group

	mapper   *mapper.Mapper
	engine   *highlight.Engine
	viewport *Viewport
	image    *render.Image
}

// Option configures a Viewer.
type Option func(*config)

type config struct {
	logger   *log.Logger
	pxPerMM  float64
	clock    highlight.Clock
	baseSize float64
	width    float64
	height   float64
}

// WithLogger sets the viewer logger.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

// WithPxPerMM sets the scene resolution of board images.
func WithPxPerMM(v float64) Option { return func(c *config) { c.pxPerMM = v } }

// WithClock sets the clock that seeds the pulse phase.
func WithClock(clk highlight.Clock) Option { return func(c *config) { c.clock = clk } }

// WithMarkerSize sets the initial marker base size.
func WithMarkerSize(size float64) Option { return func(c *config) { c.baseSize = size } }

// WithViewSize sets the initial viewport size in view pixels.
func WithViewSize(w, h float64) Option { return func(c *config) { c.width, c.height = w, h } }

// New returns a viewer for a board with the given bounds, showing the top
// face with no image and no components.
func New(bounds board.Bounds, opts ...Option) *Viewer {
	cfg := config{
		logger:   log.New(io.Discard),
		pxPerMM:  render.DefaultPxPerMM,
		clock:    highlight.ProcessClock(),
		baseSize: highlight.DefaultBaseSize,
		width:    800,
		height:   600,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &Viewer{
		logger:   cfg.logger,
		pxPerMM:  cfg.pxPerMM,
		mapper:   mapper.New(bounds),
		viewport: NewViewport(cfg.width, cfg.height),
		index:    map[string]board.Component{},
	}
	v.engine = highlight.NewEngine(v,
		highlight.WithClock(cfg.clock),
		highlight.WithLogger(cfg.logger),
		highlight.WithBaseSize(cfg.baseSize))
	return v
}

// SetBoard switches to a new board. The image and highlight are dropped;
// components are kept.
func (v *Viewer) SetBoard(bounds board.Bounds) {
	v.engine.Clear()
	v.mapper = mapper.New(bounds)
	v.image = nil
}

// SetComponents replaces the component list.
func (v *Viewer) SetComponents(components []board.Component) {
	v.engine.OnFaceOrFilterChange()
	v.components = components
	v.index = board.Index(components)
	v.regroup()
}

// SetFace switches the displayed face. Highlights are cleared and the
// mapper forgets the previous image until ShowImage delivers the new one.
func (v *Viewer) SetFace(face board.Face) {
	if face == v.face && v.image != nil {
		return
	}
	v.engine.OnFaceOrFilterChange()
	v.mapper.Reset()
	v.image = nil
	v.face = face
	v.regroup()
	v.logger.Debug("face changed", "face", face)
}

// ShowImage puts a rendered image on display. An image for a face other
// than the current one is stale and rejected as unavailable.
func (v *Viewer) ShowImage(img *render.Image) error {
	if img == nil {
		return errors.New(errors.ErrCodeUnavailable, "no image")
	}
	if img.Face != v.face {
		return errors.New(errors.ErrCodeUnavailable, "image is for the %s face, showing %s", img.Face, v.face)
	}
	v.engine.Clear()
	v.image = img
	item := img.ItemBounds(v.pxPerMM)
	v.mapper.Load(img.Face, img.ViewBox, item)
	v.viewport.ZoomToFit(item)
	return nil
}

func (v *Viewer) regroup() {
	face := v.face
	v.groups = group.Build(v.components, &face)
}

// Face returns the displayed face.
func (v *Viewer) Face() board.Face { return v.face }

// Image returns the displayed image, or nil while it is being rendered.
func (v *Viewer) Image() *render.Image { return v.image }

// ItemBounds returns the scene rectangle of the displayed image.
func (v *Viewer) ItemBounds() (geometry.Rect, bool) {
	if v.image == nil {
		return geometry.Rect{}, false
	}
	return v.image.ItemBounds(v.pxPerMM), true
}

// Components returns every loaded component.
func (v *Viewer) Components() []board.Component { return v.components }

// Groups returns the component groups on the displayed face.
func (v *Viewer) Groups() []group.Group { return v.groups }

// SelectGroup highlights every member of the group with the given value
// and centers the view on the first one placed. placed is false when no
// member could be located, which happens while the image is still
// rendering.
func (v *Viewer) SelectGroup(value string) (primary geometry.Point, placed bool, err error) {
	g, ok := group.Find(v.groups, value)
	if !ok {
		return geometry.Point{}, false, errors.New(errors.ErrCodeNotFound, "no %s component with value %q", v.face, value)
	}
	primary, placed = v.Select(g.Designators())
	return primary, placed, nil
}

// Select highlights the given designators and centers the view on the
// first one placed.
func (v *Viewer) Select(designators []string) (geometry.Point, bool) {
	primary, ok := v.engine.Select(designators)
	if ok {
		v.viewport.CenterOn(primary)
	}
	return primary, ok
}

// Clear removes the highlight.
func (v *Viewer) Clear() { v.engine.Clear() }

// SetMarkerSize changes the marker base size.
func (v *Viewer) SetMarkerSize(size float64) error {
	return v.engine.SetBaseSize(size)
}

// Tick advances the highlight animation.
func (v *Viewer) Tick(elapsed time.Duration) { v.engine.Tick(elapsed) }

// Markers returns the current marker geometry.
func (v *Viewer) Markers() []highlight.Geometry { return v.engine.Geometry() }

// Engine returns the highlight engine.
func (v *Viewer) Engine() *highlight.Engine { return v.engine }

// Viewport returns the viewport.
func (v *Viewer) Viewport() *Viewport { return v.viewport }

// Locate returns the scene position of a designator on the displayed face.
func (v *Viewer) Locate(designator string) (geometry.Point, bool) {
	c, ok := v.index[designator]
	if !ok {
		return geometry.Point{}, false
	}
	return v.mapper.ToScene(c.X, c.Y, c.Face)
}

// SceneToBoard converts a scene position on the displayed image to board
// millimeters.
func (v *Viewer) SceneToBoard(p geometry.Point) (x, y float64, ok bool) {
	return v.mapper.ToBoard(p, v.face)
}
