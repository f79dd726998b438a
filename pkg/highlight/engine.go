// Package highlight drives the pulsing markers placed on selected
// components.
//
// An [Engine] is either Idle, with no markers, or Active, with one marker
// per resolved designator. While Active, every [Engine.Tick] recomputes the
// pulse multiplier from elapsed clock time:
//
//	multiplier = sin(elapsed_ms / 300) · 0.3 + 1
//	radius     = baseSize · 4 · multiplier
//	arm        = 1.5 · radius
//
// Because the phase depends on elapsed time rather than tick count, a
// stalled or irregular timer never distorts the animation, and resizing
// markers mid-pulse keeps the current phase.
//
// The engine is not safe for concurrent use; callers drive it from a single
// control flow.
package highlight

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
)

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Locator resolves a designator to its scene position on the displayed
// face. ok is false when the designator is unknown, on the other face, or
// no image is loaded.
type Locator interface {
	Locate(designator string) (p geometry.Point, ok bool)
}

// Engine holds the active markers and their current geometry.
type Engine struct {
	locator Locator
	clock   Clock
	logger  *log.Logger

	baseSize   float64
	multiplier float64
	markers    []Marker
	geometry   []Geometry
	unresolved []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to seed the pulse phase on selection.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithBaseSize sets the initial marker size.
func WithBaseSize(size float64) Option { return func(e *Engine) { e.baseSize = size } }

// NewEngine returns an idle engine resolving designators through loc.
func NewEngine(loc Locator, opts ...Option) *Engine {
	e := &Engine{
		locator:    loc,
		clock:      ProcessClock(),
		logger:     log.New(io.Discard),
		baseSize:   DefaultBaseSize,
		multiplier: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select replaces the current markers with one per designator that
// resolves. Unresolved designators are skipped. primary is the position of
// the first resolved designator, for the caller to center on; ok is false
// when nothing resolved and the engine is Idle.
func (e *Engine) Select(designators []string) (primary geometry.Point, ok bool) {
	e.Clear()

	for _, d := range designators {
		p, found := e.locator.Locate(d)
		if !found {
			e.unresolved = append(e.unresolved, d)
			continue
		}
		e.markers = append(e.markers, Marker{Designator: d, Center: p})
	}
	if len(e.unresolved) > 0 {
		e.logger.Debug("unresolved designators", "count", len(e.unresolved), "designators", e.unresolved)
	}
	if len(e.markers) == 0 {
		return geometry.Point{}, false
	}

	e.multiplier = Pulse(e.clock.Elapsed())
	e.rebuild()
	return e.markers[0].Center, true
}

// Clear removes every marker. Calling it when Idle is a no-op.
func (e *Engine) Clear() {
	e.markers = nil
	e.geometry = nil
	e.unresolved = nil
	e.multiplier = 1
}

// OnFaceOrFilterChange drops markers whose positions belong to the previous
// face or filter.
func (e *Engine) OnFaceOrFilterChange() {
	e.Clear()
}

// Tick advances the animation to elapsed. It does nothing when Idle.
func (e *Engine) Tick(elapsed time.Duration) {
	if len(e.markers) == 0 {
		return
	}
	e.multiplier = Pulse(elapsed)
	e.rebuild()
}

// SetBaseSize changes the marker size, keeping the current multiplier and
// markers. Negative and non-finite sizes are rejected.
func (e *Engine) SetBaseSize(size float64) error {
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "marker size %v must be a finite non-negative number", size)
	}
	e.baseSize = size
	if len(e.markers) > 0 {
		e.rebuild()
	}
	return nil
}

func (e *Engine) rebuild() {
	geoms := make([]Geometry, len(e.markers))
	for i, m := range e.markers {
		geoms[i] = Shape(m, e.baseSize, e.multiplier)
	}
	e.geometry = geoms
}

// State returns Active when at least one marker is shown.
func (e *Engine) State() State {
	if len(e.markers) > 0 {
		return Active
	}
	return Idle
}

// BaseSize returns the current marker size.
func (e *Engine) BaseSize() float64 { return e.baseSize }

// Multiplier returns the current pulse multiplier, 1 when Idle.
func (e *Engine) Multiplier() float64 { return e.multiplier }

// Markers returns the active markers.
func (e *Engine) Markers() []Marker { return slices.Clone(e.markers) }

// Geometry returns the marker geometry as of the last update.
func (e *Engine) Geometry() []Geometry { return slices.Clone(e.geometry) }

// Unresolved returns the designators the last Select could not place.
func (e *Engine) Unresolved() []string { return slices.Clone(e.unresolved) }
