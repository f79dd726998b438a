// Package pipeline loads a board folder and renders its faces, with caching.
//
// A board moves through three stages:
//
//  1. Load: discover the layer files in a folder, hash their contents and
//     aggregate the board bounds from the outline, copper and silkscreen.
//  2. Render: draw one face as an SVG document whose viewBox is the bounds.
//  3. Components: parse the pick-and-place export that goes with the board.
//
// [Runner] runs the stages. Rendered faces are kept in two tiers: a
// [FaceCache] in memory for the lifetime of the loaded board, and the
// persistent [cache.Cache] keyed by the layer files' content hash, so a
// second process opening the same board skips the render entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	b, err := runner.LoadBoard(ctx, "gerbers/")
//	img, err := runner.RenderFace(ctx, b, board.Bottom)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTTL is how long rendered faces stay in the persistent cache.
	DefaultTTL = 7 * 24 * time.Hour

	// TTLBounds is how long aggregated bounds stay in the persistent cache.
	TTLBounds = 30 * 24 * time.Hour
)

// =============================================================================
// Types
// =============================================================================

// Options configures rendering and caching.
type Options struct {
	PxPerMM float64        `json:"px_per_mm"`
	Palette render.Palette `json:"palette"`
	TTL     time.Duration  `json:"ttl"`

	// Refresh skips persistent cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Board is a loaded board folder. It is immutable once returned by
// [Runner.LoadBoard]; reloading the folder produces a new Board with a new ID.
type Board struct {
	ID     uuid.UUID      `json:"id"`
	Folder string         `json:"folder"`
	Layers board.LayerSet `json:"layers"`
	Hash   string         `json:"hash"`
	Bounds board.Bounds   `json:"bounds"`
	Report render.Report  `json:"-"`

	LoadedAt time.Time `json:"loaded_at"`
}

// =============================================================================
// Options Methods
// =============================================================================

// DefaultOptions returns options with every default applied.
func DefaultOptions() Options {
	var o Options
	o.SetDefaults()
	return o
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.PxPerMM == 0 {
		o.PxPerMM = render.DefaultPxPerMM
	}
	if o.Palette == (render.Palette{}) {
		o.Palette = render.DefaultPalette()
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.PxPerMM <= 0 || math.IsNaN(o.PxPerMM) || math.IsInf(o.PxPerMM, 0) {
		return fmt.Errorf("invalid px_per_mm: %v (must be positive)", o.PxPerMM)
	}
	if o.Palette.MaskOpacity < 0 || o.Palette.MaskOpacity > 1 {
		return fmt.Errorf("invalid mask_opacity: %v (must be within 0..1)", o.Palette.MaskOpacity)
	}
	if o.TTL < 0 {
		return fmt.Errorf("invalid ttl: %v", o.TTL)
	}
	return nil
}

// =============================================================================
// Face Cache
// =============================================================================

// FaceCache holds the rendered faces of the currently loaded board. Entries
// for any other board are rejected, so a render that finishes after a reload
// cannot repopulate the cache with stale geometry. It is safe for concurrent
// use.
type FaceCache struct {
	mu     sync.Mutex
	board  uuid.UUID
	images map[board.Face]*render.Image
}

// NewFaceCache returns an empty cache bound to no board.
func NewFaceCache() *FaceCache {
	return &FaceCache{images: make(map[board.Face]*render.Image)}
}

// Reset drops every entry and binds the cache to id.
func (c *FaceCache) Reset(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = id
	clear(c.images)
}

// Get returns the image for face if it was rendered for board id.
func (c *FaceCache) Get(id uuid.UUID, face board.Face) (*render.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.board {
		return nil, false
	}
	img, ok := c.images[face]
	return img, ok
}

// Put stores img for face. It reports false, storing nothing, when id is
// not the bound board.
func (c *FaceCache) Put(id uuid.UUID, face board.Face, img *render.Image) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.board {
		return false
	}
	c.images[face] = img
	return true
}

// Len returns the number of cached faces.
func (c *FaceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
