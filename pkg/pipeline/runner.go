package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/cache"
	"github.com/matzehuels/boardview/pkg/gerber"
	"github.com/matzehuels/boardview/pkg/observability"
	"github.com/matzehuels/boardview/pkg/pickplace"
	"github.com/matzehuels/boardview/pkg/render"
)

// Runner loads boards and renders faces with caching. The CLI commands, the
// TUI and the HTTP viewer all go through a Runner.
//
// LoadBoard and RenderFace may be called from any goroutine. Concurrent
// renders of the same face of the same board share one render.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Source  *gerber.Source
	Options Options

	faces  *FaceCache
	flight singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	opts := DefaultOptions()
	opts.Logger = logger
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Source:  gerber.NewSource(),
		Options: opts,
		faces:   NewFaceCache(),
	}
}

// Faces returns the in-memory face cache.
func (r *Runner) Faces() *FaceCache { return r.faces }

// boundsEntry is the persisted form of a clean bounds aggregation.
type boundsEntry struct {
	Bounds    board.Bounds  `msgpack:"bounds"`
	Used      []board.Layer `msgpack:"used"`
	Empty     []board.Layer `msgpack:"empty"`
	Defaulted bool          `msgpack:"defaulted"`
}

// LoadBoard discovers the layer files in folder and aggregates the board
// bounds. Layers that fail to parse are reported on the Board, not returned
// as errors. Every previously rendered face is invalidated.
func (r *Runner) LoadBoard(ctx context.Context, folder string) (*Board, error) {
	start := time.Now()
	observability.Pipeline().OnBoardLoadStart(ctx, folder)

	b, err := r.loadBoard(ctx, folder)

	layers := 0
	if b != nil {
		layers = len(b.Layers.Paths())
	}
	observability.Pipeline().OnBoardLoadComplete(ctx, folder, layers, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("loaded board",
		"folder", folder,
		"layers", layers,
		"bounds", b.Bounds,
		"duration", time.Since(start))
	return b, nil
}

func (r *Runner) loadBoard(ctx context.Context, folder string) (*Board, error) {
	layers, err := board.Discover(folder)
	if err != nil {
		return nil, fmt.Errorf("discover layers: %w", err)
	}
	if layers.Empty() {
		r.Logger.Warn("no layer files found", "folder", folder)
	}

	hash, err := layers.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash layers: %w", err)
	}

	// Files may have changed on disk since the last load.
	r.Source.Forget()

	bounds, rep := r.boundsWithCache(ctx, layers, hash)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &Board{
		ID:       uuid.New(),
		Folder:   folder,
		Layers:   layers,
		Hash:     hash,
		Bounds:   bounds,
		Report:   rep,
		LoadedAt: time.Now(),
	}
	r.faces.Reset(b.ID)
	return b, nil
}

// boundsWithCache aggregates bounds, consulting the persistent cache first.
// Only aggregations without failed layers are stored.
func (r *Runner) boundsWithCache(ctx context.Context, layers board.LayerSet, hash string) (board.Bounds, render.Report) {
	key := r.Keyer.BoundsKey(hash)
	hooks := observability.Cache()

	if !r.Options.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var e boundsEntry
			if err := msgpack.Unmarshal(data, &e); err == nil {
				hooks.OnCacheHit(ctx, "persistent", "bounds")
				return e.Bounds, render.Report{Used: e.Used, Empty: e.Empty, Defaulted: e.Defaulted}
			}
		} else if err != nil {
			r.Logger.Warn("bounds cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, "persistent", "bounds")
	}

	bounds, rep := render.AggregateBounds(ctx, layers, r.Source, r.Logger)
	if rep.Partial() || ctx.Err() != nil {
		return bounds, rep
	}

	data, err := msgpack.Marshal(boundsEntry{Bounds: bounds, Used: rep.Used, Empty: rep.Empty, Defaulted: rep.Defaulted})
	if err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLBounds); err != nil {
			r.Logger.Warn("bounds cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "persistent", "bounds", len(data))
		}
	}
	return bounds, rep
}

// RenderFace returns the image of one face of b, rendering it at most once
// per board load. A caller whose ctx ends stops waiting, but the render
// carries on for the other callers sharing it.
func (r *Runner) RenderFace(ctx context.Context, b *Board, face board.Face) (*render.Image, error) {
	if img, ok := r.faces.Get(b.ID, face); ok {
		observability.Cache().OnCacheHit(ctx, "memory", "image")
		return img, nil
	}
	observability.Cache().OnCacheMiss(ctx, "memory", "image")

	// The flight is shared, so it must outlive the caller that started it.
	flightCtx := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(b.ID.String()+"/"+face.String(), func() (any, error) {
		return r.renderFace(flightCtx, b, face)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		return nil, err
	}
	if shared {
		r.Logger.Debug("shared in-flight render", "face", face)
	}
	return v.(*render.Image), nil
}

func (r *Runner) renderFace(ctx context.Context, b *Board, face board.Face) (*render.Image, error) {
	// A flight that finished between the caller's lookup and this one
	// already stored the face.
	if img, ok := r.faces.Get(b.ID, face); ok {
		return img, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, face.String())

	img, err := r.renderWithCache(ctx, b, face)

	size := 0
	if img != nil {
		size = len(img.SVG)
	}
	observability.Pipeline().OnRenderComplete(ctx, face.String(), size, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", face, err)
	}

	if !r.faces.Put(b.ID, face, img) {
		r.Logger.Debug("discarding render of a replaced board", "face", face, "board", b.ID)
	}
	r.Logger.Info("rendered face",
		"face", face,
		"bytes", size,
		"duration", time.Since(start))
	return img, nil
}

func (r *Runner) renderWithCache(ctx context.Context, b *Board, face board.Face) (*render.Image, error) {
	hooks := observability.Cache()
	key := r.Keyer.ImageKey(b.Hash, cache.ImageKeyOpts{
		Face:    face.String(),
		Palette: r.Options.Palette.String(),
	})

	if !r.Options.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if vb, err := render.ParseViewBox(data); err == nil {
				hooks.OnCacheHit(ctx, "persistent", "image")
				return &render.Image{SVG: data, ViewBox: vb, Face: face}, nil
			}
			// Unreadable entries are re-rendered and overwritten.
		} else if err != nil {
			r.Logger.Warn("image cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, "persistent", "image")
	}

	img, err := render.RenderBoard(ctx, b.Layers, face, b.Bounds, r.Source,
		render.WithPalette(r.Options.Palette),
		render.WithLogger(r.Logger))
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, img.SVG, r.Options.TTL); err != nil {
		r.Logger.Warn("image cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, "persistent", "image", len(img.SVG))
	}
	return img, nil
}

// LoadComponents parses the pick-and-place file at path.
func (r *Runner) LoadComponents(ctx context.Context, path string) (*pickplace.Result, error) {
	res, err := pickplace.ParseFile(path)
	count := 0
	if res != nil {
		count = len(res.Components)
	}
	observability.Pipeline().OnComponentsLoaded(ctx, path, count, err)
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}

	top, bottom := board.CountByFace(res.Components)
	r.Logger.Info("loaded components",
		"path", path,
		"top", top,
		"bottom", bottom,
		"skipped", res.Skipped,
		"encoding", res.Encoding)
	return res, nil
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
