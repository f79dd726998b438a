package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/cache"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/observability"
	"github.com/matzehuels/boardview/pkg/render"
)

const outline = `%FSLAX46Y46*%
%MOMM*%
%ADD10C,0.1*%
D10*
X0Y0D02*
X50000000Y0D01*
X50000000Y30000000D01*
X0Y30000000D01*
X0Y0D01*
M02*
`

const copper = `%FSLAX46Y46*%
%MOMM*%
%ADD11R,2X1*%
D11*
X10000000Y10000000D03*
M02*
`

func writeBoard(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"board.GM1": outline,
		"board.GTL": copper,
		"board.GBL": copper,
		"board.gts": copper,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// countingCache wraps a cache and counts reads and writes.
type countingCache struct {
	cache.Cache
	mu         sync.Mutex
	gets, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Cache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, data, ttl)
}

func nearBounds(a, b board.Bounds) bool {
	return math.Abs(a.XMin-b.XMin) < 1e-9 && math.Abs(a.YMin-b.YMin) < 1e-9 &&
		math.Abs(a.XMax-b.XMax) < 1e-9 && math.Abs(a.YMax-b.YMax) < 1e-9
}

func newFileCache(t *testing.T) *countingCache {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &countingCache{Cache: fc}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.PxPerMM != render.DefaultPxPerMM || o.TTL != DefaultTTL || o.Logger == nil {
		t.Errorf("defaults = %+v", o)
	}
	if o.Palette != render.DefaultPalette() {
		t.Errorf("palette = %+v", o.Palette)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero px", func(o *Options) { o.PxPerMM = -1 }},
		{"opacity", func(o *Options) { o.Palette.MaskOpacity = 1.5 }},
		{"ttl", func(o *Options) { o.TTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			if err := o.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFaceCache(t *testing.T) {
	c := NewFaceCache()
	a, b := uuid.New(), uuid.New()
	img := &render.Image{Face: board.Top}

	if c.Put(a, board.Top, img) {
		t.Error("Put accepted an unbound board")
	}

	c.Reset(a)
	if !c.Put(a, board.Top, img) {
		t.Fatal("Put rejected the bound board")
	}
	if got, ok := c.Get(a, board.Top); !ok || got != img {
		t.Error("Get missed a stored face")
	}
	if _, ok := c.Get(a, board.Bottom); ok {
		t.Error("Get hit an unrendered face")
	}

	c.Reset(b)
	if c.Len() != 0 {
		t.Errorf("Len after Reset = %d", c.Len())
	}
	if _, ok := c.Get(a, board.Top); ok {
		t.Error("Get returned a face of the previous board")
	}
	if c.Put(a, board.Top, img) {
		t.Error("late render of the previous board was stored")
	}
}

func TestLoadBoard(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	b, err := r.LoadBoard(context.Background(), writeBoard(t))
	if err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}
	if b.ID == uuid.Nil || b.Hash == "" {
		t.Errorf("board = %+v", b)
	}
	// The outline's 0.1mm stroke pads the extents by half its width.
	want := board.Bounds{XMin: -0.05, YMin: -0.05, XMax: 50.05, YMax: 30.05}
	if !nearBounds(b.Bounds, want) {
		t.Errorf("bounds = %+v, want %+v", b.Bounds, want)
	}
	if b.Report.Partial() || b.Report.Defaulted {
		t.Errorf("report = %+v", b.Report)
	}
}

func TestLoadBoardErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.LoadBoard(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing folder")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPath) && !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v", errors.GetCode(err))
	}
}

func TestLoadBoardEmptyFolderDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	b, err := r.LoadBoard(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}
	if b.Bounds != board.DefaultBounds() || !b.Report.Defaulted {
		t.Errorf("bounds = %+v report = %+v", b.Bounds, b.Report)
	}
}

func TestRenderFaceMemoized(t *testing.T) {
	c := newFileCache(t)
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	b, err := r.LoadBoard(ctx, writeBoard(t))
	if err != nil {
		t.Fatal(err)
	}

	top, err := r.RenderFace(ctx, b, board.Top)
	if err != nil {
		t.Fatalf("RenderFace: %v", err)
	}
	if top.Face != board.Top || !strings.Contains(string(top.SVG), "<svg") {
		t.Errorf("image = %+v", top)
	}
	again, err := r.RenderFace(ctx, b, board.Top)
	if err != nil || again != top {
		t.Error("second render of the same face was not served from memory")
	}

	bottom, err := r.RenderFace(ctx, b, board.Bottom)
	if err != nil {
		t.Fatal(err)
	}
	if bottom == top || r.Faces().Len() != 2 {
		t.Errorf("faces cached = %d", r.Faces().Len())
	}
}

func TestReloadInvalidatesFaces(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	dir := writeBoard(t)

	first, _ := r.LoadBoard(ctx, dir)
	if _, err := r.RenderFace(ctx, first, board.Top); err != nil {
		t.Fatal(err)
	}

	second, err := r.LoadBoard(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Error("reload reused the board ID")
	}
	if r.Faces().Len() != 0 {
		t.Error("reload kept rendered faces")
	}
	if _, ok := r.Faces().Get(second.ID, board.Top); ok {
		t.Error("new board served an old render")
	}
}

func TestRenderFacePersistentCache(t *testing.T) {
	c := newFileCache(t)
	ctx := context.Background()
	dir := writeBoard(t)

	r1 := NewRunner(c, nil, nil)
	b1, _ := r1.LoadBoard(ctx, dir)
	want, err := r1.RenderFace(ctx, b1, board.Bottom)
	if err != nil {
		t.Fatal(err)
	}
	sets := c.sets

	// A second runner shares only the persistent cache.
	r2 := NewRunner(c, nil, nil)
	b2, _ := r2.LoadBoard(ctx, dir)
	got, err := r2.RenderFace(ctx, b2, board.Bottom)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.SVG) != string(want.SVG) || got.ViewBox != want.ViewBox || got.Face != board.Bottom {
		t.Error("cached image differs from the original render")
	}
	if c.sets != sets {
		t.Errorf("persistent hit rewrote the cache: %d sets, want %d", c.sets, sets)
	}
}

func TestRenderFaceRefreshBypassesCache(t *testing.T) {
	c := newFileCache(t)
	ctx := context.Background()
	r := NewRunner(c, nil, nil)
	r.Options.Refresh = true

	b, _ := r.LoadBoard(ctx, writeBoard(t))
	if _, err := r.RenderFace(ctx, b, board.Top); err != nil {
		t.Fatal(err)
	}
	if c.gets != 0 {
		t.Errorf("refresh read the cache %d times", c.gets)
	}
	if c.sets == 0 {
		t.Error("refresh did not write results")
	}
}

func TestRenderFaceConcurrent(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	b, _ := r.LoadBoard(ctx, writeBoard(t))

	const n = 8
	images := make([]*render.Image, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := r.RenderFace(ctx, b, board.Top)
			if err != nil {
				t.Error(err)
				return
			}
			images[i] = img
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if images[i] != images[0] {
			t.Fatal("concurrent renders produced distinct images")
		}
	}
}

type renderHooks struct {
	observability.NoopPipelineHooks
	mu   sync.Mutex
	errs []error
}

func (h *renderHooks) OnRenderComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func TestRenderFaceOutlivesCancelledCaller(t *testing.T) {
	hooks := &renderHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	b, err := r.LoadBoard(context.Background(), writeBoard(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderFace(ctx, b, board.Top); err != nil && err != context.Canceled {
		t.Fatalf("cancelled caller: %v", err)
	}

	// A live caller joins the render the cancelled one started, or finds
	// its result stored.
	img, err := r.RenderFace(context.Background(), b, board.Top)
	if err != nil {
		t.Fatalf("live caller: %v", err)
	}
	if img.Face != board.Top {
		t.Errorf("face = %v", img.Face)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.errs) != 1 || hooks.errs[0] != nil {
		t.Errorf("renders = %v, want one successful render", hooks.errs)
	}
}

func TestLoadComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnp.csv")
	body := "Designator,Comment,Layer,Center-X(mm),Center-Y(mm),Rotation\n" +
		"R1,10k,TopLayer,5,5,0\n" +
		"R2,10k,BottomLayer,6,5,90\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, nil)
	res, err := r.LoadComponents(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadComponents: %v", err)
	}
	if len(res.Components) != 2 || res.Components[1].Face != board.Bottom {
		t.Errorf("components = %+v", res.Components)
	}

	if _, err := r.LoadComponents(context.Background(), filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
