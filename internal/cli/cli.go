package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/buildinfo"
	"github.com/matzehuels/boardview/pkg/cache"
	"github.com/matzehuels/boardview/pkg/config"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/pickplace"
	"github.com/matzehuels/boardview/pkg/pipeline"
	"github.com/matzehuels/boardview/pkg/viewer"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// faceBoth renders both faces.
	faceBoth = "both"

	// faceAll disables the face filter of component listings.
	faceAll = "all"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) *pipeline.Runner {
	// Rendering may change between releases; entries are scoped per version.
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	r := pipeline.NewRunner(c.newCache(ctx, cfg), keyer, c.Logger)
	opts := cfg.PipelineOptions()
	opts.Logger = c.Logger
	r.Options = opts
	return r
}

// newCache opens the configured backend. A backend that cannot be reached
// disables caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	cc, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("render cache disabled", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// =============================================================================
// Board Session
// =============================================================================

// session is a loaded board with its components, shared by the commands
// that place markers.
type session struct {
	cfg        *config.Config
	runner     *pipeline.Runner
	board      *pipeline.Board
	components *pickplace.Result
}

// openSession loads the board folder and pick-and-place file.
func (c *CLI) openSession(ctx context.Context, gerberDir, pnpPath string) (*session, error) {
	if err := errors.ValidateDir(gerberDir); err != nil {
		return nil, err
	}
	if err := errors.ValidateFile(pnpPath); err != nil {
		return nil, err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	runner := c.newRunner(ctx, cfg)

	spinner := newSpinnerWithContext(ctx, "Loading board...")
	spinner.Start()
	b, err := runner.LoadBoard(ctx, gerberDir)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Failed to load board")
		}
		runner.Close()
		return nil, err
	}
	comps, err := runner.LoadComponents(ctx, pnpPath)
	if err != nil {
		spinner.StopWithError("Failed to load components")
		runner.Close()
		return nil, err
	}
	spinner.Stop()

	warnReport(b)
	return &session{cfg: cfg, runner: runner, board: b, components: comps}, nil
}

// newViewer builds a viewer showing the session's board and components.
func (s *session) newViewer(logger *log.Logger, opts ...viewer.Option) *viewer.Viewer {
	base := []viewer.Option{
		viewer.WithLogger(logger),
		viewer.WithPxPerMM(s.cfg.Render.PxPerMM),
		viewer.WithMarkerSize(s.cfg.MarkerSize()),
	}
	v := viewer.New(s.board.Bounds, append(base, opts...)...)
	v.SetComponents(s.components.Components)
	return v
}

func (s *session) Close() error { return s.runner.Close() }

// warnReport prints layers that were left out of the board bounds.
func warnReport(b *pipeline.Board) {
	for _, f := range b.Report.Failed {
		printWarning("Skipped layer %s: %v", f.Layer, f.Err)
	}
	if b.Report.Defaulted {
		printWarning("No layer geometry found; using default %s bounds", b.Bounds)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFaces parses the --face flag of commands that accept "both".
func parseFaces(s string) ([]board.Face, error) {
	if strings.EqualFold(s, faceBoth) || s == "" {
		return board.Faces, nil
	}
	f, err := board.ParseFace(s)
	if err != nil {
		return nil, err
	}
	return []board.Face{f}, nil
}

// parseFaceFilter parses the --face flag of commands that accept "all".
// A nil result means no filter.
func parseFaceFilter(s string) (*board.Face, error) {
	if strings.EqualFold(s, faceAll) || s == "" {
		return nil, nil
	}
	f, err := board.ParseFace(s)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
