package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	face    string  // "top", "bottom" or "both"
	output  string  // output file, or base path when rendering both faces
	pxPerMM float64 // overrides [render] px_per_mm when set
}

// renderCommand creates the render command, which writes each board face
// as a standalone SVG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{face: faceBoth}

	cmd := &cobra.Command{
		Use:   "render <gerber-dir>",
		Short: "Render board faces to SVG",
		Long: `Render discovers the Gerber layers in a folder, computes the board bounds
and writes one SVG per face. The bottom face is drawn mirrored, as seen
when the board is turned over.`,
		Example: `  boardview render ./gerbers
  boardview render ./gerbers --face bottom -o bottom.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.face, "face", opts.face, "face to render: top, bottom, both")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (default: folder name)")
	cmd.Flags().Float64Var(&opts.pxPerMM, "px-per-mm", 0, "scene resolution (default from config)")

	completeFaces(cmd, faceBoth)
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, dir string, opts renderOpts) error {
	ctx := cmd.Context()

	faces, err := parseFaces(opts.face)
	if err != nil {
		return err
	}
	if err := errors.ValidateDir(dir); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.pxPerMM != 0 {
		cfg.Render.PxPerMM = opts.pxPerMM
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	runner := c.newRunner(ctx, cfg)
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Loading board...")
	spinner.Start()

	b, err := runner.LoadBoard(ctx, dir)
	if err != nil {
		spinner.StopWithError("Failed to load board")
		return err
	}

	paths := outputPaths(dir, opts.output, faces)
	for i, face := range faces {
		spinner.SetMessage(fmt.Sprintf("Rendering %s face...", face))
		img, err := runner.RenderFace(ctx, b, face)
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Failed to render %s", face))
			return err
		}
		if err := writeFile(paths[i], img.SVG); err != nil {
			spinner.StopWithError("Failed to write output")
			return err
		}
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %s", filepath.Base(filepath.Clean(dir))))
	prog.done(fmt.Sprintf("Rendered %d faces", len(faces)))

	warnReport(b)
	boardSummary(b, 0)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// outputPaths names the file written for each face. A single face with an
// explicit .svg output uses it as is; otherwise the output (or the folder
// name) is a base extended with the face name.
func outputPaths(dir, output string, faces []board.Face) []string {
	if len(faces) == 1 && strings.EqualFold(filepath.Ext(output), ".svg") {
		return []string{output}
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	if base == "" {
		base = filepath.Base(filepath.Clean(dir))
	}
	paths := make([]string, len(faces))
	for i, f := range faces {
		paths[i] = fmt.Sprintf("%s-%s.svg", base, f)
	}
	return paths
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// boardSummary prints the stats line of a loaded board.
func boardSummary(b *pipeline.Board, components int) {
	printStats(len(b.Layers.Paths()), b.Bounds, components)
}
