package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/group"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/viewer"
)

// locateOpts holds the command-line flags for the locate command.
type locateOpts struct {
	face   string  // face to search; empty picks the first face holding the value
	slider float64 // marker size slider, 0..100; negative keeps the config size
	output string  // snapshot SVG path
}

// locateCommand creates the locate command, which places markers on every
// component with a given value and reports where they landed.
func (c *CLI) locateCommand() *cobra.Command {
	opts := locateOpts{slider: -1}

	cmd := &cobra.Command{
		Use:   "locate <gerber-dir> <pnp.csv> <value>",
		Short: "Locate every component with a value on the board",
		Example: `  boardview locate ./gerbers board.csv 10k
  boardview locate ./gerbers board.csv 100n --face bottom -o 100n.svg`,
		ValidArgsFunction: completeBoardArgs,
		Args:              cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLocate(cmd, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringVar(&opts.face, "face", "", "face to search: top, bottom (default: first face with the value)")
	cmd.Flags().Float64Var(&opts.slider, "size", opts.slider, "marker size slider 0-100 (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write a snapshot SVG with the markers drawn")

	completeFaces(cmd)
	return cmd
}

func (c *CLI) runLocate(cmd *cobra.Command, dir, pnp, value string, opts locateOpts) error {
	ctx := cmd.Context()

	if err := errors.ValidateLabel(value); err != nil {
		return err
	}

	s, err := c.openSession(ctx, dir, pnp)
	if err != nil {
		return err
	}
	defer s.Close()

	face, err := locateFace(s.components.Components, value, opts.face)
	if err != nil {
		return err
	}

	v := s.newViewer(c.Logger, viewer.WithClock(&highlight.ManualClock{}))
	if opts.slider >= 0 {
		if opts.slider > 100 {
			return errors.New(errors.ErrCodeInvalidInput, "--size must be between 0 and 100")
		}
		if err := v.SetMarkerSize(highlight.SizeFromSlider(opts.slider)); err != nil {
			return err
		}
	}

	v.SetFace(face)
	img, err := s.runner.RenderFace(ctx, s.board, face)
	if err != nil {
		return err
	}
	if err := v.ShowImage(img); err != nil {
		return err
	}

	_, placed, err := v.SelectGroup(value)
	if err != nil {
		return err
	}
	if !placed {
		return errors.New(errors.ErrCodeUnresolvedDesignator, "no %s component with value %q could be placed", face, value)
	}

	markers := v.Markers()
	printSuccess("Located %d %s on the %s face", len(markers), StyleHighlight.Render(value), face)
	fmt.Println(markerTable(markers, board.Index(v.Components())))
	if missing := v.Engine().Unresolved(); len(missing) > 0 {
		printWarning("%d designators could not be placed", len(missing))
		c.Logger.Debug("unresolved", "designators", missing)
	}

	if opts.output != "" {
		item, _ := v.ItemBounds()
		snap := highlight.Compose(img.SVG, item, markers, s.cfg.Marker.Style)
		if err := writeFile(opts.output, snap); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

// locateFace resolves the face to search. With no explicit face, the top
// face is preferred when both hold the value.
func locateFace(components []board.Component, value, flag string) (board.Face, error) {
	if flag != "" {
		return board.ParseFace(flag)
	}
	for _, f := range board.Faces {
		if _, ok := group.Find(group.Build(components, &f), value); ok {
			return f, nil
		}
	}
	return board.Top, errors.New(errors.ErrCodeNotFound, "no component with value %q", value)
}

// markerTable lists each marker with its board and scene position.
func markerTable(markers []highlight.Geometry, index map[string]board.Component) string {
	rows := make([][]string, len(markers))
	for i, m := range markers {
		c := index[m.Designator]
		rows[i] = []string{
			m.Designator,
			fmt.Sprintf("%.3f, %.3f", c.X, c.Y),
			fmt.Sprintf("%.1f, %.1f", m.Center.X, m.Center.Y),
			fmt.Sprintf("%.1f", m.Radius),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("Designator", "Board (mm)", "Scene", "Radius").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return base.Foreground(colorYellow)
			}
			return base.Foreground(colorGray)
		}).
		Render()
}
