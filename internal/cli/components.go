package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/group"
	"github.com/matzehuels/boardview/pkg/pickplace"
)

// componentsCommand creates the components command, which lists the
// component groups of a pick-and-place file.
func (c *CLI) componentsCommand() *cobra.Command {
	var face string

	cmd := &cobra.Command{
		Use:   "components <pnp.csv>",
		Short: "List components grouped by value",
		Example: `  boardview components board.csv
  boardview components board.csv --face bottom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFaceFilter(face)
			if err != nil {
				return err
			}

			if err := errors.ValidateFile(args[0]); err != nil {
				return err
			}
			res, err := pickplace.ParseFile(args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("parsed pick-and-place", "encoding", res.Encoding, "units", res.Units, "skipped", res.Skipped)

			groups := group.Build(res.Components, filter)
			if len(groups) == 0 {
				printInfo("No components")
				return nil
			}
			fmt.Println(groupTable(groups, -1))

			top, bottom := board.CountByFace(res.Components)
			printDetail("%d groups · %d top · %d bottom", len(groups), top, bottom)
			if res.Skipped > 0 {
				printWarning("Skipped %d rows", res.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&face, "face", faceAll, "face to list: top, bottom, all")

	completeFaces(cmd, faceAll)
	return cmd
}

// groupTable renders groups as a table. The row at cursor is highlighted;
// pass -1 for none.
func groupTable(groups []group.Group, cursor int) string {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Value, fmt.Sprint(len(g.Components)), g.Label(), g.Description()}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("Value", "Count", "Designators", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == cursor:
				return base.Foreground(colorCyan).Bold(true)
			case col == 1:
				return base.Foreground(colorGray)
			case col == 3:
				return base.Foreground(colorDim)
			}
			return base
		}).
		Render()
}
