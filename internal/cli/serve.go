package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/internal/server"
	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/viewer"
)

// serveCommand creates the serve command, which runs the browser viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <gerber-dir> <pnp.csv>",
		Short: "Serve the interactive board viewer over HTTP",
		Example: `  boardview serve ./gerbers board.csv
  boardview serve ./gerbers board.csv --addr :9000`,
		ValidArgsFunction: completeBoardArgs,
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := c.openSession(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}

			clock := highlight.ProcessClock()
			v := s.newViewer(c.Logger, viewer.WithClock(clock))
			srv := server.New(s.runner, s.board, v,
				server.WithLogger(c.Logger),
				server.WithClock(clock),
				server.WithStyle(s.cfg.Marker.Style),
			)
			if err := srv.ShowFace(ctx, board.Top); err != nil {
				return err
			}

			boardSummary(s.board, len(s.components.Components))
			printNextStep("Open the viewer", "http://"+displayAddr(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

// displayAddr turns a listen address into one a browser can open.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
