package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
	"github.com/matzehuels/boardview/pkg/group"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/pipeline"
	"github.com/matzehuels/boardview/pkg/render"
	"github.com/matzehuels/boardview/pkg/viewer"
)

const (
	mapCols     = 64  // board map width in terminal cells
	mapRows     = 20  // board map height in terminal cells
	sliderStep  = 10  // marker size slider change per key press
	panStep     = 8.0 // view pixels per pan key press
	listVisible = 12  // group rows shown at once
)

// View styles
var (
	viewMapStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	viewMarkerStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	viewBoardStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// viewCommand creates the view command, an interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		face     string
		logFile  string
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "view <gerber-dir> <pnp.csv>",
		Short: "Browse component groups interactively",
		Long: `View opens a terminal viewer of the board. Pick a component group to place
pulsing markers on every member; the map follows the first marker.

Keys: ↑/↓ navigate, ⏎ highlight, c clear, f flip face, +/- marker size,
[ ] zoom, z fit, H J K L pan, s snapshot, q quit.`,
		ValidArgsFunction: completeBoardArgs,
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := board.ParseFace(face)
			if err != nil {
				return err
			}

			s, err := c.openSession(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer s.Close()

			// The terminal belongs to the program while it runs.
			logger, closeLog, err := tuiLogger(logFile, c.Logger.GetLevel())
			if err != nil {
				return err
			}
			defer closeLog()
			s.runner.Logger = logger

			m := newViewModel(ctx, s, logger, start, snapshot)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if vm, ok := final.(viewModel); ok && vm.saved != "" {
				printFile(vm.saved)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&face, "face", board.Top.String(), "face shown first: top, bottom")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the viewer runs")
	cmd.Flags().StringVar(&snapshot, "snapshot", "boardview-snapshot.svg", "file written by the s key")

	completeFaces(cmd)
	return cmd
}

// tuiLogger returns a logger that stays off the terminal: it writes to path
// when one is given and discards everything otherwise.
func tuiLogger(path string, level log.Level) (*log.Logger, func(), error) {
	if path == "" {
		return newLogger(io.Discard, level), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, level), func() { f.Close() }, nil
}

// =============================================================================
// viewModel - Interactive board viewer
// =============================================================================

type (
	tickMsg     time.Time
	renderedMsg struct {
		face board.Face
		img  *render.Image
		err  error
	}
)

// viewModel is the bubbletea model of the terminal viewer. The viewer is
// only touched from Update; renders run as commands and come back as
// renderedMsg.
type viewModel struct {
	ctx      context.Context
	runner   *pipeline.Runner
	board    *pipeline.Board
	style    highlight.Style
	viewer   *viewer.Viewer
	clock    highlight.Clock
	interval time.Duration
	logger   *log.Logger

	cursor   int
	offset   int
	selected string
	slider   float64
	snapshot string
	saved    string
	status   string
	err      error
}

func newViewModel(ctx context.Context, s *session, logger *log.Logger, face board.Face, snapshot string) viewModel {
	clock := highlight.ProcessClock()
	v := s.newViewer(logger,
		viewer.WithClock(clock),
		viewer.WithViewSize(mapCols, mapRows*2),
	)
	v.SetFace(face)

	slider := 50.0
	if s.cfg.Marker.Slider != nil {
		slider = *s.cfg.Marker.Slider
	}

	return viewModel{
		ctx:      ctx,
		runner:   s.runner,
		board:    s.board,
		style:    s.cfg.Marker.Style,
		viewer:   v,
		clock:    clock,
		interval: s.cfg.Interval(),
		logger:   logger,
		slider:   slider,
		snapshot: snapshot,
	}
}

func (m viewModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.render(m.viewer.Face()))
}

func (m viewModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m viewModel) render(face board.Face) tea.Cmd {
	ctx, runner, b := m.ctx, m.runner, m.board
	return func() tea.Msg {
		img, err := runner.RenderFace(ctx, b, face)
		return renderedMsg{face: face, img: img, err: err}
	}
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.viewer.Tick(m.clock.Elapsed())
		return m, m.tick()

	case renderedMsg:
		if msg.face != m.viewer.Face() {
			m.logger.Debug("dropping stale render", "face", msg.face)
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if err := m.viewer.ShowImage(msg.img); err != nil {
			m.err = err
			return m, nil
		}
		m.fit()
		m.status = fmt.Sprintf("%s face ready", msg.face.Title())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	groups := m.viewer.Groups()
	m.err = nil

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(groups)-1 {
			m.cursor++
			if m.cursor >= m.offset+listVisible {
				m.offset = m.cursor - listVisible + 1
			}
		}

	case "enter":
		if len(groups) == 0 {
			return m, nil
		}
		g := groups[m.cursor]
		_, placed, err := m.viewer.SelectGroup(g.Value)
		switch {
		case err != nil && errors.IsUserFacing(err):
			m.err = err
		case err != nil:
			m.status = errors.UserMessage(err)
		case !placed:
			m.status = "Board is still rendering"
		default:
			m.selected = g.Value
			m.status = fmt.Sprintf("Highlighting %s", g.Label())
		}

	case "c":
		m.viewer.Clear()
		m.selected = ""
		m.status = "Cleared"

	case "f":
		face := m.viewer.Face().Opposite()
		m.viewer.SetFace(face)
		m.cursor, m.offset, m.selected = 0, 0, ""
		m.status = fmt.Sprintf("Rendering %s face...", face)
		return m, m.render(face)

	case "+", "=":
		m.setSlider(m.slider + sliderStep)
	case "-", "_":
		m.setSlider(m.slider - sliderStep)

	case "]":
		m.viewer.Viewport().Wheel(1)
	case "[":
		m.viewer.Viewport().Wheel(-1)
	case "z":
		m.fit()

	case "H":
		m.viewer.Viewport().Pan(-panStep, 0)
	case "L":
		m.viewer.Viewport().Pan(panStep, 0)
	case "K":
		m.viewer.Viewport().Pan(0, -panStep)
	case "J":
		m.viewer.Viewport().Pan(0, panStep)

	case "s":
		if err := m.saveSnapshot(); err != nil {
			m.err = err
		}
	}
	return m, nil
}

func (m *viewModel) setSlider(v float64) {
	v = math.Max(0, math.Min(100, v))
	if err := m.viewer.SetMarkerSize(highlight.SizeFromSlider(v)); err != nil {
		m.err = err
		return
	}
	m.slider = v
	m.status = fmt.Sprintf("Marker size %.0f", v)
}

func (m *viewModel) fit() {
	if item, ok := m.viewer.ItemBounds(); ok {
		m.viewer.Viewport().ZoomToFit(item)
	}
}

func (m *viewModel) saveSnapshot() error {
	img := m.viewer.Image()
	item, ok := m.viewer.ItemBounds()
	if img == nil || !ok {
		return errors.New(errors.ErrCodeUnavailable, "board is still rendering")
	}
	svg := highlight.Compose(img.SVG, item, m.viewer.Markers(), m.style)
	if err := writeFile(m.snapshot, svg); err != nil {
		return err
	}
	m.saved = m.snapshot
	m.status = "Saved " + m.snapshot
	return nil
}

func (m viewModel) View() string {
	var b strings.Builder

	face := m.viewer.Face()
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s face", face.Title())))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", m.board.Bounds)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ highlight  c clear  f flip  +/- size  [ ] zoom  z fit  HJKL pan  s snapshot  q quit"))
	b.WriteString("\n\n")

	groups := m.viewer.Groups()
	left := m.groupList(groups)
	right := viewMapStyle.Render(m.boardMap())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")

	e := m.viewer.Engine()
	if e.State() == highlight.Active {
		b.WriteString(viewMarkerStyle.Render(fmt.Sprintf("● %s", m.selected)))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d markers  ×%.2f  size %.0f", len(e.Markers()), e.Multiplier(), m.slider)))
		if n := len(e.Unresolved()); n > 0 {
			b.WriteString(StyleWarning.Render(fmt.Sprintf("  %d unplaced", n)))
		}
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(viewErrorStyle.Render(m.err.Error()))
	case m.viewer.Image() == nil:
		b.WriteString(viewStatusStyle.Render("Rendering..."))
	default:
		b.WriteString(viewStatusStyle.Render(m.status))
	}
	return b.String()
}

func (m viewModel) groupList(groups []group.Group) string {
	if len(groups) == 0 {
		return StyleDim.Render(fmt.Sprintf("No %s components", m.viewer.Face()))
	}
	end := min(m.offset+listVisible, len(groups))
	out := groupTable(groups[m.offset:end], m.cursor-m.offset)
	return out + "\n" + StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(groups)))
}

// boardMap draws the visible part of the scene as a character grid: the
// board image area shaded and a marker glyph at each marker center. Terminal
// cells are about twice as tall as wide, so each row covers two view pixels.
func (m viewModel) boardMap() string {
	grid := make([][]rune, mapRows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", mapCols))
	}

	vp := m.viewer.Viewport()
	cell := func(p geometry.Point) (col, row int, ok bool) {
		v := vp.SceneToView(p)
		col, row = int(math.Floor(v.X)), int(math.Floor(v.Y/2))
		return col, row, col >= 0 && col < mapCols && row >= 0 && row < mapRows
	}

	if item, ok := m.viewer.ItemBounds(); ok {
		for row := range mapRows {
			for col := range mapCols {
				p := vp.ViewToScene(geometry.Pt(float64(col)+0.5, float64(row)*2+1))
				if item.Contains(p) {
					grid[row][col] = '·'
				}
			}
		}
	}

	marks := make(map[[2]int]bool)
	for _, g := range m.viewer.Markers() {
		if col, row, ok := cell(g.Center); ok {
			grid[row][col] = '✚'
			marks[[2]int{row, col}] = true
		}
	}

	var b strings.Builder
	for row, line := range grid {
		for col, r := range line {
			s := string(r)
			switch {
			case marks[[2]int{row, col}]:
				b.WriteString(viewMarkerStyle.Render(s))
			case r != ' ':
				b.WriteString(viewBoardStyle.Render(s))
			default:
				b.WriteString(s)
			}
		}
		if row < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
