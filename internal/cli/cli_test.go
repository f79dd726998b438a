package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/pipeline"
	"github.com/matzehuels/boardview/pkg/render"
	"github.com/matzehuels/boardview/pkg/viewer"
)

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name   string
		dir    string
		output string
		faces  []board.Face
		want   []string
	}{
		{"default base", "./gerbers/", "", board.Faces, []string{"gerbers-top.svg", "gerbers-bottom.svg"}},
		{"explicit base", "x", "out/board", board.Faces, []string{"out/board-top.svg", "out/board-bottom.svg"}},
		{"single svg", "x", "front.svg", []board.Face{board.Top}, []string{"front.svg"}},
		{"svg with both", "x", "front.svg", board.Faces, []string{"front-top.svg", "front-bottom.svg"}},
		{"single face base", "x", "b", []board.Face{board.Bottom}, []string{"b-bottom.svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.dir, tt.output, tt.faces)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.svg")
	if err := writeFile(path, []byte("<svg/>")); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("read back %q, %v", data, err)
	}
}

func TestLocateFace(t *testing.T) {
	comps := []board.Component{
		{Designator: "R1", Comment: "10k", Face: board.Bottom},
		{Designator: "C1", Comment: "100n", Face: board.Top},
		{Designator: "C2", Comment: "100n", Face: board.Bottom},
	}

	tests := []struct {
		value, flag string
		want        board.Face
		code        errors.Code
	}{
		{"10k", "", board.Bottom, ""},
		{"100n", "", board.Top, ""},
		{"100n", "bottom", board.Bottom, ""},
		{"1u", "", board.Top, errors.ErrCodeNotFound},
		{"10k", "side", board.Top, errors.ErrCodeInvalidFace},
	}
	for _, tt := range tests {
		got, err := locateFace(comps, tt.value, tt.flag)
		if tt.code != "" {
			if !errors.Is(err, tt.code) {
				t.Errorf("locateFace(%q, %q) err = %v, want %s", tt.value, tt.flag, err, tt.code)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("locateFace(%q, %q) = %v, %v want %v", tt.value, tt.flag, got, err, tt.want)
		}
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":          "localhost:8080",
		"127.0.0.1:8080": "127.0.0.1:8080",
		"":               "",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTUILogger(t *testing.T) {
	logger, closeLog, err := tuiLogger("", log.DebugLevel)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	closeLog()

	path := filepath.Join(t.TempDir(), "view.log")
	logger, closeLog, err = tuiLogger(path, log.InfoLevel)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("kept")
	logger.Debug("filtered")
	closeLog()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "kept") || strings.Contains(string(data), "filtered") {
		t.Errorf("log file = %q", data)
	}

	if _, _, err := tuiLogger(filepath.Join(t.TempDir(), "missing", "x.log"), log.InfoLevel); err == nil {
		t.Error("expected error for unwritable log path")
	}
}

// =============================================================================
// Terminal viewer
// =============================================================================

func boardImage(face board.Face) *render.Image {
	return &render.Image{SVG: []byte("<svg/>"), ViewBox: geometry.R(0, 0, 50, 30), Face: face}
}

func newTestViewModel(t *testing.T) viewModel {
	t.Helper()
	clock := &highlight.ManualClock{}
	v := viewer.New(board.Bounds{XMin: 0, YMin: 0, XMax: 50, YMax: 30},
		viewer.WithClock(clock),
		viewer.WithPxPerMM(1),
		viewer.WithViewSize(mapCols, mapRows*2),
	)
	v.SetComponents([]board.Component{
		{Designator: "R1", Comment: "10k", Face: board.Top, X: 10, Y: 10},
		{Designator: "C1", Comment: "100n", Face: board.Top, X: 20, Y: 5},
		{Designator: "R2", Comment: "10k", Face: board.Bottom, X: 10, Y: 10},
	})
	return viewModel{
		board:    &pipeline.Board{Bounds: board.Bounds{XMin: 0, YMin: 0, XMax: 50, YMax: 30}},
		style:    highlight.DefaultStyle(),
		viewer:   v,
		clock:    clock,
		interval: highlight.DefaultInterval,
		logger:   log.New(io.Discard),
		slider:   50,
		snapshot: filepath.Join(t.TempDir(), "snap.svg"),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m viewModel, msg tea.Msg) (viewModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	vm, ok := next.(viewModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return vm, cmd
}

func TestViewModelIgnoresStaleRender(t *testing.T) {
	m := newTestViewModel(t)

	m, _ = update(t, m, renderedMsg{face: board.Bottom, img: boardImage(board.Bottom)})
	if m.viewer.Image() != nil {
		t.Fatal("bottom image shown while viewing top")
	}

	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})
	if m.viewer.Image() == nil {
		t.Fatal("top image not shown")
	}
	if m.viewer.Viewport().Scale == 1 {
		t.Error("view not fitted to the board")
	}
}

func TestViewModelSelectAndClear(t *testing.T) {
	m := newTestViewModel(t)

	// Selecting before the image arrives places nothing.
	m, _ = update(t, m, key("enter"))
	if m.viewer.Engine().State() != highlight.Idle {
		t.Fatal("markers placed without an image")
	}

	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("enter"))
	if m.selected != "10k" {
		t.Fatalf("selected = %q, want 10k", m.selected)
	}
	markers := m.viewer.Markers()
	if len(markers) != 1 || markers[0].Center != geometry.Pt(10, 20) {
		t.Fatalf("markers = %+v", markers)
	}

	m, cmd := update(t, m, tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}
	if !strings.Contains(m.View(), "1 markers") {
		t.Errorf("view missing marker summary:\n%s", m.View())
	}

	m, _ = update(t, m, key("c"))
	if m.viewer.Engine().State() != highlight.Idle || m.selected != "" {
		t.Error("clear left markers")
	}
}

func TestViewModelMarkerSize(t *testing.T) {
	m := newTestViewModel(t)
	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})

	for range 10 {
		m, _ = update(t, m, key("+"))
	}
	if m.slider != 100 {
		t.Errorf("slider = %v, want clamped to 100", m.slider)
	}
	if got := m.viewer.Engine().BaseSize(); got != highlight.SizeFromSlider(100) {
		t.Errorf("base size = %v", got)
	}

	m, _ = update(t, m, key("-"))
	if m.slider != 90 {
		t.Errorf("slider = %v, want 90", m.slider)
	}
}

func TestViewModelFlipFace(t *testing.T) {
	m := newTestViewModel(t)
	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})
	m, _ = update(t, m, key("enter"))

	m, cmd := update(t, m, key("f"))
	if m.viewer.Face() != board.Bottom {
		t.Fatalf("face = %v, want bottom", m.viewer.Face())
	}
	if cmd == nil {
		t.Error("flip did not request a render")
	}
	if m.viewer.Image() != nil || m.viewer.Engine().State() != highlight.Idle {
		t.Error("flip kept the previous face's image or markers")
	}
	if groups := m.viewer.Groups(); len(groups) != 1 || groups[0].Value != "10k" {
		t.Errorf("bottom groups = %+v", groups)
	}

	// A late top render is dropped.
	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})
	if m.viewer.Image() != nil {
		t.Error("stale top image shown on bottom")
	}
}

func TestViewModelSnapshot(t *testing.T) {
	m := newTestViewModel(t)

	m, _ = update(t, m, key("s"))
	if m.err == nil {
		t.Error("snapshot before render should fail")
	}

	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})
	m, _ = update(t, m, key("enter"))
	m, _ = update(t, m, key("s"))
	if m.err != nil {
		t.Fatalf("snapshot: %v", m.err)
	}
	data, err := os.ReadFile(m.snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `class="markers"`) || !strings.Contains(string(data), ">C1<") {
		t.Errorf("snapshot missing markers:\n%s", data)
	}
}

func TestBoardMapPlotsMarkers(t *testing.T) {
	m := newTestViewModel(t)
	m, _ = update(t, m, renderedMsg{face: board.Top, img: boardImage(board.Top)})
	m, _ = update(t, m, key("enter"))

	out := m.boardMap()
	if !strings.Contains(out, "✚") {
		t.Errorf("map has no marker:\n%s", out)
	}
	if !strings.Contains(out, "·") {
		t.Errorf("map has no board area:\n%s", out)
	}
}
