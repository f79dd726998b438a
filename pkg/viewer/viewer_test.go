package viewer

import (
	"math"
	"testing"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/render"
)

func image(face board.Face) *render.Image {
	return &render.Image{ViewBox: geometry.R(0, 0, 100, 100), Face: face}
}

func newTestViewer() *Viewer {
	v := New(board.DefaultBounds(), WithPxPerMM(1), WithClock(&highlight.ManualClock{}), WithViewSize(200, 100))
	v.SetComponents([]board.Component{
		{Designator: "R1", Comment: "10k", Face: board.Top, X: 5, Y: 5},
		{Designator: "R2", Comment: "10k", Face: board.Bottom, X: 5, Y: 5},
	})
	return v
}

func TestEndToEndFaceSwitch(t *testing.T) {
	v := newTestViewer()
	if err := v.ShowImage(image(board.Top)); err != nil {
		t.Fatal(err)
	}

	primary, placed, err := v.SelectGroup("10k")
	if err != nil || !placed {
		t.Fatalf("SelectGroup: placed=%v err=%v", placed, err)
	}
	markers := v.Markers()
	if len(markers) != 1 || markers[0].Designator != "R1" {
		t.Fatalf("top markers = %+v, want only R1", markers)
	}
	if primary != geometry.Pt(5, 95) {
		t.Errorf("R1 at %v, want (5,95)", primary)
	}
	if v.Viewport().Center != primary {
		t.Errorf("view not centered on primary: %v", v.Viewport().Center)
	}

	v.SetFace(board.Bottom)
	if v.Engine().State() != highlight.Idle {
		t.Error("face switch should clear markers")
	}
	if _, placed, _ := v.SelectGroup("10k"); placed {
		t.Error("placed a marker before the bottom image arrived")
	}

	if err := v.ShowImage(image(board.Bottom)); err != nil {
		t.Fatal(err)
	}
	primary, placed, err = v.SelectGroup("10k")
	if err != nil || !placed {
		t.Fatalf("bottom SelectGroup: placed=%v err=%v", placed, err)
	}
	markers = v.Markers()
	if len(markers) != 1 || markers[0].Designator != "R2" {
		t.Fatalf("bottom markers = %+v, want only R2", markers)
	}
	if primary != geometry.Pt(95, 95) {
		t.Errorf("R2 at %v, want mirrored (95,95)", primary)
	}
}

func TestSelectSkipsOtherFace(t *testing.T) {
	v := newTestViewer()
	v.ShowImage(image(board.Top))

	_, ok := v.Select([]string{"R2", "R1", "R404"})
	if !ok {
		t.Fatal("nothing placed")
	}
	if got := v.Markers(); len(got) != 1 || got[0].Designator != "R1" {
		t.Errorf("markers = %+v", got)
	}
	if got := v.Engine().Unresolved(); len(got) != 2 {
		t.Errorf("unresolved = %v", got)
	}
}

func TestShowImageRejectsStaleFace(t *testing.T) {
	v := newTestViewer()
	v.SetFace(board.Bottom)
	err := v.ShowImage(image(board.Top))
	if !errors.Is(err, errors.ErrCodeUnavailable) {
		t.Fatalf("err = %v, want UNAVAILABLE", err)
	}
	if v.Image() != nil {
		t.Error("stale image was kept")
	}
	if _, ok := v.Locate("R2"); ok {
		t.Error("located without an image")
	}
}

func TestGroupsFollowFace(t *testing.T) {
	v := newTestViewer()
	v.SetComponents(append(v.Components(), board.Component{Designator: "C1", Comment: "1u", Face: board.Bottom}))

	if n := len(v.Groups()); n != 1 {
		t.Errorf("top groups = %d, want 1", n)
	}
	v.SetFace(board.Bottom)
	if n := len(v.Groups()); n != 2 {
		t.Errorf("bottom groups = %d, want 2", n)
	}
	if _, _, err := v.SelectGroup("47k"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown group err = %v", err)
	}
}

func TestSetMarkerSize(t *testing.T) {
	v := newTestViewer()
	v.ShowImage(image(board.Top))
	v.Select([]string{"R1"})

	if err := v.SetMarkerSize(2); err != nil {
		t.Fatal(err)
	}
	if r := v.Markers()[0].Radius; r != 8 {
		t.Errorf("radius = %v, want 8", r)
	}
	if err := v.SetMarkerSize(-1); err == nil {
		t.Error("negative size accepted")
	}
}

func TestSceneToBoard(t *testing.T) {
	v := newTestViewer()
	v.SetFace(board.Bottom)
	v.ShowImage(image(board.Bottom))

	x, y, ok := v.SceneToBoard(geometry.Pt(95, 95))
	if !ok || math.Abs(x-5) > 1e-9 || math.Abs(y-5) > 1e-9 {
		t.Errorf("SceneToBoard = (%v,%v,%v), want (5,5)", x, y, ok)
	}
}

func TestViewport(t *testing.T) {
	vp := NewViewport(200, 100)
	vp.ZoomToFit(geometry.R(0, 0, 100, 100))
	if vp.Scale != 1 || vp.Center != geometry.Pt(50, 50) {
		t.Errorf("ZoomToFit: scale=%v center=%v", vp.Scale, vp.Center)
	}

	if got := vp.SceneToView(geometry.Pt(50, 50)); got != geometry.Pt(100, 50) {
		t.Errorf("center maps to %v, want view middle", got)
	}

	vp.Wheel(2)
	if math.Abs(vp.Scale-1.15*1.15) > 1e-12 {
		t.Errorf("Wheel(2) scale = %v", vp.Scale)
	}
	vp.Wheel(-2)
	if math.Abs(vp.Scale-1) > 1e-12 {
		t.Errorf("Wheel(-2) scale = %v, want 1", vp.Scale)
	}

	vp.Scale = 2
	p := geometry.Pt(13, 27)
	back := vp.ViewToScene(vp.SceneToView(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Errorf("round trip %v -> %v", p, back)
	}

	vp.Pan(20, 0)
	if vp.Center != geometry.Pt(60, 50) {
		t.Errorf("Pan: center = %v", vp.Center)
	}
	if vis := vp.Visible(); vis != geometry.R(10, 25, 100, 50) {
		t.Errorf("Visible = %+v", vis)
	}
}

func TestSetBoardDropsImage(t *testing.T) {
	v := newTestViewer()
	if err := v.ShowImage(image(board.Top)); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.Select([]string{"R1"}); !ok {
		t.Fatal("R1 not placed")
	}

	v.SetBoard(board.Bounds{XMin: 0, YMin: 0, XMax: 10, YMax: 10})
	if v.Image() != nil || len(v.Markers()) != 0 {
		t.Error("SetBoard kept the image or markers")
	}
	if _, ok := v.Locate("R1"); ok {
		t.Error("located R1 without an image")
	}
	if len(v.Components()) != 2 {
		t.Error("SetBoard dropped components")
	}
}
