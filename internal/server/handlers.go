package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
	"github.com/matzehuels/boardview/pkg/geometry"
	"github.com/matzehuels/boardview/pkg/highlight"
	"github.com/matzehuels/boardview/pkg/observability"
)

type groupResponse struct {
	Value       string   `json:"value"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Designators []string `json:"designators"`
}

type stateResponse struct {
	Face   board.Face     `json:"face"`
	Ready  bool           `json:"ready"`
	Item   *geometry.Rect `json:"item,omitempty"`
	Bounds board.Bounds   `json:"bounds"`
}

type selectRequest struct {
	Value       *string  `json:"value,omitempty"`
	Designators []string `json:"designators,omitempty"`
}

type selectResponse struct {
	Placed     bool                 `json:"placed"`
	Primary    *geometry.Point      `json:"primary,omitempty"`
	Markers    []highlight.Geometry `json:"markers"`
	Unresolved []string             `json:"unresolved,omitempty"`
}

type markerSizeRequest struct {
	Size   *float64 `json:"size,omitempty"`
	Slider *float64 `json:"slider,omitempty"`
}

// markerFrame is one animation frame of the active highlight.
type markerFrame struct {
	Face       string               `json:"face" msgpack:"face"`
	State      string               `json:"state" msgpack:"state"`
	Multiplier float64              `json:"multiplier" msgpack:"multiplier"`
	BaseSize   float64              `json:"base_size" msgpack:"base_size"`
	Item       *geometry.Rect       `json:"item,omitempty" msgpack:"item,omitempty"`
	Markers    []highlight.Geometry `json:"markers" msgpack:"markers"`
}

type locateResponse struct {
	X float64 `json:"x_mm"`
	Y float64 `json:"y_mm"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

// handleBoard serves the board image of a face. With ?markers=1 and the
// face on display, the current markers are drawn over it.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	face, err := board.ParseFace(chi.URLParam(r, "face"))
	if err != nil {
		writeError(w, err)
		return
	}

	img, err := s.runner.RenderFace(r.Context(), s.board, face)
	if err != nil {
		writeError(w, err)
		return
	}
	doc := img.SVG

	if r.URL.Query().Get("markers") == "1" {
		s.mu.Lock()
		item, ok := s.viewer.ItemBounds()
		if ok && s.viewer.Face() == face {
			s.viewer.Tick(s.clock.Elapsed())
			doc = highlight.Compose(img.SVG, item, s.viewer.Markers(), s.style)
		}
		s.mu.Unlock()
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(doc)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	groups := s.viewer.Groups()
	s.mu.Unlock()

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = groupResponse{
			Value:       g.Value,
			Label:       g.Label(),
			Description: g.Description(),
			Designators: g.Designators(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFace(w http.ResponseWriter, r *http.Request) {
	face, err := board.ParseFace(chi.URLParam(r, "face"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ShowFace(r.Context(), face); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	resp := s.state()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) state() stateResponse {
	resp := stateResponse{
		Face:   s.viewer.Face(),
		Bounds: s.board.Bounds,
	}
	if item, ok := s.viewer.ItemBounds(); ok {
		resp.Ready = true
		resp.Item = &item
	}
	return resp
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	var (
		primary geometry.Point
		placed  bool
		label   string
	)
	switch {
	case req.Value != nil:
		var err error
		label = *req.Value
		primary, placed, err = s.viewer.SelectGroup(label)
		if err != nil {
			s.mu.Unlock()
			writeError(w, err)
			return
		}
	case len(req.Designators) > 0:
		if err := errors.ValidateDesignators(req.Designators); err != nil {
			s.mu.Unlock()
			writeError(w, err)
			return
		}
		primary, placed = s.viewer.Select(req.Designators)
		label = req.Designators[0]
	default:
		s.mu.Unlock()
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "value or designators required"))
		return
	}
	resp := selectResponse{
		Placed:     placed,
		Markers:    s.viewer.Markers(),
		Unresolved: s.viewer.Engine().Unresolved(),
	}
	s.mu.Unlock()

	if placed {
		resp.Primary = &primary
	}
	observability.Server().OnSelect(r.Context(), label, len(resp.Markers))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.viewer.Clear()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkerSize(w http.ResponseWriter, r *http.Request) {
	var req markerSizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var size float64
	switch {
	case req.Slider != nil:
		v := *req.Slider
		if v < 0 || v > 100 || math.IsNaN(v) {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "slider %v outside 0..100", v))
			return
		}
		size = highlight.SizeFromSlider(v)
	case req.Size != nil:
		size = *req.Size
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "size or slider required"))
		return
	}

	s.mu.Lock()
	err := s.viewer.SetMarkerSize(size)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"size": size})
}

// handleMarkers advances the animation to the current clock reading and
// returns the resulting frame.
func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.viewer.Tick(s.clock.Elapsed())
	e := s.viewer.Engine()
	frame := markerFrame{
		Face:       s.viewer.Face().String(),
		State:      e.State().String(),
		Multiplier: e.Multiplier(),
		BaseSize:   e.BaseSize(),
		Markers:    e.Geometry(),
	}
	if item, ok := s.viewer.ItemBounds(); ok {
		frame.Item = &item
	}
	s.mu.Unlock()

	if frame.Markers == nil {
		frame.Markers = []highlight.Geometry{}
	}
	writeEncoded(w, r, frame)
}

// handleLocate converts a scene position on the displayed image to board
// millimeters.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}

	s.mu.Lock()
	bx, by, ok := s.viewer.SceneToBoard(geometry.Pt(x, y))
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnavailable, "no image on display"))
		return
	}
	writeJSON(w, http.StatusOK, locateResponse{X: bx, Y: by})
}
