package gerber

import (
	"sync"

	"github.com/matzehuels/boardview/pkg/board"
)

// Source parses layer files on demand and keeps the results for reuse.
// It is safe for concurrent use.
type Source struct {
	mu    sync.Mutex
	files map[string]*File
}

// NewSource returns an empty Source.
func NewSource() *Source {
	return &Source{files: make(map[string]*File)}
}

// File returns the parsed layer at path, parsing it on first use.
func (s *Source) File(path string) (*File, error) {
	s.mu.Lock()
	f, ok := s.files[path]
	s.mu.Unlock()
	if ok {
		return f, nil
	}

	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.files[path] = f
	s.mu.Unlock()
	return f, nil
}

// Bounds returns the extent of the layer at path. ok is false when the layer
// parsed but produced no geometry.
func (s *Source) Bounds(path string) (b board.Bounds, ok bool, err error) {
	f, err := s.File(path)
	if err != nil {
		return board.Bounds{}, false, err
	}
	b, ok = f.Bounds()
	return b, ok, nil
}

// RenderLayer returns the layer's SVG fragment drawn in color.
func (s *Source) RenderLayer(path, color string) (string, error) {
	f, err := s.File(path)
	if err != nil {
		return "", err
	}
	return f.SVG(color), nil
}

// Forget drops every memoized file.
func (s *Source) Forget() {
	s.mu.Lock()
	clear(s.files)
	s.mu.Unlock()
}
