package render

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boardview/pkg/board"
	"github.com/matzehuels/boardview/pkg/errors"
)

// LayerSource reads layer files. gerber.Source is the production
// implementation; tests supply fakes.
type LayerSource interface {
	// Bounds returns the extent of the layer at path in millimeters. ok is
	// false when the layer is readable but has no geometry.
	Bounds(path string) (b board.Bounds, ok bool, err error)
	// RenderLayer returns SVG elements for the layer drawn in color.
	RenderLayer(path, color string) (string, error)
}

// LayerFailure records a layer that could not be read.
type LayerFailure struct {
	Layer board.Layer
	Path  string
	Err   error
}

// Report describes how the board bounds were assembled.
type Report struct {
	Used      []board.Layer  // layers whose extents were combined
	Empty     []board.Layer  // layers that parsed without geometry
	Failed    []LayerFailure // layers that failed to parse
	Defaulted bool           // no layer had geometry; DefaultBounds was used
}

// Partial reports whether any layer failed.
func (r Report) Partial() bool { return len(r.Failed) > 0 }

// AggregateBounds combines the extents of the outline, copper and
// silkscreen layers into one board bounding box. Failing or empty layers are
// skipped. When nothing yields geometry the result is board.DefaultBounds;
// the function never fails. A cancelled context stops the scan early and
// returns what was gathered so far.
func AggregateBounds(ctx context.Context, layers board.LayerSet, src LayerSource, logger *log.Logger) (board.Bounds, Report) {
	if logger == nil {
		logger = discardLogger
	}

	var (
		rep    Report
		bounds board.Bounds
	)
	for _, ref := range layers.BoundsLayers() {
		if ctx.Err() != nil {
			break
		}

		b, ok, err := src.Bounds(ref.Path)
		switch {
		case err != nil:
			err = errors.Wrap(errors.ErrCodePartialGeometry, err, "layer %s", ref.Layer)
			rep.Failed = append(rep.Failed, LayerFailure{Layer: ref.Layer, Path: ref.Path, Err: err})
			logger.Warn("skipping unreadable layer", "layer", ref.Layer, "path", ref.Path, "err", err)
			continue
		case !ok || !b.Valid():
			rep.Empty = append(rep.Empty, ref.Layer)
			logger.Debug("layer has no geometry", "layer", ref.Layer, "path", ref.Path)
			continue
		}

		if len(rep.Used) == 0 {
			bounds = b
		} else {
			bounds = bounds.Union(b)
		}
		rep.Used = append(rep.Used, ref.Layer)
	}

	if len(rep.Used) == 0 {
		rep.Defaulted = true
		bounds = board.DefaultBounds()
		logger.Debug("no layer geometry, using default bounds", "bounds", bounds)
	}
	return bounds, rep
}
