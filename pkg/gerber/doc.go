// Package gerber reads the subset of RS-274X needed to outline and draw a
// board layer: coordinate format and units, standard apertures, linear and
// circular interpolation, flashes and regions.
//
// The parser is deliberately forgiving. Unknown extended commands (attributes,
// aperture macros, step-and-repeat) are skipped, aperture macros flash as a
// point, and clear polarity is drawn like dark polarity. That is enough to
// compute a bounding box and a recognizable vector rendering; it is not a
// CAM-grade rasterizer.
//
// All output geometry is in millimeters with y increasing upward.
//
// # Usage
//
//	f, err := gerber.ParseFile("board.GTL")
//	if err != nil {
//	    return err
//	}
//	b, ok := f.Bounds()
//	svg := f.SVG("#b87333")
//
// [Source] adapts the parser to the layer-source contract used by the
// render package and memoizes parsed files by path.
package gerber
