// Package render turns a board's layer files into face images.
//
// # Bounds
//
// [AggregateBounds] combines the extents of the outline, copper and
// silkscreen layers into the board bounding box. Unreadable layers are
// skipped and recorded in the [Report]; if nothing has geometry the board
// falls back to [board.DefaultBounds].
//
// # Face images
//
// [RenderBoard] draws one face as an SVG document:
//
//	<svg width="Wmm" height="Hmm" viewBox="xmin ymin W H" ...>
//	  <g transform="...">outline, copper, mask, pads, silk</g>
//	</svg>
//
// The top face uses scale(1,-1) so board y grows upward on screen. The bottom
// face uses scale(-1,-1) about the board center, mirroring it left to right
// as seen from below.
//
// [ParseViewBox] reads the viewBox back from any SVG document. Together with
// [Image.ItemBounds] it gives the mapper package everything it needs to
// place board coordinates on the displayed image.
package render
