// Package board defines the board-level data model: faces, placed components,
// millimeter bounding boxes and the set of layer files that make up a board.
//
// All positions in this package are in board millimeters with the origin at
// the board datum and y increasing upward, as written by CAD pick-and-place
// exports and Gerber files.
//
// # Layer discovery
//
// [Discover] scans a folder for the conventional Protel/Altium Gerber
// extensions and returns a [LayerSet]:
//
//	layers, err := board.Discover("./gerbers")
//	if err != nil {
//	    return err
//	}
//	for _, p := range layers.BoundsLayers() {
//	    fmt.Println(p)
//	}
package board
