// Package pkg provides the core libraries of Boardview, a viewer that locates
// components on a rendered printed circuit board.
//
// # Overview
//
// Boardview renders the Gerber layers of a board, reads the pick-and-place
// export of its assembly and highlights where every component of a given
// value sits, on either face. The pkg directory is organized into three
// areas:
//
//  1. Board data - [board], [gerber], [pickplace]
//  2. Viewing - [render], [mapper], [group], [highlight], [viewer]
//  3. Infrastructure - [pipeline], [cache], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Gerber folder            pick-and-place CSV
//	      ↓                          ↓
//	[board].Discover          [pickplace].ParseFile
//	      ↓                          ↓
//	[render].AggregateBounds  [group].Build
//	      ↓                          ↓
//	[render].RenderBoard  →  [mapper] → [highlight] markers
//	                 ↘        ↙
//	                 [viewer]
//
// [pipeline] runs the loading and rendering steps behind a two-tier cache:
// images of the loaded board in memory, and bounds and SVG documents keyed
// by a content hash of the layer files in a [cache] backend (file, Redis or
// MongoDB).
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	b, _ := runner.LoadBoard(ctx, "./gerbers")
//	comps, _ := runner.LoadComponents(ctx, "board.csv")
//
//	v := viewer.New(b.Bounds)
//	v.SetComponents(comps.Components)
//	img, _ := runner.RenderFace(ctx, b, board.Top)
//	_ = v.ShowImage(img)
//
//	v.SelectGroup("10k")
//	v.Tick(clock.Elapsed())
//	for _, m := range v.Markers() {
//	    fmt.Println(m.Designator, m.Center, m.Radius)
//	}
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/highlight/... # Specific package
//	go test -run Example        # Examples only
//
// [board]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/board
// [gerber]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/gerber
// [pickplace]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/pickplace
// [render]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/render
// [mapper]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/mapper
// [group]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/group
// [highlight]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/highlight
// [viewer]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/viewer
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/boardview/pkg/observability
package pkg
