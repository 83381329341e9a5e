// Package brick models axis-aligned boxes on an integer grid.
//
// # Overview
//
// A [Brick] occupies a contiguous range of cells on each of the three axes.
// Bricks fall along Z under gravity; the ground sits below layer [Ground].
// The package provides the geometric predicates the settler and the support
// graph are built from:
//
//   - [Brick.OverlapsXY]: footprints share a cell in the X-Y plane
//   - [Brick.Overlaps]: boxes share a cell in 3-D
//   - [Brick.Supports]: the other brick rests directly on this one
//
// All predicates work on half-open intervals, so [a, a+w) and [c, c+v)
// intersect iff a < c+v and c < a+w.
//
// # Ordering
//
// [Compare] is the bottom-up processing order used when settling. It sorts by
// Z first and breaks ties on X, Y, Height, Width and Depth so that the order is
// total and reproducible.
//
// # Input Format
//
// [Parse] and [ReadAll] read the "x1,y1,z1~x2,y2,z2" snapshot format, where
// each line names two opposite corner cells. [Format] and [WriteAll] produce
// the same format.
//
//	b, err := brick.Parse("1,0,1~1,2,1")
//	// b.X=1 b.Y=0 b.Z=1 b.Width=1 b.Depth=3 b.Height=1
package brick
