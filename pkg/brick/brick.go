package brick

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrInvalidExtent is returned by [New] when a brick has a non-positive
// width, depth or height. Every brick occupies at least one cell per axis.
var ErrInvalidExtent = errors.New("brick extent must be at least 1")

// Ground is the lowest Z a brick can rest at. The ground itself is layer 0.
const Ground = 1

// Brick is an axis-aligned box on the integer grid. It occupies the half-open
// cells [X, X+Width) × [Y, Y+Depth) × [Z, Z+Height).
//
// Ref is an opaque label (usually the input line) used for diagnostics and
// lookups. It takes no part in geometry or ordering.
//
// Only Z changes after construction, and only while settling.
type Brick struct {
	Ref    string `json:"ref"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Z      int    `json:"z"`
	Width  int    `json:"width"`
	Depth  int    `json:"depth"`
	Height int    `json:"height"`
}

// New creates a brick with origin (x, y, z) and the given extents.
// Returns ErrInvalidExtent if any extent is below 1.
func New(ref string, x, y, z, width, depth, height int) (Brick, error) {
	if width < 1 || depth < 1 || height < 1 {
		return Brick{}, fmt.Errorf("%w: %q has extents %dx%dx%d", ErrInvalidExtent, ref, width, depth, height)
	}
	return Brick{Ref: ref, X: x, Y: y, Z: z, Width: width, Depth: depth, Height: height}, nil
}

// Top returns the first Z layer above the brick. A brick resting on b has
// its Z equal to b.Top().
func (b Brick) Top() int { return b.Z + b.Height }

// Right returns the first X column past the brick.
func (b Brick) Right() int { return b.X + b.Width }

// Back returns the first Y row past the brick.
func (b Brick) Back() int { return b.Y + b.Depth }

// Volume returns the number of cells the brick occupies.
func (b Brick) Volume() int { return b.Width * b.Depth * b.Height }

// At returns a copy of b moved vertically so that its bottom face is at z.
func (b Brick) At(z int) Brick {
	b.Z = z
	return b
}

// OverlapsXY reports whether the footprints of b and o share at least one
// cell in the X-Y plane.
func (b Brick) OverlapsXY(o Brick) bool {
	return spans(b.X, b.Width, o.X, o.Width) && spans(b.Y, b.Depth, o.Y, o.Depth)
}

// Overlaps reports whether b and o share at least one cell in 3-D.
func (b Brick) Overlaps(o Brick) bool {
	return b.OverlapsXY(o) && spans(b.Z, b.Height, o.Z, o.Height)
}

// Supports reports whether o rests directly on top of b.
func (b Brick) Supports(o Brick) bool {
	return b.OverlapsXY(o) && b.Top() == o.Z
}

// String returns the brick's reference followed by its geometry.
func (b Brick) String() string {
	return fmt.Sprintf("%s @(%d,%d,%d) %dx%dx%d", b.Ref, b.X, b.Y, b.Z, b.Width, b.Depth, b.Height)
}

// spans reports whether [a, a+w) and [c, c+v) intersect.
func spans(a, w, c, v int) bool {
	return a < c+v && c < a+w
}

// Compare orders bricks bottom-up for settling: by Z, then X, Y, Height,
// Width and Depth. It returns a negative number when a sorts before b, a
// positive number when after, and zero when all six fields match.
//
// The settler relies on this order. A brick is only placed after every brick
// that starts at or below it, so each placement is final.
func Compare(a, b Brick) int {
	return cmp.Or(
		cmp.Compare(a.Z, b.Z),
		cmp.Compare(a.X, b.X),
		cmp.Compare(a.Y, b.Y),
		cmp.Compare(a.Height, b.Height),
		cmp.Compare(a.Width, b.Width),
		cmp.Compare(a.Depth, b.Depth),
	)
}
