// Package settle lowers bricks under uniform gravity until each one rests on
// the ground or on another brick.
//
// # Algorithm
//
// [Settle] processes bricks once, bottom-up in [brick.Compare] order of their
// starting positions. Each brick drops to the highest top face among the
// already-settled bricks under its footprint, or to [brick.Ground] if nothing
// is under it. Because falling never lets a brick overtake one that started
// below it, every brick beneath the current one is already final when the
// current one is placed. One forward pass therefore reaches the fixed point
// that repeated gravity steps would reach.
//
// The pass is O(n²) in the number of bricks.
//
// # Input Integrity
//
// The starting snapshot must be overlap-free. [Settle] checks this before
// moving anything and returns [ErrOverlap] naming both bricks if it is not.
//
// Snapshots may start below [brick.Ground] (z=0). Such a snapshot is lifted
// as a whole until its lowest brick starts at the ground, so bricks keep
// their relative heights and no brick can be pushed into one above it.
package settle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/brickfall/pkg/brick"
)

// ErrOverlap is returned when two bricks occupy the same cell in the starting
// snapshot. Such input cannot be settled meaningfully.
var ErrOverlap = errors.New("bricks overlap before settling")

// OverlapError names the two bricks that share a cell.
type OverlapError struct {
	A, B brick.Brick
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%v: %s and %s", ErrOverlap, e.A, e.B)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// Options configures a [Settle] run.
type Options struct {
	// OnSettle is called for every brick after its resting position is known.
	// before is the brick as given, after is the settled copy.
	OnSettle func(before, after brick.Brick)
}

// Settle returns a new slice with every brick at its resting height, in
// processing order. The input slice is not modified.
//
// The result satisfies: no two bricks overlap, every Z is at least
// brick.Ground, and every brick above the ground rests on at least one other.
func Settle(bricks []brick.Brick) ([]brick.Brick, error) {
	return SettleWithOptions(bricks, Options{})
}

// SettleWithOptions is [Settle] with hooks.
func SettleWithOptions(bricks []brick.Brick, opts Options) ([]brick.Brick, error) {
	order := slices.Clone(bricks)
	slices.SortStableFunc(order, brick.Compare)

	if err := CheckOverlaps(order); err != nil {
		return nil, err
	}

	lift := 0
	if len(order) > 0 && order[0].Z < brick.Ground {
		lift = brick.Ground - order[0].Z
	}

	fallen := make([]brick.Brick, 0, len(order))
	for _, b := range order {
		settled := b.At(restingZ(b.Z+lift, b, fallen))
		if opts.OnSettle != nil {
			opts.OnSettle(b, settled)
		}
		fallen = append(fallen, settled)
	}
	return fallen, nil
}

// restingZ finds where b, starting at height start, comes to rest on top of
// the settled bricks. Only bricks whose settled top is at or below start can
// catch it.
func restingZ(start int, b brick.Brick, fallen []brick.Brick) int {
	z := brick.Ground
	for _, f := range fallen {
		if !f.OverlapsXY(b) {
			continue
		}
		if top := f.Top(); top <= start && top > z {
			z = top
		}
	}
	return z
}

// CheckOverlaps returns an *OverlapError for the first pair of bricks that
// share a cell. The bricks must be sorted with [brick.Compare]; the sweep
// stops comparing once a later brick starts above the current one's top.
func CheckOverlaps(sorted []brick.Brick) error {
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if b.Z >= a.Top() {
				break
			}
			if a.Overlaps(b) {
				return &OverlapError{A: a, B: b}
			}
		}
	}
	return nil
}

// IsSettled reports whether no brick in bricks can fall any further.
func IsSettled(bricks []brick.Brick) bool {
	for _, b := range bricks {
		if b.Z == brick.Ground {
			continue
		}
		if b.Z < brick.Ground {
			return false
		}
		supported := false
		for _, o := range bricks {
			if o.Supports(b) {
				supported = true
				break
			}
		}
		if !supported {
			return false
		}
	}
	return true
}
