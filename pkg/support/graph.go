package support

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/brickfall/pkg/brick"
)

var (
	// ErrUnknownBrick is returned by [Graph.Lookup] when no brick has the
	// requested reference.
	ErrUnknownBrick = errors.New("unknown brick")

	// ErrAsymmetricEdge is returned by [Graph.Validate] when an edge appears in
	// one adjacency direction but not the other. This indicates corruption.
	ErrAsymmetricEdge = errors.New("supports and supported-by disagree")

	// ErrUnsupported is returned by [Graph.Validate] when a brick above the
	// ground has no supporter, meaning the bricks were not settled.
	ErrUnsupported = errors.New("brick floats without support")

	// ErrBadEdge is returned by [Graph.Validate] when an edge joins two bricks
	// that do not touch.
	ErrBadEdge = errors.New("edge joins bricks that do not touch")
)

// ID is a dense index into a [Graph]'s brick arena. IDs run from 0 to
// Len()-1 in the order the bricks were passed to [Build].
type ID int

// Graph records which settled bricks hold up which. Geometry is stored once
// in an arena indexed by [ID]; both adjacency directions are kept so that
// supporters and dependents can be read in O(1).
//
// A Graph is immutable after [Build] and safe for concurrent reads.
type Graph struct {
	bricks      []brick.Brick
	supports    [][]ID // id -> bricks resting on it
	supportedBy [][]ID // id -> bricks it rests on
	refs        map[string]ID
	edges       int
}

// Build derives the support graph of a settled configuration by testing every
// ordered pair of bricks with [brick.Brick.Supports]. The pass is O(n²) and
// exact. Adjacency lists are sorted by ID.
func Build(settled []brick.Brick) *Graph {
	n := len(settled)
	g := &Graph{
		bricks:      slices.Clone(settled),
		supports:    make([][]ID, n),
		supportedBy: make([][]ID, n),
		refs:        make(map[string]ID, n),
	}
	for i, b := range g.bricks {
		if _, dup := g.refs[b.Ref]; !dup {
			g.refs[b.Ref] = ID(i)
		}
	}
	for i, a := range g.bricks {
		for j, b := range g.bricks {
			if i == j || !a.Supports(b) {
				continue
			}
			g.supports[i] = append(g.supports[i], ID(j))
			g.supportedBy[j] = append(g.supportedBy[j], ID(i))
			g.edges++
		}
	}
	return g
}

// Len returns the number of bricks.
func (g *Graph) Len() int { return len(g.bricks) }

// EdgeCount returns the number of support relations.
func (g *Graph) EdgeCount() int { return g.edges }

// Brick returns the settled brick with the given id.
func (g *Graph) Brick(id ID) brick.Brick { return g.bricks[id] }

// Bricks returns a copy of the arena in ID order.
func (g *Graph) Bricks() []brick.Brick { return slices.Clone(g.bricks) }

// IDs returns all ids in ascending order.
func (g *Graph) IDs() []ID {
	ids := make([]ID, len(g.bricks))
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Supports returns the bricks resting directly on id.
// The returned slice must not be modified.
func (g *Graph) Supports(id ID) []ID { return g.supports[id] }

// SupportedBy returns the bricks id rests directly on.
// The returned slice must not be modified.
func (g *Graph) SupportedBy(id ID) []ID { return g.supportedBy[id] }

// Grounded reports whether id rests on the ground rather than on bricks.
func (g *Graph) Grounded(id ID) bool { return len(g.supportedBy[id]) == 0 }

// Lookup returns the id of the brick with the given reference.
func (g *Graph) Lookup(ref string) (ID, error) {
	id, ok := g.refs[ref]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBrick, ref)
	}
	return id, nil
}

// Layers groups ids by settled Z, lowest layer first. Within a layer ids are
// ascending.
func (g *Graph) Layers() [][]ID {
	byZ := make(map[int][]ID)
	for i, b := range g.bricks {
		byZ[b.Z] = append(byZ[b.Z], ID(i))
	}
	zs := make([]int, 0, len(byZ))
	for z := range byZ {
		zs = append(zs, z)
	}
	slices.Sort(zs)
	layers := make([][]ID, len(zs))
	for i, z := range zs {
		layers[i] = byZ[z]
	}
	return layers
}

// Validate checks structural integrity: every edge joins touching bricks and
// is mirrored in both directions, and every brick above the ground has a
// supporter.
func (g *Graph) Validate() error {
	for i := range g.bricks {
		id := ID(i)
		for _, up := range g.supports[id] {
			if !g.bricks[id].Supports(g.bricks[up]) {
				return fmt.Errorf("%w: %s -> %s", ErrBadEdge, g.bricks[id].Ref, g.bricks[up].Ref)
			}
			if !slices.Contains(g.supportedBy[up], id) {
				return fmt.Errorf("%w: %s -> %s", ErrAsymmetricEdge, g.bricks[id].Ref, g.bricks[up].Ref)
			}
		}
		for _, down := range g.supportedBy[id] {
			if !slices.Contains(g.supports[down], id) {
				return fmt.Errorf("%w: %s <- %s", ErrAsymmetricEdge, g.bricks[id].Ref, g.bricks[down].Ref)
			}
		}
		if g.Grounded(id) && g.bricks[id].Z != brick.Ground {
			return fmt.Errorf("%w: %s", ErrUnsupported, g.bricks[id])
		}
	}
	return nil
}
