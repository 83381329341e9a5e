package analysis

import "github.com/matzehuels/brickfall/pkg/support"

// ChainReaction returns how many other bricks fall when start is
// disintegrated.
func ChainReaction(g *support.Graph, start support.ID) int {
	return len(ChainReactionSet(g, start))
}

// ChainReactionSet returns the bricks that fall when start is disintegrated,
// in the order they fall. start itself is not included.
//
// A brick falls once every one of its supporters has fallen. The cascade is
// walked breadth-first with a worklist: each falling brick decrements the
// remaining-supporter count of the bricks it holds up, and a brick joins the
// queue when its count reaches zero. A brick is therefore never dropped while
// one of its supporters still stands, whatever order the layers are visited
// in, and the walk needs no recursion.
func ChainReactionSet(g *support.Graph, start support.ID) []support.ID {
	remaining := make(map[support.ID]int)
	queue := []support.ID{start}
	var fallen []support.ID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, up := range g.Supports(cur) {
			left, seen := remaining[up]
			if !seen {
				left = len(g.SupportedBy(up))
			}
			left--
			remaining[up] = left
			if left == 0 {
				fallen = append(fallen, up)
				queue = append(queue, up)
			}
		}
	}
	return fallen
}

// TotalChainReaction sums [ChainReaction] over every brick.
func TotalChainReaction(g *support.Graph) int {
	total := 0
	for _, id := range g.IDs() {
		total += ChainReaction(g, id)
	}
	return total
}
