package analysis

import "github.com/matzehuels/brickfall/pkg/support"

// IsSafeToRemove reports whether removing id leaves every other brick where
// it is. That holds when each brick resting on id has at least one other
// supporter. A brick supporting nothing is always safe.
func IsSafeToRemove(g *support.Graph, id support.ID) bool {
	for _, up := range g.Supports(id) {
		if len(g.SupportedBy(up)) < 2 {
			return false
		}
	}
	return true
}

// SafeToRemove lists every brick that [IsSafeToRemove] accepts, in ID order.
func SafeToRemove(g *support.Graph) []support.ID {
	var safe []support.ID
	for _, id := range g.IDs() {
		if IsSafeToRemove(g, id) {
			safe = append(safe, id)
		}
	}
	return safe
}

// CountSafeToRemove returns len(SafeToRemove(g)) without allocating.
func CountSafeToRemove(g *support.Graph) int {
	n := 0
	for _, id := range g.IDs() {
		if IsSafeToRemove(g, id) {
			n++
		}
	}
	return n
}
