// Package analysis answers structural questions about a support graph.
//
// # Safety
//
// [IsSafeToRemove] decides whether a brick can be removed without any other
// brick moving: every brick it holds up must have a second supporter. The
// check is a pure predicate over the static graph; nothing is removed.
//
// # Chain Reactions
//
// [ChainReaction] counts the bricks that would fall, directly or through a
// cascade, if one brick were disintegrated. A brick falls only once all of
// its supporters have fallen. The cascade is computed iteratively per start
// brick, so deep towers cannot exhaust the stack.
//
// A safe brick never starts a chain reaction:
//
//	IsSafeToRemove(g, id) implies ChainReaction(g, id) == 0
//
// # Reports
//
// [Analyze] runs both analyses for every brick and collects the results in a
// [Report] suitable for JSON output.
package analysis
