// Package support builds the structural support graph of a settled brick
// configuration.
//
// # Overview
//
// Brick A supports brick B when their footprints overlap and A's top face is
// B's bottom face. The relation is anti-symmetric and layered by Z, so the
// graph is a DAG whose edges always point upward.
//
// [Build] assigns every settled brick a dense [ID] and records both edge
// directions:
//
//   - [Graph.Supports]: bricks resting on a brick
//   - [Graph.SupportedBy]: bricks a brick rests on
//
// The two are mirror images: B is in Supports(A) exactly when A is in
// SupportedBy(B). Bricks with no supporter rest on the ground.
//
// # Usage
//
//	settled, err := settle.Settle(bricks)
//	if err != nil {
//	    return err
//	}
//	g := support.Build(settled)
//	for _, id := range g.IDs() {
//	    fmt.Println(g.Brick(id).Ref, len(g.Supports(id)))
//	}
//
// # Concurrency
//
// A [Graph] is never modified after Build, so any number of goroutines may
// read it at once.
package support
