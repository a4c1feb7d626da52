// Package collision holds the reaction-channel records of a two-body
// interaction and the weighted selection among them.
//
// Main Types:
//   - ProcessType: closed enumeration of the reaction kinds
//   - Branch: one candidate channel with its cross section and outgoing species
//   - BranchList: append-only channel list with a running total
//
// Usage:
//
//	var list collision.BranchList
//	list.Add(collision.NewBranch(collision.Elastic, 20, a.Type, b.Type))
//	list.AddAll(resonances)
//	chosen, err := collision.Choose(&list, rng)
package collision
