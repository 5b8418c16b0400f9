// Package assembly turns user actions into committed component state.
//
// An [Assembler] owns a [registry.Registry], a template [catalog.Catalog] and
// a room. Each action runs the engine stages in order and either commits or
// leaves every component untouched:
//
//   - [Assembler.Attach]: compatibility check, solve, commit, connect. Solved
//     placements are committed exactly as the solver returned them and are
//     never clamped to the room.
//   - [Assembler.Place]: constrain, commit. Free placements always pass
//     through the boundary engine.
//   - [Assembler.Move]: constrain, update, for unconnected components only.
//
// Every action returns an [Outcome]. Failures also return an error carrying
// an [errors.Code]; recoverable ones (see [errors.IsRecoverable]) are
// expected interaction results such as an incompatible pair.
//
// Solver results are memoized through a [cache.Cache]; the key covers every
// input the solver reads, so a hit is always exact.
package assembly
