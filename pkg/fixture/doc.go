// Package fixture defines the data model of a modular lighting fixture.
//
// A fixture is assembled from [Component] values (tracks, connectors,
// spotlights, pendants, power supplies, end caps) joined at typed
// [SnapPoint] locations. A committed joint is a [Connection]. Components live
// inside a [Room], an axis-aligned box centred at the origin in X/Z with the
// floor at y=0.
//
// Component type and snap point kind are closed enums ([TypeTag], [Kind]) so
// that rule tables over them can be checked exhaustively. Behavioural
// variations that used to be inferred from display names are explicit
// attributes ([Attrs]) set when a catalogue template is defined.
//
// Components are plain values. The engine packages (compat, solver,
// constrain) read snapshots and return new values; only the registry mutates
// state.
package fixture
