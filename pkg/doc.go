// Package pkg provides the core libraries of rigsnap, a snap engine for
// modular lighting systems.
//
// # Overview
//
// Rigsnap answers three questions when a user builds a lighting rig out of
// tracks, connectors, spotlights and pendants:
//
//  1. May these two snap points connect? ([compat])
//  2. Where does the new component go so the snap points coincide? ([solver])
//  3. Where may a freely placed component sit inside the room? ([constrain])
//
// # Architecture
//
// The typical flow of one "attach" action:
//
//	catalogue template          placed source component
//	         ↓                            ↓
//	    [compat] rule table decides compatibility
//	         ↓
//	    [solver] orientation policy + snap alignment
//	         ↓
//	    [assembly] commit (solved placements skip clamping)
//	         ↓
//	    [registry] connection recorded on both endpoints
//
// Free placements take the other branch: [assembly] runs [constrain] before
// committing.
//
// # Main Packages
//
// ## Engine
//
// [geom] - Vectors, intrinsic XYZ Euler rotations and the component-then-local
// transform composition, on top of gonum.
//
// [fixture] - Snap point kinds, component type tags, components, connections,
// rooms and per-type bounding boxes.
//
// [compat] - The ordered compatibility rule table, verdicts and candidate
// search.
//
// [solver] - Orientation policies and snap alignment with a residual check.
//
// [constrain] - Room clamping and the track ceiling, wall and corner rules.
//
// ## Orchestration
//
// [catalog] - TOML template catalogue with an embedded default.
//
// [registry] - Thread-safe arena of placed components and their connections.
//
// [assembly] - Place, attach, move, detach and remove, with cached solves and
// observability hooks.
//
// [scene] - TOML scene plans replayed against an assembler, plus JSON export
// and import of assemblies.
//
// ## Infrastructure
//
// [cache] - Solve cache backends (null, file, Redis) and cache keys.
//
// [observability] - Hook interfaces for assembly and cache events.
//
// [topology] - Graphviz rendering of an assembly's connection graph.
//
// [errors] - Coded errors and input validation.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/solver/...          # Specific package
//	go test -run Example ./pkg/...    # Examples only
package pkg
