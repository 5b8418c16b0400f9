// Package compat decides which snap point pairs may form a connection.
//
// The decision is a fixed rule table over (snap point kind, owner) patterns,
// mirroring the physical catalogue: electrical sockets only mate with plugs,
// track ends only mate with connectors or end caps, lamps hang from mounting
// points. Rules are evaluated in precedence order. A rule applies to a pair
// when its left-hand pattern matches either endpoint, and the first applicable
// rule decides the pair. Pairs no rule applies to are incompatible.
//
// Evaluating each rule against both orientations makes [IsCompatible]
// symmetric by construction, including the pendant rule, which is broader
// than the plain spotlight rule that follows it:
//
//  1. track@connector    ↔ track@track|profile
//  2. track@track|profile ↔ track@connector
//  3. mounting@*          ↔ mechanical@spotlight|pendant, mounting@connector
//  4. mechanical@pendant  ↔ mechanical@plain-spotlight, mounting@connector
//  5. mechanical@plain-spotlight ↔ mounting@*
//  6. power@*             ↔ power@*
//
// [Explain] reports which rule decided a pair; [Candidates] filters a
// catalogue down to the templates that can attach to a given snap point.
package compat
