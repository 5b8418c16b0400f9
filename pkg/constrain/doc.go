// Package constrain keeps freely placed components inside the room and
// applies type-specific orientation conventions.
//
// [Constrain] clamps a component's origin so that its scaled bounding box
// (see fixture.BoundsFor) stays within the room. Tracks additionally get a
// zone-based override: a track is never left at an arbitrary orientation, and
// tracks close to the ceiling or a wall are pulled into a standard mounting
// position. Zones are checked in this order, first match wins:
//
//	ceiling  box top within 0.5 m of the ceiling: y = min(height−1, 2), horizontal
//	side     within 0.3 m of the left/right wall: box edge 0.15 m from the wall
//	end      within 0.3 m of the back/front wall: box edge 0.15 m from the wall
//	open     anywhere else: horizontal
//
// A track in a corner matches the side wall first, so only its X is inset.
//
// The override is followed by another clamp, and passes repeat until
// position and rotation stop changing. The result is therefore a fixed point:
// constraining an already constrained placement changes nothing.
//
// Placements produced by the connection solver must not be passed through
// this package; clamping would break their exact alignment.
package constrain
