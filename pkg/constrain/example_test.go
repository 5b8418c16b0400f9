package constrain_test

import (
	"fmt"

	"github.com/lightrig/rigsnap/pkg/constrain"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

func ExampleConstrain() {
	room := fixture.Room{Width: 8, Depth: 6, Height: 3}
	res := constrain.Constrain(fixture.TypeSpotlight, geom.V(10, 1.5, 0), geom.Euler{}, geom.One, room)
	fmt.Printf("x=%.2f corrected=%v (%s)\n", res.Position.X, res.WasCorrected, res.Reason)
	// Output: x=3.95 corrected=true (clamped to room)
}
