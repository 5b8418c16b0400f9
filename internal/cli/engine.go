package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/catalog"
	"github.com/lightrig/rigsnap/pkg/compat"
	"github.com/lightrig/rigsnap/pkg/constrain"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
	"github.com/lightrig/rigsnap/pkg/registry"
)

// sourceID is the id given to the source component of one-shot commands.
const sourceID = "source"

// compatCommand creates the "compat" command.
func (c *CLI) compatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compat SOURCE/SNAP TARGET/SNAP",
		Short: "Check whether two catalogue snap points can connect",
		Example: `  rigsnap compat connector-ceiling/track track-2m/end-a
  rigsnap compat power-feed/out track-2m/end-a`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			src, ssp, err := lookupEndpoint(cat, args[0])
			if err != nil {
				return err
			}
			dst, tsp, err := lookupEndpoint(cat, args[1])
			if err != nil {
				return err
			}

			v := compat.Explain(ssp, src.Owner(), tsp, dst.Owner())
			if v.Compatible {
				printSuccess("%s can connect to %s", args[0], args[1])
			} else {
				printError("%s cannot connect to %s", args[0], args[1])
			}
			if v.Rule > 0 {
				printDetail("rule %d: %s", v.Rule, v.Reason)
			} else {
				printDetail("%s", v.Reason)
			}
			return nil
		},
	}
}

// solveCommand creates the "solve" command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		at, rot vecValue
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "solve SOURCE/SNAP TARGET/SNAP",
		Short: "Solve where a template lands when snapped onto a placed source",
		Long: `Solve places the SOURCE template at --at/--rot (no room clamping), then
snaps a new TARGET template onto it and prints the solved placement.`,
		Example: `  rigsnap solve connector-ceiling/track track-2m/end-a --at 0,2.9,0
  rigsnap solve track-2m/mount-1 spot-classic/adapter --at 0,2.5,0 --rot 90,0,0 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tslug, tsnap, err := parseEndpoint(args[1])
			if err != nil {
				return err
			}
			a, ssnap, done, err := c.sourceAssembler(cmd.Context(), args[0], at, rot)
			if err != nil {
				return err
			}
			defer done()

			out, err := a.Attach(cmd.Context(), assembly.AttachRequest{
				SourceID:   sourceID,
				SourceSnap: ssnap,
				Template:   tslug,
				TargetSnap: tsnap,
			})
			if asJSON {
				if jerr := writeJSON(out); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return err
			}
			printOutcome(out)
			return nil
		},
	}

	cmd.Flags().Var(&at, "at", "source position in metres")
	cmd.Flags().Var(&rot, "rot", "source rotation in degrees (intrinsic XYZ)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	return cmd
}

// constrainCommand creates the "constrain" command.
func (c *CLI) constrainCommand() *cobra.Command {
	var (
		at, rot, scale vecValue
		room           roomValue
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "constrain TEMPLATE|TYPE",
		Short: "Keep a freely placed component inside the room",
		Long: `Constrain clamps a template (or a bare component type) into the room and
applies the track orientation rules near the ceiling and walls.`,
		Example: `  rigsnap constrain track-2m --at 3.5,2.9,0
  rigsnap constrain spotlight --at 10,1.5,0 --room 8x6x3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			r := room.or(c.cfg.Room)

			if _, err := cat.Get(args[0]); err != nil {
				tag, terr := fixture.ParseTypeTag(args[0])
				if terr != nil {
					return fmt.Errorf("%q is neither a template nor a component type", args[0])
				}
				sc := scale.v
				if !scale.set {
					sc = geom.One
				}
				res := constrain.Constrain(tag, at.v, rot.degrees(), sc, r)
				if asJSON {
					return writeJSON(res)
				}
				printCorrection(res)
				return nil
			}

			a, done := c.newAssembler(cmd.Context(), r, cat, nil)
			defer done()
			out, err := a.Place(cmd.Context(), assembly.PlaceRequest{
				Template: args[0],
				Position: at.v,
				Rotation: rot.degrees(),
				Scale:    scale.v,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out)
			}
			printOutcome(out)
			if out.Correction != nil && !out.Correction.WasCorrected {
				printDetail("%s", out.Correction.Reason)
			}
			return nil
		},
	}

	cmd.Flags().Var(&at, "at", "position in metres")
	cmd.Flags().Var(&rot, "rot", "rotation in degrees (intrinsic XYZ)")
	cmd.Flags().Var(&scale, "scale", "scale factors (default 1,1,1)")
	cmd.Flags().Var(&room, "room", "room extents (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

// lookupEndpoint resolves "template/snap" against cat.
func lookupEndpoint(cat *catalog.Catalog, s string) (*fixture.Component, fixture.SnapPoint, error) {
	slug, snap, err := parseEndpoint(s)
	if err != nil {
		return nil, fixture.SnapPoint{}, err
	}
	tpl, err := cat.Get(slug)
	if err != nil {
		return nil, fixture.SnapPoint{}, err
	}
	sp, ok := tpl.Snap(snap)
	if !ok {
		return nil, fixture.SnapPoint{}, fmt.Errorf("template %q has no snap point %q", slug, snap)
	}
	return tpl, sp, nil
}

// sourceAssembler registers the template named by endpoint at the given
// transform, unclamped, under sourceID and returns an assembler over it.
func (c *CLI) sourceAssembler(ctx context.Context, endpoint string, at, rot vecValue) (*assembly.Assembler, string, func(), error) {
	cat, err := c.catalog()
	if err != nil {
		return nil, "", nil, err
	}
	src, sp, err := lookupEndpoint(cat, endpoint)
	if err != nil {
		return nil, "", nil, err
	}
	src.ID = sourceID
	src.Position = at.v
	src.Rotation = rot.degrees()

	reg := registry.New()
	if _, err := reg.Add(src); err != nil {
		return nil, "", nil, err
	}
	a, done := c.newAssembler(ctx, c.cfg.Room, cat, reg)
	return a, sp.ID, done, nil
}

func printCorrection(res constrain.Result) {
	if res.WasCorrected {
		printWarning("corrected: %s", res.Reason)
	} else {
		printSuccess("%s", res.Reason)
	}
	printKeyValue("position", formatVec(res.Position))
	printKeyValue("rotation", formatRotation(res.Rotation))
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
