package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lightrig/rigsnap/pkg/fixture"
)

// catalogCommand creates the catalogue inspection command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"catalogue"},
		Short:   "Inspect the template catalogue",
	}

	cmd.AddCommand(c.catalogListCommand())
	cmd.AddCommand(c.catalogShowCommand())
	cmd.AddCommand(c.catalogValidateCommand())

	return cmd
}

func (c *CLI) catalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogue templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, cat.Len())
			for _, tpl := range cat.Templates() {
				rows = append(rows, []string{tpl.Template, tpl.Name, tpl.Owner().String(), strconv.Itoa(len(tpl.Snaps))})
			}
			fmt.Println(renderTable([]string{"Slug", "Name", "Type", "Snaps"}, rows))
			if slugs := cat.List(); len(slugs) > 0 {
				printNextStep("Show a template", "rigsnap catalog show "+slugs[0])
			}
			return nil
		},
	}
}

func (c *CLI) catalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show SLUG",
		Short: "Show one template and its snap points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			tpl, err := cat.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(tpl.Name))
			printKeyValue("slug", tpl.Template)
			printKeyValue("type", tpl.Owner().String())
			printKeyValue("bounds", formatBox(tpl.BoundingBox()))
			printNewline()

			rows := make([][]string, len(tpl.Snaps))
			for i, sp := range tpl.Snaps {
				rows[i] = []string{
					sp.ID,
					sp.Kind.String(),
					formatVec(sp.LocalPosition),
					formatRotation(sp.LocalRotation),
					joinKinds(sp.CompatibleKinds),
				}
			}
			fmt.Println(renderTable([]string{"Snap", "Kind", "Position", "Rotation", "Hint"}, rows))
			return nil
		},
	}
}

func (c *CLI) catalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check compatible-kind hints against the compatibility rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			warnings := cat.Validate()
			if len(warnings) == 0 {
				printSuccess("%d templates, no warnings", cat.Len())
				return nil
			}
			for _, w := range warnings {
				printWarning("%s", w.String())
			}
			return fmt.Errorf("%d catalogue warnings", len(warnings))
		},
	}
}

func formatBox(b fixture.Box) string {
	s := b.Size()
	return fmt.Sprintf("%.3f × %.3f × %.3f m", s.X, s.Y, s.Z)
}
