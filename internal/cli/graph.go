package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/scene"
	"github.com/lightrig/rigsnap/pkg/topology"
)

// graphCommand creates the "graph" command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph ASSEMBLY.json",
		Short: "Draw the connection graph of an exported assembly",
		Long: `Graph reads an assembly written by "rigsnap scene apply -o" and draws its
components and connections with Graphviz. Use "-" to read from stdin.`,
		Example: `  rigsnap graph gallery.json -o gallery.svg
  rigsnap graph gallery.json --format dot -o - | dot -Tpdf > gallery.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				snap assembly.Snapshot
				err  error
			)
			if args[0] == "-" {
				snap, err = scene.ReadJSON(os.Stdin)
			} else {
				snap, err = scene.ImportJSON(args[0])
			}
			if err != nil {
				return err
			}

			if output == "" {
				base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				if args[0] == "-" {
					base = "assembly"
				}
				if format == "" {
					format = "svg"
				}
				output = base + "." + format
			}
			if format == "" {
				format = formatFromPath(output)
			}

			dot := topology.ToDOT(snap.Components, snap.Connections, topology.Options{Detailed: detailed})
			if err := writeGraph(cmd.Context(), dot, output, format); err != nil {
				return err
			}
			if output != "-" {
				printSuccess("Drew %d components, %d connections", len(snap.Components), len(snap.Connections))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default ASSEMBLY.<format>; - for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "svg, png or dot (default from the output extension)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with template and position")
	return cmd
}

// formatFromPath infers the graph format from a file extension, defaulting
// to svg.
func formatFromPath(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png", "dot":
		return ext
	case "gv":
		return "dot"
	}
	return "svg"
}
