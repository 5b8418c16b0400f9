package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lightrig/rigsnap/pkg/assembly"
)

// candidatesCommand creates the "candidates" command.
func (c *CLI) candidatesCommand() *cobra.Command {
	var (
		at, rot     vecValue
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "candidates SOURCE/SNAP",
		Short: "List catalogue snap points that can attach to a snap point",
		Long: `Candidates places the SOURCE template at --at/--rot and lists every
catalogue snap point the compatibility rules allow on SNAP.

With --interactive, pick a candidate to attach it and print the solved
placement.`,
		Example: `  rigsnap candidates track-2m/mount-1
  rigsnap candidates connector-ceiling/track --at 0,2.9,0 -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, snap, done, err := c.sourceAssembler(ctx, args[0], at, rot)
			if err != nil {
				return err
			}
			defer done()

			cands, err := a.Candidates(sourceID, snap)
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				printWarning("Nothing in the catalogue can attach to %s", args[0])
				return nil
			}

			if !interactive {
				rows := make([][]string, len(cands))
				for i, cand := range cands {
					rows[i] = candidateRow("", cand)[1:]
				}
				fmt.Println(renderTable([]string{"Template", "Snap", "Kind", "Type", "Rule"}, rows))
				printNextStep("Solve one", fmt.Sprintf("rigsnap solve %s %s/%s", args[0], cands[0].Template.Template, cands[0].Snap.ID))
				return nil
			}

			final, err := tea.NewProgram(NewCandidateListModel(args[0], cands), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}
			picked := final.(CandidateListModel).Selected
			if picked == nil {
				printInfo("No candidate selected")
				return nil
			}

			out, err := a.Attach(ctx, assembly.AttachRequest{
				SourceID:   sourceID,
				SourceSnap: snap,
				Template:   picked.Template.Template,
				TargetSnap: picked.Snap.ID,
			})
			if err != nil {
				return err
			}
			printOutcome(out)
			return nil
		},
	}

	cmd.Flags().Var(&at, "at", "source position in metres")
	cmd.Flags().Var(&rot, "rot", "source rotation in degrees (intrinsic XYZ)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a candidate and attach it")
	return cmd
}
