package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/catalog"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/scene"
	"github.com/lightrig/rigsnap/pkg/topology"
)

// sceneCommand creates the scene plan command.
func (c *CLI) sceneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Replay and check TOML scene plans",
	}

	cmd.AddCommand(c.sceneApplyCommand())
	cmd.AddCommand(c.sceneCheckCommand())

	return cmd
}

func (c *CLI) sceneApplyCommand() *cobra.Command {
	var (
		output   string
		graph    string
		failFast bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "apply PLAN",
		Short: "Replay a scene plan and export the assembly",
		Example: `  rigsnap scene apply gallery.toml -o gallery.json
  rigsnap scene apply gallery.toml --graph gallery.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			plan, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			cat, err := c.planCatalog(plan)
			if err != nil {
				return err
			}
			a, done := c.newAssembler(ctx, plan.Room, cat, nil)
			defer done()

			report, err := scene.Apply(ctx, a, plan, scene.Options{FailFast: failFast})
			if err != nil {
				return err
			}
			prog.done("Applied " + filepath.Base(args[0]))

			if asJSON {
				return writeJSON(report)
			}
			printReport(report)

			snap := a.Snapshot()
			if output != "" {
				if err := scene.ExportJSON(snap, output); err != nil {
					return err
				}
				printFile(output)
			}
			if graph != "" {
				dot := topology.ToDOT(snap.Components, snap.Connections, topology.Options{})
				if err := writeGraph(ctx, dot, graph, formatFromPath(graph)); err != nil {
					return err
				}
				printFile(graph)
			}
			if output != "" && graph == "" {
				printNextStep("Draw it", "rigsnap graph "+output)
			}
			if !report.OK() {
				return fmt.Errorf("%d of %d steps rejected", report.Rejected, len(report.Steps))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resulting assembly as JSON")
	cmd.Flags().StringVar(&graph, "graph", "", "write the connection graph (.svg, .png or .dot)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first rejected step")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the step report as JSON")
	return cmd
}

// checkResult is the outcome of checking one plan.
type checkResult struct {
	path   string
	report *scene.Report
	err    error
}

func (c *CLI) sceneCheckCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "check PLAN...",
		Short: "Replay scene plans in parallel and report rejected steps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, keyer := c.openCache(ctx)
			defer store.Close()

			results := make([]checkResult, len(args))
			var (
				mu       sync.Mutex
				finished int
			)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Checking %d plans...", len(args)))
			spinner.Start()

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(jobs, 1))
			for i, path := range args {
				g.Go(func() error {
					report, err := c.checkPlan(gctx, path, store, keyer)
					results[i] = checkResult{path: path, report: report, err: err}

					mu.Lock()
					finished++
					spinner.SetMessage(fmt.Sprintf("Checked %d/%d plans...", finished, len(args)))
					mu.Unlock()

					// Only cancellation aborts the group; plan errors are reported.
					if gctx.Err() != nil {
						return gctx.Err()
					}
					return nil
				})
			}
			err := g.Wait()
			spinner.Stop()
			if err != nil {
				return err
			}

			rows := make([][]string, len(results))
			failed := 0
			for i, r := range results {
				rows[i] = checkRow(r)
				if r.err != nil || !r.report.OK() {
					failed++
				}
			}
			fmt.Println(renderTable([]string{"Plan", "Placed", "Attached", "Corrected", "Rejected", "Status"}, rows))
			if failed > 0 {
				return fmt.Errorf("%d of %d plans failed", failed, len(results))
			}
			printSuccess("All %d plans apply cleanly", len(results))
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "plans to check concurrently")
	return cmd
}

func (c *CLI) checkPlan(ctx context.Context, path string, store cache.Cache, keyer cache.Keyer) (*scene.Report, error) {
	plan, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	cat, err := c.planCatalog(plan)
	if err != nil {
		return nil, err
	}
	a := assembly.New(assembly.Options{
		Room:     plan.Room,
		Catalog:  cat,
		Cache:    store,
		Keyer:    keyer,
		CacheTTL: c.cfg.Cache.TTL,
		Logger:   c.Logger,
	})
	return scene.Apply(ctx, a, plan, scene.Options{})
}

// planCatalog returns the catalogue a plan names, or the CLI catalogue.
func (c *CLI) planCatalog(plan *scene.Plan) (*catalog.Catalog, error) {
	if path := plan.CatalogPath(); path != "" {
		return catalog.Load(path)
	}
	return c.catalog()
}

func checkRow(r checkResult) []string {
	name := filepath.Base(r.path)
	if r.err != nil {
		return []string{name, "", "", "", "", StyleError.Render(iconError + " " + errors.UserMessage(r.err))}
	}
	status := StyleSuccess.Render(iconSuccess + " ok")
	if !r.report.OK() {
		status = StyleWarning.Render(iconWarning + " rejected steps")
	}
	rep := r.report
	return []string{
		name,
		strconv.Itoa(rep.Placed),
		strconv.Itoa(rep.Attached),
		strconv.Itoa(rep.Corrected),
		strconv.Itoa(rep.Rejected),
		status,
	}
}

func printReport(r *scene.Report) {
	for _, s := range r.Steps {
		label := fmt.Sprintf("%s #%d", s.Op, s.Index+1)
		o := s.Outcome
		switch {
		case o.Status == assembly.StatusRejected:
			printError("%s %s: %s", StyleDim.Render(label), o.Code, o.Message)
		case o.Correction != nil && o.Correction.WasCorrected:
			printWarning("%s %s %s (%s)", label, o.Status, o.Component.ID, o.Correction.Reason)
		default:
			printSuccess("%s %s %s", StyleDim.Render(label), o.Status, StyleHighlight.Render(o.Component.ID))
		}
	}
	printDetail("%d placed · %d attached · %d corrected · %d rejected", r.Placed, r.Attached, r.Corrected, r.Rejected)
}

// writeGraph renders dot to path in the given format.
func writeGraph(ctx context.Context, dot, path, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = topology.RenderSVG(ctx, dot)
	case "png":
		data, err = topology.RenderPNG(ctx, dot)
	default:
		return fmt.Errorf("unknown graph format %q (want svg, png or dot)", format)
	}
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
