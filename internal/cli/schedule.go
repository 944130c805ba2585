package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/pipeline"
)

// scheduleOpts holds the flags shared by validate and apply.
type scheduleOpts struct {
	projectID string // project in the configured store, when no file is given
	jsonOut   bool   // print the wire response instead of the summary
}

func (o *scheduleOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.projectID, "project", "p", "", "project ID in the configured store")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "print the JSON response")
}

func (c *CLI) validateCommand() *cobra.Command {
	var opts scheduleOpts
	cmd := &cobra.Command{
		Use:   "validate [project.json]",
		Short: "Compute a preview schedule without writing it",
		Long: `Validate computes early and late dates, float and critical paths and
reports dependency cycles. Nothing is written. The command fails when the
project has a dependency cycle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSchedule(cmd.Context(), args, opts, pipeline.ModePreview)
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) applyCommand() *cobra.Command {
	var opts scheduleOpts
	cmd := &cobra.Command{
		Use:   "apply [project.json]",
		Short: "Compute the schedule and write the adjusted dates back",
		Long: `Apply computes the schedule and writes every changed task in one batch,
either back to the project file or to the configured store. A project with a
dependency cycle is left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSchedule(cmd.Context(), args, opts, pipeline.ModeApply)
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) runSchedule(ctx context.Context, args []string, opts scheduleOpts, mode pipeline.Mode) error {
	logger := loggerFromContext(ctx)

	b, err := c.openBackend(ctx, args, opts.projectID)
	if err != nil {
		return err
	}
	defer b.Close()

	runner, err := c.newRunner(b)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	var spinner *Spinner
	if !opts.jsonOut {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Scheduling %s...", b.projectID))
		spinner.Start()
	}
	res, err := runner.Orchestrate(ctx, b.projectID, mode)
	switch {
	case spinner == nil:
	case err != nil:
		spinner.StopWithError("Scheduling " + b.projectID + " failed")
	default:
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Scheduled "+b.projectID, "tasks", len(res.Tasks), "mode", mode, "run", res.RunID)

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Response()); err != nil {
			return err
		}
	} else {
		printResult(res, args)
	}
	return res.CycleError()
}

func printResult(res *pipeline.Result, args []string) {
	printKeyValue("Project", res.ProjectID)
	printKeyValue("Run", res.RunID)
	printKeyValue("Mode", string(res.Mode))

	if res.Blocked {
		printError("Blocked by %d dependency cycle(s)", len(res.Cycles))
		for _, cycle := range res.Cycles {
			printDetail("%s", strings.Join(append(slices.Clone(cycle), cycle[0]), " "+iconArrow+" "))
		}
		printWarnings(res)
		return
	}

	if a := res.Analysis; a != nil {
		printKeyValue("Start", a.ProjectStart.String())
		printKeyValue("Finish", a.ProjectFinish.String())
		printKeyValue("Duration", fmt.Sprintf("%d days", a.Duration))
	}
	printStats(len(res.Tasks), countDependencies(res), res.CacheHit)
	printNewline()

	for i, path := range res.CriticalPaths {
		printSuccess("Critical path %d: %s", i+1, StyleHighlight.Render(strings.Join(path, " "+iconArrow+" ")))
	}
	printWarnings(res)

	switch {
	case res.Mode == pipeline.ModeApply:
		printSuccess("Adjusted %d tasks", res.TasksAdjusted)
	case len(res.Changed) > 0:
		printInfo("%d tasks would change: %s", len(res.Changed), strings.Join(res.Changed, ", "))
		printNextStep("Write these dates", applyHint(res, args))
	default:
		printInfo("Schedule is up to date")
	}
}

func printWarnings(res *pipeline.Result) {
	for _, w := range res.Warnings {
		printWarning("%s", w.String())
	}
}

func countDependencies(res *pipeline.Result) int {
	n := 0
	for _, t := range res.Tasks {
		n += len(t.Predecessors)
	}
	return n
}

func applyHint(res *pipeline.Result, args []string) string {
	if len(args) == 1 {
		return appName + " apply " + args[0]
	}
	return appName + " apply --project " + res.ProjectID
}
