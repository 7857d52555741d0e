// cmd/shopctl/main.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/jobspec"
	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/fawad-mazhar/shopfloor/internal/report"
	"github.com/fawad-mazhar/shopfloor/internal/scheduler"
	"github.com/fawad-mazhar/shopfloor/internal/ui"
	"github.com/spf13/cobra"
)

var (
	flagFile     string
	flagText     string
	flagDemo     bool
	flagMachines int
	flagJSON     bool
	flagScale    float64
	flagWidth    int
)

var errNoSource = errors.New("one of --file, --text or --demo is required")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Build and inspect job-shop schedules",
		Long: `shopctl builds a schedule for a set of jobs with greedy list scheduling,
then reports makespan, machine utilization, critical tasks and precedence
violations. Jobs come from a YAML file, "machine,duration" text lines or the
built-in demo.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "YAML job file")
	rootCmd.PersistentFlags().StringVar(&flagText, "text", "", `Jobs as text, one per line, e.g. "0,3 1,4 2,2"`)
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use the built-in demo jobs")
	rootCmd.PersistentFlags().IntVar(&flagMachines, "machines", 0, "Machine count (0 derives it from the jobs)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().Float64Var(&flagScale, "scale", 1, "Gantt cells per time unit")
	rootCmd.PersistentFlags().IntVar(&flagWidth, "width", 0, "Max Gantt width in cells (0 = unlimited)")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(randomCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(moveCmd())

	return rootCmd
}

// loadJobs resolves the job source flags.
func loadJobs() ([]models.JobDefinition, int, error) {
	sources := 0
	for _, set := range []bool{flagFile != "", flagText != "", flagDemo} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return nil, 0, errNoSource
	}
	if sources > 1 {
		return nil, 0, fmt.Errorf("--file, --text and --demo are mutually exclusive")
	}

	switch {
	case flagFile != "":
		file, err := jobspec.LoadFile(flagFile)
		if err != nil {
			return nil, 0, err
		}
		return file.Jobs, pickMachines(file.MachineCount), nil
	case flagText != "":
		jobs, err := jobspec.ParseLines(flagText)
		if err != nil {
			return nil, 0, fmt.Errorf("parse jobs: %w", err)
		}
		return jobs, flagMachines, nil
	default:
		jobs, machines := jobspec.Demo()
		return jobs, pickMachines(machines), nil
	}
}

// pickMachines lets --machines override the count carried by the source.
func pickMachines(fromSource int) int {
	if flagMachines > 0 {
		return flagMachines
	}
	return fromSource
}

func build(jobs []models.JobDefinition, machines int) (models.Schedule, error) {
	if len(jobs) == 0 {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Yellow("warning:"), scheduler.ErrEmptyInput)
	}
	s, err := scheduler.Build(jobs, machines)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("build schedule: %w", err)
	}
	return s, nil
}

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build a schedule and show the Gantt chart and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, machines, err := loadJobs()
			if err != nil {
				return err
			}
			s, err := build(jobs, machines)
			if err != nil {
				return err
			}
			return show(cmd.OutOrStdout(), s)
		},
	}
}

func randomCmd() *cobra.Command {
	var (
		flagSeed int64
		flagJobs int
	)

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a random job set and schedule it",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := flagSeed
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			jobs := jobspec.Random(rand.New(rand.NewSource(seed)), flagJobs)
			s, err := build(jobs, flagMachines)
			if err != nil {
				return err
			}

			if !flagJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", ui.Dim("seed"), seed)
				for _, job := range jobs {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.JobColor(job.ID).Sprintf("J%d", job.ID), jobspec.FormatLine(job.Operations))
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return show(cmd.OutOrStdout(), s)
		},
	}

	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "Random seed (default: current time)")
	cmd.Flags().IntVar(&flagJobs, "jobs", 0, "Number of jobs (0 picks between 3 and 5)")

	return cmd
}

func reportCmd() *cobra.Command {
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the plain-text schedule report",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, machines, err := loadJobs()
			if err != nil {
				return err
			}
			s, err := build(jobs, machines)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if flagOutput != "" {
				f, err := os.Create(flagOutput)
				if err != nil {
					return fmt.Errorf("create report: %w", err)
				}
				defer f.Close()
				w = f
			}
			return report.Write(w, s, scheduler.Analyze(s))
		},
	}

	cmd.Flags().StringVar(&flagOutput, "output", "", "Save report to file")

	return cmd
}

func moveCmd() *cobra.Command {
	var (
		flagTask  int
		flagStart float64
	)

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Build a schedule, move one task and re-analyze without repairing",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, machines, err := loadJobs()
			if err != nil {
				return err
			}
			s, err := build(jobs, machines)
			if err != nil {
				return err
			}

			moved, err := scheduler.MoveTask(s, flagTask, flagStart)
			if err != nil {
				return fmt.Errorf("move task %d: %w", flagTask, err)
			}
			return show(cmd.OutOrStdout(), moved)
		},
	}

	cmd.Flags().IntVar(&flagTask, "task", 0, "Index of the task to move")
	cmd.Flags().Float64Var(&flagStart, "start", 0, "New start time (negative clamps to 0)")
	cmd.MarkFlagRequired("task")
	cmd.MarkFlagRequired("start")

	return cmd
}

type scheduleOutput struct {
	Schedule models.Schedule `json:"schedule"`
	Metrics  models.Metrics  `json:"metrics"`
}

func show(w io.Writer, s models.Schedule) error {
	m := scheduler.Analyze(s)
	if flagJSON {
		return outputJSON(w, scheduleOutput{Schedule: s, Metrics: m})
	}

	g := ui.NewGantt()
	g.Scale = flagScale
	g.Width = flagWidth
	g.Render(w, s, m)
	return nil
}

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
