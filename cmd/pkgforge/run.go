package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/pkgforge/internal/alerts"
	"github.com/joss/pkgforge/internal/history"
	"github.com/joss/pkgforge/internal/logging"
	"github.com/joss/pkgforge/internal/plan"
	"github.com/joss/pkgforge/internal/proc"
	"github.com/joss/pkgforge/internal/progress"
	"github.com/joss/pkgforge/internal/render"
	"github.com/joss/pkgforge/internal/scheduler"
	forgestrings "github.com/joss/pkgforge/internal/strings"
)

func runCmd() *cobra.Command {
	var lib string
	var workers int
	var tmpDir string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "run <plan.json>",
		Short: "Execute an installation plan",
		Long: `Execute a dependency-ordered installation plan.

The plan is a JSON array of rows produced by the resolver. Each row names
a package, its provenance, its archive and its dependencies. pkgforge
builds source rows into binary archives and installs everything into the
target library, in dependency order, with up to --workers concurrent
worker subprocesses.

Examples:
  pkgforge run plan.json
  pkgforge run plan.json --lib ~/R/lib --workers 4`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := loadEnv()
			if lib == "" {
				lib = env.Lib
			}
			if workers == 0 {
				workers = env.NumWorkers
			}
			if tmpDir == "" {
				tmpDir = env.TmpDir
			}

			rows, err := plan.Load(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			var reporter progress.Reporter = progress.Nop{}
			if !noProgress {
				reporter = progress.NewBar(os.Stdout)
			}

			runner := proc.NewRRunner(env.RBin)
			sched := scheduler.New(scheduler.Config{
				Lib:        lib,
				NumWorkers: workers,
				TmpDir:     tmpDir,
				Build:      runner,
				Install:    runner,
				Progress:   reporter,
				Alerts:     alerts.NewConsoleSink(os.Stdout),
			})

			res, execErr := sched.Execute(rows)
			recordHistory(env.HistoryDB, res, execErr)

			r := render.New(pretty)
			if execErr != nil {
				fmt.Fprint(os.Stderr, r.Failure(res, execErr))
				os.Exit(1)
			}
			fmt.Print(r.Summary(res))
		},
	}

	cmd.Flags().StringVarP(&lib, "lib", "l", "", "Target library directory (default: first R_LIBS entry)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker pool size (default: CPU count)")
	cmd.Flags().StringVar(&tmpDir, "tmpdir", "", "Parent directory for build scratch space")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

// recordHistory archives the run outcome. History is best effort: a
// broken database must not mask the execution result.
func recordHistory(path string, res *plan.Result, execErr error) {
	if res == nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		logging.New("history").Warn("open", nil, err)
		return
	}
	defer store.Close()
	if _, err := store.RecordRun(res, execErr); err != nil {
		logging.New("history").Warn("record", nil, err)
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Run: func(cmd *cobra.Command, args []string) {
			env := loadEnv()
			store, err := history.Open(env.HistoryDB)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer store.Close()

			runs, err := store.ListRecent(limit)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			if len(runs) == 0 {
				fmt.Println("No runs recorded")
				return
			}

			fmt.Printf("RUNS: %d\n\n", len(runs))
			for _, rec := range runs {
				icon := "✓"
				if rec.Status != "ok" {
					icon = "✗"
				}
				fmt.Printf("  %s %s  %s\n", icon, rec.StartedAt.Format("2006-01-02 15:04:05"), rec.RunID)
				fmt.Printf("     Installed: %d  Updated: %d  Build: %s  Install: %s\n",
					rec.Installed, rec.Updated,
					render.FormatDuration(rec.BuildTime), render.FormatDuration(rec.InstallTime))
				if rec.Error != "" {
					fmt.Printf("     Error: %s\n", forgestrings.Truncate(rec.Error, 70))
				}
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
