// Package main provides the pkgforge CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/pkgforge/internal/config"
	"github.com/joss/pkgforge/internal/selftest"
)

var (
	version = "0.1.0"
	pretty  = true
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pkgforge",
		Short: "Parallel package build and install executor",
		Long: `pkgforge executes a pre-computed, dependency-ordered plan of package
build and install actions with a bounded pool of worker subprocesses.

The plan itself comes from an external resolver as a JSON file.

Use 'pkgforge run plan.json' to execute a plan.
Use 'pkgforge doctor' to check the environment.`,
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pkgforge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pkgforge version %s\n", version)
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment health",
		Long: `Diagnose the pkgforge runtime environment.

Checks:
  - R toolchain on PATH
  - Target library directory exists and is writable
  - Worker pool configuration`,
		Run: func(cmd *cobra.Command, args []string) {
			report := selftest.Check(loadEnv())
			fmt.Print(report.Summary())
			if !report.IsHealthy() {
				os.Exit(1)
			}
		},
	}
}

// loadEnv merges the environment with the pkgforge.yaml defaults file.
func loadEnv() *config.ForgeEnv {
	env := config.Env()
	if fc, err := config.LoadFile(config.GetPaths().ConfigFile); err == nil {
		fc.Apply(env)
	}
	return env
}

