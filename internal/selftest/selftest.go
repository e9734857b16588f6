// Package selftest diagnoses the pkgforge runtime environment.
package selftest

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/joss/pkgforge/internal/config"
)

// Report holds the outcome of an environment check.
type Report struct {
	RPath    string
	Lib      string
	Workers  int
	Errors   []string
	Warnings []string
}

// IsHealthy reports whether execution can proceed.
func (r *Report) IsHealthy() bool {
	return len(r.Errors) == 0
}

// Summary renders the report for terminal display.
func (r *Report) Summary() string {
	var sb strings.Builder

	if r.RPath != "" {
		fmt.Fprintf(&sb, "✓ R toolchain: %s\n", r.RPath)
	}
	if r.Lib != "" {
		fmt.Fprintf(&sb, "✓ Library: %s\n", r.Lib)
	}
	if r.Workers > 0 {
		fmt.Fprintf(&sb, "✓ Workers: %d\n", r.Workers)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "⚠ %s\n", w)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "✗ %s\n", e)
	}
	return sb.String()
}

// Check runs all environment diagnostics against the given configuration.
func Check(env *config.ForgeEnv) *Report {
	r := &Report{}

	if path, err := exec.LookPath(env.RBin); err == nil {
		r.RPath = path
	} else {
		r.Errors = append(r.Errors, fmt.Sprintf("R toolchain %q not found on PATH", env.RBin))
	}

	switch {
	case env.Lib == "":
		r.Errors = append(r.Errors, "no library configured (set PKGFORGE_LIB or lib: in pkgforge.yaml)")
	default:
		if err := checkWritableDir(env.Lib); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("library %s: %v", env.Lib, err))
		} else {
			r.Lib = env.Lib
		}
	}

	if env.NumWorkers >= 1 {
		r.Workers = env.NumWorkers
		if env.NumWorkers > 32 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%d workers is a lot; builds are usually IO-bound", env.NumWorkers))
		}
	} else {
		r.Errors = append(r.Errors, fmt.Sprintf("workers must be >= 1, got %d", env.NumWorkers))
	}

	return r
}

func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	probe, err := os.CreateTemp(dir, ".pkgforge-probe-")
	if err != nil {
		return fmt.Errorf("not writable")
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
