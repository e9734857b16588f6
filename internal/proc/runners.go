package proc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	forgeexec "github.com/joss/pkgforge/internal/exec"
)

// BuildSpec carries everything a build worker needs.
type BuildSpec struct {
	Path             string // source tarball or directory
	TmpDir           string // scratch dir; the binary archive lands here
	Lib              string // library prefixed onto the search path
	Vignettes        bool
	NeedsCompilation string // yes / no / unknown
}

// InstallSpec carries everything an install worker needs.
type InstallSpec struct {
	Archive  string // binary archive to unpack
	Lib      string // target library
	Metadata map[string]string
}

// BuildRunner starts a subprocess that builds a source package into a
// binary archive. Implementations report launch failures only; exit
// status is the handle's business.
type BuildRunner interface {
	SpawnBuild(spec BuildSpec, notify chan<- struct{}) (WorkerProcess, error)
}

// InstallRunner starts a subprocess that installs a binary archive.
type InstallRunner interface {
	SpawnInstall(spec InstallSpec, notify chan<- struct{}) (WorkerProcess, error)
}

// RRunner drives the R toolchain for both phases.
type RRunner struct {
	Bin  string
	Exec forgeexec.Runner

	helpOnce sync.Once
	helpText string
}

// NewRRunner creates a runner for the given R binary ("R" if empty).
func NewRRunner(bin string) *RRunner {
	if bin == "" {
		bin = "R"
	}
	return &RRunner{Bin: bin, Exec: forgeexec.NewOSRunner()}
}

// SpawnBuild runs `R CMD INSTALL --build` against a throwaway library so
// the produced binary archive lands in spec.TmpDir.
func (r *RRunner) SpawnBuild(spec BuildSpec, notify chan<- struct{}) (WorkerProcess, error) {
	tmpLib := filepath.Join(spec.TmpDir, "lib")
	if err := os.MkdirAll(tmpLib, 0755); err != nil {
		return nil, fmt.Errorf("create build lib: %w", err)
	}

	args := []string{"CMD", "INSTALL", "--build", "-l", tmpLib}
	if !spec.Vignettes {
		args = append(args, "--no-docs")
	}
	if spec.NeedsCompilation == "no" {
		args = append(args, "--no-byte-compile")
	}
	if r.supportsFlag("--no-staged-install") {
		args = append(args, "--no-staged-install")
	}
	args = append(args, spec.Path)

	cmd := exec.Command(r.Bin, args...)
	cmd.Dir = spec.TmpDir
	cmd.Env = prefixLibPath(spec.Lib)

	return StartCommand(cmd, notify, func() (string, error) {
		return newestArchive(spec.TmpDir)
	})
}

// SpawnInstall unpacks a binary archive into the target library. The
// per-package lock keeps concurrent installs off each other's toes.
func (r *RRunner) SpawnInstall(spec InstallSpec, notify chan<- struct{}) (WorkerProcess, error) {
	args := []string{"CMD", "INSTALL", "-l", spec.Lib}
	if r.supportsFlag("--pkglock") {
		args = append(args, "--pkglock")
	}
	args = append(args, spec.Archive)

	cmd := exec.Command(r.Bin, args...)
	cmd.Env = prefixLibPath(spec.Lib)

	return StartCommand(cmd, notify, nil)
}

// supportsFlag probes `R CMD INSTALL --help` once per runner and caches
// the answer for the life of the process.
func (r *RRunner) supportsFlag(flag string) bool {
	r.helpOnce.Do(func() {
		out, err := r.Exec.Run(context.Background(), r.Bin, "CMD", "INSTALL", "--help")
		if err == nil {
			r.helpText = string(out)
		}
	})
	return strings.Contains(r.helpText, flag)
}

// prefixLibPath returns the child environment with lib prepended to
// R_LIBS so build-time dependencies resolve from the target library.
func prefixLibPath(lib string) []string {
	env := os.Environ()
	libs := lib
	if cur := os.Getenv("R_LIBS"); cur != "" {
		libs = lib + string(os.PathListSeparator) + cur
	}
	out := env[:0:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, "R_LIBS=") {
			out = append(out, kv)
		}
	}
	return append(out, "R_LIBS="+libs)
}

// newestArchive locates the binary archive a build produced under dir.
func newestArchive(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan build dir: %w", err)
	}

	var best string
	var bestMod int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isArchiveName(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
			best = name
			bestMod = mod
		}
	}
	if best == "" {
		return "", fmt.Errorf("no binary archive produced in %s", dir)
	}
	return filepath.Join(dir, best), nil
}

func isArchiveName(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") ||
		strings.HasSuffix(name, ".tgz") ||
		strings.HasSuffix(name, ".zip")
}
