// Package config provides centralized configuration management.
// Environment variables are read once; a pkgforge.yaml file can supply defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
)

// ForgeEnv holds all pkgforge environment variables.
type ForgeEnv struct {
	// Lib is the target package library directory (PKGFORGE_LIB)
	Lib string

	// NumWorkers is the worker pool size (PKGFORGE_WORKERS)
	NumWorkers int

	// RBin is the R interpreter binary (PKGFORGE_R_BIN)
	RBin string

	// LibraryPath is the ambient library search path (R_LIBS)
	LibraryPath []string

	// TmpDir overrides the build scratch directory (PKGFORGE_TMPDIR)
	TmpDir string

	// HistoryDB overrides the run-history database path (PKGFORGE_HISTORY_DB)
	HistoryDB string

	// NoColor disables colored output (NO_COLOR)
	NoColor bool
}

var (
	env     *ForgeEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *ForgeEnv {
	envOnce.Do(func() {
		env = &ForgeEnv{
			Lib:         os.Getenv("PKGFORGE_LIB"),
			NumWorkers:  getEnvInt("PKGFORGE_WORKERS", runtime.NumCPU()),
			RBin:        getEnvDefault("PKGFORGE_R_BIN", "R"),
			LibraryPath: filepath.SplitList(os.Getenv("R_LIBS")),
			TmpDir:      os.Getenv("PKGFORGE_TMPDIR"),
			HistoryDB:   os.Getenv("PKGFORGE_HISTORY_DB"),
			NoColor:     os.Getenv("NO_COLOR") != "",
		}
		if env.Lib == "" && len(env.LibraryPath) > 0 {
			env.Lib = env.LibraryPath[0]
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Paths holds standard pkgforge directory paths.
type Paths struct {
	// Home is the pkgforge home directory (~/.pkgforge)
	Home string

	// Data is the data directory (~/.pkgforge/data)
	Data string

	// History is the run-history database path (~/.pkgforge/data/history.db)
	History string

	// ConfigFile is the defaults file path (~/.pkgforge/pkgforge.yaml)
	ConfigFile string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		forgeHome := filepath.Join(home, ".pkgforge")

		paths = &Paths{
			Home:       forgeHome,
			Data:       filepath.Join(forgeHome, "data"),
			History:    filepath.Join(forgeHome, "data", "history.db"),
			ConfigFile: filepath.Join(forgeHome, "pkgforge.yaml"),
		}
	})
	return paths
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
