package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	ResetEnv()

	os.Setenv("PKGFORGE_LIB", "/opt/lib/R")
	os.Setenv("PKGFORGE_WORKERS", "4")
	os.Setenv("PKGFORGE_R_BIN", "/usr/local/bin/R")
	defer func() {
		os.Unsetenv("PKGFORGE_LIB")
		os.Unsetenv("PKGFORGE_WORKERS")
		os.Unsetenv("PKGFORGE_R_BIN")
		ResetEnv()
	}()

	env := Env()

	assert.Equal(t, "/opt/lib/R", env.Lib)
	assert.Equal(t, 4, env.NumWorkers)
	assert.Equal(t, "/usr/local/bin/R", env.RBin)
}

func TestEnvLibFallsBackToLibraryPath(t *testing.T) {
	ResetEnv()

	os.Unsetenv("PKGFORGE_LIB")
	os.Setenv("R_LIBS", "/home/u/R/lib"+string(os.PathListSeparator)+"/usr/lib/R")
	defer func() {
		os.Unsetenv("R_LIBS")
		ResetEnv()
	}()

	env := Env()
	assert.Equal(t, "/home/u/R/lib", env.Lib)
}

func TestEnvWorkersDefaultIgnoresGarbage(t *testing.T) {
	ResetEnv()

	os.Setenv("PKGFORGE_WORKERS", "zero")
	defer func() {
		os.Unsetenv("PKGFORGE_WORKERS")
		ResetEnv()
	}()

	env := Env()
	assert.Greater(t, env.NumWorkers, 0)
}

func TestEnvSingleton(t *testing.T) {
	ResetEnv()
	defer ResetEnv()

	env1 := Env()
	env2 := Env()
	assert.Same(t, env1, env2)
}

func TestLoadFileMissing(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, fc)
}

func TestLoadFileApply(t *testing.T) {
	ResetEnv()
	defer ResetEnv()

	path := filepath.Join(t.TempDir(), "pkgforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lib: /data/rlib\nworkers: 3\nr_bin: R-devel\n"), 0644))

	fc, err := LoadFile(path)
	require.NoError(t, err)

	os.Unsetenv("PKGFORGE_LIB")
	os.Unsetenv("PKGFORGE_WORKERS")
	env := Env()
	env.Lib = ""
	fc.Apply(env)

	assert.Equal(t, "/data/rlib", env.Lib)
	assert.Equal(t, 3, env.NumWorkers)
	assert.Equal(t, "R-devel", env.RBin)
}

func TestLoadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkgforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lib: [unclosed"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
