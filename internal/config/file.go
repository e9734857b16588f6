package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig holds defaults loaded from pkgforge.yaml.
// Values are applied only where the environment left a field unset.
type FileConfig struct {
	Lib        string `yaml:"lib"`
	NumWorkers int    `yaml:"workers"`
	RBin       string `yaml:"r_bin"`
	TmpDir     string `yaml:"tmpdir"`
	HistoryDB  string `yaml:"history_db"`
}

// LoadFile reads a YAML defaults file. A missing file is not an error.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply fills unset environment fields from the file defaults.
func (fc *FileConfig) Apply(e *ForgeEnv) {
	if e.Lib == "" {
		e.Lib = fc.Lib
	}
	if fc.NumWorkers > 0 && os.Getenv("PKGFORGE_WORKERS") == "" {
		e.NumWorkers = fc.NumWorkers
	}
	if e.RBin == "R" && fc.RBin != "" {
		e.RBin = fc.RBin
	}
	if e.TmpDir == "" {
		e.TmpDir = fc.TmpDir
	}
	if e.HistoryDB == "" {
		e.HistoryDB = fc.HistoryDB
	}
}
