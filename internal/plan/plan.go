package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidInput marks plan or parameter validation failures. These are
// reported before any worker is spawned.
var ErrInvalidInput = errors.New("invalid input")

// requiredColumns are the columns every plan row must carry.
var requiredColumns = []string{
	"type", "binary", "dependencies", "file", "vignettes",
	"needs_compilation", "metadata", "package", "version", "sources",
}

// Load reads a JSON plan file: an array of row objects.
func Load(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON plan.
func Parse(data []byte) ([]Row, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed plan: %v", ErrInvalidInput, err)
	}

	for i, rowMap := range raw {
		for _, col := range requiredColumns {
			if _, ok := rowMap[col]; !ok {
				return nil, fmt.Errorf("%w: row %d is missing column %q", ErrInvalidInput, i, col)
			}
		}
	}

	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: malformed plan: %v", ErrInvalidInput, err)
	}

	for i := range rows {
		if err := validateRow(&rows[i], i); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func validateRow(r *Row, i int) error {
	if r.Package == "" {
		return fmt.Errorf("%w: row %d has an empty package name", ErrInvalidInput, i)
	}
	switch r.Type {
	case TypeCRAN, TypeBioc, TypeStandard, TypeLocal, TypeGitHub, TypeDeps, TypeInstalled:
	default:
		return fmt.Errorf("%w: row %d (%s) has unknown type %q", ErrInvalidInput, i, r.Package, r.Type)
	}
	switch r.NeedsCompilation {
	case TriYes, TriNo, TriUnknown, "":
	default:
		return fmt.Errorf("%w: row %d (%s) has invalid needs_compilation %q",
			ErrInvalidInput, i, r.Package, r.NeedsCompilation)
	}
	return nil
}

// ValidateParams checks the executor parameters before any spawn.
func ValidateParams(lib string, numWorkers int) error {
	if lib == "" {
		return fmt.Errorf("%w: lib must be a single directory path", ErrInvalidInput)
	}
	if numWorkers < 1 {
		return fmt.Errorf("%w: num_workers must be >= 1, got %d", ErrInvalidInput, numWorkers)
	}
	return nil
}
