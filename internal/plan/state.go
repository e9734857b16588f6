package plan

import (
	"fmt"
	"time"
)

// State is the authoritative execution record for one run. It is created
// once per execution, mutated by the scheduler goroutine only, and
// consumed into a Result on return.
type State struct {
	Rows       []Row
	Lib        string
	NumWorkers int
}

// NewState copies the plan rows, pre-seeds the done flags, and computes
// the residual dependency sets.
func NewState(rows []Row, lib string, numWorkers int) *State {
	s := &State{
		Rows:       make([]Row, len(rows)),
		Lib:        lib,
		NumWorkers: numWorkers,
	}
	copy(s.Rows, rows)

	for i := range s.Rows {
		r := &s.Rows[i]
		switch {
		case r.Type == TypeDeps || r.Type == TypeInstalled:
			r.BuildDone = true
			r.InstallDone = true
		case r.Binary:
			r.BuildDone = true
		}
	}

	pending := make(map[string]bool, len(s.Rows))
	for i := range s.Rows {
		if !s.Rows[i].InstallDone {
			pending[s.Rows[i].Package] = true
		}
	}

	// deps_left holds only names still pending install; names the plan
	// does not carry (or already satisfied) are the resolver's problem.
	for i := range s.Rows {
		r := &s.Rows[i]
		r.DepsLeft = make(map[string]struct{})
		for _, dep := range r.Dependencies {
			if dep != r.Package && pending[dep] {
				r.DepsLeft[dep] = struct{}{}
			}
		}
	}

	return s
}

// AllInstalled reports whether every row reached install_done.
func (s *State) AllInstalled() bool {
	for i := range s.Rows {
		if !s.Rows[i].InstallDone {
			return false
		}
	}
	return true
}

// PendingUnits counts the build and install steps still to run.
func (s *State) PendingUnits() int {
	n := 0
	for i := range s.Rows {
		if !s.Rows[i].BuildDone {
			n++
		}
		if !s.Rows[i].InstallDone {
			n++
		}
	}
	return n
}

// StartBuild claims a row for a build worker.
func (s *State) StartBuild(i int, workerID string, now time.Time) {
	r := &s.Rows[i]
	r.WorkerID = workerID
	r.BuildStarted = now
}

// StartInstall claims a row for an install worker.
func (s *State) StartInstall(i int, workerID string, now time.Time) {
	r := &s.Rows[i]
	r.WorkerID = workerID
	r.InstallStarted = now
}

// FinishBuild records a build completion. On success file points at the
// produced binary archive. deps_left of other rows is untouched: only an
// install releases dependents.
func (s *State) FinishBuild(i int, file string, ok bool, now time.Time) {
	r := &s.Rows[i]
	r.WorkerID = ""
	r.BuildDone = true
	r.BuildTime = now.Sub(r.BuildStarted)
	if ok {
		r.File = file
	} else {
		r.BuildError = true
	}
}

// FinishInstall records an install completion and, on success, removes the
// row's package from every other row's residual dependency set.
func (s *State) FinishInstall(i int, ok bool, now time.Time) {
	r := &s.Rows[i]
	r.WorkerID = ""
	r.InstallDone = true
	r.InstallTime = now.Sub(r.InstallStarted)
	if !ok {
		r.InstallError = true
		return
	}
	for j := range s.Rows {
		delete(s.Rows[j].DepsLeft, r.Package)
	}
}

// AppendOutput appends captured lines to the row's phase streams.
func (s *State) AppendOutput(i int, kind TaskKind, stdout, stderr []string) {
	r := &s.Rows[i]
	switch kind {
	case TaskBuild:
		r.BuildStdout = append(r.BuildStdout, stdout...)
		r.BuildStderr = append(r.BuildStderr, stderr...)
	case TaskInstall:
		r.InstallStdout = append(r.InstallStdout, stdout...)
		r.InstallStderr = append(r.InstallStderr, stderr...)
	}
}

// Check verifies the state invariants. Scheduler steps must preserve
// them; a violation is a programming error.
func (s *State) Check(numLiveWorkers int) error {
	if numLiveWorkers > s.NumWorkers {
		return fmt.Errorf("%d workers live, limit %d", numLiveWorkers, s.NumWorkers)
	}

	pending := make(map[string]bool, len(s.Rows))
	for i := range s.Rows {
		if !s.Rows[i].InstallDone {
			pending[s.Rows[i].Package] = true
		}
	}

	for i := range s.Rows {
		r := &s.Rows[i]
		if r.InstallDone && !r.BuildDone {
			return fmt.Errorf("row %d (%s): install_done without build_done", i, r.Package)
		}
		if _, ok := r.DepsLeft[r.Package]; ok {
			return fmt.Errorf("row %d (%s): depends on itself", i, r.Package)
		}
		for dep := range r.DepsLeft {
			if !pending[dep] {
				return fmt.Errorf("row %d (%s): stale residual dependency %q", i, r.Package, dep)
			}
		}
	}
	return nil
}
