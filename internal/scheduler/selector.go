package scheduler

import (
	"github.com/joss/pkgforge/internal/plan"
)

// SelectTask picks the next task. It is a pure function of the state and
// the current pool occupancy.
//
// Builds win over installs when both are runnable: finishing a build
// tends to sit on the critical path of downstream rows. Ties break by
// ascending row index.
func SelectTask(s *plan.State, numLiveWorkers int) (plan.Task, error) {
	if numLiveWorkers >= s.NumWorkers {
		return plan.Idle, nil
	}

	for i := range s.Rows {
		r := &s.Rows[i]
		if !r.BuildDone && len(r.DepsLeft) == 0 && r.WorkerID == "" {
			return plan.Task{Kind: plan.TaskBuild, RowIndex: i}, nil
		}
	}

	for i := range s.Rows {
		r := &s.Rows[i]
		if r.BuildDone && !r.InstallDone && r.WorkerID == "" {
			return plan.Task{Kind: plan.TaskInstall, RowIndex: i}, nil
		}
	}

	if !s.AllInstalled() && numLiveWorkers == 0 {
		return plan.Idle, fatalf(KindDeadlock, "",
			"no runnable task, no live worker, yet the plan is incomplete (unsatisfiable dependencies?)")
	}

	return plan.Idle, nil
}
