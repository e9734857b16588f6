package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/pkgforge/internal/plan"
)

func selState(rows []plan.Row, numWorkers int) *plan.State {
	return plan.NewState(rows, "/lib", numWorkers)
}

func TestSelectIdleAtCapacity(t *testing.T) {
	s := selState([]plan.Row{srcRow("A")}, 2)
	task, err := SelectTask(s, 2)
	require.NoError(t, err)
	assert.Equal(t, plan.TaskIdle, task.Kind)
}

func TestSelectBuildBeforeInstall(t *testing.T) {
	s := selState([]plan.Row{binRow("A"), srcRow("B")}, 2)

	// B is buildable, A is installable: builds win.
	task, err := SelectTask(s, 0)
	require.NoError(t, err)
	assert.Equal(t, plan.TaskBuild, task.Kind)
	assert.Equal(t, 1, task.RowIndex)
}

func TestSelectLowestIndexWins(t *testing.T) {
	s := selState([]plan.Row{srcRow("B"), srcRow("A")}, 2)
	task, err := SelectTask(s, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, task.RowIndex)
}

func TestSelectSkipsBlockedAndClaimedRows(t *testing.T) {
	s := selState([]plan.Row{srcRow("A"), srcRow("B", "A"), srcRow("C")}, 3)

	s.StartBuild(0, "worker-1", time.Now())
	task, err := SelectTask(s, 1)
	require.NoError(t, err)
	assert.Equal(t, plan.TaskBuild, task.Kind)
	assert.Equal(t, 2, task.RowIndex, "B is dep-blocked, A is claimed, C runs")
}

func TestSelectInstallWhenNoBuildReady(t *testing.T) {
	s := selState([]plan.Row{binRow("A"), srcRow("B", "A")}, 2)

	task, err := SelectTask(s, 0)
	require.NoError(t, err)
	assert.Equal(t, plan.TaskInstall, task.Kind)
	assert.Equal(t, 0, task.RowIndex)
}

func TestSelectDeadlock(t *testing.T) {
	s := selState([]plan.Row{srcRow("A", "ghost")}, 2)
	// "ghost" is not in the plan so it was dropped at seed time; force a
	// residual dependency to simulate inconsistent inputs.
	s.Rows[0].DepsLeft = map[string]struct{}{"ghost": {}}

	_, err := SelectTask(s, 0)
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, KindDeadlock, fatal.Kind)
}

func TestSelectIdleWhileWorkersRunning(t *testing.T) {
	s := selState([]plan.Row{srcRow("A"), srcRow("B", "A")}, 2)
	s.StartBuild(0, "worker-1", time.Now())

	// B waits on A, A is claimed, one worker is live: idle, not deadlock.
	task, err := SelectTask(s, 1)
	require.NoError(t, err)
	assert.Equal(t, plan.TaskIdle, task.Kind)
}

func TestSelectorIsPure(t *testing.T) {
	s := selState([]plan.Row{srcRow("A"), srcRow("B", "A")}, 2)

	t1, err1 := SelectTask(s, 0)
	t2, err2 := SelectTask(s, 0)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, t1, t2, "selection must not mutate state")
}
