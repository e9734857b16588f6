// Package scheduler drives a dependency-ordered installation plan to
// completion with a bounded pool of worker subprocesses.
//
// The orchestrator is single-threaded: PlanState is owned by the
// Execute goroutine and mutated only between poll calls. All concurrency
// lives in the children.
package scheduler

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/joss/pkgforge/internal/alerts"
	"github.com/joss/pkgforge/internal/logging"
	"github.com/joss/pkgforge/internal/plan"
	"github.com/joss/pkgforge/internal/proc"
	"github.com/joss/pkgforge/internal/progress"
)

const (
	// pollInterval bounds progress-bar latency without busy-spinning.
	pollInterval = 100 * time.Millisecond

	// drainCap limits one non-blocking read from a live worker.
	drainCap = 10000

	// killGrace is how long the aborter waits per worker between the
	// interrupt and the tree-kill.
	killGrace = 200 * time.Millisecond
)

// Config wires the scheduler to its collaborators.
type Config struct {
	Lib        string
	NumWorkers int

	// TmpDir is the parent scratch directory for per-worker build dirs.
	// Empty means the system default.
	TmpDir string

	Build    proc.BuildRunner
	Install  proc.InstallRunner
	Progress progress.Reporter
	Alerts   alerts.Sink
}

// worker is one in-flight subprocess plus its captured output.
type worker struct {
	id     string
	task   plan.Task
	proc   proc.WorkerProcess
	tmpDir string
	stdout []byte
	stderr []byte
}

// Scheduler executes one plan. Not reusable across runs.
type Scheduler struct {
	cfg     Config
	state   *plan.State
	workers map[string]*worker
	order   []string
	notify  chan struct{}
	nextID  atomic.Uint64
	scratch map[int]string // row index -> build scratch dir
	aborted bool
	log     *logging.Logger
}

// New creates a scheduler. Nil collaborators get quiet defaults; nil
// runners get the R toolchain.
func New(cfg Config) *Scheduler {
	if cfg.Progress == nil {
		cfg.Progress = progress.Nop{}
	}
	if cfg.Alerts == nil {
		cfg.Alerts = alerts.Discard{}
	}
	if cfg.Build == nil || cfg.Install == nil {
		r := proc.NewRRunner("")
		if cfg.Build == nil {
			cfg.Build = r
		}
		if cfg.Install == nil {
			cfg.Install = r
		}
	}
	return &Scheduler{
		cfg:     cfg,
		workers: make(map[string]*worker),
		notify:  make(chan struct{}, 1),
		scratch: make(map[int]string),
		log:     logging.New("scheduler"),
	}
}

// Execute runs the plan to completion. On a fatal error the aborter has
// already run by the time the error surfaces; the partial result is
// still returned so captured output is available for post-mortem.
func (s *Scheduler) Execute(rows []plan.Row) (res *plan.Result, err error) {
	if err := plan.ValidateParams(s.cfg.Lib, s.cfg.NumWorkers); err != nil {
		return nil, err
	}

	started := time.Now()
	s.state = plan.NewState(rows, s.cfg.Lib, s.cfg.NumWorkers)

	defer func() {
		if err != nil {
			s.abort()
		}
		s.cleanupScratch()
		s.cfg.Progress.Close()
	}()

	if s.state.AllInstalled() {
		return plan.NewResult(s.state, started, time.Now()), nil
	}

	s.cfg.Progress.Start(s.state.PendingUnits())

	if err := s.fillSlots(); err != nil {
		return plan.NewResult(s.state, started, time.Now()), err
	}

	for !s.state.AllInstalled() {
		s.cfg.Progress.Tick(0)

		handles, ids := s.liveHandles()
		readiness := proc.Poll(handles, s.notify, pollInterval)
		for k, ready := range readiness {
			if !ready {
				continue
			}
			if err := s.handleEvent(ids[k]); err != nil {
				return plan.NewResult(s.state, started, time.Now()), err
			}
		}

		if err := s.fillSlots(); err != nil {
			return plan.NewResult(s.state, started, time.Now()), err
		}
	}

	return plan.NewResult(s.state, started, time.Now()), nil
}

// fillSlots selects and spawns tasks until the pool is full or the
// selector goes idle.
func (s *Scheduler) fillSlots() error {
	for {
		task, err := SelectTask(s.state, len(s.workers))
		if err != nil {
			return err
		}
		if task.Kind == plan.TaskIdle {
			return nil
		}
		if err := s.spawn(task); err != nil {
			return err
		}
	}
}

func (s *Scheduler) spawn(task plan.Task) error {
	row := &s.state.Rows[task.RowIndex]
	id := workerID(s.nextID.Add(1))

	var (
		p      proc.WorkerProcess
		tmpDir string
		err    error
	)

	switch task.Kind {
	case plan.TaskBuild:
		source, rerr := plan.ResolveSource(row)
		if rerr != nil {
			return fatalf(KindSpawn, row.Package, "%v", rerr)
		}
		tmpDir, err = os.MkdirTemp(s.cfg.TmpDir, "pkgforge-build-")
		if err != nil {
			return fatalf(KindSpawn, row.Package, "create scratch dir: %v", err)
		}
		s.scratch[task.RowIndex] = tmpDir
		p, err = s.cfg.Build.SpawnBuild(proc.BuildSpec{
			Path:             source,
			TmpDir:           tmpDir,
			Lib:              s.cfg.Lib,
			Vignettes:        row.Vignettes,
			NeedsCompilation: string(row.NeedsCompilation),
		}, s.notify)
		if err != nil {
			return fatalf(KindSpawn, row.Package, "%v", err)
		}
		s.state.StartBuild(task.RowIndex, id, time.Now())

	case plan.TaskInstall:
		p, err = s.cfg.Install.SpawnInstall(proc.InstallSpec{
			Archive:  row.File,
			Lib:      s.cfg.Lib,
			Metadata: row.Metadata,
		}, s.notify)
		if err != nil {
			return fatalf(KindSpawn, row.Package, "%v", err)
		}
		s.state.StartInstall(task.RowIndex, id, time.Now())

	default:
		return fatalf(KindInternal, "", "spawn called with task kind %v", task.Kind)
	}

	s.workers[id] = &worker{id: id, task: task, proc: p, tmpDir: tmpDir}
	s.order = append(s.order, id)
	logging.SpawnEvent(id, row.Package, task.Kind.String())
	return nil
}

// handleEvent runs the two-phase drain protocol for one ready worker.
// A ready event does not imply termination.
func (s *Scheduler) handleEvent(id string) error {
	w := s.workers[id]
	if w == nil {
		return nil
	}

	if w.proc.IsAlive() {
		w.stdout = append(w.stdout, w.proc.ReadOutput(drainCap)...)
		w.stderr = append(w.stderr, w.proc.ReadError(drainCap)...)
		return nil
	}

	w.stdout = append(w.stdout, w.proc.ReadAllOutput()...)
	w.stderr = append(w.stderr, w.proc.ReadAllError()...)

	// The child may have closed its pipes before the exit was reaped,
	// or vice versa; wait for another ready event in that case.
	if w.proc.IsAlive() || w.proc.HasIncompleteOutput() || w.proc.HasIncompleteError() {
		return nil
	}

	s.removeWorker(id)
	s.state.AppendOutput(w.task.RowIndex, w.task.Kind, SplitLines(w.stdout), SplitLines(w.stderr))

	var err error
	switch w.task.Kind {
	case plan.TaskBuild:
		err = s.completeBuild(w)
	case plan.TaskInstall:
		err = s.completeInstall(w)
	default:
		err = fatalf(KindInternal, "", "worker %s finished with task kind %v", id, w.task.Kind)
	}
	if err != nil {
		return err
	}

	if cerr := s.state.Check(len(s.workers)); cerr != nil {
		return fatalf(KindInternal, "", "state invariant violated: %v", cerr)
	}
	return nil
}

func (s *Scheduler) completeBuild(w *worker) error {
	i := w.task.RowIndex
	row := &s.state.Rows[i]
	now := time.Now()
	code := w.proc.ExitStatus()

	if code != 0 {
		s.state.FinishBuild(i, "", false, now)
		logging.PhaseEvent(w.id, row.Package, "build", false, row.BuildTime)
		s.cfg.Alerts.Alert(alerts.LevelDanger, "Failed to build %s %s", row.Package, row.Version)
		return fatalf(KindBuild, row.Package, "exit status %d", code)
	}

	file, aerr := w.proc.BuiltFile()
	if aerr != nil {
		s.state.FinishBuild(i, "", false, now)
		return fatalf(KindArtifact, row.Package, "%v", aerr)
	}

	s.state.FinishBuild(i, file, true, now)
	logging.PhaseEvent(w.id, row.Package, "build", true, row.BuildTime)
	s.cfg.Alerts.Alert(alerts.LevelSuccess, "Built %s %s (%.1fs)",
		row.Package, row.Version, row.BuildTime.Seconds())
	s.cfg.Progress.Tick(1)
	return nil
}

func (s *Scheduler) completeInstall(w *worker) error {
	i := w.task.RowIndex
	row := &s.state.Rows[i]
	now := time.Now()
	code := w.proc.ExitStatus()

	if code != 0 {
		s.state.FinishInstall(i, false, now)
		logging.PhaseEvent(w.id, row.Package, "install", false, row.InstallTime)
		s.cfg.Alerts.Alert(alerts.LevelDanger, "Failed to install %s %s", row.Package, row.Version)
		return fatalf(KindInstall, row.Package, "exit status %d", code)
	}

	s.state.FinishInstall(i, true, now)
	s.dropScratch(i)
	logging.PhaseEvent(w.id, row.Package, "install", true, row.InstallTime)

	msg := "Installed %s %s (%.1fs)"
	if note := plan.InstallNote(row); note != "" {
		msg += " " + note
	}
	s.cfg.Alerts.Alert(alerts.LevelSuccess, msg, row.Package, row.Version, row.InstallTime.Seconds())
	s.cfg.Progress.Tick(1)
	return nil
}

// abort interrupts every live worker, waits briefly, then tree-kills the
// stragglers. It is idempotent and never fails.
func (s *Scheduler) abort() {
	if s.aborted {
		return
	}
	s.aborted = true

	for _, id := range s.order {
		if w, ok := s.workers[id]; ok {
			w.proc.Signal(os.Interrupt)
		}
	}
	for _, id := range s.order {
		w, ok := s.workers[id]
		if !ok || !w.proc.IsAlive() {
			continue
		}
		if !w.proc.Wait(killGrace) {
			w.proc.KillTree()
		}
	}
	s.log.Info("aborted", map[string]interface{}{"workers": len(s.workers)})
}

func (s *Scheduler) liveHandles() ([]proc.WorkerProcess, []string) {
	handles := make([]proc.WorkerProcess, 0, len(s.order))
	ids := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if w, ok := s.workers[id]; ok {
			handles = append(handles, w.proc)
			ids = append(ids, id)
		}
	}
	return handles, ids
}

func (s *Scheduler) removeWorker(id string) {
	delete(s.workers, id)
	for k, v := range s.order {
		if v == id {
			s.order = append(s.order[:k], s.order[k+1:]...)
			break
		}
	}
}

// dropScratch removes a row's build scratch dir once its artifact has
// been installed into lib.
func (s *Scheduler) dropScratch(rowIndex int) {
	if dir, ok := s.scratch[rowIndex]; ok {
		os.RemoveAll(dir)
		delete(s.scratch, rowIndex)
	}
}

func (s *Scheduler) cleanupScratch() {
	for i, dir := range s.scratch {
		os.RemoveAll(dir)
		delete(s.scratch, i)
	}
}

func workerID(n uint64) string {
	return fmt.Sprintf("worker-%d", n)
}
