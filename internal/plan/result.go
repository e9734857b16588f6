package plan

import (
	"time"

	"github.com/google/uuid"
)

// Result is the immutable outcome of one execution: the plan rows with
// their execution fields plus derived summary counts.
type Result struct {
	RunID      string
	Rows       []Row
	StartedAt  time.Time
	FinishedAt time.Time

	Installed  int
	Updated    int
	NotUpdated int
	Current    int

	BuildTime   time.Duration
	InstallTime time.Duration
}

// NewResult consumes a state into a Result.
func NewResult(s *State, startedAt, finishedAt time.Time) *Result {
	res := &Result{
		RunID:      uuid.NewString(),
		Rows:       s.Rows,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	for i := range s.Rows {
		r := &s.Rows[i]
		res.BuildTime += r.BuildTime
		res.InstallTime += r.InstallTime

		switch r.LibStatus {
		case StatusUpdate:
			res.Updated++
		case StatusNoUpdate:
			res.NotUpdated++
		case StatusCurrent:
			res.Current++
		default:
			res.Installed++
		}
	}
	return res
}
