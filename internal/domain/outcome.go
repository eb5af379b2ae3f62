package domain

import (
	"errors"
	"time"
)

var ErrNoData = errors.New("no data")

// UnitStatus classifies how processing of one WorkUnit ended.
type UnitStatus string

const (
	StatusWritten       UnitStatus = "written"
	StatusEmpty         UnitStatus = "empty"
	StatusQueryFailed   UnitStatus = "query_failed"
	StatusEncodeFailed  UnitStatus = "encode_failed"
	StatusWriteFailed   UnitStatus = "write_failed"
	StatusConnectFailed UnitStatus = "connect_failed"
	StatusWorkerFailed  UnitStatus = "worker_failed"
)

// Failed reports whether the status should count against the run.
// Empty results are diagnostics, not failures.
func (s UnitStatus) Failed() bool {
	return s != StatusWritten && s != StatusEmpty
}

// Result of processing one WorkUnit.
type UnitOutcome struct {
	Unit   WorkUnit
	Status UnitStatus
	Key    string
	Rows   int
	Err    error
}

// Outcomes collected by one worker over its partition, in partition order.
type WorkerReport struct {
	Worker   int
	Outcomes []UnitOutcome
}

// Aggregate view of a populate run.
type RunSummary struct {
	RunID       string
	Workers     int
	Units       int
	Written     int
	Empty       int
	Failed      int
	FailedUnits []UnitOutcome
	Duration    time.Duration
}

// Summarize folds worker reports into a RunSummary. Reports are visited in
// worker order so FailedUnits is deterministic for a given partitioning.
func Summarize(runID string, reports []WorkerReport, dur time.Duration) RunSummary {
	s := RunSummary{RunID: runID, Workers: len(reports), Duration: dur}
	for _, r := range reports {
		for _, o := range r.Outcomes {
			s.Units++
			switch {
			case o.Status == StatusWritten:
				s.Written++
			case o.Status == StatusEmpty:
				s.Empty++
			default:
				s.Failed++
				s.FailedUnits = append(s.FailedUnits, o)
			}
		}
	}
	return s
}

// OK reports whether every unit was either written or legitimately empty.
func (s RunSummary) OK() bool { return s.Failed == 0 }
