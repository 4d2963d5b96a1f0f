package scheduler

import (
	"context"
	"time"
)

// historySize is how many results each job keeps
const historySize = 100

// Job is a unit of scheduled work, such as a dataset reload
// ⭐ SSOT: the scheduled job interface is defined only here
type Job interface {
	Name() string

	// Run does one attempt. A returned error triggers the scheduler's retry.
	Run(ctx context.Context) error

	// Schedule is a cron expression with optional seconds or a descriptor
	// ("0 */15 * * * *", "@hourly", "@every 10m")
	Schedule() string
}

// JobResult is the outcome of one scheduled run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory holds the most recent results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends result and drops the oldest entries beyond historySize
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - historySize; over > 0 {
		h.Results = append([]JobResult(nil), h.Results[over:]...)
	}
}

// Latest returns up to n of the newest results
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	return append([]JobResult{}, h.Results[len(h.Results)-n:]...)
}

// Failures counts failed runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is the share of successful runs, 0 when the job never ran
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}

// lastStart returns the start time of the newest run matching success, or nil
func (h *JobHistory) lastStart(success bool) *time.Time {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success == success {
			t := h.Results[i].StartTime
			return &t
		}
	}
	return nil
}
