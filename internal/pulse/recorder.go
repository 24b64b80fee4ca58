package pulse

import "time"

// Outcome labels for Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder receives one observation per account sync attempt.
type Recorder interface {
	RecordSync(platform Platform, outcome string, elapsed time.Duration)
	RecordBatch(synced, failed int, elapsed time.Duration)
}

// NopRecorder discards observations.
type NopRecorder struct{}

func (NopRecorder) RecordSync(Platform, string, time.Duration) {}
func (NopRecorder) RecordBatch(int, int, time.Duration)        {}
