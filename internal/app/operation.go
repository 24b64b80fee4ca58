package app

import "strings"

// Operation statuses recorded in sync_operations.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SyncOperation tracks a CLI run that may mutate the database.
// It lives in memory with ID=0 until a mutating command persists it; the
// persisted ID doubles as the version of the snapshot uploaded on Close.
type SyncOperation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

func NewSyncOperation(operation string, parameters ...string) *SyncOperation {
	return &SyncOperation{
		Operation:  operation,
		Parameters: strings.Join(parameters, " "),
		Status:     StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *SyncOperation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed when err is non-nil and returns err unchanged.
func (op *SyncOperation) Fail(err error) error {
	if err != nil {
		op.Status = StatusError
	}
	return err
}
