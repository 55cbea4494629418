package storage

// Repository is the persistence interface for run history. It allows
// swapping implementations and makes testing with mocks straightforward.
type Repository interface {
	// SaveRun persists one process or export run.
	SaveRun(run *RunRecord) error

	// GetRun retrieves a run by ID. Returns nil when the run is unknown.
	GetRun(id string) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*RunRecord, error)

	Close() error
}
