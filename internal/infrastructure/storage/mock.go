package storage

import "sort"

// MockRepository is an in-memory implementation of Repository for testing.
type MockRepository struct {
	runs map[string]*RunRecord

	// Hooks for test assertions
	SaveRunCalled int
	LastSavedRun  *RunRecord

	// Error injection for testing error paths
	SaveRunErr error
	GetRunErr  error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs: make(map[string]*RunRecord),
	}
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveRun stores the run in the in-memory map
func (m *MockRepository) SaveRun(run *RunRecord) error {
	m.SaveRunCalled++
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	copied := *run
	copied.SelectedShops = append([]string(nil), run.SelectedShops...)
	m.runs[run.ID] = &copied
	return nil
}

// GetRun retrieves a run from the in-memory map
func (m *MockRepository) GetRun(id string) (*RunRecord, error) {
	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	return m.runs[id], nil
}

// ListRuns returns stored runs newest first
func (m *MockRepository) ListRuns(limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	runs := make([]*RunRecord, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
