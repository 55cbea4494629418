package storage

import "time"

// Run kinds.
const (
	RunKindProcess = "process"
	RunKindExport  = "export"
)

// RunRecord captures one process or export call against the backend,
// including the exact selection and flags that were sent.
type RunRecord struct {
	ID                   string    `json:"id"`
	Kind                 string    `json:"kind"`
	StartedAt            time.Time `json:"started_at"`
	FinishedAt           time.Time `json:"finished_at"`
	SelectedShops        []string  `json:"selected_shops"`
	IncludeClosedOrders  bool      `json:"include_closed_orders"`
	IncludeOfflineOrders bool      `json:"include_offline_orders"`
	Success              bool      `json:"success"`
	Message              string    `json:"message"`
	TotalRecords         int       `json:"total_records"`
	ExportFilename       string    `json:"export_filename,omitempty"`
}
