package workflow

import (
	"context"

	"github.com/orderdesk/recon-console/internal/backend"
)

// State is the position of the upload-select-process-export sequence.
type State string

const (
	StateIdle         State = "idle"
	StateFilesChosen  State = "files_chosen"
	StateUploading    State = "uploading"
	StateUploaded     State = "uploaded"
	StateShopsLoading State = "shops_loading"
	StateReady        State = "ready"
	StateProcessing   State = "processing"
	StateProcessed    State = "processed"
	StateExporting    State = "exporting"
)

// FileKind distinguishes the two spreadsheets of a reconciliation run.
type FileKind string

const (
	FileKindProduct FileKind = "product"
	FileKindOrder   FileKind = "order"
)

// LocalFile describes a locally chosen spreadsheet that passed preflight.
type LocalFile struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Size       int64    `json:"size"`
	SheetNames []string `json:"sheet_names"`
	RowCount   int      `json:"row_count"`
}

// Shop is a seller whose orders are being reconciled. Selection is local
// UI state layered over the server-provided name.
type Shop struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Backend is the slice of the processing-service client the controller
// drives. *backend.Client satisfies it; tests substitute fakes.
type Backend interface {
	UploadFiles(ctx context.Context, productPath, orderPath string) (*backend.UploadResult, error)
	ListShops(ctx context.Context) (*backend.ShopList, error)
	ProcessData(ctx context.Context, opts backend.ProcessOptions) (*backend.ProcessResult, error)
	ExportData(ctx context.Context, opts backend.ProcessOptions) (*backend.ExportResult, error)
	ClearFiles(ctx context.Context) (*backend.ClearResult, error)
}

// ExportOutcome is the result of an export call. SelectionDiverged is set
// when the current shop selection no longer matches the selection that was
// actually processed and exported, so the operator can re-process first.
type ExportOutcome struct {
	Result            *backend.ExportResult `json:"result"`
	SelectionDiverged bool                  `json:"selection_diverged"`
}

// Status is a read-only snapshot of the controller for rendering.
type Status struct {
	State         State                    `json:"state"`
	ProductFile   *LocalFile               `json:"product_file,omitempty"`
	OrderFile     *LocalFile               `json:"order_file,omitempty"`
	UploadedFiles *backend.UploadedFileSet `json:"uploaded_files,omitempty"`
	Shops         []Shop                   `json:"shops"`
	Result        *backend.ProcessResult   `json:"result,omitempty"`
}
