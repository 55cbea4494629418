// Package workflow drives the upload, shop selection, processing and
// export sequence against the processing backend.
//
// The controller owns all transient session state: the locally chosen
// files, the uploaded file handles, the discovered shop list with its
// selection, and the last processing result. Operations are expected to be
// invoked serially by a single operator; responses of overlapping calls
// are ordered by per-operation sequence numbers so only the latest issued
// request may update the session.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/recon-console/internal/backend"
	"github.com/orderdesk/recon-console/internal/infrastructure/config"
	"github.com/orderdesk/recon-console/internal/infrastructure/storage"
	"github.com/orderdesk/recon-console/internal/preflight"
)

// Controller is the workflow state machine.
type Controller struct {
	cfg     *config.Store
	backend Backend
	runs    storage.Repository
	logger  *slog.Logger

	mu          sync.Mutex
	state       State
	product     *LocalFile
	order       *LocalFile
	uploaded    *backend.UploadedFileSet
	shops       []Shop
	result      *backend.ProcessResult
	lastOptions *backend.ProcessOptions

	// Sequence numbers per logical operation; a response is applied only
	// when its number is still the latest issued.
	processSeq uint64
	shopsSeq   uint64
}

// NewController creates a workflow controller. runs may be nil to disable
// run-history recording.
func NewController(cfg *config.Store, be Backend, runs storage.Repository, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:     cfg,
		backend: be,
		runs:    runs,
		logger:  logger.With(slog.String("component", "workflow")),
		state:   StateIdle,
	}
}

// ChooseFile validates the spreadsheet at path and stores it as the
// product or order file. Valid from any state; choosing a file never
// advances the workflow beyond tracking readiness.
func (c *Controller) ChooseFile(kind FileKind, path string) (*LocalFile, error) {
	proc := c.cfg.Get().Processing
	checked, err := preflight.Check(path, proc.MaxFileSize, proc.SupportedFormats)
	if err != nil {
		return nil, backend.NewValidationError("%s file rejected: %v", kind, err)
	}

	file := &LocalFile{
		Path:       checked.Path,
		Name:       checked.Name,
		Size:       checked.Size,
		SheetNames: checked.SheetNames,
		RowCount:   checked.RowCount,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case FileKindProduct:
		c.product = file
	case FileKindOrder:
		c.order = file
	default:
		return nil, backend.NewValidationError("unknown file kind %q", kind)
	}

	if c.state == StateIdle && c.product != nil && c.order != nil {
		c.state = StateFilesChosen
	}

	c.logger.Info("file chosen",
		slog.String("kind", string(kind)),
		slog.String("name", file.Name),
		slog.Int("rows", file.RowCount),
	)
	return file, nil
}

// Upload sends both chosen files to the backend and, on success,
// immediately discovers the shop list. The caller never sequences these
// two steps manually.
func (c *Controller) Upload(ctx context.Context) (*backend.UploadResult, error) {
	c.mu.Lock()
	if c.product == nil || c.order == nil {
		c.mu.Unlock()
		return nil, backend.NewValidationError("both a product file and an order file must be chosen before uploading")
	}
	productPath, orderPath := c.product.Path, c.order.Path
	c.state = StateUploading
	c.mu.Unlock()

	result, err := c.backend.UploadFiles(ctx, productPath, orderPath)

	c.mu.Lock()
	if err != nil {
		c.state = StateFilesChosen
		c.mu.Unlock()
		return nil, err
	}
	if !result.Success {
		c.state = StateFilesChosen
		c.mu.Unlock()
		return nil, &backend.ServerError{Message: result.Message}
	}

	files := result.Files
	c.uploaded = &files
	c.shops = nil
	c.result = nil
	c.lastOptions = nil
	c.state = StateUploaded
	c.mu.Unlock()

	c.logger.Info("files uploaded",
		slog.String("product_file", files.ProductFile),
		slog.String("order_file", files.OrderFile),
	)

	if _, err := c.LoadShops(ctx); err != nil {
		return result, fmt.Errorf("upload succeeded but shop discovery failed: %w", err)
	}
	return result, nil
}

// LoadShops queries the backend for the shop list scoped to the uploaded
// file set. The whole local list is replaced and every selection reset;
// shop identity is name-based and may differ between uploads.
func (c *Controller) LoadShops(ctx context.Context) ([]Shop, error) {
	c.mu.Lock()
	if c.uploaded == nil {
		c.mu.Unlock()
		return nil, backend.NewValidationError("no uploaded file set; upload files before loading shops")
	}
	c.shopsSeq++
	seq := c.shopsSeq
	c.state = StateShopsLoading
	c.mu.Unlock()

	list, err := c.backend.ListShops(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.shopsSeq {
		c.logger.Warn("discarding stale shop list response", slog.Uint64("seq", seq))
		return c.shopsLocked(), nil
	}

	if err != nil {
		c.state = StateUploaded
		return nil, err
	}

	seen := make(map[string]bool, len(list.Shops))
	shops := make([]Shop, 0, len(list.Shops))
	for _, name := range list.Shops {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		shops = append(shops, Shop{Name: name})
	}
	c.shops = shops
	c.state = StateReady

	c.logger.Info("shop list loaded", slog.Int("count", len(shops)))
	return c.shopsLocked(), nil
}

// Shops returns a copy of the current shop list.
func (c *Controller) Shops() []Shop {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shopsLocked()
}

// ToggleShop flips the selection of the named shop.
func (c *Controller) ToggleShop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.shops {
		if c.shops[i].Name == name {
			c.shops[i].Selected = !c.shops[i].Selected
			return nil
		}
	}
	return backend.NewValidationError("unknown shop %q", name)
}

// SelectAll toggles the selection of the filtered subset as a whole: when
// every matching shop is already selected they are all deselected,
// otherwise they are all selected. A nil filter matches every shop.
func (c *Controller) SelectAll(filter func(name string) bool) []Shop {
	c.mu.Lock()
	defer c.mu.Unlock()

	allSelected := true
	matched := false
	for i := range c.shops {
		if filter != nil && !filter(c.shops[i].Name) {
			continue
		}
		matched = true
		if !c.shops[i].Selected {
			allSelected = false
		}
	}
	if !matched {
		return c.shopsLocked()
	}

	target := !allSelected
	for i := range c.shops {
		if filter != nil && !filter(c.shops[i].Name) {
			continue
		}
		c.shops[i].Selected = target
	}
	return c.shopsLocked()
}

// SelectedShops returns the names of the selected shops in list order.
func (c *Controller) SelectedShops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

// Process asks the backend to match orders against the catalog for the
// current selection. An empty selection means all shops. Each call fully
// replaces the previous result; a result with Success=false is a normal
// outcome. Only the latest issued request may update the session.
func (c *Controller) Process(ctx context.Context) (*backend.ProcessResult, error) {
	c.mu.Lock()
	if c.uploaded == nil {
		c.mu.Unlock()
		return nil, backend.NewValidationError("no uploaded file set; upload files before processing")
	}
	proc := c.cfg.Get().Processing
	opts := backend.ProcessOptions{
		SelectedShops:        c.selectedLocked(),
		IncludeClosedOrders:  proc.IncludeClosedOrders,
		IncludeOfflineOrders: proc.IncludeOfflineOrders,
	}
	c.processSeq++
	seq := c.processSeq
	c.state = StateProcessing
	c.mu.Unlock()

	started := time.Now().UTC()
	result, err := c.backend.ProcessData(ctx, opts)
	c.recordRun(storage.RunKindProcess, opts, started, result, err)

	c.mu.Lock()
	defer c.mu.Unlock()

	stale := seq != c.processSeq
	if err != nil {
		if !stale {
			c.state = StateReady
		}
		return nil, err
	}
	if stale {
		c.logger.Warn("discarding stale process response", slog.Uint64("seq", seq))
		return result, nil
	}

	c.result = result
	c.state = StateProcessed
	if result.Success {
		snapshot := opts
		snapshot.SelectedShops = append([]string(nil), opts.SelectedShops...)
		c.lastOptions = &snapshot
	}

	c.logger.Info("processing finished",
		slog.Bool("success", result.Success),
		slog.Int("total_records", result.Data.TotalRecords),
	)
	return result, nil
}

// Export re-sends the exact selection and flags of the last successful
// Process call and returns the download reference. Valid only after a
// successful process; the workflow state is unchanged afterwards.
func (c *Controller) Export(ctx context.Context) (*ExportOutcome, error) {
	c.mu.Lock()
	if c.result == nil || !c.result.Success || c.lastOptions == nil {
		c.mu.Unlock()
		return nil, backend.NewValidationError("no successful processing result to export")
	}
	opts := *c.lastOptions
	opts.SelectedShops = append([]string(nil), c.lastOptions.SelectedShops...)
	diverged := !sameNameSet(c.selectedLocked(), opts.SelectedShops)
	c.state = StateExporting
	c.mu.Unlock()

	if diverged {
		c.logger.Warn("current selection differs from the processed selection; exporting the processed one")
	}

	started := time.Now().UTC()
	result, err := c.backend.ExportData(ctx, opts)
	c.recordExportRun(opts, started, result, err)

	c.mu.Lock()
	c.state = StateProcessed
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &ExportOutcome{Result: result, SelectionDiverged: diverged}, nil
}

// Clear releases the uploaded file set on the backend and resets all local
// session state. Valid from any state with uploaded data.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.uploaded == nil {
		c.mu.Unlock()
		return backend.NewValidationError("no uploaded files to clear")
	}
	c.mu.Unlock()

	if _, err := c.backend.ClearFiles(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.product = nil
	c.order = nil
	c.uploaded = nil
	c.shops = nil
	c.result = nil
	c.lastOptions = nil
	// Invalidate any in-flight responses.
	c.processSeq++
	c.shopsSeq++
	c.state = StateIdle

	c.logger.Info("session cleared")
	return nil
}

// Status returns a snapshot of the session for rendering.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:         c.state,
		ProductFile:   c.product,
		OrderFile:     c.order,
		UploadedFiles: c.uploaded,
		Shops:         c.shopsLocked(),
		Result:        c.result,
	}
}

// State returns the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) shopsLocked() []Shop {
	return append([]Shop(nil), c.shops...)
}

func (c *Controller) selectedLocked() []string {
	selected := make([]string, 0)
	for _, shop := range c.shops {
		if shop.Selected {
			selected = append(selected, shop.Name)
		}
	}
	return selected
}

func (c *Controller) recordRun(kind string, opts backend.ProcessOptions, started time.Time, result *backend.ProcessResult, err error) {
	if c.runs == nil {
		return
	}
	run := &storage.RunRecord{
		ID:                   uuid.NewString(),
		Kind:                 kind,
		StartedAt:            started,
		FinishedAt:           time.Now().UTC(),
		SelectedShops:        opts.SelectedShops,
		IncludeClosedOrders:  opts.IncludeClosedOrders,
		IncludeOfflineOrders: opts.IncludeOfflineOrders,
	}
	switch {
	case err != nil:
		run.Message = err.Error()
	case result != nil:
		run.Success = result.Success
		run.Message = result.Message
		run.TotalRecords = result.Data.TotalRecords
	}
	if saveErr := c.runs.SaveRun(run); saveErr != nil {
		c.logger.Warn("failed to record run", slog.String("error", saveErr.Error()))
	}
}

func (c *Controller) recordExportRun(opts backend.ProcessOptions, started time.Time, result *backend.ExportResult, err error) {
	if c.runs == nil {
		return
	}
	run := &storage.RunRecord{
		ID:                   uuid.NewString(),
		Kind:                 storage.RunKindExport,
		StartedAt:            started,
		FinishedAt:           time.Now().UTC(),
		SelectedShops:        opts.SelectedShops,
		IncludeClosedOrders:  opts.IncludeClosedOrders,
		IncludeOfflineOrders: opts.IncludeOfflineOrders,
	}
	switch {
	case err != nil:
		run.Message = err.Error()
	case result != nil:
		run.Success = result.Success
		run.Message = result.Message
		run.TotalRecords = result.RecordsCount
		run.ExportFilename = result.Filename
	}
	if saveErr := c.runs.SaveRun(run); saveErr != nil {
		c.logger.Warn("failed to record run", slog.String("error", saveErr.Error()))
	}
}

// sameNameSet compares two shop-name lists ignoring order.
func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
