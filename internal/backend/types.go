package backend

// UploadedFileSet holds the server-side handles returned after a successful
// upload. The names refer to files stored by the backend, not local paths.
type UploadedFileSet struct {
	ProductFile string `json:"product_file"`
	OrderFile   string `json:"order_file"`
}

// UploadResult is the response of POST /upload/files.
type UploadResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Files    UploadedFileSet `json:"files"`
	Analysis map[string]any  `json:"analysis,omitempty"`
}

// ShopList is the response of GET /data/shops.
type ShopList struct {
	Shops []string `json:"shops"`
	Total int      `json:"total"`
}

// ProcessOptions selects which orders the backend matches and computes
// costs for. An empty SelectedShops means "all shops" and is encoded as
// null on the wire.
type ProcessOptions struct {
	SelectedShops        []string `json:"selected_shops"`
	IncludeClosedOrders  bool     `json:"include_closed_orders"`
	IncludeOfflineOrders bool     `json:"include_offline_orders"`
}

// ProcessData carries the matched records of a process call. Records are
// row maps keyed by column name; Columns preserves the server-side order.
type ProcessData struct {
	Records      []map[string]any `json:"records"`
	TotalRecords int              `json:"total_records"`
	Columns      []string         `json:"columns"`
}

// ProcessAnalysis carries the per-run analysis the backend computes
// alongside the matched records.
type ProcessAnalysis struct {
	Summary        map[string]any `json:"summary,omitempty"`
	ShopAnalysis   map[string]any `json:"shop_analysis,omitempty"`
	ProcessingInfo map[string]any `json:"processing_info,omitempty"`
}

// ProcessResult is the response of POST /data/process. A response with
// Success=false is a normal outcome (for example, no rows matched the
// filter), not a transport failure.
type ProcessResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     ProcessData     `json:"data"`
	Analysis ProcessAnalysis `json:"analysis"`
}

// ExportResult is the response of POST /data/export.
type ExportResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Filename     string `json:"filename"`
	RecordsCount int    `json:"records_count"`
	DownloadURL  string `json:"download_url"`
}

// FileInfo describes one uploaded file on the backend.
type FileInfo struct {
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	SizeMB     float64 `json:"size_mb"`
	UploadTime string  `json:"upload_time"`
}

// FileList is the response of GET /files/list.
type FileList struct {
	Files []FileInfo `json:"files"`
	Total int        `json:"total"`
}

// ClearResult is the response of DELETE /files/clear.
type ClearResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
