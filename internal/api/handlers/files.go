package handlers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/backend"
)

// BackendFiles is the file-oriented slice of the backend client used by the
// files handler.
type BackendFiles interface {
	ListFiles(ctx context.Context) (*backend.FileList, error)
	DownloadExport(ctx context.Context, filename string, w io.Writer) (int64, error)
}

// FilesHandler proxies backend file listing and export downloads so the
// browser only ever talks to the console origin.
type FilesHandler struct {
	client BackendFiles
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(client BackendFiles) *FilesHandler {
	return &FilesHandler{client: client}
}

// List handles GET /api/workflow/files - the files currently held by the
// backend.
func (h *FilesHandler) List(c *gin.Context) {
	list, err := h.client.ListFiles(c.Request.Context())
	if err != nil {
		WriteWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Download handles GET /api/download/:filename - streams an exported file
// through to the browser.
func (h *FilesHandler) Download(c *gin.Context) {
	filename := c.Param("filename")

	c.Header("Content-Type", exportContentType(filename))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if _, err := h.client.DownloadExport(c.Request.Context(), filename, c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			WriteWorkflowError(c, err)
			return
		}
		// Mid-stream failure: the status line is already out, all we can
		// do is abort the connection.
		_ = c.Error(err)
		c.Abort()
	}
}

// exportContentType maps the export formats the backend can produce onto
// their MIME types.
func exportContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
