package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/dto"
	"github.com/orderdesk/recon-console/internal/diagnostics"
)

// DiagnosticsHandler triggers connectivity probes against the backend.
type DiagnosticsHandler struct {
	runner *diagnostics.Runner
}

// NewDiagnosticsHandler creates a new diagnostics handler.
func NewDiagnosticsHandler(runner *diagnostics.Runner) *DiagnosticsHandler {
	return &DiagnosticsHandler{runner: runner}
}

// Run handles POST /api/diagnostics/run - the full probe sequence.
func (h *DiagnosticsHandler) Run(c *gin.Context) {
	results := h.runner.RunFull(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewDiagnosticReportResponse(results))
}

// CORS handles POST /api/diagnostics/cors - cross-origin probes only.
func (h *DiagnosticsHandler) CORS(c *gin.Context) {
	results := h.runner.DetectCORSIssues(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewDiagnosticReportResponse(results))
}
