package dto

import (
	"time"

	"github.com/orderdesk/recon-console/internal/diagnostics"
	"github.com/orderdesk/recon-console/internal/workflow"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// MessageResponse carries a plain informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ShopListResponse is returned by the shops endpoints.
type ShopListResponse struct {
	Shops []workflow.Shop `json:"shops"`
	Count int             `json:"count"`
}

// DiagnosticReportResponse is the ordered report of one diagnostic run.
type DiagnosticReportResponse struct {
	Results []diagnostics.Result `json:"results"`
	Passed  int                  `json:"passed"`
	Failed  int                  `json:"failed"`
}

// NewDiagnosticReportResponse aggregates a probe report.
func NewDiagnosticReportResponse(results []diagnostics.Result) DiagnosticReportResponse {
	report := DiagnosticReportResponse{Results: results}
	for _, r := range results {
		if r.Success {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report
}
