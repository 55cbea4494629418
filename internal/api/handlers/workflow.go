package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/dto"
	"github.com/orderdesk/recon-console/internal/backend"
	"github.com/orderdesk/recon-console/internal/workflow"
)

// WorkflowHandler exposes the upload-select-process-export sequence to the
// browser UI.
type WorkflowHandler struct {
	controller *workflow.Controller
	logger     *slog.Logger
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(controller *workflow.Controller, logger *slog.Logger) *WorkflowHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowHandler{
		controller: controller,
		logger:     logger.With(slog.String("component", "api")),
	}
}

// Upload handles POST /api/workflow/files. The browser sends both
// spreadsheets in one multipart request; the handler stages them locally,
// registers them with the controller and triggers the upload.
func (h *WorkflowHandler) Upload(c *gin.Context) {
	staging, err := os.MkdirTemp("", "recon-upload-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	defer os.RemoveAll(staging)

	fields := []struct {
		name string
		kind workflow.FileKind
	}{
		{"product_file", workflow.FileKindProduct},
		{"order_file", workflow.FileKindOrder},
	}
	for _, field := range fields {
		if _, err := c.FormFile(field.name); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewAPIError(dto.ErrCodeValidation, field.name+" is required"))
			return
		}
	}
	for _, field := range fields {
		file, _ := c.FormFile(field.name)
		path := filepath.Join(staging, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, path); err != nil {
			c.JSON(http.StatusInternalServerError, dto.InternalError())
			return
		}
		if _, err := h.controller.ChooseFile(field.kind, path); err != nil {
			WriteWorkflowError(c, err)
			return
		}
	}

	result, err := h.controller.Upload(c.Request.Context())
	if err != nil {
		WriteWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// State handles GET /api/workflow/state.
func (h *WorkflowHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Status())
}

// Shops handles GET /api/workflow/shops.
func (h *WorkflowHandler) Shops(c *gin.Context) {
	shops := h.controller.Shops()
	c.JSON(http.StatusOK, dto.ShopListResponse{Shops: shops, Count: len(shops)})
}

// ToggleShop handles POST /api/workflow/shops/toggle.
func (h *WorkflowHandler) ToggleShop(c *gin.Context) {
	var req dto.ToggleShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("shop name is required"))
		return
	}
	if err := h.controller.ToggleShop(req.Name); err != nil {
		WriteWorkflowError(c, err)
		return
	}
	shops := h.controller.Shops()
	c.JSON(http.StatusOK, dto.ShopListResponse{Shops: shops, Count: len(shops)})
}

// SelectAll handles POST /api/workflow/shops/select-all.
func (h *WorkflowHandler) SelectAll(c *gin.Context) {
	var req dto.SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	var filter func(name string) bool
	if req.Filter != "" {
		needle := strings.ToLower(req.Filter)
		filter = func(name string) bool {
			return strings.Contains(strings.ToLower(name), needle)
		}
	}

	shops := h.controller.SelectAll(filter)
	c.JSON(http.StatusOK, dto.ShopListResponse{Shops: shops, Count: len(shops)})
}

// Process handles POST /api/workflow/process.
func (h *WorkflowHandler) Process(c *gin.Context) {
	result, err := h.controller.Process(c.Request.Context())
	if err != nil {
		WriteWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export handles POST /api/workflow/export.
func (h *WorkflowHandler) Export(c *gin.Context) {
	outcome, err := h.controller.Export(c.Request.Context())
	if err != nil {
		WriteWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Clear handles DELETE /api/workflow/files.
func (h *WorkflowHandler) Clear(c *gin.Context) {
	if err := h.controller.Clear(c.Request.Context()); err != nil {
		// Clearing an already empty session is not an operator mistake
		// worth a failure status in the UI.
		if backend.IsValidation(err) {
			c.JSON(http.StatusOK, dto.MessageResponse{Message: "nothing to clear"})
			return
		}
		WriteWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "uploaded files cleared"})
}
