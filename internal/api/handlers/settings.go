package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/dto"
	"github.com/orderdesk/recon-console/internal/infrastructure/config"
)

// SettingsHandler exposes the runtime configuration store.
type SettingsHandler struct {
	store *config.Store
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(store *config.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Get())
}

// Update handles PUT /api/settings. Only the sections and fields present
// in the request are changed.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	var err error
	if req.API != nil {
		_, err = h.store.UpdateAPI(*req.API)
	}
	if err == nil && req.Processing != nil {
		_, err = h.store.UpdateProcessing(*req.Processing)
	}
	if err == nil && req.UI != nil {
		_, err = h.store.UpdateUI(*req.UI)
	}
	if err == nil && req.Export != nil {
		_, err = h.store.UpdateExport(*req.Export)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewAPIError(dto.ErrCodeInternalError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.store.Get())
}

// Reset handles POST /api/settings/reset.
func (h *SettingsHandler) Reset(c *gin.Context) {
	cfg, err := h.store.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewAPIError(dto.ErrCodeInternalError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, cfg)
}
