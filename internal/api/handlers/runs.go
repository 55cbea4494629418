package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/dto"
	"github.com/orderdesk/recon-console/internal/infrastructure/storage"
)

// RunsHandler serves the recorded process/export run history.
type RunsHandler struct {
	repo storage.Repository
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{repo: repo}
}

// List handles GET /api/runs - returns recent runs, newest first.
func (h *RunsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// Get handles GET /api/runs/:id - returns a single run.
func (h *RunsHandler) Get(c *gin.Context) {
	run, err := h.repo.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	c.JSON(http.StatusOK, run)
}
