package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/dto"
)

// Health handles the health check request.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewHealthResponse())
}
