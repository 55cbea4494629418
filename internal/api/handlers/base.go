package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderdesk/recon-console/internal/api/dto"
	"github.com/orderdesk/recon-console/internal/backend"
)

// WriteWorkflowError maps the console's error taxonomy onto HTTP statuses.
// Validation failures are the caller's fault; transport and backend
// failures surface as bad gateway with the underlying message, so the
// operator sees the same text the backend produced.
func WriteWorkflowError(c *gin.Context, err error) {
	var (
		validationErr *backend.ValidationError
		networkErr    *backend.NetworkError
		serverErr     *backend.ServerError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, dto.NewAPIError(dto.ErrCodeValidation, validationErr.Message))
	case errors.As(err, &networkErr):
		c.JSON(http.StatusBadGateway, dto.NewAPIError(dto.ErrCodeNetwork, networkErr.Error()))
	case errors.As(err, &serverErr):
		c.JSON(http.StatusBadGateway, dto.NewAPIError(dto.ErrCodeBackend, serverErr.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewAPIError(dto.ErrCodeInternalError, err.Error()))
	}
}
