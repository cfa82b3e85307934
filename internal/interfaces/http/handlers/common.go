// Package handlers implements the HTTP handlers of the public and admin
// surfaces.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// errorResponse is the uniform error body of every endpoint.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an error chain onto a status code and the uniform error
// body. Internal detail never leaks: the body carries the AppError message
// only.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeValidation:
		status = http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeStoreUnavailable:
		status = http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	message := "internal error"
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		message = ae.Message
	}
	c.JSON(status, errorResponse{Code: string(code), Message: message})
}
