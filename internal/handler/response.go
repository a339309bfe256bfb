package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"llmbroker/internal/domain"
	"llmbroker/internal/llm"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rateLimited *llm.RateLimitError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrMissingFilename):
		return http.StatusBadRequest, "MISSING_FILENAME", "attachment filename is required"
	case errors.Is(err, domain.ErrEmptyContent):
		return http.StatusBadRequest, "EMPTY_CONTENT", "attachment content is empty"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT",
			"unsupported attachment format; allowed: pdf, xlsx, docx, csv, txt, html, png, jpg, jpeg, gif, bmp, webp"
	case errors.Is(err, domain.ErrMalformedAttachment):
		return http.StatusBadRequest, "MALFORMED_ATTACHMENT", err.Error()
	case errors.Is(err, domain.ErrDecode):
		return http.StatusUnprocessableEntity, "DECODE_FAILED", "attachment could not be decoded"
	case errors.Is(err, domain.ErrNoExtractableContent):
		return http.StatusUnprocessableEntity, "NO_EXTRACTABLE_CONTENT", "attachment has no extractable text or image"
	case errors.Is(err, domain.ErrAttachmentTooLarge):
		return http.StatusRequestEntityTooLarge, "ATTACHMENT_TOO_LARGE", "attachment exceeds maximum allowed size"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image exceeds maximum allowed size after resizing"
	case errors.As(err, &rateLimited):
		return http.StatusBadGateway, "UPSTREAM_RATE_LIMITED", "model endpoint is rate limiting requests; retry after " + rateLimited.RetryAfter.String()
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway, "UPSTREAM_ERROR", "model endpoint call failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	requestID, _ := c.Get("request_id")
	if status >= 500 {
		slog.Error("request failed", "request_id", requestID, "status", status, "error", err)
	} else {
		slog.Debug("request rejected", "request_id", requestID, "status", status, "error", err)
	}
	RespondError(c, status, code, msg)
}
