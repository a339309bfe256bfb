package handler

import "llmbroker/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// AttachmentRequest is an optional file sent along with the inputs.
type AttachmentRequest struct {
	Filename string `json:"filename" example:"invoice.pdf"`
	Content  string `json:"content" example:"JVBERi0xLjQK..."` // base64
}

// ResponseRequest represents the get-response request body.
type ResponseRequest struct {
	Inputs       map[string]string  `json:"inputs" example:"UserPrompt:Extract the invoice number"`
	Attachment   *AttachmentRequest `json:"attachment,omitempty"`
	RefreshCache bool               `json:"refresh_cache" example:"false"`
}

// --- Response Types ---

// ResponseData is the payload of a successful get-response call.
type ResponseData struct {
	Rows            []domain.ResponseRow `json:"rows"`
	CacheHit        bool                 `json:"cache_hit" example:"false"`
	EstimatedTokens int                  `json:"estimated_tokens" example:"1240"`
	Model           string               `json:"model" example:"gpt-4o-mini"`
}

// SchemaData describes the configured broker contract.
type SchemaData struct {
	InputFields  []string `json:"input_fields" example:"UserPrompt"`
	OutputFields []string `json:"output_fields" example:"invoice.number,invoice.total"`
	ListMode     bool     `json:"list_mode" example:"false"`
	Model        string   `json:"model" example:"gpt-4o-mini"`
	CacheEnabled bool     `json:"cache_enabled" example:"true"`
}

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
