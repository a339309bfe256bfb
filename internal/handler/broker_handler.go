package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"llmbroker/internal/csvexport"
	"llmbroker/internal/service"
)

// BrokerHandler handles the response, cache and schema endpoints.
type BrokerHandler struct {
	brokerService service.BrokerService
	instanceID    string
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(brokerService service.BrokerService, instanceID string) *BrokerHandler {
	return &BrokerHandler{brokerService: brokerService, instanceID: instanceID}
}

// GetResponse handles POST /api/v1/responses
// @Summary Get a structured response
// @Description Compose a prompt from the inputs and optional attachment, call the model (or serve the cached answer) and project the configured output fields
// @Tags responses
// @Accept json
// @Produce json
// @Produce text/csv
// @Param request body ResponseRequest true "Inputs and optional attachment"
// @Param format query string false "Set to csv to download the rows as CSV"
// @Success 200 {object} Response{data=ResponseData} "Projected rows"
// @Failure 400 {object} ErrorResponseBody "Invalid request or attachment"
// @Failure 413 {object} ErrorResponseBody "Attachment or image too large"
// @Failure 422 {object} ErrorResponseBody "Attachment could not be decoded"
// @Failure 502 {object} ErrorResponseBody "Model endpoint call failed"
// @Security BearerAuth
// @Router /responses [post]
func (h *BrokerHandler) GetResponse(c *gin.Context) {
	var req ResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a JSON object with an inputs map")
		return
	}

	input := &service.GetResponseInput{
		Inputs:       req.Inputs,
		RefreshCache: req.RefreshCache,
	}
	if req.Attachment != nil {
		input.Attachment = &service.AttachmentInput{
			Filename: req.Attachment.Filename,
			Content:  req.Attachment.Content,
		}
	}

	out, err := h.brokerService.GetResponse(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		h.writeCSV(c, out)
		return
	}

	RespondOK(c, ResponseData{
		Rows:            out.Rows,
		CacheHit:        out.CacheHit,
		EstimatedTokens: out.EstimatedTokens,
		Model:           out.Model,
	})
}

func (h *BrokerHandler) writeCSV(c *gin.Context, out *service.GetResponseOutput) {
	filename := csvexport.BuildFilename(h.instanceID, time.Now())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("X-Cache-Hit", strconv.FormatBool(out.CacheHit))
	c.Status(http.StatusOK)

	if err := csvexport.WriteBOM(c.Writer); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer, h.brokerService.Schema().OutputFields)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteRows(out.Rows); err != nil {
		return
	}
	w.Flush()
}

// InvalidateCache handles DELETE /api/v1/cache
// @Summary Invalidate the response cache
// @Description Remove every cached answer of this broker instance
// @Tags cache
// @Produce json
// @Success 200 {object} Response "Cache cleared"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Admin role required"
// @Failure 500 {object} ErrorResponseBody "Cache store error"
// @Security BearerAuth
// @Router /cache [delete]
func (h *BrokerHandler) InvalidateCache(c *gin.Context) {
	if err := h.brokerService.InvalidateCache(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, nil)
}

// Schema handles GET /api/v1/schema
// @Summary Describe the broker schema
// @Description Declared input fields, output paths, list mode and model
// @Tags schema
// @Produce json
// @Success 200 {object} Response{data=SchemaData} "Broker schema"
// @Security BearerAuth
// @Router /schema [get]
func (h *BrokerHandler) Schema(c *gin.Context) {
	s := h.brokerService.Schema()
	RespondOK(c, SchemaData{
		InputFields:  s.InputFields,
		OutputFields: s.OutputFields,
		ListMode:     s.ListMode,
		Model:        s.Model,
		CacheEnabled: s.CacheEnabled,
	})
}

