package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/title-fetcher/internal/batch"
	"go.uber.org/zap"
)

// maxRequestBytes bounds the size of a submitted URL list.
const maxRequestBytes = 1 << 20

var errRequestTooLarge = errors.New("request body too large")

// Processor runs a raw, newline separated URL list as one batch.
type Processor interface {
	Process(ctx context.Context, raw string) batch.BatchResult
}

type HTTPHandler struct {
	processor Processor
	logger    *zap.Logger
}

func NewHTTPHandler(processor Processor, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/titles", h.FetchTitles)
	}
}

type fetchTitlesRequest struct {
	URLs string `json:"urls" form:"urls"`
}

// FetchTitles accepts the URL list as a text/plain body, a JSON object
// {"urls": "..."} or a form field named urls.
func (h *HTTPHandler) FetchTitles(c *gin.Context) {
	raw, err := readURLs(c)
	if err != nil {
		h.logger.Warn("Rejected titles request", zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, errRequestTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	result := h.processor.Process(c.Request.Context(), raw)
	if result.HasError() {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func readURLs(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)

	switch c.ContentType() {
	case gin.MIMEJSON:
		var req fetchTitlesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", wrapBodyError("invalid JSON body", err)
		}
		return req.URLs, nil
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		var req fetchTitlesRequest
		if err := c.ShouldBind(&req); err != nil {
			return "", wrapBodyError("invalid form body", err)
		}
		return req.URLs, nil
	default:
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", wrapBodyError("failed to read body", err)
		}
		return string(body), nil
	}
}

func wrapBodyError(msg string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", errRequestTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
