package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viant/cpicrag/service"
	"github.com/viant/cpicrag/vectordb/sqlitevec"
)

// Retriever returns the retrieved context for a query.
type Retriever interface {
	Retrieve(ctx context.Context, q service.Query) (string, error)
}

// ExplainRequest is the POST /explain body. A nil Depth (absent or null)
// selects service.DefaultDepth; any string, including "", is echoed as is.
type ExplainRequest struct {
	Gene      string  `json:"gene" binding:"required"`
	Drug      string  `json:"drug" binding:"required"`
	Phenotype string  `json:"phenotype" binding:"required"`
	Depth     *string `json:"depth"`
}

// ExplainResponse is the POST /explain success body.
type ExplainResponse struct {
	RetrievedContext string `json:"retrieved_context"`
	Depth            string `json:"depth"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the explain endpoint.
type Handler struct {
	retriever Retriever
	logger    *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(retriever Retriever, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{retriever: retriever, logger: logger}
}

// Explain retrieves context for a gene, drug and phenotype.
func (h *Handler) Explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	depth := service.DefaultDepth
	if req.Depth != nil {
		depth = *req.Depth
	}
	text, err := h.retriever.Retrieve(c.Request.Context(), service.Query{
		Gene:      req.Gene,
		Drug:      req.Drug,
		Phenotype: req.Phenotype,
		Depth:     depth,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sqlitevec.ErrCollectionNotFound) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Error("retrieve failed", "request_id", c.GetString(requestIDKey), "err", err)
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ExplainResponse{RetrievedContext: text, Depth: depth})
}
