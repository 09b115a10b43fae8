package handler

import (
	"errors"
	"fmt"
	"net/http"

	"grocerysearch/internal/model"
	"grocerysearch/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler serves uploads and reads of product embedding vectors
type EmbeddingHandler struct {
	searchService *service.SearchService
	dimensions    int
}

// NewEmbeddingHandler creates an embedding handler that accepts vectors of the given size
func NewEmbeddingHandler(searchService *service.SearchService, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{searchService: searchService, dimensions: dimensions}
}

// BatchUpdate handles POST /api/v1/embeddings/batch.
// A batch with any vector of the wrong size is rejected whole; unknown
// products are reported per item with 206.
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "embeddings must not be empty"})
		return
	}
	if i := h.firstBadDimension(req.Embeddings); i >= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("embedding at index %d has %d dimensions, expected %d", i, len(req.Embeddings[i].Embedding), h.dimensions),
		})
		return
	}

	stored, itemErrors, err := h.searchService.UpdateEmbeddings(c.Request.Context(), req.Embeddings)
	if err != nil {
		h.fail(c, "update embeddings", err)
		return
	}

	status := http.StatusOK
	if len(itemErrors) > 0 {
		status = http.StatusPartialContent
	}
	c.JSON(status, model.EmbeddingBatchResponse{
		Success: stored,
		Failed:  len(req.Embeddings) - stored,
		Errors:  itemErrors,
	})
}

// Get handles GET /api/v1/products/:id/embedding
func (h *EmbeddingHandler) Get(c *gin.Context) {
	productID := c.Param("id")

	embedding, err := h.searchService.ProductEmbedding(c.Request.Context(), productID)
	if err != nil {
		h.fail(c, "get embedding", err)
		return
	}
	if embedding == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No embedding stored for product " + productID})
		return
	}
	c.JSON(http.StatusOK, embedding)
}

func (h *EmbeddingHandler) firstBadDimension(items []model.EmbeddingItem) int {
	for i, item := range items {
		if len(item.Embedding) != h.dimensions {
			return i
		}
	}
	return -1
}

func (h *EmbeddingHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrUnsupported) {
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op + ": " + err.Error()})
}
