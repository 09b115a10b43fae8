package model

// SearchRequest represents a product search request.
// Query is required but may be empty.
type SearchRequest struct {
	Query    *string  `json:"query" form:"q" binding:"required"`
	Category *string  `json:"category,omitempty" form:"category"`
	MinPrice *float64 `json:"min_price,omitempty" form:"min_price"`
	MaxPrice *float64 `json:"max_price,omitempty" form:"max_price"`
}

// QueryText returns the raw query, or "" when absent
func (r *SearchRequest) QueryText() string {
	if r == nil || r.Query == nil {
		return ""
	}
	return *r.Query
}

// SearchResponse represents a search result response
type SearchResponse struct {
	Results  []Document `json:"results"`
	SearchID string     `json:"search_id,omitempty"`
	Took     int64      `json:"took_ms"` // Response time in milliseconds
}

// CategoriesResponse lists the distinct categories in the catalog
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// SearchLogEntry is what gets recorded for every executed search
type SearchLogEntry struct {
	SearchID       string
	Query          string
	Filter         *SearchFilter
	ResultCount    int
	ProductIDs     []string
	ResponseTimeMs int
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem is a single product embedding
type EmbeddingItem struct {
	ProductID string    `json:"product_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ProductEmbedding is the stored embedding of one product
type ProductEmbedding struct {
	ProductID  string    `json:"product_id"`
	Dimensions int       `json:"dimensions"`
	Embedding  []float32 `json:"embedding"`
}

// FeedbackRequest represents user feedback on a search result
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, add_to_cart, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
