package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"grocerysearch/internal/cache"
	"grocerysearch/internal/logger"
	"grocerysearch/internal/metrics"
	"grocerysearch/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultResultLimit caps the number of documents returned by a search
const DefaultResultLimit = 50

// ProductStore is the document store the search runs against
type ProductStore interface {
	// Find returns at most limit documents matching every constraint of filter.
	Find(ctx context.Context, filter *model.SearchFilter, limit int) ([]model.Document, error)
	// DistinctCategories returns the category values present in the store.
	DistinctCategories(ctx context.Context) ([]string, error)
	// GetByID returns a single document, or nil when it does not exist.
	GetByID(ctx context.Context, id string) (model.Document, error)
}

// SearchLogger records executed searches and the feedback they receive
type SearchLogger interface {
	LogSearch(ctx context.Context, entry model.SearchLogEntry) error
	LogFeedback(ctx context.Context, searchID, productID, action string) error
}

// EmbeddingStore persists product embedding vectors
type EmbeddingStore interface {
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	// GetEmbedding returns nil when the product has no stored vector.
	GetEmbedding(ctx context.Context, productID string) ([]float32, error)
}

// CategoryCache caches the category listing
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
}

// SearchService handles search business logic
type SearchService struct {
	store       ProductStore
	extractor   *QuantityExtractor
	logger      *zap.Logger
	searchLog   SearchLogger
	embeddings  EmbeddingStore
	categories  CategoryCache
	resultLimit int
}

// NewSearchService creates a new search service
func NewSearchService(store ProductStore, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		store:       store,
		extractor:   NewQuantityExtractor(logger),
		logger:      logger,
		resultLimit: DefaultResultLimit,
	}
}

// WithResultLimit overrides the result cap
func (s *SearchService) WithResultLimit(limit int) *SearchService {
	if limit > 0 {
		s.resultLimit = limit
	}
	return s
}

// WithSearchLogger enables search and feedback logging
func (s *SearchService) WithSearchLogger(l SearchLogger) *SearchService {
	s.searchLog = l
	return s
}

// WithEmbeddingStore enables embedding uploads and reads
func (s *SearchService) WithEmbeddingStore(e EmbeddingStore) *SearchService {
	s.embeddings = e
	return s
}

// WithCategoryCache enables read-through caching of the category listing
func (s *SearchService) WithCategoryCache(c CategoryCache) *SearchService {
	s.categories = c
	return s
}

// Search interprets the query, builds the composite filter and runs it against the store
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	startTime := time.Now()
	log := logger.FromContext(ctx, s.logger)
	raw := req.QueryText()

	quantity, residual := s.extractor.Extract(raw)
	if quantity != nil {
		metrics.QuantityExtractedTotal.WithLabelValues(string(quantity.Kind)).Inc()
	}

	filter, err := BuildFilter(quantity, residual, req.Category, req.MinPrice, req.MaxPrice)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("search filter rejected", zap.String("query", raw), zap.Error(err))
		return nil, &SearchError{Op: "build filter", Err: err}
	}

	if filter.IsEmpty() {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeEmptyFilter).Inc()
		return &model.SearchResponse{
			Results: []model.Document{},
			Took:    time.Since(startTime).Milliseconds(),
		}, nil
	}

	storeStart := time.Now()
	docs, err := s.store.Find(ctx, filter, s.resultLimit)
	metrics.StoreDuration.WithLabelValues("find").Observe(time.Since(storeStart).Seconds())
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("search failed", zap.String("query", raw), zap.Error(err))
		return nil, &SearchError{Op: "query store", Err: err}
	}

	if len(docs) > s.resultLimit {
		docs = docs[:s.resultLimit]
	}
	results := make([]model.Document, 0, len(docs))
	productIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		normalized := normalizeDocument(doc)
		results = append(results, normalized)
		if id, ok := normalized[model.FieldID].(string); ok {
			productIDs = append(productIDs, id)
		}
	}

	took := time.Since(startTime).Milliseconds()
	metrics.SearchesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	log.Debug("search completed",
		zap.String("query", raw),
		zap.Any("filter", filter),
		zap.Int("results", len(results)),
	)

	resp := &model.SearchResponse{
		Results: results,
		Took:    took,
	}

	// Log search (non-blocking)
	if s.searchLog != nil {
		resp.SearchID = uuid.NewString()
		entry := model.SearchLogEntry{
			SearchID:       resp.SearchID,
			Query:          raw,
			Filter:         filter,
			ResultCount:    len(results),
			ProductIDs:     productIDs,
			ResponseTimeMs: int(took),
		}
		go func() {
			if err := s.searchLog.LogSearch(context.Background(), entry); err != nil {
				s.logger.Warn("failed to log search", zap.String("search_id", entry.SearchID), zap.Error(err))
			}
		}()
	}

	return resp, nil
}

// ListCategories returns the distinct catalog categories, sorted ascending
func (s *SearchService) ListCategories(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx, s.logger)

	if s.categories != nil {
		cached, err := s.categories.GetCategories(ctx)
		switch {
		case err == nil:
			return sortedUnique(cached), nil
		case !errors.Is(err, cache.ErrCacheMiss):
			log.Warn("category cache read failed", zap.Error(err))
		}
	}

	storeStart := time.Now()
	categories, err := s.store.DistinctCategories(ctx)
	metrics.StoreDuration.WithLabelValues("distinct_categories").Observe(time.Since(storeStart).Seconds())
	if err != nil {
		log.Error("listing categories failed", zap.Error(err))
		return nil, &SearchError{Op: "list categories", Err: err}
	}
	categories = sortedUnique(categories)

	if s.categories != nil {
		if err := s.categories.SetCategories(ctx, categories); err != nil {
			log.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// GetProduct retrieves a single product by ID. Returns nil when not found.
func (s *SearchService) GetProduct(ctx context.Context, id string) (model.Document, error) {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("get product failed", zap.String("id", id), zap.Error(err))
		return nil, &SearchError{Op: "get product", Err: err}
	}
	if doc == nil {
		return nil, nil
	}
	return normalizeDocument(doc), nil
}

// UpdateEmbeddings stores embeddings for multiple products
func (s *SearchService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string, error) {
	if s.embeddings == nil {
		return 0, nil, ErrUnsupported
	}
	success, errs := s.embeddings.BatchUpdateEmbeddings(ctx, items)
	return success, errs, nil
}

// ProductEmbedding returns the stored vector for a product, or nil when none was uploaded
func (s *SearchService) ProductEmbedding(ctx context.Context, productID string) (*model.ProductEmbedding, error) {
	if s.embeddings == nil {
		return nil, ErrUnsupported
	}
	vec, err := s.embeddings.GetEmbedding(ctx, productID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("get embedding failed", zap.String("id", productID), zap.Error(err))
		return nil, &SearchError{Op: "get embedding", Err: err}
	}
	if vec == nil {
		return nil, nil
	}
	return &model.ProductEmbedding{ProductID: productID, Dimensions: len(vec), Embedding: vec}, nil
}

// LogFeedback records a user action on a search result
func (s *SearchService) LogFeedback(ctx context.Context, searchID, productID, action string) error {
	if s.searchLog == nil {
		return ErrUnsupported
	}
	if err := s.searchLog.LogFeedback(ctx, searchID, productID, action); err != nil {
		return &SearchError{Op: "log feedback", Err: err}
	}
	return nil
}

func sortedUnique(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	slices.Sort(out)
	return slices.Compact(out)
}
