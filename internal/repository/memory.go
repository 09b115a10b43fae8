package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"grocerysearch/internal/model"
)

// MemoryRepository is an in-memory catalog with the same contract as the
// Postgres store. Text search is an any-term, case-insensitive token match over
// search_tags, item_name and brand_name.
type MemoryRepository struct {
	mu         sync.RWMutex
	nextID     int64
	products   []model.Document
	embeddings map[string][]float32
	searchLogs map[string]*memorySearchLog
}

type memorySearchLog struct {
	entry            model.SearchLogEntry
	clickedProductID string
	action           string
}

// NewMemoryRepository creates an in-memory repository holding docs.
// Documents without an "_id" get a sequential one.
func NewMemoryRepository(docs ...model.Document) *MemoryRepository {
	r := &MemoryRepository{
		embeddings: make(map[string][]float32),
		searchLogs: make(map[string]*memorySearchLog),
	}
	r.add(docs)
	return r
}

// InsertProducts appends documents to the catalog
func (r *MemoryRepository) InsertProducts(_ context.Context, docs []model.Document, progress func()) (int, error) {
	r.add(docs)
	if progress != nil {
		for range docs {
			progress()
		}
	}
	return len(docs), nil
}

func (r *MemoryRepository) add(docs []model.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, doc := range docs {
		copied := make(model.Document, len(doc)+1)
		for k, v := range doc {
			copied[k] = v
		}
		if _, ok := copied[model.FieldID]; !ok {
			r.nextID++
			copied[model.FieldID] = r.nextID
		}
		r.products = append(r.products, copied)
	}
}

// Find returns documents matching every constraint of the filter, in insertion order
func (r *MemoryRepository) Find(ctx context.Context, filter *model.SearchFilter, limit int) ([]model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var terms []string
	if filter != nil && filter.Text != "" {
		terms = tokenize(filter.Text)
	}

	results := []model.Document{}
	for _, doc := range r.products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && len(results) >= limit {
			break
		}
		if filter != nil && !matches(doc, filter, terms) {
			continue
		}
		results = append(results, doc)
	}
	return results, nil
}

func matches(doc model.Document, filter *model.SearchFilter, terms []string) bool {
	if filter.Text != "" && !matchesText(doc, terms) {
		return false
	}
	if filter.Category != nil {
		category, ok := doc.StringValue(model.FieldCategory)
		if !ok || category != *filter.Category {
			return false
		}
	}
	if filter.PriceMin != nil || filter.PriceMax != nil {
		price, ok := doc.Float(model.FieldPrice)
		if !ok || !filter.PriceMatches(price) {
			return false
		}
	}
	if q := filter.Quantity; q != nil {
		isLiquid, ok := doc.Bool(model.FieldIsLiquid)
		if !ok || isLiquid != q.IsLiquid {
			return false
		}
		value, ok := doc.Float(q.Field)
		if !ok || !q.Contains(value) {
			return false
		}
	}
	return true
}

func matchesText(doc model.Document, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	tokens := make(map[string]struct{})
	for _, field := range model.TextFields {
		for _, tok := range tokenize(doc.Text(field)) {
			tokens[tok] = struct{}{}
		}
	}
	for _, term := range terms {
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}

// DistinctCategories returns the category values present in the catalog
func (r *MemoryRepository) DistinctCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, doc := range r.products {
		category, ok := doc.StringValue(model.FieldCategory)
		if !ok {
			continue
		}
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

// GetByID retrieves a single product. Returns nil when not found.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.products {
		if docID, _ := doc.ID(); docID == id {
			return doc, nil
		}
	}
	return nil, nil
}

// BatchUpdateEmbeddings stores embeddings for known products
func (r *MemoryRepository) BatchUpdateEmbeddings(_ context.Context, items []model.EmbeddingItem) (int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	known := make(map[string]struct{}, len(r.products))
	for _, doc := range r.products {
		id, _ := doc.ID()
		known[id] = struct{}{}
	}

	success := 0
	var errs []string
	for _, item := range items {
		if _, ok := known[item.ProductID]; !ok {
			errs = append(errs, fmt.Sprintf("product_id %s: not found", item.ProductID))
			continue
		}
		r.embeddings[item.ProductID] = item.Embedding
		success++
	}
	return success, errs
}

// GetEmbedding returns a copy of the stored embedding, or nil when there is none
func (r *MemoryRepository) GetEmbedding(_ context.Context, productID string) ([]float32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.embeddings[productID]
	if !ok {
		return nil, nil
	}
	out := make([]float32, len(e))
	copy(out, e)
	return out, nil
}

// LogSearch records an executed search
func (r *MemoryRepository) LogSearch(_ context.Context, entry model.SearchLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchLogs[entry.SearchID] = &memorySearchLog{entry: entry}
	return nil
}

// LogFeedback records a user action against a logged search.
// Unknown search ids are ignored, matching an UPDATE that touches no rows.
func (r *MemoryRepository) LogFeedback(_ context.Context, searchID, productID, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log, ok := r.searchLogs[searchID]; ok {
		log.clickedProductID = productID
		log.action = action
	}
	return nil
}

// SearchLog returns a logged search and the feedback recorded against it
func (r *MemoryRepository) SearchLog(searchID string) (entry model.SearchLogEntry, clickedProductID, action string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log, ok := r.searchLogs[searchID]
	if !ok {
		return model.SearchLogEntry{}, "", "", false
	}
	return log.entry, log.clickedProductID, log.action, true
}
