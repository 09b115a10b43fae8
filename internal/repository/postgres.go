package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"grocerysearch/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository stores catalog documents as JSONB rows
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type productRow struct {
	ID       int64          `db:"id"`
	Doc      model.Document `db:"doc"`
	TextRank *float64       `db:"text_rank"`
}

func (p productRow) document() model.Document {
	doc := p.Doc
	if doc == nil {
		doc = model.Document{}
	}
	doc[model.FieldID] = p.ID
	return doc
}

// Find returns documents matching every constraint of the filter
func (r *PostgresRepository) Find(ctx context.Context, filter *model.SearchFilter, limit int) ([]model.Document, error) {
	query, args := buildFindQuery(filter, limit)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	docs := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.document())
	}
	return docs, nil
}

// buildFindQuery translates a SearchFilter into a parameterized SELECT
func buildFindQuery(filter *model.SearchFilter, limit int) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1
	rankExpr := "NULL::float8"

	if filter != nil {
		if filter.Text != "" {
			// any-term match, like a document store $text search
			tsquery := fmt.Sprintf("replace(plainto_tsquery('simple', $%d)::text, '&', '|')::tsquery", argIndex)
			whereClauses = append(whereClauses, "search_vector @@ "+tsquery)
			rankExpr = "ts_rank(search_vector, " + tsquery + ")"
			args = append(args, filter.Text)
			argIndex++
		}
		if filter.Category != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("doc->>'category' = $%d", argIndex))
			args = append(args, *filter.Category)
			argIndex++
		}
		if filter.PriceMin != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("(doc->>'price')::float8 >= $%d", argIndex))
			args = append(args, *filter.PriceMin)
			argIndex++
		}
		if filter.PriceMax != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("(doc->>'price')::float8 <= $%d", argIndex))
			args = append(args, *filter.PriceMax)
			argIndex++
		}
		if q := filter.Quantity; q != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("(doc->>'is_liquid')::boolean = $%d", argIndex))
			args = append(args, q.IsLiquid)
			argIndex++

			// field comes from model constants, never from user input
			whereClauses = append(whereClauses,
				fmt.Sprintf("(doc->>'%s')::float8 BETWEEN $%d AND $%d", q.Field, argIndex, argIndex+1))
			args = append(args, q.Min, q.Max)
			argIndex += 2
		}
	}

	query := fmt.Sprintf(`
		SELECT id, doc, %s AS text_rank
		FROM products
		WHERE %s
		ORDER BY text_rank DESC NULLS LAST, id
		LIMIT $%d
	`, rankExpr, strings.Join(whereClauses, " AND "), argIndex)
	args = append(args, limit)

	return query, args
}

// DistinctCategories returns every category value present in the catalog
func (r *PostgresRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	query := `
		SELECT DISTINCT doc->>'category' AS category
		FROM products
		WHERE doc->>'category' IS NOT NULL
		ORDER BY category
	`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single product. Returns nil when not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (model.Document, error) {
	productID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	var row productRow
	query := `SELECT id, doc, NULL::float8 AS text_rank FROM products WHERE id = $1`
	err = r.db.GetContext(ctx, &row, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return row.document(), nil
}

// GetEmbedding reads a product's vector back from the embedding column.
// Returns nil when the product is unknown or has no embedding.
func (r *PostgresRepository) GetEmbedding(ctx context.Context, productID string) ([]float32, error) {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return nil, nil
	}

	var vec pgvector.Vector
	query := `SELECT embedding FROM products WHERE id = $1 AND embedding IS NOT NULL`
	if err := r.db.GetContext(ctx, &vec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return vec.Slice(), nil
}

// InsertProducts inserts catalog documents in a single transaction.
// Any "_id" carried by the documents is dropped; rows get their own ids.
func (r *PostgresRepository) InsertProducts(ctx context.Context, docs []model.Document, progress func()) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO products (doc) VALUES ($1)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, doc := range docs {
		clean := make(model.Document, len(doc))
		for k, v := range doc {
			if k != model.FieldID {
				clean[k] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, clean); err != nil {
			return 0, fmt.Errorf("document %d: %w", i, err)
		}
		inserted++
		if progress != nil {
			progress()
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// BatchUpdateEmbeddings updates embeddings for multiple products
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE products SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for _, item := range items {
		productID, err := strconv.ParseInt(item.ProductID, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("product_id %s: invalid id", item.ProductID))
			continue
		}
		res, err := stmt.ExecContext(ctx, pgvector.NewVector(item.Embedding), productID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("product_id %s: %v", item.ProductID, err))
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			errs = append(errs, fmt.Sprintf("product_id %s: not found", item.ProductID))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

// LogSearch records an executed search
func (r *PostgresRepository) LogSearch(ctx context.Context, entry model.SearchLogEntry) error {
	query := `
		INSERT INTO search_logs (search_id, query, filter, result_count, returned_product_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	filter, err := filterJSON(entry.Filter)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query,
		entry.SearchID, entry.Query, filter, entry.ResultCount, pq.Array(entry.ProductIDs), entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback records a user action against a logged search
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID, productID, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_product_id = $2, action = $3
		WHERE search_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, searchID, productID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

func filterJSON(filter *model.SearchFilter) (interface{}, error) {
	if filter == nil {
		return nil, nil
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return string(b), nil
}
