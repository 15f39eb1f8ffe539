package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/tracing"
)

// ErrNoDocuments is returned by One when the pipeline yields no row
var ErrNoDocuments = errors.New("query: no documents")

// Querier is the subset of pgxpool.Pool and pgx.Tx used to run pipelines
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pagination describes the page returned by Paginate
type Pagination struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination derives page metadata from a total count
func NewPagination(total int64, page, limit int) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		TotalItems:  total,
		TotalPages:  pages,
		Page:        page,
		Limit:       limit,
		HasNextPage: int64(page) < pages,
		HasPrevPage: page > 1,
	}
}

// Page is one page of documents
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func observe(ctx context.Context, p *Pipeline, op string) (context.Context, func(rows int, err error)) {
	span, ctx := tracing.StartSpan(ctx, "query."+p.Name)
	tracing.SetTag(span, "pipeline", p.Name)
	tracing.SetTag(span, "op", op)
	start := time.Now()

	return ctx, func(rows int, err error) {
		duration := time.Since(start)
		metrics.RecordQuery(p.Name, duration.Seconds(), err)
		logging.FromContext(ctx).LogQuery(p.Name, rows, duration, err)
		tracing.SetTag(span, "rows", rows)
		tracing.Finish(span, err)
	}
}

// All runs the pipeline and decodes every document into T
func All[T any](ctx context.Context, q Querier, p *Pipeline) (items []T, err error) {
	sql, args, err := p.Render()
	if err != nil {
		return nil, err
	}

	ctx, done := observe(ctx, p, "all")
	defer func() { done(len(items), err) }()

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.Name, err)
	}
	defer rows.Close()

	items = make([]T, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("pipeline %s: scan: %w", p.Name, err)
		}
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, fmt.Errorf("pipeline %s: decode: %w", p.Name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.Name, err)
	}

	return items, nil
}

// One runs the pipeline and decodes its first document. It returns
// ErrNoDocuments when there is none.
func One[T any](ctx context.Context, q Querier, p *Pipeline) (*T, error) {
	if _, paged := p.Page(); !paged {
		p = p.With(Paged(1, 1))
	}
	items, err := All[T](ctx, q, p)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoDocuments
	}
	return &items[0], nil
}

// Count runs the count statement of the pipeline
func Count(ctx context.Context, q Querier, p *Pipeline) (total int64, err error) {
	sql, args, err := p.RenderCount()
	if err != nil {
		return 0, err
	}

	ctx, done := observe(ctx, p, "count")
	defer func() { done(1, err) }()

	if err = q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("pipeline %s: count: %w", p.Name, err)
	}
	return total, nil
}

// Paginate runs the count and the page of the pipeline. The count is
// computed independently of the page rows.
func Paginate[T any](ctx context.Context, q Querier, p *Pipeline, page, limit int) (*Page[T], error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("pipeline %s: invalid page %d/%d", p.Name, page, limit)
	}

	total, err := Count(ctx, q, p)
	if err != nil {
		return nil, err
	}

	// Pages past the last one are empty; comparing page numbers avoids
	// overflowing (page-1)*limit
	pagination := NewPagination(total, page, limit)
	items := make([]T, 0)
	if int64(page-1) < pagination.TotalPages {
		items, err = All[T](ctx, q, p.With(Paged(page, limit)))
		if err != nil {
			return nil, err
		}
	}

	return &Page[T]{Items: items, Pagination: pagination}, nil
}
