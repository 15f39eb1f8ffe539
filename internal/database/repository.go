package database

import (
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
)

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Querier exposes the pool to the query executor
func (r *Repository) Querier() query.Querier {
	return r.db.Pool
}
