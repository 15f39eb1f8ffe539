package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
)

var (
	// ErrNotFound is returned when a lookup or an owner-filtered write
	// matches no row
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on a unique constraint violation
	ErrConflict = errors.New("already exists")
	// ErrInvalid is returned when a row violates a check constraint
	ErrInvalid = errors.New("invalid row")
)

// Postgres error codes mapped to repository errors
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// translate maps driver errors to repository sentinels, keeping the cause
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrConflict, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrNotFound, pgErr.ConstraintName)
		case codeCheckViolation, codeInvalidText:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalid, pgErr.Message)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// observe records the outcome of a repository call. Not-found results are
// not failures of the store.
func observe(op string, start time.Time, err *error) {
	status := "success"
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		status = "failed"
	}
	metrics.RecordDatabaseOperation(op, status, time.Since(start).Seconds())
}
