// Package store is the typed data access layer over the shared game
// database. Every fetch-by-id miss returns ErrNotFound.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps a pooled *gorm.DB. It is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Tx runs fn inside a single transaction. The Store passed to fn is bound
// to the transaction; fn must not use the outer Store.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Page selects one page of a listing. Number is 1-indexed; callers clamp
// values below 1 before building a Page.
type Page struct {
	Number int
	Size   int
}

// Offset converts the page number to a 0-indexed row offset.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Size)
}
