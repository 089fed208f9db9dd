// Package storage provides abstractions for persistent receipt storage.
package storage

import (
	"context"
	"errors"

	"github.com/fairsplit/fairsplit/internal/models"
)

// ErrNotFound is returned when a requested receipt does not exist.
var ErrNotFound = errors.New("receipt not found")

// Store defines the interface for receipt storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateReceipt persists a new receipt with its items, assignments and
	// people. Missing IDs are populated by the store.
	CreateReceipt(ctx context.Context, r *models.Receipt) error

	// GetReceipt retrieves a receipt by its ID, including soft-deleted
	// items and assignments. Returns ErrNotFound if it does not exist.
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)

	// UpdateReceipt replaces an existing receipt.
	// Returns ErrNotFound if it does not exist.
	UpdateReceipt(ctx context.Context, r *models.Receipt) error

	// DeleteReceipt removes a receipt and its dependent rows.
	// Returns ErrNotFound if it does not exist.
	DeleteReceipt(ctx context.Context, id string) error

	// ListReceipts returns all receipts, newest first, without their items.
	ListReceipts(ctx context.Context) ([]models.Receipt, error)

	// Close releases any resources held by the store.
	Close() error
}
