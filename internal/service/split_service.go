// Package service orchestrates receipt storage and the split calculator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/metrics"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// ErrSettlementMismatch is returned when a proposed settlement does not
// match the engine's computed split.
var ErrSettlementMismatch = errors.New("settlement does not match computed split")

// SplitService provides receipt CRUD and split computation over a storage
// backend. Splits are never persisted: they are recomputed from the stored
// receipt on every read, which is safe because the engine is deterministic.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// ComputeSplit runs the calculation engine on a receipt snapshot without
// touching storage.
func (s *SplitService) ComputeSplit(r *models.Receipt) (*calculator.Result, error) {
	result, err := calculator.ComputeSplit(r)
	if err != nil {
		if errors.Is(err, calculator.ErrReconciliation) {
			metrics.ReconciliationFailures.Inc()
		}
		slog.Error("ComputeSplit failed", "receipt_id", r.ID, "error", err)
		return nil, err
	}

	mode := "itemized"
	if result.UseEqualSplit {
		mode = "equal"
	}
	metrics.SplitsComputed.WithLabelValues(mode).Inc()
	slog.Debug("Split computed",
		"receipt_id", r.ID,
		"mode", mode,
		"total", result.Total,
		"unassigned", result.UnassignedAmount,
		"people", len(result.People),
	)
	return result, nil
}

// CreateReceipt persists a new receipt and returns its computed split.
func (s *SplitService) CreateReceipt(ctx context.Context, r *models.Receipt) (*calculator.Result, error) {
	result, err := s.ComputeSplit(r)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateReceipt(ctx, r); err != nil {
		slog.Error("CreateReceipt failed", "error", err)
		return nil, err
	}
	return result, nil
}

// GetReceipt loads a receipt and recomputes its split.
func (s *SplitService) GetReceipt(ctx context.Context, id string) (*models.Receipt, *calculator.Result, error) {
	r, err := s.store.GetReceipt(ctx, id)
	if err != nil {
		slog.Error("GetReceipt failed", "receipt_id", id, "error", err)
		return nil, nil, err
	}
	result, err := s.ComputeSplit(r)
	if err != nil {
		return nil, nil, err
	}
	return r, result, nil
}

// UpdateReceipt replaces an existing receipt and returns the new split.
func (s *SplitService) UpdateReceipt(ctx context.Context, r *models.Receipt) (*calculator.Result, error) {
	result, err := s.ComputeSplit(r)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateReceipt(ctx, r); err != nil {
		slog.Error("UpdateReceipt failed", "receipt_id", r.ID, "error", err)
		return nil, err
	}
	return result, nil
}

// DeleteReceipt removes a receipt.
func (s *SplitService) DeleteReceipt(ctx context.Context, id string) error {
	if err := s.store.DeleteReceipt(ctx, id); err != nil {
		slog.Error("DeleteReceipt failed", "receipt_id", id, "error", err)
		return err
	}
	return nil
}

// ListReceipts returns all stored receipts, newest first.
func (s *SplitService) ListReceipts(ctx context.Context) ([]models.Receipt, error) {
	receipts, err := s.store.ListReceipts(ctx)
	if err != nil {
		slog.Error("ListReceipts failed", "error", err)
		return nil, err
	}
	return receipts, nil
}

// ValidateSettlement re-runs the engine on the stored receipt and checks a
// proposed per-person allocation against it, to the cent. A nil return
// means the proposal is safe to persist as settled.
func (s *SplitService) ValidateSettlement(ctx context.Context, id string, proposed map[string]decimal.Decimal) error {
	_, result, err := s.GetReceipt(ctx, id)
	if err != nil {
		return err
	}

	if len(proposed) != len(result.Splits) {
		return fmt.Errorf("%w: proposal covers %d people, split has %d",
			ErrSettlementMismatch, len(proposed), len(result.Splits))
	}
	for key, split := range result.Splits {
		amount, ok := proposed[key]
		if !ok {
			return fmt.Errorf("%w: missing person %q", ErrSettlementMismatch, key)
		}
		if money.Cents(amount) != money.Cents(split.Total) {
			return fmt.Errorf("%w: person %q has %s, computed %s",
				ErrSettlementMismatch, key, money.Format(amount), money.Format(split.Total))
		}
	}
	return nil
}
