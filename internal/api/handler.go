// Package api exposes the split engine and receipt storage over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/adapters"
	"github.com/fairsplit/fairsplit/internal/metrics"
	"github.com/fairsplit/fairsplit/internal/service"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Handler owns the HTTP routes.
type Handler struct {
	svc    *service.SplitService
	router chi.Router
}

// New creates the handler and mounts all routes.
func New(svc *service.SplitService) *Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/split", h.computeSplit)
		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", h.createReceipt)
			r.Get("/", h.listReceipts)
			r.Get("/{id}", h.getReceipt)
			r.Put("/{id}", h.updateReceipt)
			r.Delete("/{id}", h.deleteReceipt)
			r.Post("/{id}/validate", h.validateSettlement)
		})
	})

	h.router = r
	return h
}

// Router returns the mounted routes.
func (h *Handler) Router() http.Handler {
	return h.router
}

// computeSplit is the stateless compute endpoint: flat receipt in, split
// result out. Nothing is persisted.
func (h *Handler) computeSplit(w http.ResponseWriter, req *http.Request) {
	var flat adapters.FlatReceipt
	if err := json.NewDecoder(req.Body).Decode(&flat); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := adapters.FromFlatReceipt(flat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.ComputeSplit(receipt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toSplitResponse(receipt.ID, result))
}

func (h *Handler) createReceipt(w http.ResponseWriter, req *http.Request) {
	var flat adapters.FlatReceipt
	if err := json.NewDecoder(req.Body).Decode(&flat); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := adapters.FromFlatReceipt(flat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.CreateReceipt(req.Context(), receipt)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, ReceiptResponse{
		Receipt: adapters.ToFlatReceipt(receipt),
		Split:   toSplitResponse(receipt.ID, result),
	})
}

func (h *Handler) getReceipt(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	receipt, result, err := h.svc.GetReceipt(req.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Receipt: adapters.ToFlatReceipt(receipt),
		Split:   toSplitResponse(receipt.ID, result),
	})
}

func (h *Handler) updateReceipt(w http.ResponseWriter, req *http.Request) {
	var flat adapters.FlatReceipt
	if err := json.NewDecoder(req.Body).Decode(&flat); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	flat.ID = chi.URLParam(req, "id")
	receipt, err := adapters.FromFlatReceipt(flat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.UpdateReceipt(req.Context(), receipt)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Receipt: adapters.ToFlatReceipt(receipt),
		Split:   toSplitResponse(receipt.ID, result),
	})
}

func (h *Handler) deleteReceipt(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	if err := h.svc.DeleteReceipt(req.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listReceipts(w http.ResponseWriter, req *http.Request) {
	receipts, err := h.svc.ListReceipts(req.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]adapters.FlatReceipt, 0, len(receipts))
	for i := range receipts {
		out = append(out, adapters.ToFlatReceipt(&receipts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// validateSettlement re-runs the engine on the stored receipt and checks
// the proposed per-person allocation against it.
func (h *Handler) validateSettlement(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	var body ValidateSettlementRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	proposed := make(map[string]decimal.Decimal, len(body.Totals))
	for key, amount := range body.Totals {
		proposed[key] = decimal.NewFromFloat(amount)
	}

	err := h.svc.ValidateSettlement(req.Context(), id, proposed)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ValidateSettlementResponse{Valid: true})
	case errors.Is(err, service.ErrSettlementMismatch):
		writeJSON(w, http.StatusOK, ValidateSettlementResponse{Valid: false, Reason: err.Error()})
	default:
		writeError(w, statusFor(err), err)
	}
}

func statusFor(err error) int {
	var vErr *adapters.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
