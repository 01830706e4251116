package api

import (
	"net/http"
	"strconv"
	"strings"

	"dispensary/m/domain"
)

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req domain.MedicineInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	med, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, med)
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	var (
		medicines []domain.Medicine
		err       error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		medicines, err = h.catalog.Search(r.Context(), q)
	} else {
		medicines, err = h.catalog.List(r.Context(), queryBool(r, "include_inactive"))
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	med, err := h.catalog.Find(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, med)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req domain.MedicineUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	med, err := h.catalog.Update(r.Context(), id, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.prices.Invalidate(r.Context(), id)
	respondJSON(w, http.StatusOK, med)
}

func (h *Handler) setMedicineActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid medicine id")
			return
		}
		if err := h.catalog.SetActive(r.Context(), id, active); err != nil {
			respondDomainError(w, err)
			return
		}
		h.prices.Invalidate(r.Context(), id)
		respondJSON(w, http.StatusOK, map[string]any{"id": id, "active": active})
	}
}

type stockRequest struct {
	Qty    int64         `json:"qty"`
	Delta  int64         `json:"delta"`
	Reason domain.Reason `json:"reason"`
	Ref    string        `json:"ref"`
}

func (h *Handler) stockIn(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	qty, err := h.stock.StockIn(r.Context(), id, req.Qty, req.Reason, req.Ref)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"medicine_id": id, "stock_qty": qty})
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Reason == "" {
		req.Reason = domain.ReasonAdjustment
	}
	qty, err := h.stock.AdjustStock(r.Context(), id, req.Delta, req.Reason, req.Ref)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"medicine_id": id, "stock_qty": qty})
}

func (h *Handler) medicineMoves(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	moves, err := h.ledger.History(r.Context(), id, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moves)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.LowStock(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}
