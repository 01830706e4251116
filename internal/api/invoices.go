package api

import (
	"bytes"
	"log"
	"net/http"

	"dispensary/m/domain"
	"dispensary/m/internal/invoicing"
	"dispensary/m/internal/reports"
)

func (h *Handler) postInvoice(w http.ResponseWriter, r *http.Request) {
	var req domain.InvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.invoices.PostInvoice(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	detail, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) printInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	detail, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderInvoiceHTML(&buf, h.clinic, detail); err != nil {
		log.Printf("render invoice %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "unable to render invoice")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) previewCart(w http.ResponseWriter, r *http.Request) {
	var req domain.InvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	preview, err := invoicing.PreviewCart(r.Context(), h.prices, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}
