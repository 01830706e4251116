package api

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"dispensary/m/internal/reports"
)

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := reports.ParseDay(raw)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		day = parsed
	}
	report, err := reports.LoadDailySales(r.Context(), h.db, day)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" || format == "json" {
		respondJSON(w, http.StatusOK, report)
		return
	}

	var buf bytes.Buffer
	if err := reports.Write(&buf, report, format); err != nil {
		if format != reports.FormatCSV && format != reports.FormatXLSX {
			respondDomainError(w, err)
			return
		}
		log.Printf("write sales report: %v", err)
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}
	contentType := "text/csv; charset=utf-8"
	if format == reports.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+reports.FileName(day, format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	diffs, err := h.ledger.Reconcile(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"consistent":    len(diffs) == 0,
		"discrepancies": diffs,
	})
}
