package api

import (
	"net/http"
	"strings"

	"dispensary/m/domain"
)

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var req domain.PatientInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.patients.Create(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Patient
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		list, err = h.patients.Search(r.Context(), q)
	} else {
		list, err = h.patients.List(r.Context(), queryBool(r, "include_inactive"))
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	p, err := h.patients.Find(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	var req domain.PatientInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.patients.Update(r.Context(), id, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) setPatientActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid patient id")
			return
		}
		if err := h.patients.SetActive(r.Context(), id, active); err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"id": id, "active": active})
	}
}

func (h *Handler) patientInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	if _, err := h.patients.Find(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	list, err := h.invoices.ListByPatient(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
