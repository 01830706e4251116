package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"dispensary/m/domain"
	"dispensary/m/internal/cache"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/config"
	"dispensary/m/internal/events"
	"dispensary/m/internal/invoicing"
	"dispensary/m/internal/ledger"
	"dispensary/m/internal/patients"
	"dispensary/m/internal/stock"
)

// Options configures a Handler. Zero values are usable: no CORS origins
// means "*", a nil Publisher drops events and a nil Redis client reads
// prices straight from the catalog.
type Options struct {
	Clinic         config.Clinic
	AllowedOrigins []string
	Publisher      events.Publisher
	Redis          *redis.Client
	Clock          func() time.Time
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	catalog  *catalog.Store
	patients *patients.Store
	ledger   *ledger.Ledger
	stock    *stock.Service
	invoices *invoicing.Engine
	prices   *cache.PriceCache
	clinic   config.Clinic
	origins  []string
	now      func() time.Time
}

// New constructs a Handler.
func New(db *sqlx.DB, opts Options) *Handler {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	store := catalog.New(db)
	return &Handler{
		db:       db,
		catalog:  store,
		patients: patients.New(db),
		ledger:   ledger.New(db),
		stock:    stock.New(db, opts.Publisher, stock.WithClock(now)),
		invoices: invoicing.New(db, opts.Publisher, invoicing.WithClock(now)),
		prices:   cache.NewPriceCache(opts.Redis, store, cache.DefaultTTL),
		clinic:   opts.Clinic,
		origins:  origins,
		now:      now,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/medicines", func(r chi.Router) {
		r.Post("/", h.createMedicine)
		r.Get("/", h.listMedicines)
		r.Get("/low-stock", h.lowStock)
		r.Get("/{id}", h.getMedicine)
		r.Put("/{id}", h.updateMedicine)
		r.Post("/{id}/deactivate", h.setMedicineActive(false))
		r.Post("/{id}/activate", h.setMedicineActive(true))
		r.Post("/{id}/stock-in", h.stockIn)
		r.Post("/{id}/adjust", h.adjustStock)
		r.Get("/{id}/moves", h.medicineMoves)
	})

	r.Route("/patients", func(r chi.Router) {
		r.Post("/", h.createPatient)
		r.Get("/", h.listPatients)
		r.Get("/{id}", h.getPatient)
		r.Put("/{id}", h.updatePatient)
		r.Post("/{id}/deactivate", h.setPatientActive(false))
		r.Post("/{id}/activate", h.setPatientActive(true))
		r.Get("/{id}/invoices", h.patientInvoices)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Post("/", h.postInvoice)
		r.Get("/{id}", h.getInvoice)
		r.Get("/{id}/print", h.printInvoice)
	})

	r.Post("/cart/preview", h.previewCart)

	r.Get("/reports/sales", h.salesReport)
	r.Get("/inventory/reconcile", h.reconcile)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps an error kind to its HTTP status. Storage failures
// are logged and reported without driver details.
func respondDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.StockError
	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":       stockErr.Error(),
			"medicine_id": stockErr.MedicineID,
			"available":   stockErr.Available,
			"requested":   stockErr.Requested,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidReference):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
