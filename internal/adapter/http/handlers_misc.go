package http

import (
	"net/http"
	"strconv"

	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/document"
)

// DashboardSummary handles GET /api/v1/dashboard.
func (h *Handlers) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Dashboard.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListAnnouncements handles GET /api/v1/announcements.
func (h *Handlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	items, err := h.Announcements.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "announcements unavailable")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateAnnouncement handles POST /api/v1/announcements (admin and editor).
func (h *Handlers) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[announcement.CreateRequest](w, r)
	if !ok {
		return
	}

	a, err := h.Announcements.Create(r.Context(), &req, operatorName(r))
	if err != nil {
		writeDomainError(w, err, "announcements unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ListCustomers handles GET /api/v1/customers with an optional ?q= filter.
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Customers.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err, "customers unavailable")
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/{id}.
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListDocuments handles GET /api/v1/documents with an optional ?category=
// filter. The catalog is static; no store round trip is involved.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	cat := document.Category(r.URL.Query().Get("category"))
	if cat == "" {
		writeJSON(w, http.StatusOK, document.Catalog())
		return
	}
	writeJSON(w, http.StatusOK, document.ByCategory(cat))
}

// ListHistory handles GET /api/v1/history with an optional ?limit=.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.History.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
