package http

import (
	"net/http"

	"github.com/daoteng/backoffice/internal/adapter/ws"
	"github.com/daoteng/backoffice/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Auth          *service.AuthService
	Boards        *service.BoardService
	Dashboard     *service.DashboardService
	Announcements *service.AnnouncementService
	Customers     *service.CustomerService
	History       *service.HistoryService
	Hub           *ws.Hub
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
