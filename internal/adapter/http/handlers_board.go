package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/daoteng/backoffice/internal/domain/board"
	"github.com/daoteng/backoffice/internal/domain/card"
	"github.com/daoteng/backoffice/internal/middleware"
)

// operatorName resolves the display name recorded in the change history.
func operatorName(r *http.Request) string {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		return "系統監控"
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// boardFilter reads the optional card filter from query parameters.
func boardFilter(r *http.Request) board.Filter {
	q := r.URL.Query()
	return board.Filter{
		Query:    q.Get("q"),
		Building: q.Get("building"),
		Created:  q.Get("created"),
	}
}

// ListPipelines handles GET /api/v1/pipelines.
func (h *Handlers) ListPipelines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Boards.Pipelines())
}

// GetCatalog handles GET /api/v1/pipelines/{pipeline}/stages.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Boards.Catalog(urlParam(r, "pipeline"))
	if err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// ListCards handles GET /api/v1/pipelines/{pipeline}/cards.
func (h *Handlers) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Boards.ListCards(r.Context(), urlParam(r, "pipeline"), boardFilter(r))
	if err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// GetBoard handles GET /api/v1/pipelines/{pipeline}/board.
func (h *Handlers) GetBoard(w http.ResponseWriter, r *http.Request) {
	idx, err := h.Boards.Board(r.Context(), urlParam(r, "pipeline"), boardFilter(r))
	if err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

// CreateCard handles POST /api/v1/pipelines/{pipeline}/cards.
func (h *Handlers) CreateCard(w http.ResponseWriter, r *http.Request) {
	c, ok := readJSON[card.Card](w, r)
	if !ok {
		return
	}

	created, err := h.Boards.CreateCard(r.Context(), urlParam(r, "pipeline"), &c, operatorName(r))
	if err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetCard handles GET /api/v1/pipelines/{pipeline}/cards/{id}.
func (h *Handlers) GetCard(w http.ResponseWriter, r *http.Request) {
	c, err := h.Boards.GetCard(r.Context(), urlParam(r, "pipeline"), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "card not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCard handles PATCH /api/v1/pipelines/{pipeline}/cards/{id}.
// The body is forwarded as a raw merge patch so unknown fields survive.
func (h *Handlers) UpdateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	c, err := h.Boards.UpdateCard(r.Context(), urlParam(r, "pipeline"), urlParam(r, "id"), json.RawMessage(patch), operatorName(r))
	if err != nil {
		writeDomainError(w, err, "card not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCard handles DELETE /api/v1/pipelines/{pipeline}/cards/{id}.
func (h *Handlers) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.Boards.DeleteCard(r.Context(), urlParam(r, "pipeline"), urlParam(r, "id"), operatorName(r)); err != nil {
		writeDomainError(w, err, "card not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resolveDropRequest struct {
	CardID   string `json:"cardId"`
	TargetID string `json:"targetId"`
}

type resolveDropResponse struct {
	Move     *board.PendingMove `json:"move,omitempty"`
	Resolved bool               `json:"resolved"`
}

// ResolveDrop handles POST /api/v1/pipelines/{pipeline}/drops. It maps a drop
// target to a stage move without mutating anything; the client follows up
// with a transition proposal when a move comes back.
func (h *Handlers) ResolveDrop(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[resolveDropRequest](w, r)
	if !ok {
		return
	}

	move, resolved, err := h.Boards.ResolveDrop(r.Context(), urlParam(r, "pipeline"), req.CardID, req.TargetID)
	if err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}

	resp := resolveDropResponse{Resolved: resolved}
	if resolved {
		resp.Move = &move
	}
	writeJSON(w, http.StatusOK, resp)
}

type proposeTransitionRequest struct {
	CardID  string `json:"cardId"`
	ToStage string `json:"toStage"`
}

// ProposeTransition handles POST /api/v1/pipelines/{pipeline}/transitions.
func (h *Handlers) ProposeTransition(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[proposeTransitionRequest](w, r)
	if !ok {
		return
	}

	prompt, err := h.Boards.ProposeTransition(r.Context(), urlParam(r, "pipeline"), req.CardID, req.ToStage)
	if err != nil {
		writeDomainError(w, err, "card not found")
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

type commitTransitionRequest struct {
	CardID  string `json:"cardId"`
	Message string `json:"message"`
}

// CommitTransition handles POST /api/v1/pipelines/{pipeline}/transitions/commit.
func (h *Handlers) CommitTransition(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[commitTransitionRequest](w, r)
	if !ok {
		return
	}

	c, err := h.Boards.CommitTransition(r.Context(), urlParam(r, "pipeline"), req.CardID, req.Message, operatorName(r))
	if err != nil {
		writeDomainError(w, err, "card not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type cancelTransitionRequest struct {
	CardID string `json:"cardId"`
}

// CancelTransition handles POST /api/v1/pipelines/{pipeline}/transitions/cancel.
func (h *Handlers) CancelTransition(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[cancelTransitionRequest](w, r)
	if !ok {
		return
	}

	if err := h.Boards.CancelTransition(r.Context(), urlParam(r, "pipeline"), req.CardID); err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PendingTransition handles GET /api/v1/pipelines/{pipeline}/transitions.
func (h *Handlers) PendingTransition(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.Boards.PendingTransition(urlParam(r, "pipeline"))
	if err != nil {
		writeDomainError(w, err, "pipeline not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pending": prompt})
}
