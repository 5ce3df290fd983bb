package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daoteng/backoffice/internal/adapter/otel"
	"github.com/daoteng/backoffice/internal/domain"
	"github.com/daoteng/backoffice/internal/domain/board"
	"github.com/daoteng/backoffice/internal/domain/card"
	"github.com/daoteng/backoffice/internal/domain/gate"
	"github.com/daoteng/backoffice/internal/domain/history"
	"github.com/daoteng/backoffice/internal/domain/pipeline"
	"github.com/daoteng/backoffice/internal/domain/stage"
	"github.com/daoteng/backoffice/internal/port/database"
	"github.com/daoteng/backoffice/internal/port/messagequeue"
)

// BoardService is the pipeline engine. One instance serves every configured
// pipeline; per-pipeline state is limited to the transition gates.
type BoardService struct {
	store     database.Store
	queue     messagequeue.Queue
	pipelines *pipeline.Registry
	catalogs  *stage.Registry
	gates     map[string]*gate.Gate
	metrics   *otel.Metrics
	logger    *slog.Logger
}

// NewBoardService creates the board engine and one transition gate per
// configured pipeline.
func NewBoardService(store database.Store, queue messagequeue.Queue, pipelines *pipeline.Registry, catalogs *stage.Registry, metrics *otel.Metrics, logger *slog.Logger) (*BoardService, error) {
	gates := make(map[string]*gate.Gate)
	for _, def := range pipelines.All() {
		catalog, err := catalogs.Get(def.CatalogName)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", def.Name, err)
		}
		gates[def.Name] = gate.New(catalog)
	}

	return &BoardService{
		store:     store,
		queue:     queue,
		pipelines: pipelines,
		catalogs:  catalogs,
		gates:     gates,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Pipelines returns the configured pipeline definitions.
func (s *BoardService) Pipelines() []pipeline.Definition {
	return s.pipelines.All()
}

// Catalog returns the stage catalog backing the named pipeline.
func (s *BoardService) Catalog(pipelineName string) (*stage.Catalog, error) {
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return nil, err
	}
	return s.catalogs.Get(def.CatalogName)
}

// ListCards returns the pipeline's cards, normalized and with derived
// financial fields recomputed, newest first as stored.
func (s *BoardService) ListCards(ctx context.Context, pipelineName string, filter board.Filter) ([]card.Card, error) {
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Get(def.CatalogName)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.ListDocuments(ctx, def.Collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", def.Collection, err)
	}

	now := time.Now()
	cards := make([]card.Card, 0, len(docs))
	for _, doc := range docs {
		var c card.Card
		if err := json.Unmarshal(doc.Data, &c); err != nil {
			s.logger.Warn("skipping unreadable document",
				"collection", def.Collection, "id", doc.ID, "error", err)
			continue
		}
		c.ID = doc.ID
		c.UpdatedAt = doc.UpdatedAt
		c.Normalize(catalog.First().ID, now)
		c.Recompute()
		if !def.Matches(&c) {
			continue
		}
		cards = append(cards, c)
	}

	return filter.Apply(cards, now), nil
}

// Board returns the pipeline's cards grouped into stage buckets, with cards
// in unknown stages surfaced in the orphan bucket.
func (s *BoardService) Board(ctx context.Context, pipelineName string, filter board.Filter) (board.Index, error) {
	catalog, err := s.Catalog(pipelineName)
	if err != nil {
		return board.Index{}, err
	}
	cards, err := s.ListCards(ctx, pipelineName, filter)
	if err != nil {
		return board.Index{}, err
	}
	return board.GroupByStage(catalog, cards), nil
}

// GetCard returns one card by ID.
func (s *BoardService) GetCard(ctx context.Context, pipelineName, id string) (*card.Card, error) {
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Get(def.CatalogName)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(ctx, def.Collection, id)
	if err != nil {
		return nil, err
	}

	var c card.Card
	if err := json.Unmarshal(doc.Data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal card %s: %w", id, err)
	}
	c.ID = doc.ID
	c.UpdatedAt = doc.UpdatedAt
	c.Normalize(catalog.First().ID, time.Now())
	c.Recompute()
	return &c, nil
}

// CreateCard validates and stores a new card in the pipeline's first stage,
// publishes the change, and records a history entry.
func (s *BoardService) CreateCard(ctx context.Context, pipelineName string, c *card.Card, operator string) (*card.Card, error) {
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Get(def.CatalogName)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	if c.ID == "" {
		c.ID = newCardID(def.IDPrefix)
	}
	c.Stage = catalog.First().ID
	if def.ProductLine != "" && !def.Matches(c) {
		c.ProductLines = append(c.ProductLines, def.ProductLine)
	}
	c.Normalize(catalog.First().ID, time.Now())
	c.Recompute()

	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal card: %w", err)
	}

	doc, err := s.store.PutDocument(ctx, def.Collection, c.ID, data)
	if err != nil {
		return nil, fmt.Errorf("store card: %w", err)
	}
	c.UpdatedAt = doc.UpdatedAt

	s.metrics.CardsCreated.Add(ctx, 1)
	s.publishChange(ctx, def.Collection, c.ID, messagequeue.ChangeCreated)
	s.appendHistory(ctx, history.FieldUpdate(c.ID, c.Title, operator, "新增卡片"))

	return c, nil
}

// UpdateCard applies a partial update to a card. Keys in the patch replace
// the stored keys; derived financial fields are recomputed and persisted
// after the merge.
func (s *BoardService) UpdateCard(ctx context.Context, pipelineName, id string, patch json.RawMessage, operator string) (*card.Card, error) {
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Get(def.CatalogName)
	if err != nil {
		return nil, err
	}

	if !json.Valid(patch) {
		return nil, fmt.Errorf("%w: patch is not valid JSON", domain.ErrValidation)
	}
	if err := rejectDerivedKeys(patch); err != nil {
		return nil, err
	}

	merged, err := s.store.MergeDocument(ctx, def.Collection, id, patch)
	if err != nil {
		return nil, err
	}

	var c card.Card
	if err := json.Unmarshal(merged.Data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal merged card: %w", err)
	}
	c.ID = id
	c.Normalize(catalog.First().ID, time.Now())
	c.Recompute()

	// Persist the recomputed derived fields so other readers of the raw
	// document see consistent numbers.
	data, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal card: %w", err)
	}
	doc, err := s.store.PutDocument(ctx, def.Collection, id, data)
	if err != nil {
		return nil, fmt.Errorf("store card: %w", err)
	}
	c.UpdatedAt = doc.UpdatedAt

	s.publishChange(ctx, def.Collection, id, messagequeue.ChangeUpdated)
	s.appendHistory(ctx, history.FieldUpdate(id, c.Title, operator, updatedKeys(patch)))

	return &c, nil
}

// DeleteCard removes a card and publishes the change.
func (s *BoardService) DeleteCard(ctx context.Context, pipelineName, id string, operator string) error {
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return err
	}

	c, err := s.GetCard(ctx, pipelineName, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, def.Collection, id); err != nil {
		return err
	}

	s.publishChange(ctx, def.Collection, id, messagequeue.ChangeDeleted)
	s.appendHistory(ctx, history.FieldUpdate(id, c.Title, operator, "刪除卡片"))
	return nil
}

// ResolveDrop reports what dropping a dragged card on targetID would do.
// A false second return means the drop is a no-op.
func (s *BoardService) ResolveDrop(ctx context.Context, pipelineName, cardID, targetID string) (board.PendingMove, bool, error) {
	catalog, err := s.Catalog(pipelineName)
	if err != nil {
		return board.PendingMove{}, false, err
	}
	cards, err := s.ListCards(ctx, pipelineName, board.Filter{})
	if err != nil {
		return board.PendingMove{}, false, err
	}
	move, ok := board.ResolveDrop(catalog, cards, cardID, targetID)
	return move, ok, nil
}

// ProposeTransition opens the confirmation gate for a stage move and returns
// the prompt with the destination checklist and notification draft.
func (s *BoardService) ProposeTransition(ctx context.Context, pipelineName, cardID, toStage string) (*gate.Prompt, error) {
	g, ok := s.gates[pipelineName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrUnknownPipeline, pipelineName)
	}

	c, err := s.GetCard(ctx, pipelineName, cardID)
	if err != nil {
		return nil, err
	}
	if c.Stage == toStage {
		return nil, fmt.Errorf("%w: card is already in stage %s", domain.ErrValidation, toStage)
	}

	prompt, err := g.Propose(c, board.PendingMove{CardID: cardID, ToStage: toStage})
	if err != nil {
		return nil, err
	}

	s.metrics.TransitionsProposed.Add(ctx, 1)
	return prompt, nil
}

// CommitTransition confirms the pending move, persists the stage change and
// resets the card's stage entry date. If the write fails the prompt is
// reinstated so the operator can retry or cancel.
func (s *BoardService) CommitTransition(ctx context.Context, pipelineName, cardID, message, operator string) (*card.Card, error) {
	g, ok := s.gates[pipelineName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrUnknownPipeline, pipelineName)
	}
	def, err := s.pipelines.Get(pipelineName)
	if err != nil {
		return nil, err
	}

	prompt, err := g.Confirm(cardID)
	if err != nil {
		return nil, err
	}
	toStage := prompt.ToStage.ID

	ctx, span := otel.StartTransitionSpan(ctx, pipelineName, cardID, prompt.FromStage, toStage)
	defer span.End()

	patch, err := json.Marshal(map[string]string{
		"stage":          toStage,
		"stageStartedAt": time.Now().Format(card.DateLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}

	if _, err := s.store.MergeDocument(ctx, def.Collection, cardID, patch); err != nil {
		g.Reinstate(prompt)
		s.metrics.CommitFailures.Add(ctx, 1)
		s.logger.Error("transition commit failed, prompt reinstated",
			"pipeline", pipelineName, "card", cardID, "error", err)
		return nil, fmt.Errorf("commit transition: %w", err)
	}

	s.metrics.TransitionsCommitted.Add(ctx, 1)
	s.publishChange(ctx, def.Collection, cardID, messagequeue.ChangeUpdated)
	s.appendHistory(ctx, history.StageChange(cardID, prompt.CardTitle, operator, prompt.FromStage, toStage))

	if message != "" {
		s.logger.Info("transition notification",
			"pipeline", pipelineName, "card", cardID, "message", message)
	}

	return s.GetCard(ctx, pipelineName, cardID)
}

// CancelTransition discards the pending prompt with no side effect.
func (s *BoardService) CancelTransition(ctx context.Context, pipelineName, cardID string) error {
	g, ok := s.gates[pipelineName]
	if !ok {
		return fmt.Errorf("%w: %s", pipeline.ErrUnknownPipeline, pipelineName)
	}
	if err := g.Cancel(cardID); err != nil {
		return err
	}
	s.metrics.TransitionsCancelled.Add(ctx, 1)
	return nil
}

// PendingTransition returns the pipeline's pending prompt, or nil when idle.
func (s *BoardService) PendingTransition(pipelineName string) (*gate.Prompt, error) {
	g, ok := s.gates[pipelineName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrUnknownPipeline, pipelineName)
	}
	return g.Pending(), nil
}

// publishChange emits a change-feed message; feed failures are logged, not
// returned, because the write already committed.
func (s *BoardService) publishChange(ctx context.Context, collection, cardID, kind string) {
	payload, err := json.Marshal(messagequeue.CardChangedPayload{
		Collection: collection,
		CardID:     cardID,
		Kind:       kind,
	})
	if err != nil {
		s.logger.Error("marshal change payload", "error", err)
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectCardsChanged(collection), payload); err != nil {
		s.logger.Error("publish change", "collection", collection, "card", cardID, "error", err)
	}
}

func (s *BoardService) appendHistory(ctx context.Context, e history.Entry) {
	if err := s.store.AppendHistory(ctx, e); err != nil {
		s.logger.Error("append history", "card", e.CardID, "error", err)
	}
}

// derivedFields are recomputed from their inputs and never edited directly.
var derivedFields = []string{"actualRentInclTax", "contractMonths", "totalContractAmount"}

func rejectDerivedKeys(patch json.RawMessage) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return fmt.Errorf("%w: patch must be a JSON object", domain.ErrValidation)
	}
	for _, f := range derivedFields {
		if _, ok := keys[f]; ok {
			return fmt.Errorf("%w: %s is derived and cannot be set", domain.ErrValidation, f)
		}
	}
	return nil
}

// updatedKeys renders the patch's field names for the history entry.
func updatedKeys(patch json.RawMessage) string {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return "更新資料"
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	if len(names) == 0 {
		return "更新資料"
	}
	sort.Strings(names)
	return "更新欄位: " + strings.Join(names, ", ")
}

// newCardID generates a prefixed card identifier, e.g. "L-3f2a9c1d".
func newCardID(prefix string) string {
	id := uuid.NewString()
	return prefix + id[:8]
}
