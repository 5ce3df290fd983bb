package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/daoteng/backoffice/internal/adapter/ws"
	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/customer"
	"github.com/daoteng/backoffice/internal/domain/history"
)

func seedMember(t *testing.T, store *memStore, id string, fields map[string]any) {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.PutDocument(context.Background(), "members", id, data); err != nil {
		t.Fatal(err)
	}
}

func TestCustomerService_ListNormalizesDefaults(t *testing.T) {
	store := newMemStore()
	svc := NewCustomerService(store, nil, time.Minute, discardLogger())
	ctx := context.Background()

	seedMember(t, store, "m-1", map[string]any{})

	got, err := svc.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(got))
	}

	c := got[0]
	if c.CompanyName != "未定義公司" {
		t.Errorf("expected default company name, got %s", c.CompanyName)
	}
	if c.TaxID != "無統編" {
		t.Errorf("expected default tax ID, got %s", c.TaxID)
	}
	if c.Status != customer.StatusRenting {
		t.Errorf("expected default status, got %s", c.Status)
	}
	if c.SpecialRequirements == nil {
		t.Error("expected empty requirements slice, got nil")
	}
}

func TestCustomerService_Search(t *testing.T) {
	store := newMemStore()
	svc := NewCustomerService(store, nil, time.Minute, discardLogger())
	ctx := context.Background()

	seedMember(t, store, "m-1", map[string]any{"companyName": "鴻海精密", "taxId": "12345678"})
	seedMember(t, store, "m-2", map[string]any{"companyName": "台灣大車隊", "taxId": "87654321"})

	got, err := svc.List(ctx, "鴻海")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CompanyName != "鴻海精密" {
		t.Fatalf("expected 鴻海精密 only, got %+v", got)
	}

	// Tax ID substring also matches.
	got, err = svc.List(ctx, "8765")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "m-2" {
		t.Fatalf("expected m-2 by tax ID, got %+v", got)
	}

	got, err = svc.List(ctx, "沒有這間")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestCustomerService_Get(t *testing.T) {
	store := newMemStore()
	svc := NewCustomerService(store, nil, time.Minute, discardLogger())
	ctx := context.Background()

	seedMember(t, store, "m-1", map[string]any{
		"companyName": "上海商銀",
		"specialRequirements": []map[string]any{
			{"date": "2026-08-01", "category": "硬體", "content": "加裝門禁卡"},
		},
	})

	c, err := svc.Get(ctx, "m-1")
	if err != nil {
		t.Fatal(err)
	}
	if c.CompanyName != "上海商銀" {
		t.Errorf("company = %s", c.CompanyName)
	}
	if len(c.SpecialRequirements) != 1 || c.SpecialRequirements[0].Category != customer.RequirementHardware {
		t.Errorf("unexpected requirements %+v", c.SpecialRequirements)
	}
}

func TestAnnouncementService_CreateBroadcasts(t *testing.T) {
	store := newMemStore()
	queue := newStubQueue()
	hub := &recordingHub{}
	svc := NewAnnouncementService(store, queue, hub, discardLogger())
	ctx := context.Background()

	a, err := svc.Create(ctx, &announcement.CreateRequest{
		Title:   "八月結算提醒",
		Content: "請於月底前完成",
	}, "管理員")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if a.Category != announcement.CategoryNotice {
		t.Errorf("expected default notice category, got %s", a.Category)
	}
	if a.Author != "管理員" {
		t.Errorf("author = %s", a.Author)
	}
	if a.Date.IsZero() {
		t.Error("expected server-assigned date")
	}

	types := hub.eventTypes()
	if len(types) != 1 || types[0] != ws.EventAnnouncementPublished {
		t.Errorf("expected announcement broadcast, got %v", types)
	}
	subjects := queue.publishedSubjects()
	if len(subjects) != 1 || subjects[0] != "announcements.changed" {
		t.Errorf("expected announcements.changed publish, got %v", subjects)
	}
}

func TestAnnouncementService_ListPinnedFirst(t *testing.T) {
	store := newMemStore()
	svc := NewAnnouncementService(store, newStubQueue(), &recordingHub{}, discardLogger())
	ctx := context.Background()

	old := announcement.Announcement{ID: "a-1", Title: "舊", Content: "x",
		Category: announcement.CategoryNotice, Date: time.Now().Add(-time.Hour)}
	pinned := announcement.Announcement{ID: "a-2", Title: "置頂", Content: "x",
		Category: announcement.CategoryImportant, IsPinned: true, Date: time.Now().Add(-2 * time.Hour)}
	fresh := announcement.Announcement{ID: "a-3", Title: "新", Content: "x",
		Category: announcement.CategoryNotice, Date: time.Now()}
	for _, a := range []announcement.Announcement{old, pinned, fresh} {
		if err := store.CreateAnnouncement(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 announcements, got %d", len(got))
	}
	if got[0].ID != "a-2" {
		t.Errorf("expected pinned first, got %s", got[0].ID)
	}
	if got[1].ID != "a-3" || got[2].ID != "a-1" {
		t.Errorf("expected newest-first after pinned, got %s, %s", got[1].ID, got[2].ID)
	}
}

func TestHistoryService_DefaultLimit(t *testing.T) {
	store := newMemStore()
	svc := NewHistoryService(store, 2)
	ctx := context.Background()

	for _, title := range []string{"一", "二", "三"} {
		if err := store.AppendHistory(ctx, history.FieldUpdate("c-1", title, "op", "更新資料")); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected default limit 2, got %d entries", len(got))
	}
	// Newest first.
	if got[0].CardTitle != "三" {
		t.Errorf("expected newest entry first, got %s", got[0].CardTitle)
	}
}
