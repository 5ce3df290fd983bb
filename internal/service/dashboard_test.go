package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/card"
	"github.com/daoteng/backoffice/internal/domain/history"
)

func TestDashboardService_Summary(t *testing.T) {
	store := newMemStore()
	boards := newTestBoardService(t, store, newStubQueue())
	svc := NewDashboardService(boards, store)
	ctx := context.Background()

	if _, err := boards.CreateCard(ctx, "cases", &card.Card{
		Title: "甲案", Building: "四維館", RentExclTax: 100000,
	}, "op"); err != nil {
		t.Fatal(err)
	}
	if _, err := boards.CreateCard(ctx, "cases", &card.Card{
		Title: "乙案", Building: "光復館", RentExclTax: 50000,
	}, "op"); err != nil {
		t.Fatal(err)
	}

	// A registration card in a terminal stage counts as terminal.
	done, _ := json.Marshal(map[string]any{
		"title": "已結案登記", "stage": "S6", "productLines": []string{"工商登記"},
	})
	if _, err := store.PutDocument(ctx, "members", "R-done", done); err != nil {
		t.Fatal(err)
	}

	if err := store.CreateAnnouncement(ctx, &announcement.Announcement{
		ID: "a-1", Title: "公告", Content: "內容", Category: announcement.CategoryNotice, Date: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if len(sum.Pipelines) != 4 {
		t.Fatalf("expected 4 pipeline rows, got %d", len(sum.Pipelines))
	}
	cases := sum.Pipelines[0]
	if cases.Name != "cases" {
		t.Fatalf("expected cases row first, got %s", cases.Name)
	}
	if cases.Active != 2 || cases.Terminal != 0 {
		t.Errorf("expected 2 active / 0 terminal, got %d/%d", cases.Active, cases.Terminal)
	}
	regs := sum.Pipelines[1]
	if regs.Name != "registrations" || regs.Terminal != 1 {
		t.Errorf("expected 1 terminal registration, got %+v", regs)
	}

	if len(sum.Buildings) != 2 {
		t.Fatalf("expected 2 buildings, got %d", len(sum.Buildings))
	}
	for _, b := range sum.Buildings {
		if b.Building == "四維館" {
			if b.Monthly != 105000 {
				t.Errorf("expected 四維館 monthly 105000, got %d", b.Monthly)
			}
			if b.Cards != 1 {
				t.Errorf("expected 1 card in 四維館, got %d", b.Cards)
			}
		}
	}

	if len(sum.Announcements) != 1 {
		t.Errorf("expected 1 announcement, got %d", len(sum.Announcements))
	}
}

func TestDashboardService_OverdueCards(t *testing.T) {
	store := newMemStore()
	boards := newTestBoardService(t, store, newStubQueue())
	svc := NewDashboardService(boards, store)
	ctx := context.Background()

	tenDaysAgo := time.Now().AddDate(0, 0, -10).Format(card.DateLayout)
	stale, _ := json.Marshal(map[string]any{
		"title": "卡住的案子", "stage": "S2", "stageStartedAt": tenDaysAgo,
	})
	if _, err := store.PutDocument(ctx, "cases", "L-stale", stale); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(sum.OverdueCards) != 1 {
		t.Fatalf("expected 1 overdue card (threshold 7d), got %d", len(sum.OverdueCards))
	}
	oc := sum.OverdueCards[0]
	if oc.CardID != "L-stale" || oc.DwellDays != 10 {
		t.Errorf("unexpected overdue card %+v", oc)
	}
	if sum.Pipelines[0].Overdue != 1 {
		t.Errorf("expected overdue count 1 on cases row, got %d", sum.Pipelines[0].Overdue)
	}
}

func TestOverdueMonitor_ScanAlertsOnce(t *testing.T) {
	store := newMemStore()
	boards := newTestBoardService(t, store, newStubQueue())
	monitor := NewOverdueMonitor(boards, store, discardLogger())
	ctx := context.Background()

	tenDaysAgo := time.Now().AddDate(0, 0, -10).Format(card.DateLayout)
	stale, _ := json.Marshal(map[string]any{
		"title": "逾期案", "stage": "S2", "stageStartedAt": tenDaysAgo,
	})
	if _, err := store.PutDocument(ctx, "cases", "L-stale", stale); err != nil {
		t.Fatal(err)
	}

	if n := monitor.Scan(ctx); n != 1 {
		t.Fatalf("expected 1 alert on first scan, got %d", n)
	}
	// Second scan does not alert the same card again.
	if n := monitor.Scan(ctx); n != 0 {
		t.Errorf("expected 0 alerts on second scan, got %d", n)
	}

	entries, _ := store.ListHistory(ctx, 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Action != history.ActionOverdueAlert {
		t.Errorf("expected overdue alert action, got %s", entries[0].Action)
	}
	if entries[0].User != "系統監控" {
		t.Errorf("expected system operator, got %s", entries[0].User)
	}
}

func TestOverdueMonitor_TerminalCardsSkipped(t *testing.T) {
	store := newMemStore()
	boards := newTestBoardService(t, store, newStubQueue())
	monitor := NewOverdueMonitor(boards, store, discardLogger())
	ctx := context.Background()

	longAgo := time.Now().AddDate(0, 0, -100).Format(card.DateLayout)
	done, _ := json.Marshal(map[string]any{
		"title": "已結案老登記", "stage": "S6", "createdAt": longAgo,
		"productLines": []string{"工商登記"},
	})
	if _, err := store.PutDocument(ctx, "members", "R-done", done); err != nil {
		t.Fatal(err)
	}

	if n := monitor.Scan(ctx); n != 0 {
		t.Errorf("expected no alerts for terminal cards, got %d", n)
	}
}
