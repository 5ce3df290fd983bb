package stage

import (
	"errors"
	"strings"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := &Catalog{
		Name: "test",
		Stages: []Stage{
			{ID: "S1", Title: "Intake", Checks: []string{"confirm contact"}},
			{ID: "S2", Title: "Review"},
			{ID: "S3", Title: "Done"},
		},
		TerminalIDs:    []string{"S3"},
		SharedTemplate: "您好，關於「{username}」案件，目前進度已更新至：{stage}。",
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid catalog, got error: %v", err)
	}
	return c
}

func TestValidate_MissingName(t *testing.T) {
	c := &Catalog{Stages: []Stage{{ID: "S1", Title: "A"}}}
	if err := c.Validate(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestValidate_NoStages(t *testing.T) {
	c := &Catalog{Name: "empty"}
	if err := c.Validate(); !errors.Is(err, ErrNoStages) {
		t.Fatalf("expected ErrNoStages, got %v", err)
	}
}

func TestValidate_DuplicateStageID(t *testing.T) {
	c := &Catalog{
		Name:   "dup",
		Stages: []Stage{{ID: "S1", Title: "A"}, {ID: "S1", Title: "B"}},
	}
	if err := c.Validate(); !errors.Is(err, ErrDuplicateStage) {
		t.Fatalf("expected ErrDuplicateStage, got %v", err)
	}
}

func TestValidate_TerminalNotInCatalog(t *testing.T) {
	c := &Catalog{
		Name:        "bad-terminal",
		Stages:      []Stage{{ID: "S1", Title: "A"}},
		TerminalIDs: []string{"S9"},
	}
	if err := c.Validate(); !errors.Is(err, ErrEmptyTerminalID) {
		t.Fatalf("expected ErrEmptyTerminalID, got %v", err)
	}
}

func TestLookup_Known(t *testing.T) {
	c := testCatalog(t)
	s, err := c.Lookup("S2")
	if err != nil {
		t.Fatalf("expected stage, got error: %v", err)
	}
	if s.Title != "Review" {
		t.Fatalf("expected Review, got %q", s.Title)
	}
}

func TestLookup_Unknown(t *testing.T) {
	c := testCatalog(t)
	if _, err := c.Lookup("S9"); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}

func TestPosition_PreservesOrder(t *testing.T) {
	c := testCatalog(t)
	for i, id := range []string{"S1", "S2", "S3"} {
		if pos := c.Position(id); pos != i {
			t.Fatalf("stage %s: expected position %d, got %d", id, i, pos)
		}
	}
	if pos := c.Position("S9"); pos != -1 {
		t.Fatalf("expected -1 for unknown stage, got %d", pos)
	}
}

func TestIsTerminal(t *testing.T) {
	c := testCatalog(t)
	if !c.IsTerminal("S3") {
		t.Fatal("expected S3 terminal")
	}
	if c.IsTerminal("S1") {
		t.Fatal("expected S1 not terminal")
	}
}

func TestRenderMessage_StageTemplateUsesCustomerName(t *testing.T) {
	c := testCatalog(t)
	c.Stages[1].MessageTemplate = "{username} 您好，文件已進入審核。"
	msg, err := c.RenderMessage("S2", "台北辦公室A", "王小明")
	if err != nil {
		t.Fatalf("expected message, got error: %v", err)
	}
	if !strings.HasPrefix(msg, "王小明") {
		t.Fatalf("expected customer name substitution, got %q", msg)
	}
}

func TestRenderMessage_SharedTemplateUsesCardTitle(t *testing.T) {
	c := testCatalog(t)
	msg, err := c.RenderMessage("S2", "台北辦公室A", "王小明")
	if err != nil {
		t.Fatalf("expected message, got error: %v", err)
	}
	if !strings.Contains(msg, "台北辦公室A") {
		t.Fatalf("expected card title in shared template, got %q", msg)
	}
	if !strings.Contains(msg, "Review") {
		t.Fatalf("expected stage title in shared template, got %q", msg)
	}
}

func TestRenderMessage_NoTemplates(t *testing.T) {
	c := testCatalog(t)
	c.SharedTemplate = ""
	msg, err := c.RenderMessage("S1", "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "" {
		t.Fatalf("expected empty draft, got %q", msg)
	}
}

func TestBuiltinCatalogs_AllValid(t *testing.T) {
	catalogs := BuiltinCatalogs()
	if len(catalogs) != 4 {
		t.Fatalf("expected 4 builtin catalogs, got %d", len(catalogs))
	}
	for _, c := range catalogs {
		if err := c.Validate(); err != nil {
			t.Fatalf("builtin catalog %s invalid: %v", c.Name, err)
		}
	}
}

func TestBuiltinCatalogs_Shapes(t *testing.T) {
	reg, err := NewRegistry("")
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}

	lease, err := reg.Get("lease")
	if err != nil {
		t.Fatalf("expected lease catalog: %v", err)
	}
	if len(lease.Stages) != 8 {
		t.Fatalf("expected 8 lease stages, got %d", len(lease.Stages))
	}
	if lease.SharedTemplate == "" {
		t.Fatal("expected lease shared template")
	}

	regn, err := reg.Get("registration")
	if err != nil {
		t.Fatalf("expected registration catalog: %v", err)
	}
	if len(regn.Stages) != 7 {
		t.Fatalf("expected 7 registration stages, got %d", len(regn.Stages))
	}
	if !regn.IsTerminal("S6") || !regn.IsTerminal("S7") {
		t.Fatal("expected S6 and S7 terminal in registration catalog")
	}

	event, err := reg.Get("event")
	if err != nil {
		t.Fatalf("expected event catalog: %v", err)
	}
	if len(event.Stages) != 6 {
		t.Fatalf("expected 6 event stages, got %d", len(event.Stages))
	}
}

func TestRegistry_UnknownCatalog(t *testing.T) {
	reg, err := NewRegistry("")
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}
	if _, err := reg.Get("nope"); !errors.Is(err, ErrUnknownCatalog) {
		t.Fatalf("expected ErrUnknownCatalog, got %v", err)
	}
}
