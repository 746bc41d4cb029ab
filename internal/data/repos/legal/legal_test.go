package legal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lexgraph-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/platform/ctxutil"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
)

func TestJurisdictionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewJurisdictionRepo(db, testutil.Logger(t))

	intl := &domain.Jurisdiction{Code: "INTERNATIONAL", Name: "International", Layer: domain.LayerInternational}
	if err := repo.Create(dbc, intl); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ua := &domain.Jurisdiction{Code: "UA", Name: "Ukraine", Layer: domain.LayerNational, ParentID: &intl.ID}
	eu := &domain.Jurisdiction{Code: "EU", Name: "European Union", Layer: domain.LayerRegional, ParentID: &intl.ID}
	n, err := repo.CreateIgnoreDuplicates(dbc, []*domain.Jurisdiction{ua, eu})
	if err != nil || n != 2 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}
	n, err = repo.CreateIgnoreDuplicates(dbc, []*domain.Jurisdiction{{Code: "UA", Name: "dup", Layer: domain.LayerNational}})
	if err != nil || n != 0 {
		t.Fatalf("CreateIgnoreDuplicates(dup): n=%d err=%v", n, err)
	}

	rows, err := repo.GetByCodes(dbc, []string{"UA", "NOPE", "EU", "UA"})
	if err != nil || len(rows) != 2 || rows[0].Code != "UA" || rows[1].Code != "EU" {
		t.Fatalf("GetByCodes: rows=%v err=%v", rows, err)
	}
	if got, err := repo.GetByCode(dbc, "XX"); err != nil || got != nil {
		t.Fatalf("GetByCode(missing): got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, ua.ID); err != nil || got == nil || got.ParentID == nil || *got.ParentID != intl.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if all, err := repo.List(dbc); err != nil || len(all) != 3 {
		t.Fatalf("List: len=%d err=%v", len(all), err)
	}

	// Last: a failed statement aborts the surrounding Postgres transaction.
	if err := repo.Create(dbc, &domain.Jurisdiction{Code: "EU", Name: "again", Layer: domain.LayerRegional}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create(dup) want ErrConflict, got %v", err)
	}
}

func TestLegalDocumentBumpVersion(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLegalDocumentRepo(db, testutil.Logger(t))

	us := testutil.SeedJurisdiction(t, ctx, tx, "US", domain.LayerNational, nil)
	doc, _ := testutil.SeedDocument(t, ctx, tx, us.ID, "Privacy Act", "Agencies shall protect records.")

	ok, err := repo.BumpVersion(dbc, doc.ID, 1, map[string]any{"normalized_content": "v2"})
	if err != nil || !ok {
		t.Fatalf("BumpVersion(1): ok=%v err=%v", ok, err)
	}
	ok, err = repo.BumpVersion(dbc, doc.ID, 1, nil)
	if err != nil || ok {
		t.Fatalf("BumpVersion(stale): ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(dbc, doc.ID)
	if err != nil || got == nil || got.Version != 2 || got.NormalizedContent != "v2" {
		t.Fatalf("GetByID after bump: got=%+v err=%v", got, err)
	}
}

func TestLegalDocumentSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLegalDocumentRepo(db, testutil.Logger(t))

	us := testutil.SeedJurisdiction(t, ctx, tx, "US", domain.LayerNational, nil)
	eu := testutil.SeedJurisdiction(t, ctx, tx, "EU", domain.LayerRegional, nil)
	testutil.SeedDocument(t, ctx, tx, us.ID, "Sanctions Regulations", "Blocking of property.")
	testutil.SeedDocument(t, ctx, tx, eu.ID, "GDPR", "Processing of personal data under sanctions review.")
	testutil.SeedDocument(t, ctx, tx, eu.ID, "100% Rule", "Other text.")

	if rows, err := repo.Search(dbc, "SANCTIONS", nil, 10, 0); err != nil || len(rows) != 2 {
		t.Fatalf("Search(unscoped): len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.Search(dbc, "sanctions", []uuid.UUID{eu.ID}, 10, 0); err != nil || len(rows) != 1 || rows[0].Title != "GDPR" {
		t.Fatalf("Search(eu): rows=%v err=%v", rows, err)
	}
	if rows, err := repo.Search(dbc, "100%", nil, 10, 0); err != nil || len(rows) != 1 {
		t.Fatalf("Search(escaped): len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.ListByJurisdictions(dbc, []uuid.UUID{}, 0, 0); err != nil || len(rows) != 3 {
		t.Fatalf("ListByJurisdictions(empty): len=%d err=%v", len(rows), err)
	}
}

func TestSearchFoldsCyrillicCase(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	docs := NewLegalDocumentRepo(db, log)
	obligations := NewLegalObligationRepo(db, log)
	templates := NewLegalTemplateRepo(db, log)

	ua := testutil.SeedJurisdiction(t, ctx, tx, "UA", domain.LayerNational, nil)
	doc, _ := testutil.SeedDocument(t, ctx, tx, ua.ID, "Закон про благодійність", "Благодійна організація звітує щороку.")
	testutil.SeedDocument(t, ctx, tx, ua.ID, "Податковий кодекс", "Інший текст.")
	testutil.SeedObligation(t, ctx, tx, doc.ID, ua.ID, "Подати ЗВІТ до податкового органу")
	testutil.SeedTemplate(t, ctx, tx, "Звіт благодійної організації", &ua.ID, "charity")

	for _, q := range []string{"закон", "Закон", "ЗАКОН"} {
		rows, err := docs.Search(dbc, q, nil, 10, 0)
		if err != nil || len(rows) != 1 || rows[0].ID != doc.ID {
			t.Fatalf("documents.Search(%q): rows=%d err=%v", q, len(rows), err)
		}
	}
	if rows, err := docs.Search(dbc, "БЛАГОДІЙНА", nil, 10, 0); err != nil || len(rows) != 1 {
		t.Fatalf("documents.Search(content): rows=%d err=%v", len(rows), err)
	}
	if rows, err := obligations.Search(dbc, "звіт", nil, 10); err != nil || len(rows) != 1 {
		t.Fatalf("obligations.Search: rows=%d err=%v", len(rows), err)
	}
	if rows, err := templates.Search(dbc, "ЗВІТ", nil, 10); err != nil || len(rows) != 1 {
		t.Fatalf("templates.Search: rows=%d err=%v", len(rows), err)
	}
}

func TestGraphEdgeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewGraphEdgeRepo(db, testutil.Logger(t))

	eu := testutil.SeedJurisdiction(t, ctx, tx, "EU", domain.LayerRegional, nil)
	ua := testutil.SeedJurisdiction(t, ctx, tx, "UA", domain.LayerNational, nil)
	directive, _ := testutil.SeedDocument(t, ctx, tx, eu.ID, "Directive", "text")
	law, lawNode := testutil.SeedDocument(t, ctx, tx, ua.ID, "Law", "text")
	tpl := testutil.SeedTemplate(t, ctx, tx, "Notice", nil, "eviction")

	edges := []*domain.GraphEdge{
		{FromType: domain.EntityLegalDocument, FromID: directive.ID, ToType: domain.EntityLegalDocument, ToID: law.ID, EdgeType: domain.EdgeOverrides},
		{FromType: domain.EntityGraphNode, FromID: lawNode.ID, ToType: domain.EntityLegalDocument, ToID: directive.ID, EdgeType: domain.EdgeTransposes},
		{FromType: domain.EntityLegalDocument, FromID: law.ID, ToType: domain.EntityTemplate, ToID: tpl.ID, EdgeType: domain.EdgeUpdates},
	}
	for _, e := range edges {
		if err := repo.Create(dbc, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if rows, err := repo.ListFrom(dbc, domain.EntityLegalDocument, []uuid.UUID{law.ID}, []domain.EdgeType{domain.EdgeUpdates}); err != nil || len(rows) != 1 {
		t.Fatalf("ListFrom: len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.ListTouching(dbc, []uuid.UUID{law.ID, lawNode.ID}, 0); err != nil || len(rows) != 3 {
		t.Fatalf("ListTouching: len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.ListByTypesForJurisdictions(dbc, domain.ConflictEdgeTypes, nil, 50, 0); err != nil || len(rows) != 1 {
		t.Fatalf("conflicts(unscoped): len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.ListByTypesForJurisdictions(dbc, domain.ConflictEdgeTypes, []uuid.UUID{ua.ID}, 50, 0); err != nil || len(rows) != 1 {
		t.Fatalf("conflicts(ua): len=%d err=%v", len(rows), err)
	}
	other := testutil.SeedJurisdiction(t, ctx, tx, "US", domain.LayerNational, nil)
	if rows, err := repo.ListByTypesForJurisdictions(dbc, domain.ConflictEdgeTypes, []uuid.UUID{other.ID}, 50, 0); err != nil || len(rows) != 0 {
		t.Fatalf("conflicts(us): len=%d err=%v", len(rows), err)
	}
}

func TestLegalTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLegalTemplateRepo(db, testutil.Logger(t))
	sections := NewTemplateSectionRepo(db, testutil.Logger(t))

	ua := testutil.SeedJurisdiction(t, ctx, tx, "UA", domain.LayerNational, nil)
	eu := testutil.SeedJurisdiction(t, ctx, tx, "EU", domain.LayerRegional, nil)

	a := &domain.LegalTemplate{Name: "Damage claim", JurisdictionID: &ua.ID, IsActive: true, ScenarioTags: []string{" Housing ", "housing", "claims"}}
	b := &domain.LegalTemplate{Name: "Data request", JurisdictionID: &eu.ID, IsActive: true, ScenarioTags: []string{"housing"}}
	c := &domain.LegalTemplate{Name: "Retired", IsActive: false, ScenarioTags: []string{"housing"}}
	for _, tpl := range []*domain.LegalTemplate{a, b, c} {
		if err := repo.Create(dbc, tpl); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	got, err := repo.GetByID(dbc, a.ID)
	if err != nil || got == nil || len(got.ScenarioTags) != 2 || got.ScenarioTags[0] != "claims" {
		t.Fatalf("GetByID tags: got=%+v err=%v", got, err)
	}
	if rows, err := repo.ListActiveByTag(dbc, "HOUSING", nil, 20); err != nil || len(rows) != 2 {
		t.Fatalf("ListActiveByTag(unscoped): len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.ListActiveByTag(dbc, "housing", []uuid.UUID{eu.ID}, 20); err != nil || len(rows) != 1 || rows[0].ID != b.ID {
		t.Fatalf("ListActiveByTag(eu): rows=%v err=%v", rows, err)
	}

	s1 := testutil.SeedSection(t, ctx, tx, a.ID, 1, "Intro")
	testutil.SeedSection(t, ctx, tx, a.ID, 3, "Body")
	testutil.SeedOverlay(t, ctx, tx, s1.ID, ua.ID, "UA text")
	if max, err := sections.MaxOrder(dbc, a.ID); err != nil || max != 3 {
		t.Fatalf("MaxOrder: max=%d err=%v", max, err)
	}
	if max, err := sections.MaxOrder(dbc, b.ID); err != nil || max != 0 {
		t.Fatalf("MaxOrder(empty): max=%d err=%v", max, err)
	}
	if rows, err := repo.ListWithOverlaysInJurisdiction(dbc, ua.ID); err != nil || len(rows) != 1 || rows[0].ID != a.ID {
		t.Fatalf("ListWithOverlaysInJurisdiction: rows=%v err=%v", rows, err)
	}
	if ok, err := repo.BumpVersion(dbc, a.ID, 1, nil); err != nil || !ok {
		t.Fatalf("BumpVersion: ok=%v err=%v", ok, err)
	}
}

func TestLikePattern(t *testing.T) {
	if got := likePattern(" A_b%c "); got != `%a\_b\%c%` {
		t.Fatalf("likePattern: %q", got)
	}
}

func TestUpdateAuditActorFromContext(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := ctxutil.WithActor(context.Background(), "analyst@example.org")
	repo := NewUpdateAuditRepo(db, testutil.Logger(t))

	row := &domain.UpdateAudit{Module: domain.ModuleEU, Action: domain.AuditGraphUpdate, ResourceID: "r1", Summary: "s"}
	if err := repo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, row); err != nil {
		t.Fatalf("Create: %v", err)
	}
	explicit := &domain.UpdateAudit{Module: domain.ModuleEU, Action: domain.AuditGraphUpdate, ResourceID: "r1", Summary: "s", Actor: "importer"}
	if err := repo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, explicit); err != nil {
		t.Fatalf("Create(explicit): %v", err)
	}
	rows, err := repo.List(dbctx.Context{Ctx: ctx, Tx: tx}, domain.AuditGraphUpdate, "r1", 10)
	if err != nil || len(rows) != 2 {
		t.Fatalf("List: rows=%v err=%v", rows, err)
	}
	actors := map[string]bool{rows[0].Actor: true, rows[1].Actor: true}
	if !actors["analyst@example.org"] || !actors["importer"] {
		t.Fatalf("actors: %v", actors)
	}
}
