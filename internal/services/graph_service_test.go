package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lexgraph-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
)

func TestAddLegalDocument(t *testing.T) {
	f := newFixture(t)
	ua := f.jurisdiction(t, "UA", domain.LayerNational)

	ref, err := f.graph.AddLegalDocument(f.ctx, LegalDocumentInput{
		Title:          "Law of Ukraine On Personal Data Protection",
		DocumentType:   domain.DocStatute,
		JurisdictionID: ua.ID,
		NormalizedText: "Article 1. Scope.",
		Rada:           "2297-17",
	}, domain.ModuleUkraine)
	require.NoError(t, err)

	doc, err := f.repos.Document.GetByID(f.dbc(), ref.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, domain.LayerNational, doc.LegalLevel, "legal level defaults to the jurisdiction layer")
	assert.Equal(t, domain.ModuleUkraine, doc.Module)

	node, err := f.repos.GraphNode.GetByDocumentID(f.dbc(), doc.ID)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, ref.GraphNodeID, node.ID)
	assert.Equal(t, doc.Title, node.Label)

	audits, err := f.repos.Audit.List(f.dbc(), domain.AuditIngest, doc.ID.String(), 10)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
}

func TestAddLegalDocumentValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.graph.AddLegalDocument(f.ctx, LegalDocumentInput{
		DocumentType:   "pamphlet",
		JurisdictionID: uuid.New(),
	}, domain.ModuleUS)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, domain.Problems(err), 2)

	_, err = f.graph.AddLegalDocument(f.ctx, LegalDocumentInput{
		Title:          "Orphan",
		DocumentType:   domain.DocStatute,
		JurisdictionID: uuid.New(),
	}, domain.ModuleUS)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.count(t, &types.LegalDocument{}, ""))
}

func TestAddObligationRequiresDocument(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	doc, _ := f.document(t, us.ID, "GDPR-like statute")

	id, err := f.graph.AddObligation(f.ctx, ObligationInput{DocumentID: doc.ID, Text: "Keep records of processing."})
	require.NoError(t, err)
	ob, err := f.repos.Obligation.GetByID(f.dbc(), id)
	require.NoError(t, err)
	require.NotNil(t, ob)
	assert.Equal(t, us.ID, ob.JurisdictionID, "jurisdiction defaults to the document's")

	_, err = f.graph.AddObligation(f.ctx, ObligationInput{DocumentID: uuid.New(), Text: "dangling"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddRelationshipRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	a, _ := f.document(t, us.ID, "A")
	b, _ := f.document(t, us.ID, "B")

	_, err := f.graph.AddRelationship(f.ctx, RelationshipInput{
		SourceType:       domain.EntityLegalDocument,
		SourceID:         a.ID,
		TargetType:       domain.EntityLegalDocument,
		TargetID:         b.ID,
		RelationshipType: "frobnicates",
	}, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, domain.Problems(err), `invalid relationship type "frobnicates"`)
	assert.Zero(t, f.count(t, &types.GraphEdge{}, ""))
}

func TestAddRelationshipChecksEndpoints(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	a, _ := f.document(t, us.ID, "A")
	tmpl, err := f.templates.CreateTemplate(f.ctx, TemplateInput{Name: "NDA"})
	require.NoError(t, err)

	// requires only connects obligations to template sections
	_, err = f.graph.AddRelationship(f.ctx, RelationshipInput{
		SourceType: domain.EntityLegalDocument, SourceID: a.ID,
		TargetType: domain.EntityTemplate, TargetID: tmpl,
		RelationshipType: domain.EdgeRequires,
	}, nil)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.graph.AddRelationship(f.ctx, RelationshipInput{
		SourceType: domain.EntityLegalDocument, SourceID: a.ID,
		TargetType: domain.EntityLegalDocument, TargetID: uuid.New(),
		RelationshipType: domain.EdgeCites,
	}, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, domain.Problems(err), 1)

	module := domain.ModuleUS
	edgeID, err := f.graph.AddRelationship(f.ctx, RelationshipInput{
		SourceType: domain.EntityLegalDocument, SourceID: a.ID,
		TargetType: domain.EntityTemplate, TargetID: tmpl,
		RelationshipType: domain.EdgeUpdates,
		Metadata:         map[string]any{"note": "direct dependency"},
	}, &module)
	require.NoError(t, err)

	edge, err := f.repos.Edge.GetByID(f.dbc(), edgeID)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, 1, edge.Version)
	audits, err := f.repos.Audit.List(f.dbc(), domain.AuditGraphUpdate, edgeID.String(), 10)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
}

func TestUpdateDocumentVersionIsMonotonic(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	doc, _ := f.document(t, us.ID, "Records Act")

	var mu sync.Mutex
	var events []realtime.GraphEvent
	require.NoError(t, f.events.StartForwarder(f.ctx, func(ev realtime.GraphEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))

	for want := 2; want <= 4; want++ {
		got, err := f.graph.UpdateDocumentVersion(f.ctx, DocumentVersionUpdate{
			DocumentID:    doc.ID,
			ChangeSummary: ptr("amendment"),
		}, domain.ModuleUS)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	stored, err := f.repos.Document.GetByID(f.dbc(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Version)

	history, err := f.repos.History.ListDocumentVersions(f.dbc(), doc.ID)
	require.NoError(t, err)
	require.Len(t, history, stored.Version-1)
	for i, h := range history {
		assert.Equal(t, i+2, h.Version)
		assert.Equal(t, "amendment", h.ChangeSummary)
	}

	deltas, err := f.repos.Delta.ListByEntity(f.dbc(), domain.EntityLegalDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, deltas, len(history))
	for _, d := range deltas {
		assert.Equal(t, d.OldVersion+1, d.NewVersion)
	}

	audits, err := f.repos.Audit.List(f.dbc(), domain.AuditGraphUpdate, doc.ID.String(), 10)
	require.NoError(t, err)
	assert.Len(t, audits, 3)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, realtime.EventDocumentVersionChanged, events[2].Event)
	assert.Equal(t, 4, events[2].NewVersion)
}

func TestUpdateDocumentVersionRecordsTextDiff(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	doc, _ := f.document(t, us.ID, "Records Act")

	v, err := f.graph.UpdateDocumentVersion(f.ctx, DocumentVersionUpdate{
		DocumentID:     doc.ID,
		NormalizedText: ptr("Article 1. The controller shall keep records. Article 2. Records are kept for five years."),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	stored, err := f.repos.Document.GetByID(f.dbc(), doc.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.NormalizedContent, "five years")

	deltas, err := f.repos.Delta.ListByEntity(f.dbc(), domain.EntityLegalDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	var diff map[string]any
	require.NoError(t, json.Unmarshal(deltas[0].Diff, &diff))
	assert.EqualValues(t, 1, diff["old_version"])
	assert.EqualValues(t, 2, diff["new_version"])
	assert.NotEmpty(t, diff["summary"])
}

func TestUpdateDocumentVersionNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.graph.UpdateDocumentVersion(f.ctx, DocumentVersionUpdate{DocumentID: uuid.New()}, domain.ModuleUS)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.count(t, &types.UpdateAudit{}, ""))
}

func TestConcurrentDocumentUpdates(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	doc, _ := f.document(t, us.ID, "Busy Act")

	// Each lost race means another writer committed, so writers attempts
	// always suffice and every update must land.
	const writers = 5
	log := testutil.Logger(t)
	graph := NewGraphService(f.db, log, f.repos, nil, NewSideEffects(log, nil, f.events, nil), nil, writers)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	versions := make(chan int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := graph.UpdateDocumentVersion(context.Background(), DocumentVersionUpdate{DocumentID: doc.ID}, domain.ModuleUS)
			errs <- err
			versions <- v
		}()
	}
	wg.Wait()
	close(errs)
	close(versions)
	for err := range errs {
		require.NoError(t, err)
	}
	want := map[int]bool{}
	for v := 2; v <= writers+1; v++ {
		want[v] = true
	}
	returned := map[int]bool{}
	for v := range versions {
		assert.False(t, returned[v], "version %d returned twice", v)
		returned[v] = true
	}
	assert.Equal(t, want, returned)

	stored, err := f.repos.Document.GetByID(f.dbc(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, writers+1, stored.Version)

	history, err := f.repos.History.ListDocumentVersions(f.dbc(), doc.ID)
	require.NoError(t, err)
	require.Len(t, history, writers)
	historyVersions := map[int]bool{}
	for _, h := range history {
		historyVersions[h.Version] = true
	}
	assert.Equal(t, want, historyVersions)

	deltas, err := f.repos.Delta.ListByEntity(f.dbc(), domain.EntityLegalDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, deltas, writers)
	deltaVersions := map[int]bool{}
	for _, d := range deltas {
		assert.Equal(t, d.OldVersion+1, d.NewVersion)
		deltaVersions[d.NewVersion] = true
	}
	assert.Equal(t, want, deltaVersions)
}
