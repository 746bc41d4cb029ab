package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func assertMetricLines(t *testing.T, body string, lines ...string) {
	t.Helper()
	for _, line := range lines {
		assert.True(t, strings.Contains(body, line), "missing %s", line)
	}
}

func TestBumpWithRetryRetriesLostRace(t *testing.T) {
	m := observability.New()
	attempts := 0
	err := bumpWithRetry(context.Background(), testutil.Logger(t), m, domain.EntityTemplate, uuid.New(), 3, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errStaleVersion
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assertMetricLines(t, scrape(t, m),
		`lexgraph_graph_version_bump_retries_total{entity_type="TEMPLATE"} 2`,
		`lexgraph_graph_version_bumps_total{entity_type="TEMPLATE",outcome="ok"} 1`,
	)
}

func TestBumpWithRetryGivesUp(t *testing.T) {
	m := observability.New()
	attempts := 0
	err := bumpWithRetry(context.Background(), testutil.Logger(t), m, domain.EntityLegalDocument, uuid.New(), 3, func(context.Context) error {
		attempts++
		return errStaleVersion
	})
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.Equal(t, 3, attempts)
	assertMetricLines(t, scrape(t, m),
		`lexgraph_graph_version_bump_retries_total{entity_type="LEGAL_DOCUMENT"} 3`,
		`lexgraph_graph_version_bumps_total{entity_type="LEGAL_DOCUMENT",outcome="conflict"} 1`,
	)
}

func TestBumpWithRetryStopsOnOtherErrors(t *testing.T) {
	m := observability.New()
	id := uuid.New()

	attempts := 0
	err := bumpWithRetry(context.Background(), testutil.Logger(t), m, domain.EntityLegalDocument, id, 3, func(context.Context) error {
		attempts++
		return domain.NotFound("legal document", id)
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, attempts)

	boom := errors.New("disk full")
	err = bumpWithRetry(context.Background(), testutil.Logger(t), m, domain.EntityLegalDocument, id, 3, func(context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts = 0
	err = bumpWithRetry(ctx, testutil.Logger(t), m, domain.EntityLegalDocument, id, 3, func(context.Context) error {
		attempts++
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)

	assertMetricLines(t, scrape(t, m),
		`lexgraph_graph_version_bumps_total{entity_type="LEGAL_DOCUMENT",outcome="not_found"} 1`,
		`lexgraph_graph_version_bumps_total{entity_type="LEGAL_DOCUMENT",outcome="error"} 1`,
	)
}

func TestBumpWithRetryRereadsAfterLostCompareAndSet(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	doc, _ := f.document(t, us.ID, "Contested Act")
	m := observability.New()

	var reads []int
	err := bumpWithRetry(f.ctx, testutil.Logger(t), m, domain.EntityLegalDocument, doc.ID, 3, func(ctx context.Context) error {
		dbc := dbctx.Context{Ctx: ctx}
		cur, err := f.repos.Document.GetByID(dbc, doc.ID)
		if err != nil {
			return err
		}
		reads = append(reads, cur.Version)
		if len(reads) == 1 {
			// A competing writer commits between our read and our write.
			ok, err := f.repos.Document.BumpVersion(dbc, doc.ID, cur.Version, nil)
			require.NoError(t, err)
			require.True(t, ok)
		}
		ok, err := f.repos.Document.BumpVersion(dbc, doc.ID, cur.Version, nil)
		if err != nil {
			return err
		}
		if !ok {
			return errStaleVersion
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, reads)

	stored, err := f.repos.Document.GetByID(f.dbc(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Version)
	assertMetricLines(t, scrape(t, m),
		`lexgraph_graph_version_bump_retries_total{entity_type="LEGAL_DOCUMENT"} 1`,
		`lexgraph_graph_version_bumps_total{entity_type="LEGAL_DOCUMENT",outcome="ok"} 1`,
	)
}

// TestUpdateDocumentVersionRetriesLostRace bumps the row inside the first
// attempt's transaction just before its compare-and-set, so that attempt
// loses and rolls back. The retry must then commit exactly one version.
func TestUpdateDocumentVersionRetriesLostRace(t *testing.T) {
	f := newFixture(t)
	us := f.jurisdiction(t, "US", domain.LayerNational)
	doc, _ := f.document(t, us.ID, "Raced Act")

	var fired atomic.Bool
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:competing_writer", func(tx *gorm.DB) {
		if tx.Statement.Table != "legal_document" || !fired.CompareAndSwap(false, true) {
			return
		}
		err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE legal_document SET version = version + 1 WHERE id = ?", doc.ID).Error
		require.NoError(t, err)
	}))

	m := observability.New()
	log := testutil.Logger(t)
	graph := NewGraphService(f.db, log, f.repos, nil, NewSideEffects(log, nil, f.events, m), m, 3)
	v, err := graph.UpdateDocumentVersion(f.ctx, DocumentVersionUpdate{DocumentID: doc.ID, ChangeSummary: ptr("raced")}, domain.ModuleUS)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, fired.Load())

	stored, err := f.repos.Document.GetByID(f.dbc(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	history, err := f.repos.History.ListDocumentVersions(f.dbc(), doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Version)
	deltas, err := f.repos.Delta.ListByEntity(f.dbc(), domain.EntityLegalDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 1, deltas[0].OldVersion)
	assert.Equal(t, 2, deltas[0].NewVersion)

	assertMetricLines(t, scrape(t, m),
		`lexgraph_graph_version_bump_retries_total{entity_type="LEGAL_DOCUMENT"} 1`,
		`lexgraph_graph_version_bumps_total{entity_type="LEGAL_DOCUMENT",outcome="ok"} 1`,
	)
}
