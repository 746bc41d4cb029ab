package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	"github.com/yungbote/lexgraph-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/realtime/bus"
)

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	repos     repos.Set
	events    bus.Bus
	prop      Propagator
	graph     GraphService
	templates TemplateService
	query     QueryService
	juris     JurisdictionService
}

// newFixture wires the services against an isolated database. Seeds go
// straight to db because the services open their own transactions.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	events := bus.NewMemoryBus()
	t.Cleanup(func() { _ = events.Close() })
	effects := NewSideEffects(log, nil, events, nil)
	prop := NewPropagator(db, log, set, effects, nil, 3)
	return &fixture{
		ctx:       context.Background(),
		db:        db,
		repos:     set,
		events:    events,
		prop:      prop,
		graph:     NewGraphService(db, log, set, prop, effects, nil, 3),
		templates: NewTemplateService(db, log, set, effects, nil, 3),
		query:     NewQueryService(db, log, set),
		juris:     NewJurisdictionService(db, log, set),
	}
}

func (f *fixture) dbc() dbctx.Context { return dbctx.Context{Ctx: f.ctx} }

func (f *fixture) jurisdiction(t *testing.T, code string, layer types.Layer) *types.Jurisdiction {
	t.Helper()
	return testutil.SeedJurisdiction(t, f.ctx, f.db, code, layer, nil)
}

func (f *fixture) document(t *testing.T, jid uuid.UUID, title string) (*types.LegalDocument, *types.GraphNode) {
	t.Helper()
	return testutil.SeedDocument(t, f.ctx, f.db, jid, title, "Article 1. The controller shall keep records.")
}

func (f *fixture) templateVersion(t *testing.T, id uuid.UUID) int {
	t.Helper()
	tmpl, err := f.repos.Template.GetByID(f.dbc(), id)
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	return tmpl.Version
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }
