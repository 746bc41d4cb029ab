package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lexgraph-backend/internal/data/graph"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
	"github.com/yungbote/lexgraph-backend/internal/realtime/bus"
)

const sideEffectTimeout = 5 * time.Second

// SideEffects runs the post-commit mirror sync and event publish. Failures
// are logged and counted, never returned to the writer.
type SideEffects struct {
	log     *logger.Logger
	mirror  graph.LegalGraphMirror
	events  bus.Bus
	metrics *observability.Metrics
}

func NewSideEffects(baseLog *logger.Logger, mirror graph.LegalGraphMirror, events bus.Bus, metrics *observability.Metrics) *SideEffects {
	if mirror == nil {
		mirror = graph.NoopMirror()
	}
	return &SideEffects{
		log:     baseLog.With("component", "GraphSideEffects"),
		mirror:  mirror,
		events:  events,
		metrics: metrics,
	}
}

// detach keeps trace values but drops the caller's cancellation so a client
// disconnect after commit does not skip the sync.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

func (s *SideEffects) DocumentAdded(ctx context.Context, doc *types.LegalDocument, node *types.GraphNode) {
	if s == nil {
		return
	}
	ctx, cancel := detach(ctx)
	defer cancel()
	if err := s.mirror.UpsertDocument(ctx, doc, node); err != nil {
		s.fail("neo4j", "mirror document failed", err, "document_id", doc.ID)
	}
}

func (s *SideEffects) EdgeAdded(ctx context.Context, edge *types.GraphEdge) {
	if s == nil {
		return
	}
	ctx, cancel := detach(ctx)
	defer cancel()
	if err := s.mirror.UpsertEdge(ctx, edge); err != nil {
		s.fail("neo4j", "mirror edge failed", err, "edge_id", edge.ID)
	}
}

// VersionChanged mirrors the new version and publishes the change event.
func (s *SideEffects) VersionChanged(ctx context.Context, event string, entityType types.EntityType, id uuid.UUID, oldVersion, newVersion int, module types.Module, data map[string]any) {
	if s == nil {
		return
	}
	ctx, cancel := detach(ctx)
	defer cancel()
	if err := s.mirror.SetVersion(ctx, entityType, id.String(), newVersion); err != nil {
		s.fail("neo4j", "mirror version failed", err, "entity_id", id)
	}
	if s.events == nil {
		return
	}
	ev := realtime.GraphEvent{
		Event:      event,
		EntityType: string(entityType),
		EntityID:   id,
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Module:     string(module),
		Data:       data,
		At:         time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.fail("redis", "publish graph event failed", err, "entity_id", id, "event", event)
	}
}

func (s *SideEffects) fail(sink, msg string, err error, kv ...any) {
	s.metrics.ObserveSideEffectError(sink)
	s.log.Warn(msg, append(kv, "error", err)...)
}
