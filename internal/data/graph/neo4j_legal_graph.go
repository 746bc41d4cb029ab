package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/platform/neo4jdb"
)

// LegalGraphMirror copies committed graph writes into a traversal store. The
// relational store stays authoritative; mirror failures never fail a write.
type LegalGraphMirror interface {
	UpsertDocument(ctx context.Context, doc *types.LegalDocument, node *types.GraphNode) error
	UpsertEdge(ctx context.Context, edge *types.GraphEdge) error
	SetVersion(ctx context.Context, entityType types.EntityType, id string, version int) error
}

type noopMirror struct{}

func (noopMirror) UpsertDocument(context.Context, *types.LegalDocument, *types.GraphNode) error {
	return nil
}
func (noopMirror) UpsertEdge(context.Context, *types.GraphEdge) error { return nil }
func (noopMirror) SetVersion(context.Context, types.EntityType, string, int) error {
	return nil
}

func NoopMirror() LegalGraphMirror { return noopMirror{} }

type neo4jLegalGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewNeo4jLegalGraph returns the no-op mirror when client is nil.
func NewNeo4jLegalGraph(client *neo4jdb.Client, baseLog *logger.Logger) LegalGraphMirror {
	if client == nil || client.Driver == nil {
		return noopMirror{}
	}
	return &neo4jLegalGraph{client: client, log: baseLog.With("graph", "Neo4jLegalGraph")}
}

// EnsureSchema creates uniqueness constraints. Best effort.
func (g *neo4jLegalGraph) EnsureSchema(ctx context.Context) {
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	for _, stmt := range []string{
		`CREATE CONSTRAINT legal_entity_id_unique IF NOT EXISTS FOR (e:LegalEntity) REQUIRE e.id IS UNIQUE`,
		`CREATE INDEX legal_document_jurisdiction IF NOT EXISTS FOR (d:LegalDocument) ON (d.jurisdiction_id)`,
	} {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func (g *neo4jLegalGraph) UpsertDocument(ctx context.Context, doc *types.LegalDocument, node *types.GraphNode) error {
	if doc == nil || node == nil {
		return nil
	}
	params := map[string]any{
		"document_id":     doc.ID.String(),
		"node_id":         node.ID.String(),
		"title":           doc.Title,
		"document_type":   string(doc.DocumentType),
		"jurisdiction_id": doc.JurisdictionID.String(),
		"module":          string(doc.Module),
		"legal_level":     string(doc.LegalLevel),
		"version":         int64(doc.Version),
		"synced_at":       time.Now().UTC().Format(time.RFC3339Nano),
	}
	return g.write(ctx, `
MERGE (d:LegalEntity:LegalDocument {id: $document_id})
SET d.title = $title,
    d.document_type = $document_type,
    d.jurisdiction_id = $jurisdiction_id,
    d.module = $module,
    d.legal_level = $legal_level,
    d.version = $version,
    d.synced_at = $synced_at
MERGE (n:LegalEntity:GraphNode {id: $node_id})
SET n.label = $title,
    n.jurisdiction_id = $jurisdiction_id,
    n.synced_at = $synced_at
MERGE (n)-[:REPRESENTS]->(d)
`, params)
}

func (g *neo4jLegalGraph) UpsertEdge(ctx context.Context, edge *types.GraphEdge) error {
	if edge == nil {
		return nil
	}
	params := map[string]any{
		"edge_id":   edge.ID.String(),
		"from_id":   edge.FromID.String(),
		"from_type": string(edge.FromType),
		"to_id":     edge.ToID.String(),
		"to_type":   string(edge.ToType),
		"edge_type": string(edge.EdgeType),
		"version":   int64(edge.Version),
		"synced_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	// Relationship types cannot be parameters, so the edge type is a property.
	return g.write(ctx, `
MERGE (a:LegalEntity {id: $from_id})
  ON CREATE SET a.entity_type = $from_type
MERGE (b:LegalEntity {id: $to_id})
  ON CREATE SET b.entity_type = $to_type
MERGE (a)-[r:LEGAL_EDGE {id: $edge_id}]->(b)
SET r.edge_type = $edge_type,
    r.version = $version,
    r.synced_at = $synced_at
`, params)
}

func (g *neo4jLegalGraph) SetVersion(ctx context.Context, entityType types.EntityType, id string, version int) error {
	return g.write(ctx, `
MERGE (e:LegalEntity {id: $id})
  ON CREATE SET e.entity_type = $entity_type
SET e.version = $version,
    e.synced_at = $synced_at
`, map[string]any{
		"id":          id,
		"entity_type": string(entityType),
		"version":     int64(version),
		"synced_at":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (g *neo4jLegalGraph) write(ctx context.Context, cypher string, params map[string]any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}
