package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/lexgraph-backend/internal/data/graph"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/platform/neo4jdb"
	"github.com/yungbote/lexgraph-backend/internal/realtime/bus"
)

// Clients are the optional external sinks. Neo4j and Redis are both skipped
// when unconfigured; the relational store stays the source of truth.
type Clients struct {
	Neo4j  *neo4jdb.Client
	Mirror graph.LegalGraphMirror
	Events bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	neo, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	mirror := graph.NewNeo4jLegalGraph(neo, log)
	if s, ok := mirror.(interface{ EnsureSchema(context.Context) }); ok {
		s.EnsureSchema(ctx)
	}

	events, err := bus.New(cfg.Redis, log)
	if err != nil {
		if neo != nil {
			_ = neo.Close(ctx)
		}
		return Clients{}, fmt.Errorf("init graph event bus: %w", err)
	}

	return Clients{Neo4j: neo, Mirror: mirror, Events: events}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Neo4j.Close(ctx)
	}
}
