package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/lexgraph-backend/internal/data/repos/legal"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

// errStaleVersion is returned from a bump attempt whose compare-and-set lost.
var errStaleVersion = fmt.Errorf("stale version: %w", domain.ErrVersionConflict)

// bumpWithRetry runs attempt until it succeeds, fails with a non-retryable
// error, or maxRetries attempts have lost the version race. Each attempt must
// re-read the entity inside its own transaction.
func bumpWithRetry(ctx context.Context, log *logger.Logger, metrics *observability.Metrics, entityType domain.EntityType, id uuid.UUID, maxRetries int, attempt func(ctx context.Context) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for i := 0; i < maxRetries; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = attempt(ctx)
		if err == nil {
			metrics.ObserveVersionBump(string(entityType), "ok")
			return nil
		}
		if !legal.IsRetryable(err) {
			outcome := "error"
			if errors.Is(err, domain.ErrNotFound) {
				outcome = "not_found"
			}
			metrics.ObserveVersionBump(string(entityType), outcome)
			return err
		}
		metrics.ObserveVersionRetry(string(entityType))
		log.Debug("version bump lost race; retrying", "entity_type", entityType, "entity_id", id, "attempt", i+1)
	}
	metrics.ObserveVersionBump(string(entityType), "conflict")
	return fmt.Errorf("%s %s: gave up after %d attempts: %w", entityType, id, maxRetries, err)
}
