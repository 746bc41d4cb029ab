package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

const maxPageLimit = 100

// pathUUID parses a route parameter; a malformed id is a validation error.
func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(fmt.Sprintf("%s must be a UUID", name))
	}
	return id, nil
}

// queryUUIDs reads a comma separated id list. Empty means unscoped.
func queryUUIDs(c *gin.Context, name string) ([]uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	var out []uuid.UUID
	var problems []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not a UUID", name, part))
			continue
		}
		out = append(out, id)
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	return out, nil
}

func queryOptionalUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("%s must be a UUID", name))
	}
	return &id, nil
}

// queryInt returns def for missing or unparsable values and clamps to max.
func queryInt(c *gin.Context, name string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

func queryOffset(c *gin.Context) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query("offset")))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func requiredParam(name string) error {
	return domain.NewValidationError(name + " is required")
}
