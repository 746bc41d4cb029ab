package jurisdiction

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

const (
	DefaultMinScore  = 50
	fallbackTopCodes = 5
)

// Lookup resolves jurisdiction records. Implementations return rows in the
// order requested and silently skip unknown ids or codes.
type Lookup interface {
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)
	ByCodes(ctx context.Context, codes []string) ([]Item, error)
}

type SelectorInput struct {
	Query                   string      `json:"query,omitempty"`
	ExplicitJurisdictionIDs []uuid.UUID `json:"explicit_jurisdiction_ids,omitempty"`
}

type ConfirmInput struct {
	SelectedJurisdictionIDs []uuid.UUID `json:"selected_jurisdiction_ids" binding:"required"`
	Query                   string      `json:"query,omitempty"`
}

type Selector struct {
	log        *logger.Logger
	classifier *Classifier
	lookup     Lookup
	minScore   float64
	metrics    *observability.Metrics
}

func NewSelector(baseLog *logger.Logger, classifier *Classifier, lookup Lookup, minScore float64, metrics *observability.Metrics) *Selector {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Selector{
		log:        baseLog.With("component", "JurisdictionSelector"),
		classifier: classifier,
		lookup:     lookup,
		minScore:   minScore,
		metrics:    metrics,
	}
}

// Resolve runs the explicit or agnostic branch. Two or more detected
// jurisdictions leave the result unconfirmed until Confirm is called.
func (s *Selector) Resolve(ctx context.Context, in SelectorInput) (Result, error) {
	res, err := s.resolve(ctx, in)
	if err == nil {
		s.metrics.ObserveSelector(string(res.Mode), res.State())
	}
	return res, err
}

func (s *Selector) resolve(ctx context.Context, in SelectorInput) (Result, error) {
	if len(in.ExplicitJurisdictionIDs) > 0 {
		items, err := s.lookup.ByIDs(ctx, dedupeIDs(in.ExplicitJurisdictionIDs))
		if err != nil {
			return Result{}, err
		}
		items = nonNil(items)
		return Result{Mode: ModeExplicit, Detected: items, Confirmed: items}, nil
	}

	unscoped := Result{Mode: ModeAgnostic, Detected: []Item{}}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return unscoped, nil
	}

	codes := s.classifier.DetectedCodes(query, s.minScore)
	detected, err := s.lookup.ByCodes(ctx, codes)
	if err != nil {
		return Result{}, err
	}
	if len(detected) == 0 {
		ranked := s.classifier.Classify(query)
		if len(ranked) > fallbackTopCodes {
			ranked = ranked[:fallbackTopCodes]
		}
		top := make([]string, 0, len(ranked))
		for _, r := range ranked {
			top = append(top, r.Code)
		}
		if detected, err = s.lookup.ByCodes(ctx, top); err != nil {
			return Result{}, err
		}
	}

	switch len(detected) {
	case 0:
		return unscoped, nil
	case 1:
		return Result{Mode: ModeAgnostic, Detected: detected, Confirmed: detected}, nil
	}
	s.log.Debug("jurisdiction selection needs confirmation", "codes", itemCodes(detected))
	return Result{
		Mode:                 ModeAgnostic,
		Detected:             detected,
		RequiresConfirmation: true,
		ConfirmationPrompt:   confirmationPrompt(detected),
	}, nil
}

// Confirm settles a pending selection with the caller's choice.
func (s *Selector) Confirm(ctx context.Context, in ConfirmInput) (Result, error) {
	if len(in.SelectedJurisdictionIDs) == 0 {
		return Result{}, domain.NewValidationError("selected_jurisdiction_ids is required")
	}
	items, err := s.lookup.ByIDs(ctx, dedupeIDs(in.SelectedJurisdictionIDs))
	if err != nil {
		return Result{}, err
	}
	items = nonNil(items)
	res := Result{Mode: ModeAgnostic, Detected: items, Confirmed: items}
	s.metrics.ObserveSelector("confirm", res.State())
	return res, nil
}

func confirmationPrompt(items []Item) string {
	return "This query appears to involve the following jurisdictions: " +
		strings.Join(itemCodes(items), ", ") +
		". Confirm whether the analysis should include all listed jurisdictions or be limited to a specific one."
}

func itemCodes(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Code)
	}
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
