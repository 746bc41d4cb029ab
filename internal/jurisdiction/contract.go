package jurisdiction

import (
	"github.com/google/uuid"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

type Mode string

const (
	ModeExplicit Mode = "explicit"
	ModeAgnostic Mode = "agnostic"
)

type Item struct {
	ID    uuid.UUID    `json:"id"`
	Code  string       `json:"code"`
	Name  string       `json:"name"`
	Layer domain.Layer `json:"layer,omitempty"`
}

// Result is the selector output. Confirmed is nil until the selection is
// settled; an empty non-nil slice means the caller confirmed nothing.
type Result struct {
	Mode                 Mode   `json:"mode"`
	Detected             []Item `json:"detected_jurisdictions"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	Confirmed            []Item `json:"confirmed_jurisdictions"`
	ConfirmationPrompt   string `json:"confirmation_prompt,omitempty"`
}

// IsComplete must hold before any jurisdiction-scoped research runs.
func IsComplete(r Result) bool {
	return !r.RequiresConfirmation && len(r.Confirmed) > 0
}

// ConfirmedIDs returns the confirmed jurisdiction ids, or nil.
func (r Result) ConfirmedIDs() []uuid.UUID {
	if len(r.Confirmed) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(r.Confirmed))
	for _, it := range r.Confirmed {
		out = append(out, it.ID)
	}
	return out
}

func (r Result) ConfirmedCodes() []string {
	out := make([]string, 0, len(r.Confirmed))
	for _, it := range r.Confirmed {
		out = append(out, it.Code)
	}
	return out
}

// State names the selector state for logs and metrics.
func (r Result) State() string {
	switch {
	case r.RequiresConfirmation:
		return "needs_confirmation"
	case len(r.Confirmed) > 0:
		return "confirmed"
	default:
		return "unscoped"
	}
}
