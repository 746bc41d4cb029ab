package pipeline

import (
	"fmt"

	"github.com/yungbote/lexgraph-backend/internal/ingestion/extractor"
)

type ChangedSection struct {
	Index   int    `json:"index"`
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

type VersionDiff struct {
	OldVersion      int              `json:"oldVersion"`
	NewVersion      int              `json:"newVersion"`
	ChangedSections []ChangedSection `json:"changedSections"`
	Summary         string           `json:"summary"`
}

const EventDocumentVersionChanged = "document_version_changed"

// UpdateEvent is what downstream template consumers receive for a changed
// document version.
type UpdateEvent struct {
	Type                  string         `json:"type"`
	DocumentID            string         `json:"document_id"`
	OldVersion            int            `json:"oldVersion"`
	NewVersion            int            `json:"newVersion"`
	ChangedSectionIndices []int          `json:"changedSectionIndices"`
	Metadata              map[string]any `json:"metadata"`
}

// DiffVersions compares two texts sentence by sentence at equal indices.
// A sentence present on one side only counts as changed.
func DiffVersions(oldText, newText string, oldVersion, newVersion int) VersionDiff {
	oldSents := extractor.SplitSentences(oldText)
	newSents := extractor.SplitSentences(newText)
	n := len(oldSents)
	if len(newSents) > n {
		n = len(newSents)
	}
	changed := make([]ChangedSection, 0)
	for i := 0; i < n; i++ {
		var o, nw string
		if i < len(oldSents) {
			o = oldSents[i]
		}
		if i < len(newSents) {
			nw = newSents[i]
		}
		if o != nw {
			changed = append(changed, ChangedSection{Index: i, OldText: o, NewText: nw})
		}
	}
	return VersionDiff{
		OldVersion:      oldVersion,
		NewVersion:      newVersion,
		ChangedSections: changed,
		Summary:         fmt.Sprintf("%d sentence(s) changed", len(changed)),
	}
}

func NewUpdateEvent(documentID string, diff VersionDiff) UpdateEvent {
	idx := make([]int, 0, len(diff.ChangedSections))
	for _, c := range diff.ChangedSections {
		idx = append(idx, c.Index)
	}
	return UpdateEvent{
		Type:                  EventDocumentVersionChanged,
		DocumentID:            documentID,
		OldVersion:            diff.OldVersion,
		NewVersion:            diff.NewVersion,
		ChangedSectionIndices: idx,
		Metadata:              map[string]any{"changedCount": len(diff.ChangedSections)},
	}
}
