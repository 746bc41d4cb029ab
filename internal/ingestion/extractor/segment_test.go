package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Article 1. This law applies!  Does it?\nYes.")
	assert.Equal(t, []string{"Article 1.", "This law applies!", "Does it?", "Yes."}, got)
	assert.Empty(t, SplitSentences("  "))
	assert.Equal(t, []string{"v1.2 stays whole"}, SplitSentences("v1.2 stays whole"))
}

func TestBuildOneToOneAlignment(t *testing.T) {
	got := BuildOneToOneAlignment("A. B. C.", "X. Y.")
	require.Len(t, got, 2)
	assert.Equal(t, SentenceAlignment{SourceIdx: 1, TargetIdx: 1, SourceSpan: "B.", TargetSpan: "Y.", Confidence: 1}, got[1])
}

func TestIdentityAlignment(t *testing.T) {
	got := IdentityAlignment("One. Two.")
	require.Len(t, got, 2)
	for i, a := range got {
		assert.Equal(t, i, a.SourceIdx)
		assert.Equal(t, a.SourceSpan, a.TargetSpan)
	}
}

func TestMergeAlignments(t *testing.T) {
	existing := []SentenceAlignment{{SourceIdx: 2, TargetIdx: 2, SourceSpan: "keep"}}
	incoming := []SentenceAlignment{
		{SourceIdx: 2, TargetIdx: 2, SourceSpan: "drop"},
		{SourceIdx: 0, TargetIdx: 1},
		{SourceIdx: 0, TargetIdx: 0},
	}
	got := MergeAlignments(existing, incoming)
	require.Len(t, got, 3)
	assert.Equal(t, [2]int{0, 0}, [2]int{got[0].SourceIdx, got[0].TargetIdx})
	assert.Equal(t, [2]int{0, 1}, [2]int{got[1].SourceIdx, got[1].TargetIdx})
	assert.Equal(t, "keep", got[2].SourceSpan)
}
