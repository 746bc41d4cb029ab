package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
)

func TestRankTemplatesByRole(t *testing.T) {
	mk := func(name string, tags ...string) *types.LegalTemplate {
		return &types.LegalTemplate{ID: uuid.New(), Name: name, ScenarioTags: tags}
	}
	mou := mk("MoU", "mou", "partnership")
	grant := mk("Grant", "grant_compliance", "humanitarian")
	plain := mk("Plain", "sanctions")
	tie := mk("Tie", "humanitarian", "ngo_registration", "HUMANITARIAN")

	ranked := RankTemplatesByRole([]*types.LegalTemplate{mou, plain, grant, tie}, jurisdiction.RoleNGO)
	got := make([]string, 0, len(ranked))
	for _, r := range ranked {
		got = append(got, r.Name)
	}
	// MoU=15, Grant=19, Tie=9+7+9=25
	assert.Equal(t, []string{"Tie", "Grant", "MoU"}, got)
	assert.Equal(t, 25, ranked[0].Score)
}

func TestTagPrioritiesForRoleFallsBack(t *testing.T) {
	assert.Equal(t, TagPrioritiesForRole(jurisdiction.RoleGeneralUser), TagPrioritiesForRole("unknown"))

	p := TagPrioritiesForRole(jurisdiction.RoleUkraineProfessional)
	p[0].Weight = -1
	assert.Equal(t, 10, TagPrioritiesForRole(jurisdiction.RoleUkraineProfessional)[0].Weight)
}
