package services

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
)

type TagPriority struct {
	Tag    string `json:"tag"`
	Weight int    `json:"weight"`
}

var roleTagPriorities = map[jurisdiction.Role][]TagPriority{
	jurisdiction.RoleLegalProfessional: {
		{"legal_analysis", 10}, {"citation_framework", 9}, {"compliance", 7}, {"data_protection", 5},
	},
	jurisdiction.RoleNGO: {
		{"grant_compliance", 10}, {"procurement", 9}, {"humanitarian", 9}, {"mou", 8},
		{"partnership", 7}, {"ngo_registration", 7},
	},
	jurisdiction.RoleGeneralUser: {
		{"simplified", 10}, {"public", 9},
	},
	jurisdiction.RoleUkraineProfessional: {
		{"rd4u", 10}, {"humanitarian", 9}, {"humanitarian_aid", 9}, {"ua_ngo", 8},
		{"oblast", 7}, {"data_protection", 5},
	},
}

// TagPrioritiesForRole falls back to the general user table for unknown roles.
func TagPrioritiesForRole(role jurisdiction.Role) []TagPriority {
	if p, ok := roleTagPriorities[role]; ok {
		return append([]TagPriority(nil), p...)
	}
	return append([]TagPriority(nil), roleTagPriorities[jurisdiction.RoleGeneralUser]...)
}

type RankedTemplate struct {
	TemplateID uuid.UUID            `json:"template_id"`
	Name       string               `json:"name"`
	Score      int                  `json:"score"`
	Template   *types.LegalTemplate `json:"template,omitempty"`
}

// RankTemplatesByRole sums the role's tag weights over each template's
// scenario tags. Zero-score templates are dropped; ties keep input order.
func RankTemplatesByRole(templates []*types.LegalTemplate, role jurisdiction.Role) []RankedTemplate {
	weights := map[string]int{}
	for _, p := range TagPrioritiesForRole(role) {
		weights[p.Tag] = p.Weight
	}
	out := make([]RankedTemplate, 0, len(templates))
	for _, t := range templates {
		score := 0
		for _, tag := range t.ScenarioTags {
			score += weights[strings.ToLower(strings.TrimSpace(tag))]
		}
		if score > 0 {
			out = append(out, RankedTemplate{TemplateID: t.ID, Name: t.Name, Score: score, Template: t})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
