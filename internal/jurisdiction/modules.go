package jurisdiction

import (
	"strings"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

var codeModules = map[string]domain.Module{
	"INTERNATIONAL": domain.ModuleInternational,
	"EU":            domain.ModuleEU,
	"UA":            domain.ModuleUkraine,
	"UA_OBLAST":     domain.ModuleUkraine,
	"UA_CITY":       domain.ModuleUkraine,
	"US":            domain.ModuleUS,
	"US_CIRCUIT":    domain.ModuleUS,
	"US_STATE":      domain.ModuleUS,
}

// ModuleForCode maps a jurisdiction code to its legal module. Unmapped codes
// fall back on their prefix.
func ModuleForCode(code string) (domain.Module, bool) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if m, ok := codeModules[upper]; ok {
		return m, true
	}
	switch {
	case strings.HasPrefix(upper, "UA_"):
		return domain.ModuleUkraine, true
	case strings.HasPrefix(upper, "US_"):
		return domain.ModuleUS, true
	case strings.HasPrefix(upper, "UN"):
		return domain.ModuleInternational, true
	}
	return "", false
}

// ModulesForJurisdictions returns the distinct modules of items, in order.
func ModulesForJurisdictions(items []Item) []domain.Module {
	out := []domain.Module{}
	seen := map[domain.Module]bool{}
	for _, it := range items {
		m, ok := ModuleForCode(it.Code)
		if !ok || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

type Role string

const (
	RoleLegalProfessional   Role = "legal_professional"
	RoleNGO                 Role = "ngo_nonprofit"
	RoleGeneralUser         Role = "general_user"
	RoleUkraineProfessional Role = "ukraine_professional"
)

var roleDefaults = map[Role][]string{
	RoleLegalProfessional:   {},
	RoleNGO:                 {"UA", "EU", "INTERNATIONAL"},
	RoleGeneralUser:         {"UA"},
	RoleUkraineProfessional: {"UA", "INTERNATIONAL", "EU", "UA_OBLAST", "UA_CITY"},
}

func (r Role) Valid() bool {
	_, ok := roleDefaults[r]
	return ok
}

// DefaultCodesForRole suggests jurisdiction codes to prefill for a role.
// Legal professionals get none and must select explicitly.
func DefaultCodesForRole(role Role) []string {
	return append([]string{}, roleDefaults[role]...)
}
