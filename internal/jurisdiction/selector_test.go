package jurisdiction

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type memLookup struct {
	items []Item
	err   error
}

func (m *memLookup) ByIDs(_ context.Context, ids []uuid.UUID) ([]Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Item
	for _, id := range ids {
		for _, it := range m.items {
			if it.ID == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (m *memLookup) ByCodes(_ context.Context, codes []string) ([]Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Item{}
	for _, c := range codes {
		for _, it := range m.items {
			if it.Code == c {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func seedLookup() *memLookup {
	mk := func(code string, layer domain.Layer) Item {
		return Item{ID: uuid.New(), Code: code, Name: code, Layer: layer}
	}
	return &memLookup{items: []Item{
		mk("INTERNATIONAL", domain.LayerInternational),
		mk("EU", domain.LayerRegional),
		mk("UA", domain.LayerNational),
		mk("US", domain.LayerNational),
		mk("US_CIRCUIT", domain.LayerSubnational),
	}}
}

func newTestSelector(t *testing.T, lookup Lookup) *Selector {
	t.Helper()
	return NewSelector(logger.Nop(), testClassifier(t), lookup, DefaultMinScore, observability.New())
}

func TestIsComplete(t *testing.T) {
	one := []Item{{ID: uuid.New(), Code: "UA"}}
	cases := []struct {
		name     string
		res      Result
		complete bool
	}{
		{"needs confirmation, none confirmed", Result{RequiresConfirmation: true}, false},
		{"needs confirmation, some confirmed", Result{RequiresConfirmation: true, Confirmed: one}, false},
		{"settled, nil confirmed", Result{}, false},
		{"settled, empty confirmed", Result{Confirmed: []Item{}}, false},
		{"settled, confirmed", Result{Confirmed: one}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.complete, IsComplete(tc.res), tc.name)
	}
}

func TestResolveExplicit(t *testing.T) {
	lk := seedLookup()
	s := newTestSelector(t, lk)
	ua, eu := lk.items[2], lk.items[1]

	res, err := s.Resolve(context.Background(), SelectorInput{
		Query:                   "31 CFR ignored",
		ExplicitJurisdictionIDs: []uuid.UUID{ua.ID, eu.ID, ua.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, ModeExplicit, res.Mode)
	assert.False(t, res.RequiresConfirmation)
	assert.Equal(t, []Item{ua, eu}, res.Confirmed)
	assert.Equal(t, res.Detected, res.Confirmed)
	assert.True(t, IsComplete(res))
}

func TestResolveEmptyQueryIsUnscoped(t *testing.T) {
	s := newTestSelector(t, seedLookup())
	res, err := s.Resolve(context.Background(), SelectorInput{Query: "  "})
	require.NoError(t, err)
	assert.Equal(t, ModeAgnostic, res.Mode)
	assert.Nil(t, res.Confirmed)
	assert.Empty(t, res.Detected)
	assert.False(t, res.RequiresConfirmation)
	assert.False(t, IsComplete(res))
	assert.Equal(t, "unscoped", res.State())
}

func TestResolveNoMatchIsUnscoped(t *testing.T) {
	s := newTestSelector(t, seedLookup())
	res, err := s.Resolve(context.Background(), SelectorInput{Query: "what is the weather like"})
	require.NoError(t, err)
	assert.Nil(t, res.Confirmed)
	assert.False(t, res.RequiresConfirmation)
}

func TestResolveSingleMatchAutoConfirms(t *testing.T) {
	lk := seedLookup()
	s := newTestSelector(t, lk)
	res, err := s.Resolve(context.Background(), SelectorInput{Query: "Obligations under 31 CFR 501"})
	require.NoError(t, err)
	assert.Equal(t, ModeAgnostic, res.Mode)
	assert.False(t, res.RequiresConfirmation)
	require.Len(t, res.Confirmed, 1)
	assert.Equal(t, "US", res.Confirmed[0].Code)
	assert.True(t, IsComplete(res))
}

func TestResolveAmbiguousRequiresConfirmation(t *testing.T) {
	lk := seedLookup()
	s := newTestSelector(t, lk)
	res, err := s.Resolve(context.Background(), SelectorInput{Query: "31 CFR § 501.123 and CELEX 32016R0679"})
	require.NoError(t, err)
	assert.True(t, res.RequiresConfirmation)
	assert.Nil(t, res.Confirmed)
	assert.Len(t, res.Detected, 2)
	assert.Contains(t, res.ConfirmationPrompt, "US, EU")
	assert.False(t, IsComplete(res))

	confirmed, err := s.Confirm(context.Background(), ConfirmInput{SelectedJurisdictionIDs: []uuid.UUID{res.Detected[1].ID}})
	require.NoError(t, err)
	assert.False(t, confirmed.RequiresConfirmation)
	require.Len(t, confirmed.Confirmed, 1)
	assert.Equal(t, "EU", confirmed.Confirmed[0].Code)
	assert.True(t, IsComplete(confirmed))
}

func TestResolveFallsBackToTopRanked(t *testing.T) {
	lk := seedLookup()
	s := NewSelector(logger.Nop(), testClassifier(t), lk, 1000, nil)
	res, err := s.Resolve(context.Background(), SelectorInput{Query: "GDPR compliance"})
	require.NoError(t, err)
	require.Len(t, res.Confirmed, 1)
	assert.Equal(t, "EU", res.Confirmed[0].Code)
}

func TestConfirmValidation(t *testing.T) {
	s := newTestSelector(t, seedLookup())
	_, err := s.Confirm(context.Background(), ConfirmInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := s.Confirm(context.Background(), ConfirmInput{SelectedJurisdictionIDs: []uuid.UUID{uuid.New()}})
	require.NoError(t, err)
	assert.NotNil(t, res.Confirmed)
	assert.False(t, IsComplete(res))
}

func TestResolveLookupError(t *testing.T) {
	boom := errors.New("db down")
	s := newTestSelector(t, &memLookup{err: boom})
	_, err := s.Resolve(context.Background(), SelectorInput{Query: "31 CFR"})
	assert.ErrorIs(t, err, boom)
}

func TestModulesForJurisdictions(t *testing.T) {
	items := []Item{{Code: "UA"}, {Code: "UA_CITY"}, {Code: "US_STATE"}, {Code: "EU"}, {Code: "XX"}}
	assert.Equal(t, []domain.Module{domain.ModuleUkraine, domain.ModuleUS, domain.ModuleEU}, ModulesForJurisdictions(items))
	assert.Empty(t, ModulesForJurisdictions(nil))
}

func TestDefaultCodesForRole(t *testing.T) {
	assert.Empty(t, DefaultCodesForRole(RoleLegalProfessional))
	assert.Equal(t, []string{"UA"}, DefaultCodesForRole(RoleGeneralUser))
	assert.Len(t, DefaultCodesForRole(RoleUkraineProfessional), 5)
	assert.Empty(t, DefaultCodesForRole(Role("astronaut")))
	assert.False(t, Role("astronaut").Valid())
}
