package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

func TestTemplateLifecycle(t *testing.T) {
	f := newFixture(t)
	ua := f.jurisdiction(t, "UA", domain.LayerNational)
	_, node := f.document(t, ua.ID, "Law On Humanitarian Aid")

	tid, err := f.templates.CreateTemplate(f.ctx, TemplateInput{
		Name:           "Humanitarian MoU",
		JurisdictionID: &ua.ID,
		ScenarioTags:   []string{"humanitarian", "mou"},
	})
	require.NoError(t, err)

	first, err := f.templates.AddTemplateSection(f.ctx, tid, SectionInput{Heading: "Parties", Body: "The parties are..."})
	require.NoError(t, err)
	_, err = f.templates.AddTemplateSection(f.ctx, tid, SectionInput{Heading: "Term", Body: "This MoU runs..."})
	require.NoError(t, err)
	_, err = f.templates.AddTemplateSection(f.ctx, uuid.New(), SectionInput{Body: "orphan"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.templates.LinkTemplate(f.ctx, TemplateLinkInput{TemplateID: tid, GraphNodeID: node.ID, LinkType: "depends_on"}))
	require.NoError(t, f.templates.LinkTemplate(f.ctx, TemplateLinkInput{TemplateID: tid, GraphNodeID: node.ID, LinkType: "depends_on"}))
	err = f.templates.LinkTemplate(f.ctx, TemplateLinkInput{TemplateID: tid, GraphNodeID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrValidation)

	detail, err := f.templates.GetTemplate(f.ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Version)
	assert.ElementsMatch(t, []string{"humanitarian", "mou"}, detail.ScenarioTags)
	assert.Equal(t, 2, detail.SectionCount)
	assert.Equal(t, 1, detail.LinkCount)
	require.NotNil(t, detail.Jurisdiction)
	assert.Equal(t, "UA", detail.Jurisdiction.Code)

	sections, err := f.templates.GetTemplateSections(f.ctx, tid)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, first, sections[0].ID)
	assert.Equal(t, 1, sections[0].Order)
	assert.Equal(t, 2, sections[1].Order)

	_, err = f.templates.GetTemplate(f.ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertOverlay(t *testing.T) {
	f := newFixture(t)
	ua := f.jurisdiction(t, "UA", domain.LayerNational)
	tid, err := f.templates.CreateTemplate(f.ctx, TemplateInput{Name: "NDA"})
	require.NoError(t, err)
	sid, err := f.templates.AddTemplateSection(f.ctx, tid, SectionInput{Body: "Confidentiality."})
	require.NoError(t, err)

	ref, err := f.templates.UpsertOverlay(f.ctx, OverlayInput{SectionID: sid, JurisdictionID: ua.ID, OverlayText: "UA wording"})
	require.NoError(t, err)
	assert.True(t, ref.Created)
	assert.Equal(t, 1, ref.Version)

	same, err := f.templates.UpsertOverlay(f.ctx, OverlayInput{SectionID: sid, JurisdictionID: ua.ID, OverlayText: "UA wording"})
	require.NoError(t, err)
	assert.False(t, same.Created)
	assert.Equal(t, 1, same.Version)

	changed, err := f.templates.UpsertOverlay(f.ctx, OverlayInput{SectionID: sid, JurisdictionID: ua.ID, OverlayText: "UA wording, revised"})
	require.NoError(t, err)
	assert.Equal(t, ref.OverlayID, changed.OverlayID)
	assert.Equal(t, 2, changed.Version)

	history, err := f.repos.History.ListOverlayVersions(f.dbc(), ref.OverlayID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "UA wording, revised", history[0].OverlayText)

	overlays, err := f.templates.GetOverlays(f.ctx, sid)
	require.NoError(t, err)
	require.Len(t, overlays, 1)
	assert.Equal(t, "UA wording, revised", overlays[0].OverlayText)

	_, err = f.templates.UpsertOverlay(f.ctx, OverlayInput{SectionID: uuid.New(), JurisdictionID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, domain.Problems(err), 2)

	_, err = f.templates.UpdateOverlay(f.ctx, uuid.New(), "x")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTemplateVersion(t *testing.T) {
	f := newFixture(t)
	tid, err := f.templates.CreateTemplate(f.ctx, TemplateInput{Name: "Grant report"})
	require.NoError(t, err)

	v, err := f.templates.CreateTemplateVersion(f.ctx, tid, TemplateVersionParams{
		ChangeReason: "annual review",
		Delta:        `{"sections":[1]}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	v, err = f.templates.CreateTemplateVersion(f.ctx, tid, TemplateVersionParams{ChangeReason: "typo", Delta: "fixed typo"})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	versions, err := f.templates.GetTemplateVersions(f.ctx, tid)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.JSONEq(t, `{"sections":[1]}`, string(versions[0].Delta))
	var s string
	require.NoError(t, json.Unmarshal(versions[1].Delta, &s))
	assert.Equal(t, "fixed typo", s)

	deltas, err := f.repos.Delta.ListByEntity(f.dbc(), domain.EntityTemplate, tid)
	require.NoError(t, err)
	assert.Len(t, deltas, 2)

	_, err = f.templates.CreateTemplateVersion(f.ctx, uuid.New(), TemplateVersionParams{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
