package legal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeTypeClosedSet(t *testing.T) {
	for _, e := range []EdgeType{EdgeImplements, EdgeTransposes, EdgeAmends, EdgeOverrides, EdgeInterprets, EdgeCites, EdgeSupersedes, EdgeRequires, EdgeInforms, EdgeUpdates} {
		assert.True(t, e.Valid(), string(e))
		assert.NotEmpty(t, e.AllowedEndpoints(), string(e))
	}
	assert.False(t, EdgeType("frobnicates").Valid())
	assert.Empty(t, EdgeType("frobnicates").AllowedEndpoints())
}

func TestEdgeCompatibility(t *testing.T) {
	assert.True(t, EdgeRequires.Allows(EntityObligation, EntityTemplateSection))
	assert.False(t, EdgeRequires.Allows(EntityTemplateSection, EntityObligation))
	assert.True(t, EdgeUpdates.Allows(EntityLegalDocument, EntityTemplate))
	assert.False(t, EdgeUpdates.Allows(EntityLegalDocument, EntityOverlay))
	assert.True(t, EdgeInforms.Allows(EntityLegalDocument, EntityOverlay))
	assert.True(t, EdgeCites.Allows(EntityGraphNode, EntityLegalDocument))
	assert.False(t, EdgeCites.Allows(EntityTemplate, EntityLegalDocument))
}

func TestLayerOrdering(t *testing.T) {
	assert.True(t, LayerInternational.Above(LayerRegional))
	assert.True(t, LayerNational.Above(LayerSubnational))
	assert.False(t, LayerNational.Above(LayerNational))
	assert.False(t, LayerSubnational.Above(LayerNational))
	assert.False(t, Layer("galactic").Above(LayerNational))
}

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError("a", "b")
	require.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"a", "b"}, Problems(err))
	assert.True(t, errors.Is(NotFound("legal document", "x"), ErrNotFound))
	assert.Nil(t, Problems(errors.New("other")))
}

func TestParseDocumentType(t *testing.T) {
	assert.Equal(t, DocRegulation, ParseDocumentType(" Regulation "))
	assert.Equal(t, DocStatute, ParseDocumentType("memo"))
}
