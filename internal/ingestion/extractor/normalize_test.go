package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   \n\t ", ""},
		{"heading", "Article  1 :  This\r\nlaw\tapplies", "Article 1. This law applies"},
		{"enumeration", "Duties: 1) register 2) report", "Duties: 1. register 2. report"},
		{"comma spacing", "a ,b,c", "a, b, c"},
		{"nbsp", "Section\u00a03 - scope", "Section 3. scope"},
		{"cyrillic heading", "Стаття 5: Права", "Стаття 5. Права"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeText(tc.in))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"Article 1. This law shall apply to all persons.",
		"§ 2 :  1) one ,2) two . . . three",
		"Ст. 7 - Закон\r\n\r\n  набирає чинності ,  з дня  опублікування",
		"a . . . . b , , c",
		"Sec.4- x\t\ty z",
		"1.2.3. 4) 5 ) 6.",
		",,, ... ,,,",
		"\xff\xfeArticle 9: broken utf8",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		require.Equal(t, once, NormalizeText(once), "input %q", in)
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Untitled", NormalizeTitle("  "))
	assert.Equal(t, "Sample Law", NormalizeTitle("  Sample \n Law "))
}
