package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	headingRe     = regexp.MustCompile(`(?im)^(Article|Section|§|Стаття|Ст\.|Art\.?|Sec\.?)\s*(\d+[a-z]?)\s*[.:\-]\s*`)
	enumerationRe = regexp.MustCompile(`(\d+)\s*[.)]\s+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	ellipsisRe    = regexp.MustCompile(`\s*\.\s*\.\s*`)
	commaRe       = regexp.MustCompile(`\s*,\s*`)
)

// maxNormalizePasses bounds the fixpoint loop in NormalizeText. Every rule
// shrinks or preserves its input, so real documents settle in two passes.
const maxNormalizePasses = 8

// NormalizeText standardizes line endings, whitespace, section headings,
// enumerations and punctuation spacing. The rules are applied until the
// text stops changing, so NormalizeText(NormalizeText(x)) == NormalizeText(x).
func NormalizeText(text string) string {
	out := sanitizeUTF8(text)
	if strings.TrimSpace(out) == "" {
		return ""
	}
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.Map(func(r rune) rune {
		if r != '\n' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, out)

	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizePass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func normalizePass(s string) string {
	s = headingRe.ReplaceAllString(s, "${1} ${2}. ")
	s = enumerationRe.ReplaceAllString(s, "${1}. ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = ellipsisRe.ReplaceAllString(s, "..")
	s = commaRe.ReplaceAllString(s, ", ")
	return strings.TrimSpace(s)
}

// NormalizeTitle trims the title and falls back to "Untitled".
func NormalizeTitle(title string) string {
	t := collapseWhitespace(title)
	if t == "" {
		return "Untitled"
	}
	return t
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeUTF8(s string) string {
	if s == "" || utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, " ")
}
