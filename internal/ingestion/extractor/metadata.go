package extractor

import (
	"regexp"
	"strings"
	"time"
)

var (
	celexRe      = regexp.MustCompile(`[0-9]{4}[A-Z]\d{4}\(\d{2}\)|3[0-9]{4}[A-Z]?[0-9]{3,4}`)
	radaDetectRe = regexp.MustCompile(`(?i)\d+\s*-\s*[Вв]Р|ВРУ|закон\s*№\s*\d+`)
	radaValueRe  = regexp.MustCompile(`\d+\s*-\s*[Вв]Р|\d+`)
	unSymbolRe   = regexp.MustCompile(`[A-Z]/RES/\d+|S/RES/\d+|A/\d+`)
	cfrRe        = regexp.MustCompile(`(?i)\d+\s*C\.?F\.?R\.?\s*§?\s*[\d.]+|\d+\s*U\.?S\.?C\.?\s*§?\s*\d+`)
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
	"01/02/2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// ExtractMetadata derives structured fields for a document. Explicit fields
// on raw win, then source, then inference from the jurisdiction code and the
// content. languageCode is the already detected language; a declared
// SourceLanguage overrides it.
func ExtractMetadata(raw RawDocument, source *SourceMetadata, translationConfidence float64, languageCode string) ExtractedMetadata {
	if source == nil {
		source = &SourceMetadata{}
	}
	jurisdiction := firstNonEmpty(raw.JurisdictionCode, source.JurisdictionCode, JurisdictionUnknown)
	legalLevel := firstNonEmpty(raw.LegalLevel, source.LegalLevel)
	if legalLevel == "" {
		legalLevel = InferLegalLevel(jurisdiction)
	}
	lang := firstNonEmpty(strings.ToLower(strings.TrimSpace(raw.SourceLanguage)), languageCode, "en")

	return ExtractedMetadata{
		Jurisdiction:          jurisdiction,
		LegalLevel:            legalLevel,
		DocumentType:          firstNonEmpty(raw.DocumentType, source.DocumentType, "statute"),
		Authority:             optional(firstNonEmpty(raw.Authority, source.Authority)),
		DateAdopted:           ParseDate(raw.DateAdopted),
		DateEffective:         ParseDate(raw.DateEffective),
		DateEffectiveTo:       ParseDate(raw.DateEffectiveTo),
		SourceURL:             optional(firstNonEmpty(raw.SourceURL, source.SourceURL)),
		TranslationConfidence: translationConfidence,
		LanguageCode:          lang,
		DocumentIdentifiers:   ExtractIdentifiers(raw, source),
		Module:                strings.TrimSpace(source.Module),
	}
}

// ExtractIdentifiers returns explicit identifiers, filling the gaps with the
// first regex match in the content.
func ExtractIdentifiers(raw RawDocument, source *SourceMetadata) map[string]string {
	ids := map[string]string{}
	set := func(key, v string) {
		if v = strings.TrimSpace(v); v != "" {
			ids[key] = v
		}
	}
	set(IdentifierCelex, raw.CelexID)
	set(IdentifierRada, raw.RadaID)
	set(IdentifierUNSymbol, raw.UNSymbol)
	set(IdentifierCFR, raw.CFRCitation)
	set(IdentifierExternalID, raw.ExternalID)
	if _, ok := ids[IdentifierExternalID]; !ok && source != nil {
		set(IdentifierExternalID, source.ExternalID)
	}

	content := raw.Content
	if _, ok := ids[IdentifierCelex]; !ok {
		set(IdentifierCelex, celexRe.FindString(content))
	}
	if _, ok := ids[IdentifierRada]; !ok && radaDetectRe.MatchString(content) {
		set(IdentifierRada, radaValueRe.FindString(content))
	}
	if _, ok := ids[IdentifierUNSymbol]; !ok {
		set(IdentifierUNSymbol, unSymbolRe.FindString(content))
	}
	if _, ok := ids[IdentifierCFR]; !ok {
		set(IdentifierCFR, cfrRe.FindString(content))
	}
	return ids
}

// InferLegalLevel maps a jurisdiction code to its layer. Two letter codes are
// national; OBLAST, CITY, STATE and CIRCUIT suffixes are subnational.
func InferLegalLevel(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	switch {
	case upper == "INTERNATIONAL" || strings.HasPrefix(upper, "UN"):
		return "international"
	case upper == "EU":
		return "regional"
	case len(upper) == 2:
		return "national"
	case strings.Contains(upper, "OBLAST"), strings.Contains(upper, "CITY"),
		strings.Contains(upper, "STATE"), strings.Contains(upper, "CIRCUIT"):
		return "subnational"
	}
	return "national"
}

// ParseDate normalizes s to YYYY-MM-DD, or nil when it is blank or unparseable.
func ParseDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.UTC().Format("2006-01-02")
			return &out
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
