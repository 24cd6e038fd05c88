package normalization

import (
	"fmt"
	"regexp"
	"strings"
)

// LegalSuffixTableVersion версия таблицы правовых форм.
// Увеличивается при любом изменении legalSuffixSynonyms или noiseWordPatterns,
// чтобы результаты разных сборок можно было сопоставить.
const LegalSuffixTableVersion = "2024.3"

// legalSuffixGroup группа синонимов правовой формы одной юрисдикции
type legalSuffixGroup struct {
	region   string
	patterns []string
}

// legalSuffixSynonyms упорядоченная таблица правовых форм.
// Порядок важен только для читаемости: StripLegalSuffixes применяет таблицу до неподвижной точки.
var legalSuffixSynonyms = []legalSuffixGroup{
	{region: "en", patterns: []string{
		`\bCo\.,\s*Ltd\b\.?`,
		`\bLimited\b`,
		`\bLtd\b\.?`,
		`\bLLC\b`,
		`\bL\.L\.C\b\.?`,
		`\bInc\b\.?`,
		`\bIncorporated\b`,
		`\bCorp\b\.?`,
		`\bCorporation\b`,
		`\bCo\b\.?`,
		`\bCompany\b`,
		`\bPLC\b`,
		`\bP\.L\.C\b\.?`,
	}},
	{region: "de", patterns: []string{
		`\bGmbH\b`,
		`\bAG\b`,
		`\bKG\b`,
		`\bmbH\b`,
		`\be\.V\b\.?`,
	}},
	{region: "fr", patterns: []string{
		`\bS\.A\.R\.L\b\.?`,
		`\bSARL\b`,
		`\bS\.A\.S\b\.?`,
		`\bSociété\s+Anonyme\b`,
		`\bS\.A\b\.?`,
		`\bSA\b`,
	}},
	{region: "it", patterns: []string{
		`\bS\.p\.A\b\.?`,
		`\bSpA\b`,
		`\bS\.r\.l\b\.?`,
		`\bSrl\b`,
	}},
	{region: "nl", patterns: []string{
		`\bN\.V\b\.?`,
		`\bNV\b`,
		`\bB\.V\b\.?`,
		`\bBV\b`,
	}},
	{region: "nordic", patterns: []string{
		`\bAB\b`,
		`\bA/S\b`,
		`\bA\.S\b\.?`,
		`\bOyj\b`,
		`\bAS\b`,
	}},
	{region: "asia", patterns: []string{
		`\bPte\b\.?`,
		`\bSdn\.?\s+Bhd\b\.?`,
		`\bK\.K\b\.?`,
	}},
	{region: "other", patterns: []string{
		`\bPty\b\.?`,
		`\bS\.C\b\.?`,
		`\bLtda\b\.?`,
	}},
	{region: "geo", patterns: []string{
		`\([A-Z]{2,}\)`,
		`\(Deutschland\)`,
		`\(UK\)`,
		`\(US\)`,
		`\(Europe\)`,
		`\(Asia\)`,
		`\(International\)`,
	}},
}

// noiseWordPatterns общие корпоративные слова, не несущие различительной информации
var noiseWordPatterns = []string{
	`\bThe\b`,
	`\bGroup\b`,
	`\bHoldings?\b`,
	`\bInternational\b`,
	`\bGlobal\b`,
	`\bWorldwide\b`,
	`\s*&\s*Co\b\.?`,
}

var (
	legalSuffixRegexps []*regexp.Regexp
	noiseWordRegexps   []*regexp.Regexp
)

func init() {
	for _, group := range legalSuffixSynonyms {
		for _, pattern := range group.patterns {
			legalSuffixRegexps = append(legalSuffixRegexps, compileCaseInsensitive(group.region, pattern))
		}
	}
	for _, pattern := range noiseWordPatterns {
		noiseWordRegexps = append(noiseWordRegexps, compileCaseInsensitive("noise", pattern))
	}
}

func compileCaseInsensitive(group, pattern string) *regexp.Regexp {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		panic(fmt.Sprintf("normalization: invalid %s pattern %q: %v", group, pattern, err))
	}
	return re
}

// LegalSuffixPatterns возвращает копию исходных шаблонов таблицы правовых форм (для отчетов и API)
func LegalSuffixPatterns() map[string][]string {
	out := make(map[string][]string, len(legalSuffixSynonyms))
	for _, group := range legalSuffixSynonyms {
		out[group.region] = append([]string(nil), group.patterns...)
	}
	return out
}

// replaceAllToFixedPoint применяет все выражения, пока строка не перестанет меняться
func replaceAllToFixedPoint(text string, regexps []*regexp.Regexp) string {
	for {
		before := text
		for _, re := range regexps {
			text = re.ReplaceAllString(text, " ")
		}
		if text == before {
			return text
		}
	}
}

func replaceAllOnce(text string, regexps []*regexp.Regexp) string {
	for _, re := range regexps {
		text = re.ReplaceAllString(text, " ")
	}
	return text
}

// collapseSpaces сворачивает пробельные последовательности и обрезает края
func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
