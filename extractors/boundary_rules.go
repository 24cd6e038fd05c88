package extractors

import (
	"fmt"
	"regexp"
)

// BoundaryRulesVersion версия таблицы правил границ.
// Увеличивается при любом изменении шаблонов ниже.
const BoundaryRulesVersion = "2024.2"

// BoundaryCategory вид правила границы
type BoundaryCategory int

const (
	// OrgKeyword организационное окончание ("Foundation", "Chamber of Commerce")
	OrgKeyword BoundaryCategory = iota
	// CorporateSuffix правовая форма ("Inc.", "GmbH")
	CorporateSuffix
	// CapitalizationShift переход "строчная буква, пробел, слово с заглавной"
	CapitalizationShift
)

func (c BoundaryCategory) String() string {
	switch c {
	case OrgKeyword:
		return "org_keyword"
	case CorporateSuffix:
		return "corporate_suffix"
	case CapitalizationShift:
		return "capitalization_shift"
	default:
		return fmt.Sprintf("BoundaryCategory(%d)", int(c))
	}
}

// BoundaryRule правило поиска границы между названиями
type BoundaryRule struct {
	Name                     string
	Category                 BoundaryCategory
	Pattern                  *regexp.Regexp
	RequiresFollowingCapital bool
}

const (
	capitalizedWord = `\p{Lu}[\p{L}\p{N}'&-]*`
	// qualifierClause "for|of|on" и одно-два слова с заглавной буквы
	qualifierClause = `(?:\s+(?i:for|of|on)\s+` + capitalizedWord + `(?:\s+(?:&\s+)?` + capitalizedWord + `)?)?`
)

// orgKeywordDefinitions окончания названий организаций; qualified допускает уточнение "of X"
var orgKeywordDefinitions = []struct {
	name      string
	keyword   string
	qualified bool
}{
	{name: "chamber_of_commerce", keyword: `chamber\s+of\s+commerce`},
	{name: "church_of_christ", keyword: `church\s+of\s+christ`},
	{name: "inaugural_committee", keyword: `inaugural\s+committee`},
	{name: "building_congress", keyword: `building\s+congress`},
	{name: "committee", keyword: `committees?`, qualified: true},
	{name: "congress", keyword: `congress(?:es)?`},
	{name: "institute", keyword: `institutes?`, qualified: true},
	{name: "foundation", keyword: `foundations?`, qualified: true},
	{name: "coalition", keyword: `coalitions?`, qualified: true},
	{name: "alliance", keyword: `alliances?`, qualified: true},
	{name: "association", keyword: `associations?`, qualified: true},
	{name: "council", keyword: `councils?`, qualified: true},
	{name: "centre", keyword: `cent(?:re|er)s?`, qualified: true},
	{name: "network", keyword: `networks?`, qualified: true},
	{name: "group", keyword: `groups?`, qualified: true},
	{name: "society", keyword: `societ(?:y|ies)`, qualified: true},
	{name: "trust", keyword: `trusts?`, qualified: true},
	{name: "fund", keyword: `funds?`, qualified: true},
	{name: "organization", keyword: `organi[sz]ations?`, qualified: true},
	{name: "initiative", keyword: `initiatives?`, qualified: true},
	{name: "project", keyword: `projects?`, qualified: true},
	{name: "programme", keyword: `program(?:me)?s?`, qualified: true},
	{name: "relations", keyword: `relations`},
}

// corporateSuffixDefinitions правовые формы, завершающие название
var corporateSuffixDefinitions = []struct {
	name    string
	pattern string
}{
	{name: "corporation", pattern: `\b(?i:corporations?)\b`},
	{name: "incorporated", pattern: `\b(?i:incorporated)\b`},
	{name: "inc", pattern: `\b(?i:inc)(?:\.|\b)`},
	{name: "llc", pattern: `\b(?i:llc)\b`},
	{name: "l.l.c.", pattern: `\b(?i:l\.l\.c\.)`},
	{name: "limited", pattern: `\b(?i:limited)\b`},
	{name: "ltd", pattern: `\b(?i:ltd)(?:\.|\b)`},
	{name: "plc", pattern: `\b(?i:plc)\b`},
	{name: "ag", pattern: `\b(?i:ag)\b`},
	{name: "gmbh", pattern: `\b(?i:gmbh)\b`},
	{name: "s.a.", pattern: `\b(?i:s\.a\.)`},
	{name: "n.v.", pattern: `\b(?i:n\.v\.)`},
}

var (
	orgKeywordRules      []BoundaryRule
	corporateSuffixRules []BoundaryRule

	capitalizationShiftRule = BoundaryRule{
		Name:     "lower_then_capitalized",
		Category: CapitalizationShift,
		// группа 1: строчная буква, группа 2: слово с заглавной (допускается CamelCase)
		Pattern: regexp.MustCompile(`(\p{Ll})\s+(\p{Lu}\p{Ll}*(?:\p{Lu}\p{Ll}*)*)`),
	}
)

func init() {
	for _, def := range orgKeywordDefinitions {
		pattern := `\b(?i:` + def.keyword + `)\b`
		if def.qualified {
			pattern += qualifierClause
		}
		orgKeywordRules = append(orgKeywordRules, BoundaryRule{
			Name:                     def.name,
			Category:                 OrgKeyword,
			Pattern:                  mustCompileRule(def.name, pattern),
			RequiresFollowingCapital: true,
		})
	}
	for _, def := range corporateSuffixDefinitions {
		corporateSuffixRules = append(corporateSuffixRules, BoundaryRule{
			Name:                     def.name,
			Category:                 CorporateSuffix,
			Pattern:                  mustCompileRule(def.name, def.pattern),
			RequiresFollowingCapital: true,
		})
	}
}

func mustCompileRule(name, pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("extractors: invalid boundary rule %s %q: %v", name, pattern, err))
	}
	return re
}

// BoundaryRules возвращает копию таблицы правил всех категорий
func BoundaryRules() []BoundaryRule {
	rules := make([]BoundaryRule, 0, len(orgKeywordRules)+len(corporateSuffixRules)+1)
	rules = append(rules, orgKeywordRules...)
	rules = append(rules, corporateSuffixRules...)
	rules = append(rules, capitalizationShiftRule)
	return rules
}

// commonSuffixTokens правовые формы, с которых может начинаться перенесенная строка.
// Сравнение чувствительно к регистру.
var commonSuffixTokens = []string{
	"Limited", "Ltd", "Ltd.", "LLC", "L.L.C.", "Inc", "Inc.", "Incorporated",
	"Corp", "Corp.", "Corporation", "Co.", "Co", "Company", "GmbH", "AG",
	"S.A.", "S.A", "SA", "S.p.A.", "SpA", "N.V.", "NV", "B.V.", "BV",
	"Pty", "Pty.", "PLC", "P.L.C.", "(Deutschland)", "(UK)", "(US)",
	"Co.,Ltd.", "Co., Ltd.", "Pte", "Pte.", "Sdn Bhd", "Sdn. Bhd.",
	"A.S.", "AS", "AB", "Oyj", "S.r.l.", "Srl", "KG", "mbH",
}
