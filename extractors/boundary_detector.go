package extractors

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultPatternMinLength минимальная длина сегмента (в рунах) при поиске по шаблонам
	DefaultPatternMinLength = 4
	// DefaultCapitalizationMinLength минимальная длина сегмента при разбиении по заглавным буквам
	DefaultCapitalizationMinLength = 8
	// minCapitalizedRunLength слово с заглавной короче этого не считается началом нового названия
	minCapitalizedRunLength = 3
)

// DetectPatternBoundaries возвращает отсортированные байтовые смещения концов названий,
// найденные по правилам OrgKeyword и CorporateSuffix.
// Совпадение принимается, если за ним конец строки или первая непробельная руна заглавная.
func DetectPatternBoundaries(text string) []int {
	offsets := make(map[int]struct{})

	for _, rules := range [][]BoundaryRule{orgKeywordRules, corporateSuffixRules} {
		for _, rule := range rules {
			for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
				end := loc[1]
				if !rule.RequiresFollowingCapital || followedByCapitalOrEnd(text, end) {
					offsets[end] = struct{}{}
				}
			}
		}
	}

	return sortedOffsets(offsets)
}

// DetectCapitalizationBoundaries возвращает смещения начала слов с заглавной буквы,
// стоящих сразу после слова, оканчивающегося строчной буквой.
// Совпадения не перекрываются: слово, начавшее новый сегмент, не может закончить следующий переход.
func DetectCapitalizationBoundaries(text string) []int {
	offsets := make(map[int]struct{})

	for _, loc := range capitalizationShiftRule.Pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[4], loc[5]
		if utf8.RuneCountInString(text[start:end]) >= minCapitalizedRunLength {
			offsets[start] = struct{}{}
		}
	}

	return sortedOffsets(offsets)
}

// ApplyBoundaries режет текст по смещениям на сегменты [prev, offset) и хвост,
// обрезает пробелы и отбрасывает сегменты короче minLen рун.
// Если смещений нет или ничего не осталось, возвращает весь текст без краевых пробелов.
func ApplyBoundaries(text string, offsets []int, minLen int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(offsets) == 0 {
		return []string{trimmed}
	}

	var segments []string
	keep := func(segment string) {
		segment = strings.TrimSpace(segment)
		if segment != "" && utf8.RuneCountInString(segment) >= minLen {
			segments = append(segments, segment)
		}
	}

	start := 0
	for _, offset := range offsets {
		if offset <= start || offset > len(text) {
			continue
		}
		keep(text[start:offset])
		start = offset
	}
	keep(text[start:])

	if len(segments) == 0 {
		return []string{trimmed}
	}
	return segments
}

// followedByCapitalOrEnd проверяет руну после pos, пропуская пробелы.
// Для письменностей без регистра условие никогда не выполняется.
func followedByCapitalOrEnd(text string, pos int) bool {
	rest := strings.TrimLeftFunc(text[pos:], unicode.IsSpace)
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r)
}

func sortedOffsets(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	offsets := make([]int, 0, len(set))
	for offset := range set {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	return offsets
}
