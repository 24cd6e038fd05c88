package normalization

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// punctuationRegex всё, что не буква, цифра, '_', пробел, '&' или '-'
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s&-]`)
	ampersandRegex   = regexp.MustCompile(`\s*&\s*`)

	edgePunctuationRegex = regexp.MustCompile(`^[^\p{L}\p{N}_]+|[^\p{L}\p{N}_]+$`)

	delimiterRegex = regexp.MustCompile(`[\n,;|]`)

	addressRegexps = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+\s+\w+\s+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln)\b`),
		regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
		regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d{1,2}\s*\d[A-Z]{2}\b`),
		regexp.MustCompile(`(?i)\bSuite\s+\d+`),
		regexp.MustCompile(`(?i)\bFloor\s+\d+`),
		regexp.MustCompile(`(?i)\bP\.?O\.?\s+Box\b`),
	}
)

// NormalizedName производное представление названия для сравнения
type NormalizedName struct {
	Normalized string `json:"normalized"`
	Core       string `json:"core"`
}

// Relationship предполагаемая связь "материнская - дочерняя" между двумя названиями
type Relationship struct {
	Parent     string `json:"parent"`
	Subsidiary string `json:"subsidiary"`
}

// Normalize приводит название к сравнимому виду: NFKC, нижний регистр,
// без пунктуации (кроме '&' и '-'), '&' заменяется на "and".
// Никогда не возвращает ошибку, для пустой строки возвращает пустую строку.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	normalized := norm.NFKC.String(name)
	normalized = strings.ToLower(normalized)
	normalized = collapseSpaces(normalized)
	normalized = punctuationRegex.ReplaceAllString(normalized, " ")
	normalized = ampersandRegex.ReplaceAllString(normalized, " and ")

	return collapseSpaces(normalized)
}

// StripLegalSuffixes удаляет правовые формы до неподвижной точки
func StripLegalSuffixes(name string) string {
	return collapseSpaces(replaceAllToFixedPoint(name, legalSuffixRegexps))
}

// StripNoiseWords удаляет общие слова вроде "Group" или "Holdings"
func StripNoiseWords(name string) string {
	return collapseSpaces(replaceAllOnce(name, noiseWordRegexps))
}

// CoreName возвращает ключ сравнения: нормализованное название без правовых форм и шумовых слов.
// Цикл удаления повторяется, пока результат не перестанет меняться, поэтому
// CoreName(CoreName(x)) == CoreName(x).
func CoreName(name string) string {
	core := Normalize(name)
	for {
		next := StripNoiseWords(StripLegalSuffixes(core))
		if next == core {
			return core
		}
		core = next
	}
}

// NormalizeName вычисляет обе формы названия
func NormalizeName(name string) NormalizedName {
	return NormalizedName{
		Normalized: Normalize(name),
		Core:       CoreName(name),
	}
}

// PreprocessForAPI готовит название для запроса в реестр: без пунктуации по краям и лишних пробелов.
// Регистр и внутренняя пунктуация сохраняются.
func PreprocessForAPI(name string) string {
	processed := strings.TrimSpace(name)
	processed = edgePunctuationRegex.ReplaceAllString(processed, "")
	return collapseSpaces(processed)
}

// DetectAddressContamination сообщает, похоже ли название на строку с адресом
// (улица с номером, ZIP, британский индекс, Suite, Floor, P.O. Box).
func DetectAddressContamination(name string) bool {
	for _, re := range addressRegexps {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// DetectParentSubsidiary ищет пары, где ключ одного названия содержится в ключе другого.
// Более короткое название считается материнским.
func DetectParentSubsidiary(names []string) []Relationship {
	cores := make([]string, len(names))
	for i, name := range names {
		cores[i] = CoreName(name)
	}

	var relationships []Relationship
	for i := range names {
		if cores[i] == "" {
			continue
		}
		for j := i + 1; j < len(names); j++ {
			if cores[j] == "" {
				continue
			}
			switch {
			case strings.Contains(cores[j], cores[i]):
				relationships = append(relationships, Relationship{Parent: names[i], Subsidiary: names[j]})
			case strings.Contains(cores[i], cores[j]):
				relationships = append(relationships, Relationship{Parent: names[j], Subsidiary: names[i]})
			}
		}
	}
	return relationships
}

// SplitOnDelimiters делит текст по переводу строки, запятой, точке с запятой и '|'
func SplitOnDelimiters(text string) []string {
	parts := delimiterRegex.Split(text, -1)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
