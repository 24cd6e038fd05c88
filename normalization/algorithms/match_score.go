package algorithms

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Веса ансамбля. Пороги операторов откалиброваны под эти значения, менять их нельзя.
const (
	RatioWeight          = 0.4
	PartialRatioWeight   = 0.3
	TokenSortRatioWeight = 0.3

	// DefaultMinSimilarity порог подтверждения совпадения по умолчанию
	DefaultMinSimilarity = 80.0
)

// MatchScoreBreakdown составляющие итоговой оценки
type MatchScoreBreakdown struct {
	Ratio          int     `json:"ratio"`
	PartialRatio   int     `json:"partial_ratio"`
	TokenSortRatio int     `json:"token_sort_ratio"`
	Score          float64 `json:"score"`
}

// Score возвращает взвешенную оценку схожести двух названий в диапазоне [0, 100],
// округленную до двух знаков. Для пустого аргумента возвращает 0.
func Score(a, b string) float64 {
	return ScoreBreakdown(a, b).Score
}

// ScoreBreakdown то же, что Score, но с отдельными метриками
func ScoreBreakdown(a, b string) MatchScoreBreakdown {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return MatchScoreBreakdown{}
	}

	result := MatchScoreBreakdown{
		Ratio:          Ratio(a, b),
		PartialRatio:   PartialRatio(a, b),
		TokenSortRatio: TokenSortRatio(a, b),
	}
	weighted := RatioWeight*float64(result.Ratio) +
		PartialRatioWeight*float64(result.PartialRatio) +
		TokenSortRatioWeight*float64(result.TokenSortRatio)
	result.Score = math.Round(weighted*100) / 100

	return result
}

// Ratio нормированное indel-сходство: 100 * 2*LCS / (len(a)+len(b)), по рунам
func Ratio(a, b string) int {
	return runeRatio([]rune(a), []rune(b))
}

// PartialRatio лучшее Ratio более короткой строки против окон той же длины в более длинной.
// Полное вхождение дает 100.
func PartialRatio(a, b string) int {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if strings.Contains(string(longer), string(shorter)) {
		return 100
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		if r := runeRatio(shorter, longer[start:start+len(shorter)]); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio Ratio после замены небуквенно-цифровых символов пробелами и сортировки слов
func TokenSortRatio(a, b string) int {
	sortedA := sortedTokens(a)
	sortedB := sortedTokens(b)
	if sortedA == "" && sortedB == "" {
		if a == b {
			return 100
		}
		return 0
	}
	return Ratio(sortedA, sortedB)
}

func sortedTokens(s string) string {
	processed := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	tokens := strings.Fields(processed)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// runeRatio округляет половины к четному: 62.5 дает 62, 87.5 дает 88
func runeRatio(r1, r2 []rune) int {
	total := len(r1) + len(r2)
	if total == 0 {
		return 100
	}
	return int(math.RoundToEven(100 * float64(2*lcsLength(r1, r2)) / float64(total)))
}

// lcsLength длина наибольшей общей подпоследовательности, память O(len(r2))
func lcsLength(r1, r2 []rune) int {
	if len(r1) == 0 || len(r2) == 0 {
		return 0
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}
