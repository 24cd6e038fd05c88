package extractors

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidOptions недопустимые параметры сегментации
var ErrInvalidOptions = errors.New("invalid segmenter options")

// Mode стратегия разбиения строки на названия
type Mode string

const (
	ModePattern          Mode = "pattern"
	ModeCommaThenPattern Mode = "comma_then_pattern"
	ModeAggressive       Mode = "aggressive"
)

// ParseMode разбирает строковое имя режима
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePattern, ModeCommaThenPattern, ModeAggressive:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, s)
	}
}

// Strategy чем было получено название
type Strategy string

const (
	StrategyPattern        Strategy = "pattern"
	StrategyCommaPattern   Strategy = "comma_pattern"
	StrategyCapitalization Strategy = "capitalization"
)

// ProvenanceRef указывает, откуда взято название. После создания не меняется.
type ProvenanceRef struct {
	SourceID  string `json:"source_id"`
	Page      *int   `json:"page,omitempty"`
	LineIndex *int   `json:"line_index,omitempty"`
}

// EntityCandidate кандидат в названия: без краевых пробелов, длиннее трех рун
type EntityCandidate struct {
	Text     string        `json:"text"`
	Origin   ProvenanceRef `json:"origin"`
	Strategy Strategy      `json:"strategy"`
}

// TextLine строка текста от источника (PDF, текстовый файл, HTML)
type TextLine struct {
	SourceID  string `json:"source_id"`
	Page      *int   `json:"page,omitempty"`
	LineIndex int    `json:"line_index"`
	Text      string `json:"text"`
}

// Options параметры сегментации
type Options struct {
	Mode                    Mode `json:"mode"`
	CapitalizationMinLength int  `json:"capitalization_min_length"`
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Mode:                    ModeCommaThenPattern,
		CapitalizationMinLength: DefaultCapitalizationMinLength,
	}
}

// Validate проверяет параметры
func (o Options) Validate() error {
	switch o.Mode {
	case ModePattern, ModeCommaThenPattern, ModeAggressive:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, o.Mode)
	}
	if o.CapitalizationMinLength < DefaultPatternMinLength || o.CapitalizationMinLength > 64 {
		return fmt.Errorf("%w: capitalization_min_length must be between %d and 64, got %d",
			ErrInvalidOptions, DefaultPatternMinLength, o.CapitalizationMinLength)
	}
	return nil
}

// Segmenter делит строки на кандидатов в названия.
// Не хранит изменяемого состояния, безопасен для параллельного использования.
type Segmenter struct {
	opts Options
}

// NewSegmenter создает сегментатор с проверенными параметрами
func NewSegmenter(opts Options) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{opts: opts}, nil
}

// Options возвращает параметры сегментатора
func (s *Segmenter) Options() Options {
	return s.opts
}

type segment struct {
	text     string
	strategy Strategy
}

// SplitByPattern один проход поиска границ по шаблонам
func SplitByPattern(text string) []string {
	return ApplyBoundaries(text, DetectPatternBoundaries(text), DefaultPatternMinLength)
}

// SplitByCommaThenPattern сначала делит по запятым, затем каждую часть по шаблонам
func SplitByCommaThenPattern(text string) []string {
	var result []string
	for _, part := range splitOnCommas(text) {
		result = append(result, SplitByPattern(part)...)
	}
	return result
}

// SplitAggressive как SplitByCommaThenPattern, плюс разбиение каждого сегмента по заглавным буквам
func SplitAggressive(text string, capitalizationMinLength int) []string {
	segments := splitAggressive(text, capitalizationMinLength)
	result := make([]string, 0, len(segments))
	for _, seg := range segments {
		result = append(result, seg.text)
	}
	return result
}

// Split делит строку в соответствии с режимом сегментатора
func (s *Segmenter) Split(text string) []string {
	segments := s.split(text)
	result := make([]string, 0, len(segments))
	for _, seg := range segments {
		result = append(result, seg.text)
	}
	return result
}

func (s *Segmenter) split(text string) []segment {
	switch s.opts.Mode {
	case ModePattern:
		return tagSegments(SplitByPattern(text), StrategyPattern)
	case ModeAggressive:
		return splitAggressive(text, s.opts.CapitalizationMinLength)
	default:
		return tagSegments(SplitByCommaThenPattern(text), StrategyCommaPattern)
	}
}

func splitAggressive(text string, capitalizationMinLength int) []segment {
	var result []segment
	for _, part := range SplitByCommaThenPattern(text) {
		offsets := DetectCapitalizationBoundaries(part)
		pieces := ApplyBoundaries(part, offsets, capitalizationMinLength)
		strategy := StrategyCommaPattern
		if len(pieces) > 1 || (len(pieces) == 1 && pieces[0] != strings.TrimSpace(part)) {
			strategy = StrategyCapitalization
		}
		result = append(result, tagSegments(pieces, strategy)...)
	}
	return result
}

func tagSegments(texts []string, strategy Strategy) []segment {
	segments := make([]segment, 0, len(texts))
	for _, text := range texts {
		segments = append(segments, segment{text: text, strategy: strategy})
	}
	return segments
}

func splitOnCommas(text string) []string {
	var parts []string
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// MergeLines склеивает строку со следующей, если следующая начинается с правовой формы
// ("Limited", "GmbH", "(UK)" ...) и относится к тому же источнику и странице.
// Поглощенная строка отдельно не обрабатывается; склейка не продолжается цепочкой.
// Пустые строки пропускаются.
func MergeLines(lines []TextLine) []TextLine {
	merged := make([]TextLine, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		current := lines[i]
		current.Text = strings.TrimSpace(current.Text)
		if current.Text == "" {
			continue
		}

		if i+1 < len(lines) && sameSourcePage(current, lines[i+1]) {
			next := strings.TrimSpace(lines[i+1].Text)
			if startsWithSuffixToken(next) {
				current.Text = current.Text + " " + next
				i++
			}
		}
		merged = append(merged, current)
	}
	return merged
}

// SegmentLines склеивает перенесенные строки и делит каждую логическую строку на кандидатов.
// Порядок: слева направо, сверху вниз.
func (s *Segmenter) SegmentLines(lines []TextLine) []EntityCandidate {
	var candidates []EntityCandidate
	for _, line := range MergeLines(lines) {
		lineIndex := line.LineIndex
		origin := ProvenanceRef{
			SourceID:  line.SourceID,
			Page:      copyIntPtr(line.Page),
			LineIndex: &lineIndex,
		}
		for _, seg := range s.split(line.Text) {
			if utf8.RuneCountInString(seg.text) <= 3 {
				continue
			}
			candidates = append(candidates, EntityCandidate{
				Text:     seg.text,
				Origin:   origin,
				Strategy: seg.strategy,
			})
		}
	}
	return candidates
}

// SegmentText делит произвольный текст на строки по переводу строки и сегментирует их
func (s *Segmenter) SegmentText(sourceID, text string) []EntityCandidate {
	rawLines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]TextLine, 0, len(rawLines))
	for i, raw := range rawLines {
		lines = append(lines, TextLine{SourceID: sourceID, LineIndex: i, Text: raw})
	}
	return s.SegmentLines(lines)
}

func sameSourcePage(a, b TextLine) bool {
	if a.SourceID != b.SourceID {
		return false
	}
	if a.Page == nil || b.Page == nil {
		return a.Page == nil && b.Page == nil
	}
	return *a.Page == *b.Page
}

// startsWithSuffixToken токен должен заканчиваться на границе слова: "Co" не совпадает с "Columbia"
func startsWithSuffixToken(text string) bool {
	for _, token := range commonSuffixTokens {
		if !strings.HasPrefix(text, token) {
			continue
		}
		rest := text[len(token):]
		if rest == "" {
			return true
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
