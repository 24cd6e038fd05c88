package handlers

import (
	"time"

	"namematcher/database"
	"namematcher/extractors"
	"namematcher/normalization"
	"namematcher/normalization/algorithms"
	"namematcher/registry"
)

// NormalizeRequest названия для нормализации: списком и/или текстом,
// разделенным переводами строк, запятыми, точками с запятой или '|'
type NormalizeRequest struct {
	Names []string `json:"names,omitempty" binding:"max=1000"`
	Text  string   `json:"text,omitempty"`
}

// NormalizedNameResult производные формы одного названия
type NormalizedNameResult struct {
	Input          string `json:"input"`
	Normalized     string `json:"normalized"`
	Core           string `json:"core"`
	APIQuery       string `json:"api_query"`
	AddressSuspect bool   `json:"address_suspect"`
}

// NormalizeResponse результат нормализации
type NormalizeResponse struct {
	Results       []NormalizedNameResult       `json:"results"`
	Relationships []normalization.Relationship `json:"relationships"`
}

// SegmentRequest текст для сегментации. Пустые параметры берутся из конфигурации сервера.
type SegmentRequest struct {
	Text                    string  `json:"text" form:"text"`
	SourceID                string  `json:"source_id" form:"source_id"`
	Mode                    *string `json:"mode,omitempty" form:"mode"`
	CapitalizationMinLength *int    `json:"capitalization_min_length,omitempty" form:"capitalization_min_length"`
}

// SegmentResponse найденные кандидаты
type SegmentResponse struct {
	Candidates []extractors.EntityCandidate `json:"candidates"`
	Count      int                          `json:"count"`
}

// SimilarityRequest пара названий для сравнения
type SimilarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// SimilarityResponse оценка и ее составляющие
type SimilarityResponse struct {
	A string `json:"a"`
	B string `json:"b"`
	algorithms.MatchScoreBreakdown
}

// MatchRequest текст (или загруженный файл) для сегментации и сопоставления с реестром
type MatchRequest struct {
	SegmentRequest
	MinSimilarity     *float64 `json:"min_similarity,omitempty" form:"min_similarity"`
	MaxResultsPerName *int     `json:"max_results_per_name,omitempty" form:"max_results_per_name"`
}

// LookupRequest название для поиска в реестре
type LookupRequest struct {
	Name string `json:"name" binding:"required"`
}

// LookupResponse ответ реестра; Record и Breakdown пусты, если запись не найдена
type LookupResponse struct {
	Name      string                          `json:"name"`
	Query     string                          `json:"query"`
	Found     bool                            `json:"found"`
	Matched   bool                            `json:"matched"`
	Record    *registry.Record                `json:"record,omitempty"`
	Breakdown *algorithms.MatchScoreBreakdown `json:"breakdown,omitempty"`
}

// BoundaryRuleInfo правило границы в виде для API
type BoundaryRuleInfo struct {
	Name                     string `json:"name"`
	Category                 string `json:"category"`
	Pattern                  string `json:"pattern"`
	RequiresFollowingCapital bool   `json:"requires_following_capital"`
}

// RulesResponse таблицы правил с версиями
type RulesResponse struct {
	LegalSuffixVersion   string              `json:"legal_suffix_version"`
	LegalSuffixes        map[string][]string `json:"legal_suffixes"`
	BoundaryRulesVersion string              `json:"boundary_rules_version"`
	BoundaryRules        []BoundaryRuleInfo  `json:"boundary_rules"`
}

// BatchListResponse страница истории пакетов
type BatchListResponse struct {
	Batches []database.BatchInfo `json:"batches"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// HealthResponse состояние сервиса
type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string               `json:"store"`
	Cache     *registry.CacheStats `json:"cache,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}
