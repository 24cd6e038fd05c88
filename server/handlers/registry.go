package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"namematcher/extractors"
	"namematcher/normalization"
	"namematcher/normalization/algorithms"
	"namematcher/registry"
	apperrors "namematcher/server/errors"
)

// CacheStatsReporter кэш ответов реестра, отдающий статистику для /health
type CacheStatsReporter interface {
	Stats() registry.CacheStats
}

// SetCacheStats подключает статистику кэша к /health
func (h *MatcherHandler) SetCacheStats(reporter CacheStatsReporter) {
	h.cacheStats = reporter
}

// HandleLookup ищет одно название в реестре
// @Summary Look up a single name in the company registry
// @Description The name is preprocessed into a registry query; the response carries the record and its score breakdown against the input
// @Tags matching
// @Accept json
// @Produce json
// @Param request body LookupRequest true "Name"
// @Success 200 {object} LookupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /lookup [post]
func (h *MatcherHandler) HandleLookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendAppError(c, apperrors.NewValidationError("invalid request body: "+err.Error(), err))
		return
	}

	name := strings.TrimSpace(req.Name)
	query := normalization.PreprocessForAPI(name)
	if query == "" {
		query = name
	}

	record, err := h.lookup.Lookup(c.Request.Context(), query)
	if err != nil {
		SendAppError(c, registryError(err, query))
		return
	}

	resp := LookupResponse{Name: name, Query: query, Found: record != nil}
	if record != nil {
		breakdown := algorithms.ScoreBreakdown(name, record.MatchedName)
		resp.Record = record
		resp.Breakdown = &breakdown
		resp.Matched = breakdown.Score >= h.matchingConfig.MinSimilarity
	}

	SendJSONResponse(c, http.StatusOK, resp)
}

// HandleRules отдает таблицы правовых форм и правил границ с их версиями
// @Summary Normalization and segmentation rule tables
// @Tags names
// @Produce json
// @Success 200 {object} RulesResponse
// @Router /rules [get]
func (h *MatcherHandler) HandleRules(c *gin.Context) {
	rules := extractors.BoundaryRules()
	boundary := make([]BoundaryRuleInfo, 0, len(rules))
	for _, rule := range rules {
		boundary = append(boundary, BoundaryRuleInfo{
			Name:                     rule.Name,
			Category:                 rule.Category.String(),
			Pattern:                  rule.Pattern.String(),
			RequiresFollowingCapital: rule.RequiresFollowingCapital,
		})
	}

	SendJSONResponse(c, http.StatusOK, RulesResponse{
		LegalSuffixVersion:   normalization.LegalSuffixTableVersion,
		LegalSuffixes:        normalization.LegalSuffixPatterns(),
		BoundaryRulesVersion: extractors.BoundaryRulesVersion,
		BoundaryRules:        boundary,
	})
}

// registryError переводит сбой реестра в 503 (предохранитель, квота) или 502
func registryError(err error, query string) *apperrors.AppError {
	where := fmt.Sprintf("lookup %q", query)
	if errors.Is(err, registry.ErrCircuitOpen) || errors.Is(err, registry.ErrRateLimited) {
		return apperrors.NewServiceUnavailableError("registry is temporarily unavailable", err).WithContext(where)
	}
	return apperrors.NewBadGatewayError("registry lookup failed", err).WithContext(where)
}
