package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"namematcher/database"
	"namematcher/extractors"
	"namematcher/importer"
	"namematcher/matching"
	"namematcher/normalization"
	"namematcher/normalization/algorithms"
	"namematcher/registry"
	apperrors "namematcher/server/errors"
)

const (
	// DefaultSourceID источник кандидатов из текста запроса
	DefaultSourceID = "request"
	// MaxUploadSize предел размера загружаемого файла
	MaxUploadSize = 32 << 20
	// MaxNormalizeNames предел числа названий в одном запросе нормализации
	MaxNormalizeNames = 1000
)

// BatchStore история пакетов сопоставления
type BatchStore interface {
	SaveBatch(ctx context.Context, batch *matching.BatchResult) error
	GetBatch(ctx context.Context, id string) (*matching.BatchResult, error)
	ListBatches(ctx context.Context, limit, offset int) ([]database.BatchInfo, error)
	DeleteBatch(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// MatcherHandler обработчики нормализации, сегментации и сопоставления
type MatcherHandler struct {
	lookup          registry.Lookup
	segmenterConfig extractors.Options
	matchingConfig  matching.Config
	store           BatchStore
	cacheStats      CacheStatsReporter
	logger          *slog.Logger
}

// NewMatcherHandler создает обработчик. store == nil отключает историю пакетов.
func NewMatcherHandler(lookup registry.Lookup, segmenterConfig extractors.Options, matchingConfig matching.Config, store BatchStore) *MatcherHandler {
	return &MatcherHandler{
		lookup:          lookup,
		segmenterConfig: segmenterConfig,
		matchingConfig:  matchingConfig,
		store:           store,
		logger:          slog.Default().With("component", "api"),
	}
}

// HandleNormalize нормализует названия
// @Summary Normalize company names
// @Description Names come from the names list and from text split on newlines, commas, semicolons and '|'. Returns normalized and core forms, the registry query form and the address-contamination flag for each name
// @Tags names
// @Accept json
// @Produce json
// @Param request body NormalizeRequest true "Names"
// @Success 200 {object} NormalizeResponse
// @Failure 400 {object} ErrorResponse
// @Router /normalize [post]
func (h *MatcherHandler) HandleNormalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendAppError(c, apperrors.NewValidationError("invalid request body: "+err.Error(), err))
		return
	}

	names := append(req.Names, normalization.SplitOnDelimiters(req.Text)...)
	if len(names) == 0 {
		SendAppError(c, apperrors.NewValidationError("names or text is required", nil))
		return
	}
	if len(names) > MaxNormalizeNames {
		SendAppError(c, apperrors.NewValidationError(fmt.Sprintf("at most %d names per request", MaxNormalizeNames), nil))
		return
	}

	results := make([]NormalizedNameResult, 0, len(names))
	for _, name := range names {
		normalized := normalization.NormalizeName(name)
		results = append(results, NormalizedNameResult{
			Input:          name,
			Normalized:     normalized.Normalized,
			Core:           normalized.Core,
			APIQuery:       normalization.PreprocessForAPI(name),
			AddressSuspect: normalization.DetectAddressContamination(name),
		})
	}

	relationships := normalization.DetectParentSubsidiary(names)
	if relationships == nil {
		relationships = []normalization.Relationship{}
	}

	SendJSONResponse(c, http.StatusOK, NormalizeResponse{
		Results:       results,
		Relationships: relationships,
	})
}

// HandleSegment делит текст на кандидатов в названия
// @Summary Segment text into entity candidates
// @Tags names
// @Accept json
// @Produce json
// @Param request body SegmentRequest true "Text and segmentation options"
// @Success 200 {object} SegmentResponse
// @Failure 400 {object} ErrorResponse
// @Router /segment [post]
func (h *MatcherHandler) HandleSegment(c *gin.Context) {
	var req SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendAppError(c, apperrors.NewValidationError("invalid request body: "+err.Error(), err))
		return
	}

	candidates, err := h.segment(c.Request.Context(), req, nil)
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, SegmentResponse{
		Candidates: candidates,
		Count:      len(candidates),
	})
}

// HandleSimilarity оценивает схожесть двух названий
// @Summary Score similarity of two names
// @Description Weighted 0.4 ratio + 0.3 partial ratio + 0.3 token sort ratio, rounded to two decimals
// @Tags names
// @Accept json
// @Produce json
// @Param request body SimilarityRequest true "Pair of names"
// @Success 200 {object} SimilarityResponse
// @Failure 400 {object} ErrorResponse
// @Router /similarity [post]
func (h *MatcherHandler) HandleSimilarity(c *gin.Context) {
	var req SimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendAppError(c, apperrors.NewValidationError("invalid request body: "+err.Error(), err))
		return
	}

	SendJSONResponse(c, http.StatusOK, SimilarityResponse{
		A:                   req.A,
		B:                   req.B,
		MatchScoreBreakdown: algorithms.ScoreBreakdown(req.A, req.B),
	})
}

// HandleMatch сегментирует текст или загруженный файл и сопоставляет названия с реестром
// @Summary Segment and match against the company registry
// @Description Accepts JSON with text or multipart/form-data with a .pdf, .txt or .html file. The batch is stored in history when the store is enabled.
// @Tags matching
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body MatchRequest false "Text and options"
// @Param file formData file false "Input document"
// @Success 200 {object} matching.BatchResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match [post]
func (h *MatcherHandler) HandleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBind(&req); err != nil {
		SendAppError(c, apperrors.NewValidationError("invalid request body: "+err.Error(), err))
		return
	}

	source, err := uploadedSource(c)
	if err != nil {
		SendAppError(c, err)
		return
	}

	config := h.matchingConfig
	if req.MinSimilarity != nil {
		config.MinSimilarity = *req.MinSimilarity
	}
	if req.MaxResultsPerName != nil {
		config.MaxResultsPerName = *req.MaxResultsPerName
	}

	aggregator, err := matching.NewAggregator(h.lookup, config, matching.WithLogger(h.logger))
	if err != nil {
		SendAppError(c, err)
		return
	}

	ctx := c.Request.Context()
	candidates, err := h.segment(ctx, req.SegmentRequest, source)
	if err != nil {
		SendAppError(c, err)
		return
	}

	batch, err := aggregator.Run(ctx, candidates)
	if err != nil {
		SendAppError(c, fmt.Errorf("failed to match candidates: %w", err))
		return
	}

	if h.store != nil {
		// Отмена запроса не должна терять уже полученный пакет
		if err := h.store.SaveBatch(context.WithoutCancel(ctx), batch); err != nil {
			SendAppError(c, apperrors.NewInternalError("failed to save batch", err))
			return
		}
	}

	h.logger.Info("Batch matched",
		"batch_id", batch.ID,
		"occurrences", batch.Summary.TotalOccurrences,
		"matched", batch.Summary.Matched,
		"cancelled", batch.Summary.Cancelled)

	SendJSONResponse(c, http.StatusOK, batch)
}

// segment строит сегментатор из параметров запроса поверх конфигурации сервера
// и сегментирует source, а без него текст запроса
func (h *MatcherHandler) segment(ctx context.Context, req SegmentRequest, source importer.Source) ([]extractors.EntityCandidate, error) {
	opts := h.segmenterConfig
	if req.Mode != nil {
		mode, err := extractors.ParseMode(*req.Mode)
		if err != nil {
			return nil, err
		}
		opts.Mode = mode
	}
	if req.CapitalizationMinLength != nil {
		opts.CapitalizationMinLength = *req.CapitalizationMinLength
	}

	segmenter, err := extractors.NewSegmenter(opts)
	if err != nil {
		return nil, err
	}

	if source == nil {
		sourceID := strings.TrimSpace(req.SourceID)
		if sourceID == "" {
			sourceID = DefaultSourceID
		}
		source = importer.NewTextSource(sourceID, strings.NewReader(req.Text))
	}

	lines, err := source.Lines(ctx)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read input", err)
	}

	candidates := segmenter.SegmentLines(lines)
	if candidates == nil {
		candidates = []extractors.EntityCandidate{}
	}
	return candidates, nil
}

// uploadedSource возвращает источник для поля file multipart-запроса или nil, если файла нет
func uploadedSource(c *gin.Context) (importer.Source, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}

	header, err := c.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewValidationError("invalid file upload", err)
	}
	if header.Size > MaxUploadSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("file is larger than %d bytes", MaxUploadSize), nil)
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid file upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read uploaded file", err)
	}

	return importer.NewSourceForUpload(header.Filename, data)
}
