package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"namematcher/export"
	apperrors "namematcher/server/errors"
)

const (
	defaultBatchPageSize = 50
	maxBatchPageSize     = 500
)

// requireStore отвечает 503, если история пакетов отключена
func (h *MatcherHandler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		SendAppError(c, apperrors.NewServiceUnavailableError("batch history is disabled", nil))
		return false
	}
	return true
}

// HandleListBatches список сохраненных пакетов, новые первыми
// @Summary List matched batches
// @Tags batches
// @Produce json
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} BatchListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /batches [get]
func (h *MatcherHandler) HandleListBatches(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	limit, err := queryInt(c, "limit", defaultBatchPageSize)
	if err != nil || limit < 1 || limit > maxBatchPageSize {
		SendAppError(c, apperrors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", maxBatchPageSize), err))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		SendAppError(c, apperrors.NewValidationError("offset must be a non-negative integer", err))
		return
	}

	batches, err := h.store.ListBatches(c.Request.Context(), limit, offset)
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, BatchListResponse{
		Batches: batches,
		Limit:   limit,
		Offset:  offset,
	})
}

// HandleGetBatch пакет с результатами
// @Summary Get a matched batch
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} matching.BatchResult
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /batches/{id} [get]
func (h *MatcherHandler) HandleGetBatch(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	batch, err := h.store.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, batch)
}

// HandleDeleteBatch удаляет пакет из истории
// @Summary Delete a matched batch
// @Tags batches
// @Param id path string true "Batch ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /batches/{id} [delete]
func (h *MatcherHandler) HandleDeleteBatch(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	if err := h.store.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		SendAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleExportBatch выгружает результаты пакета в CSV, Excel или JSON
// @Summary Export a matched batch
// @Tags batches
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce json
// @Param id path string true "Batch ID"
// @Param format query string false "csv (default), xlsx or json"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /batches/{id}/export [get]
func (h *MatcherHandler) HandleExportBatch(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		SendAppError(c, err)
		return
	}

	batch, err := h.store.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		SendAppError(c, err)
		return
	}

	sink, err := export.NewSink(format, c.Writer)
	if err != nil {
		SendAppError(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="batch-%s.%s"`, batch.ID, format))
	c.Status(http.StatusOK)

	// Заголовки уже отправлены, ошибку можно только залогировать
	if err := sink.Write(batch.Results); err != nil {
		h.logger.Error("Failed to export batch",
			"batch_id", batch.ID,
			"format", format,
			"error", err)
		_ = c.Error(err)
	}
}

// HandleHealth проверка состояния сервиса; при недоступном хранилище отвечает 503
func (h *MatcherHandler) HandleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Store:     "disabled",
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK

	if h.store != nil {
		resp.Store = "ok"
		if err := h.store.Ping(c.Request.Context()); err != nil {
			h.logger.Error("Store health check failed", "error", err)
			resp.Status = "degraded"
			resp.Store = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.cacheStats != nil {
		stats := h.cacheStats.Stats()
		resp.Cache = &stats
	}

	SendJSONResponse(c, status, resp)
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
