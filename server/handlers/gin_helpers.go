package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"namematcher/database"
	"namematcher/export"
	"namematcher/extractors"
	"namematcher/importer"
	"namematcher/matching"
	apperrors "namematcher/server/errors"
	"namematcher/server/middleware"
)

// ErrorResponse ответ об ошибке (для документации API)
type ErrorResponse = middleware.ErrorResponse

// SendJSONResponse отправляет JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError отправляет JSON ошибку через Gin context и логирует её
func SendJSONError(c *gin.Context, statusCode int, message string) {
	middleware.WriteJSONError(c, statusCode, message)
}

// SendAppError отвечает по ошибке домена, переводя ее в AppError
func SendAppError(c *gin.Context, err error) {
	middleware.HandleHTTPError(c, toAppError(err))
}

// toAppError сопоставляет ошибки пакетов домена с HTTP статусами
func toAppError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, matching.ErrInvalidConfig),
		errors.Is(err, extractors.ErrInvalidOptions),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, export.ErrUnsupportedFormat):
		return apperrors.NewValidationError(err.Error(), err)
	case errors.Is(err, database.ErrBatchNotFound):
		return apperrors.NewNotFoundError("batch not found", err)
	default:
		return apperrors.NewInternalError("request failed", err)
	}
}
