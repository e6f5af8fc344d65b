package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodhub/internal/service"
	"foodhub/internal/storage"
)

// statusFor traduce errores de dominio a códigos HTTP; ok=false significa error interno.
func statusFor(err error) (int, string, bool) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, storage.ErrUnsupportedImage):
		return http.StatusBadRequest, "unsupported image type", true
	case errors.Is(err, service.ErrAlreadyRegistered):
		return http.StatusConflict, "user already registered", true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user not found", true
	case errors.Is(err, service.ErrCategoryNotFound):
		return http.StatusNotFound, "category not found", true
	case errors.Is(err, service.ErrFoodNotFound):
		return http.StatusNotFound, "food not found", true
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized, "invalid credentials", true
	case errors.Is(err, service.ErrInvalidOrExpiredCode):
		return http.StatusBadRequest, "invalid or expired otp", true
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, "invalid or expired reset link", true
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token", true
	case errors.Is(err, service.ErrDeliveryFailure):
		return http.StatusServiceUnavailable, "email delivery unavailable", true
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests", true
	default:
		return http.StatusInternalServerError, "", false
	}
}

// respondError escribe el error mapeado; los errores internos se loguean y se ocultan al cliente.
func respondError(c *gin.Context, logger *zap.Logger, err error, op string) {
	status, msg, ok := statusFor(err)
	if !ok {
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
		return
	}
	c.JSON(status, gin.H{"error": msg})
}
