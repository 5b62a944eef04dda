package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/engine"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAccount),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, engine.ErrInvalidServings),
		errors.Is(err, ingest.ErrUnknownKind),
		errors.Is(err, ingest.ErrUnsupportedFile),
		errors.Is(err, ingest.ErrForecastDateless),
		errors.Is(err, ingest.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	} else {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg(message)
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
