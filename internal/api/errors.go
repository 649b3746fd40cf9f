package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
)

// respondError maps the error taxonomy onto HTTP responses. Validation and
// limit errors name the offending field; anything unclassified becomes an
// opaque 500 with the detail kept in the logs.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var limitErr *apperrors.LimitExceededError
	if errors.As(err, &limitErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": limitErr.Message})
		return
	}

	var authErr *apperrors.AuthError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
		return
	}

	var notFoundErr *apperrors.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
