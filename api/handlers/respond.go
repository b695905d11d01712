package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/catalog/internal/repository"
	"example.com/backstage/services/catalog/internal/result"
)

// respond maps a service outcome to an HTTP response. okStatus is used for
// the success variant; the error argument covers infrastructure failures,
// which a Result never carries.
func respond[T any](c *gin.Context, okStatus int, res result.Result[T], err error) {
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "The resource was modified concurrently, retry the request",
			})
			return
		}
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	switch {
	case res.IsInvalid():
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"errors": res.ValidationErrors(),
		})
	case res.IsNotFound():
		c.JSON(http.StatusNotFound, gin.H{
			"error": res.Message(),
		})
	default:
		c.JSON(okStatus, gin.H{
			"message": res.Message(),
			"data":    res.Value(),
		})
	}
}
