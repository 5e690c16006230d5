// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tecnova-catalog/internal/i18n"
	"github.com/javajoker/tecnova-catalog/internal/services"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

const (
	resourceProduct = "product"
	resourceImage   = "image"
)

// respondError maps service errors onto HTTP responses. resource names what a
// backend 404 refers to. Backend messages are passed through unchanged.
func respondError(c *gin.Context, resource string, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErr *services.ValidationError
	var remoteErr *services.RemoteError
	var networkErr *services.NetworkError

	switch {
	case errors.As(err, &validationErr):
		utils.ValidationErrorResponse(c, validationErr.Fields)
	case errors.As(err, &remoteErr):
		switch {
		case remoteErr.NotFound():
			utils.NotFoundResponse(c, resource, remoteErr.Message)
		case remoteErr.Status >= 400 && remoteErr.Status < 500:
			utils.ErrorResponse(c, remoteErr.Status, "REMOTE_ERROR", remoteErr.Message, remoteErr.Code)
		default:
			utils.ErrorResponse(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", i18n.T(lang, i18n.KeyRemoteUnavailable), remoteErr.Message)
		}
	case errors.As(err, &networkErr):
		if networkErr.Timeout() {
			utils.ErrorResponse(c, http.StatusGatewayTimeout, "REMOTE_TIMEOUT", i18n.T(lang, i18n.KeyRemoteTimeout), networkErr.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", i18n.T(lang, i18n.KeyRemoteUnavailable), networkErr.Error())
	default:
		c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		utils.ValidationErrorResponse(c, []utils.ValidationError{{
			Field:   "id",
			Tag:     "gt",
			Message: "id must be a positive integer",
		}})
		return 0, false
	}
	return id, true
}

// refreshMeta describes a refresh that failed after a successful mutation.
func refreshMeta(c *gin.Context, err error) interface{} {
	if err == nil {
		return nil
	}
	return gin.H{
		"refresh_error": err.Error(),
		"warning":       i18n.T(utils.GetLangFromContext(c), i18n.KeyProductRefreshStale),
	}
}
