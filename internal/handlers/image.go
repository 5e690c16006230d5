// internal/handlers/image.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tecnova-catalog/internal/services"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

type ImageHandler struct {
	catalogClient *services.CatalogClient
}

func NewImageHandler(catalogClient *services.CatalogClient) *ImageHandler {
	return &ImageHandler{catalogClient: catalogClient}
}

// GET /images/:name
func (h *ImageHandler) GetImage(c *gin.Context) {
	name := c.Param("name")
	if !isBareFileName(name) {
		utils.ValidationErrorResponse(c, []utils.ValidationError{{
			Field:   "name",
			Tag:     "filename",
			Message: "name must be a plain file name",
		}})
		return
	}

	img, err := h.catalogClient.FetchImage(c.Request.Context(), name)
	if err != nil {
		respondError(c, resourceImage, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// isBareFileName accepts names that can only resolve to the backend's image
// endpoint: no scheme, host or path separators.
func isBareFileName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\:?#%")
}
