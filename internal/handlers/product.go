// internal/handlers/product.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tecnova-catalog/internal/i18n"
	"github.com/javajoker/tecnova-catalog/internal/models"
	"github.com/javajoker/tecnova-catalog/internal/services"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

const (
	imagesField  = "images"
	maxImageSize = 5 << 20
	maxImages    = 10
)

var errImageTooLarge = errors.New("image too large")

type ProductHandler struct {
	syncService         *services.SyncService
	presentationService *services.PresentationService
}

func NewProductHandler(syncService *services.SyncService, presentationService *services.PresentationService) *ProductHandler {
	return &ProductHandler{
		syncService:         syncService,
		presentationService: presentationService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	// A failed or superseded refresh still renders the committed snapshot
	_, refreshErr := h.syncService.Refresh(c.Request.Context(), params.Search)
	products, status := h.syncService.Current()
	if errors.Is(refreshErr, services.ErrSuperseded) {
		c.Header("X-Catalog-Superseded", "true")
	}

	view := h.presentationService.CatalogView(status, products, refreshErr, lang)
	start, end := utils.PageBounds(len(view.Products), params)
	total := len(view.Products)
	view.Products = view.Products[start:end]

	result := utils.CreatePaginationResult(view, int64(total), params)
	utils.PaginatedResponse(c, result, gin.H{"sync": status})
}

// GET /products/snapshot
func (h *ProductHandler) GetSnapshot(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	products, status := h.syncService.Current()

	utils.SuccessResponseWithMeta(c,
		h.presentationService.CatalogView(status, products, nil, lang),
		gin.H{"sync": status},
	)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.syncService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, resourceProduct, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": h.presentationService.ProductCard(*product, utils.GetLangFromContext(c)),
	})
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	draft, images, ok := h.bindDraft(c)
	if !ok {
		return
	}

	product, err := h.syncService.Create(c.Request.Context(), draft, images)
	if product == nil {
		respondError(c, resourceProduct, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyProductCreated), gin.H{
		"product": h.presentationService.ProductCard(*product, lang),
	}, refreshMeta(c, err))
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	draft, images, ok := h.bindDraft(c)
	if !ok {
		return
	}

	product, err := h.syncService.Update(c.Request.Context(), id, draft, images)
	if product == nil {
		respondError(c, resourceProduct, err)
		return
	}

	utils.MessageResponse(c, http.StatusOK, i18n.T(lang, i18n.KeyProductUpdated), gin.H{
		"product": h.presentationService.ProductCard(*product, lang),
	}, refreshMeta(c, err))
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.syncService.Delete(c.Request.Context(), id)
	if !deleted {
		respondError(c, resourceProduct, err)
		return
	}

	utils.MessageResponse(c, http.StatusOK, i18n.T(lang, i18n.KeyProductDeleted), nil, refreshMeta(c, err))
}

// POST /products/import
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var drafts []models.ProductDraft
	if err := c.ShouldBindJSON(&drafts); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	products, err := h.syncService.Import(c.Request.Context(), drafts)
	if products == nil {
		respondError(c, resourceProduct, err)
		return
	}

	cards := make([]models.ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, h.presentationService.ProductCard(p, lang))
	}
	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyProductImported, len(products)), gin.H{
		"products": cards,
	}, refreshMeta(c, err))
}

// bindDraft reads the product form, either multipart with image files or a
// plain JSON body, and writes the error response itself on failure.
func (h *ProductHandler) bindDraft(c *gin.Context) (models.ProductDraft, []models.ImageUpload, bool) {
	lang := utils.GetLangFromContext(c)

	var input services.DraftInput
	if err := c.ShouldBind(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return models.ProductDraft{}, nil, false
	}

	draft, err := input.Draft()
	if err != nil {
		respondError(c, resourceProduct, err)
		return models.ProductDraft{}, nil, false
	}

	images, err := readUploads(c)
	if errors.Is(err, errImageTooLarge) {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.T(lang, i18n.KeyFileTooLarge), err.Error())
		return models.ProductDraft{}, nil, false
	}
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return models.ProductDraft{}, nil, false
	}
	return draft, images, true
}

func readUploads(c *gin.Context) ([]models.ImageUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File[imagesField]
	if len(files) > maxImages {
		return nil, fmt.Errorf("at most %d images per request", maxImages)
	}

	uploads := make([]models.ImageUpload, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxImageSize {
			return nil, fmt.Errorf("%w: %s", errImageTooLarge, fh.Filename)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		uploads = append(uploads, models.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}
