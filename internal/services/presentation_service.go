// internal/services/presentation_service.go
package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/javajoker/tecnova-catalog/internal/config"
	"github.com/javajoker/tecnova-catalog/internal/i18n"
	"github.com/javajoker/tecnova-catalog/internal/models"
)

// PresentationService turns snapshots and aggregation output into view
// models. It never calls the backend and never changes the snapshot.
type PresentationService struct {
	remote      config.RemoteConfig
	currency    string
	placeholder string
}

func NewPresentationService(remote config.RemoteConfig, cfg config.I18nConfig) *PresentationService {
	return &PresentationService{
		remote:      remote,
		currency:    cfg.CurrencySymbol,
		placeholder: cfg.PlaceholderImage,
	}
}

// CatalogView renders the product list screen for status and products.
// refreshErr is the error of the refresh that produced the view, if any.
func (s *PresentationService) CatalogView(status models.SyncStatus, products []models.Product, refreshErr error, lang string) models.CatalogView {
	view := models.CatalogView{
		State:    status.State,
		Filter:   status.Filter,
		Products: make([]models.ProductCard, 0, len(products)),
	}

	for _, p := range products {
		view.Products = append(view.Products, s.ProductCard(p, lang))
	}
	view.Empty = len(view.Products) == 0

	switch {
	case refreshErr != nil && errors.Is(refreshErr, ErrSuperseded):
		view.Message = i18n.T(lang, i18n.KeyCatalogSuperseded)
	case refreshErr != nil:
		view.State = models.SyncStateError
		view.Message = i18n.T(lang, i18n.KeyCatalogLoadFailed)
		view.Error = refreshErr.Error()
	case status.State == models.SyncStateError:
		view.Message = i18n.T(lang, i18n.KeyCatalogLoadFailed)
		view.Error = status.Error
	case status.State == models.SyncStateLoading && view.Empty:
		view.Message = i18n.T(lang, i18n.KeyCatalogLoading)
	case view.Empty && status.Filter != "":
		view.Message = i18n.T(lang, i18n.KeyCatalogNoResults, status.Filter)
	case view.Empty:
		view.Message = i18n.T(lang, i18n.KeyCatalogEmpty)
	}
	return view
}

// ProductCard renders one product. The first image is the card image; a
// product without images shows the placeholder.
func (s *PresentationService) ProductCard(p models.Product, lang string) models.ProductCard {
	images := make([]string, 0, len(p.Images))
	for _, ref := range p.Images {
		if u := ResolveImageURL(s.remote, ref); u != "" {
			images = append(images, u)
		}
	}

	card := models.ProductCard{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Manufacturer: p.Manufacturer,
		Color:        p.Color,
		Price:        s.FormatPrice(p.Price, lang),
		Quantity:     p.Quantity,
		StockLabel:   s.StockLabel(p.Quantity, lang),
		ImageURL:     s.placeholder,
		Images:       images,
	}
	if len(images) > 0 {
		card.ImageURL = images[0]
	}
	return card
}

// FormatPrice renders amount rounded to cents with the locale's separators,
// e.g. "R$ 19,99" for pt_BR. Rounding matches decimal.StringFixed so cards
// and exports agree.
func (s *PresentationService) FormatPrice(amount decimal.Decimal, lang string) string {
	p := message.NewPrinter(tagFor(lang))
	text := p.Sprintf("%.2f", amount.Round(2).InexactFloat64())
	if s.currency == "" {
		return text
	}
	return s.currency + " " + text
}

func (s *PresentationService) StockLabel(quantity int, lang string) string {
	if quantity <= 0 {
		return i18n.T(lang, i18n.KeyProductOutOfStock)
	}
	return i18n.T(lang, i18n.KeyProductInStock, quantity)
}

// ChartView maps groups to a chart dataset, keeping their order.
func (s *PresentationService) ChartView(title string, kind models.ChartKind, groups []models.GroupSummary) models.ChartView {
	view := models.ChartView{
		Title:  title,
		Kind:   kind,
		Labels: make([]string, 0, len(groups)),
		Data:   make([]int64, 0, len(groups)),
	}
	for _, g := range groups {
		view.Labels = append(view.Labels, g.Key)
		view.Data = append(view.Data, g.Total)
	}
	return view
}

func tagFor(lang string) language.Tag {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return language.BrazilianPortuguese
	}
	return tag
}
