// internal/services/report_service.go
package services

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/tecnova-catalog/internal/config"
	"github.com/javajoker/tecnova-catalog/internal/i18n"
	"github.com/javajoker/tecnova-catalog/internal/models"
)

// SnapshotSource exposes the committed snapshot. *SyncService implements it.
type SnapshotSource interface {
	Current() ([]models.Product, models.SyncStatus)
}

type ReportService struct {
	source     SnapshotSource
	presenter  *PresentationService
	dataSource string
	topN       int
	topKey     KeyFunc
	log        *logrus.Entry
}

// csvRow is the exported column layout. Prices are written as plain decimal
// text so spreadsheets do not round them.
type csvRow struct {
	ID           int64  `csv:"id"`
	Name         string `csv:"nome"`
	Description  string `csv:"textoDescritivo"`
	Manufacturer string `csv:"fabricante"`
	Color        string `csv:"cor"`
	Price        string `csv:"preco"`
	Quantity     int    `csv:"quantidade"`
	Images       int    `csv:"imagens"`
}

func NewReportService(source SnapshotSource, presenter *PresentationService, cfg config.ReportConfig, log *logrus.Entry) *ReportService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = 5
	}
	dataSource := cfg.Source
	if dataSource == "" {
		dataSource = config.ReportSourceLive
	}
	topKey, ok := KeyFuncFor(cfg.TopKey)
	if !ok {
		topKey = ByName
	}
	return &ReportService{
		source:     source,
		presenter:  presenter,
		dataSource: dataSource,
		topN:       topN,
		topKey:     topKey,
		log:        log.WithField("component", "reports"),
	}
}

// Dashboard builds the charts screen from the configured data source.
func (s *ReportService) Dashboard(lang string) models.DashboardView {
	products, state := s.products()

	view := models.DashboardView{
		Source:  s.dataSource,
		State:   state,
		Summary: s.Summary(products, lang),
		ByManufacturer: s.presenter.ChartView(
			i18n.T(lang, i18n.KeyChartByManufacturer),
			models.ChartKindBar,
			GroupByField(products, ByManufacturer),
		),
		ByColor: s.presenter.ChartView(
			i18n.T(lang, i18n.KeyChartByColor),
			models.ChartKindDoughnut,
			GroupByField(products, ByColor),
		),
		CountByMaker: s.presenter.ChartView(
			i18n.T(lang, i18n.KeyChartCountManufacturer),
			models.ChartKindBar,
			CountByField(products, ByManufacturer),
		),
		TopStock: s.presenter.ChartView(
			i18n.T(lang, i18n.KeyChartTopStock, s.topN),
			models.ChartKindHorizontalBar,
			TopNByQuantity(products, s.topN, s.topKey),
		),
	}

	s.log.WithFields(logrus.Fields{
		"source":   s.dataSource,
		"products": len(products),
	}).Debug("Dashboard built")
	return view
}

// Summary computes headline numbers. Mean and median are empty when there
// are no products.
func (s *ReportService) Summary(products []models.Product, lang string) models.StockSummary {
	summary := models.StockSummary{Products: len(products)}

	prices := make(stats.Float64Data, 0, len(products))
	for _, p := range products {
		summary.TotalStock += int64(p.Quantity)
		prices = append(prices, p.Price.InexactFloat64())
	}

	if mean, err := stats.Mean(prices); err == nil {
		summary.MeanPrice = s.presenter.FormatPrice(decimal.NewFromFloat(mean), lang)
	}
	if median, err := stats.Median(prices); err == nil {
		summary.MedianPrice = s.presenter.FormatPrice(decimal.NewFromFloat(median), lang)
	}
	return summary
}

// ExportCSV writes the committed snapshot as CSV with a header row.
func (s *ReportService) ExportCSV(w io.Writer) error {
	products, _ := s.source.Current()

	rows := make([]*csvRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &csvRow{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Manufacturer: p.Manufacturer,
			Color:        p.Color,
			Price:        p.Price.StringFixed(2),
			Quantity:     p.Quantity,
			Images:       len(p.Images),
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	s.log.WithField("rows", len(rows)).Info("Snapshot exported")
	return nil
}

func (s *ReportService) products() ([]models.Product, models.SyncState) {
	if s.dataSource == config.ReportSourceSample {
		return SampleProducts(), models.SyncStateIdle
	}
	products, status := s.source.Current()
	return products, status.State
}

// SampleProducts is the demonstration dataset shown on the charts page when
// no live backend is wired.
func SampleProducts() []models.Product {
	sample := []struct {
		name, maker, color, price string
		qty                       int
	}{
		{"Fone Tune 510BT", "JBL", "Preto", "249.90", 19},
		{"Fone TAH1108", "Philips", "Branco", "129.90", 27},
		{"Mouse Nitro", "Acer", "Preto", "89.90", 18},
		{"Teclado Gamer", "Fortrek", "Preto", "119.90", 12},
		{"Caixa Go 3", "JBL", "Preto", "279.00", 3},
		{"Mouse Gamer", "Fortrek", "Preto", "59.90", 11},
		{"Headset Cloud Stinger", "Hyperx", "Preto", "299.90", 5},
		{"Fone Tune 510BT", "JBL", "Preto", "249.90", 14},
		{"Mousepad Speed", "Fortrek", "Branco", "39.90", 8},
		{"Teclado Kumara", "Redragon", "Vermelho", "219.90", 6},
		{"Caixa Go 3", "JBL", "Branco", "279.00", 12},
		{"Mouse Cobra", "Redragon", "Azul", "149.90", 8},
	}

	products := make([]models.Product, 0, len(sample))
	for i, row := range sample {
		products = append(products, models.Product{
			ID:           int64(i + 1),
			Name:         row.name,
			Manufacturer: row.maker,
			Color:        row.color,
			Price:        decimal.RequireFromString(row.price),
			Quantity:     row.qty,
			Images:       []string{},
		})
	}
	return products
}
