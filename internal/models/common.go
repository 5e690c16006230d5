// internal/models/common.go
package models

import "time"

// Enums
type SyncState string

const (
	SyncStateIdle    SyncState = "idle"
	SyncStateLoading SyncState = "loading"
	SyncStateError   SyncState = "error"
)

type ChartKind string

const (
	ChartKindBar           ChartKind = "bar"
	ChartKindDoughnut      ChartKind = "doughnut"
	ChartKindHorizontalBar ChartKind = "horizontalBar"
)

// SyncStatus describes the local snapshot and the request currently in
// flight against the remote collection.
type SyncStatus struct {
	State       SyncState  `json:"state"`
	Error       string     `json:"error,omitempty"`
	Filter      string     `json:"filter,omitempty"`
	Count       int        `json:"count"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

// ProductCard is the display form of a single product.
type ProductCard struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Manufacturer string   `json:"manufacturer"`
	Color        string   `json:"color"`
	Price        string   `json:"price"`
	Quantity     int      `json:"quantity"`
	StockLabel   string   `json:"stock_label"`
	ImageURL     string   `json:"image_url"`
	Images       []string `json:"images"`
}

// CatalogView is the product list screen.
type CatalogView struct {
	State    SyncState     `json:"state"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
	Filter   string        `json:"filter,omitempty"`
	Empty    bool          `json:"empty"`
	Products []ProductCard `json:"products"`
}

// ChartView is a single chart dataset, ready for a charting library.
type ChartView struct {
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	Labels []string  `json:"labels"`
	Data   []int64   `json:"data"`
}

// StockSummary holds headline numbers shown above the charts.
type StockSummary struct {
	Products    int    `json:"products"`
	TotalStock  int64  `json:"total_stock"`
	MeanPrice   string `json:"mean_price"`
	MedianPrice string `json:"median_price"`
}

// DashboardView is the reports screen.
type DashboardView struct {
	Source         string       `json:"source"`
	State          SyncState    `json:"state"`
	Summary        StockSummary `json:"summary"`
	ByManufacturer ChartView    `json:"by_manufacturer"`
	ByColor        ChartView    `json:"by_color"`
	CountByMaker   ChartView    `json:"count_by_manufacturer"`
	TopStock       ChartView    `json:"top_stock"`
}
