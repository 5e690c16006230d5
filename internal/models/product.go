// internal/models/product.go
package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The catalog backend expects preco as a JSON number, not a string.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog item as exposed by the remote collection. JSON names
// follow the backend DTO.
type Product struct {
	ID           int64           `json:"id,omitempty"`
	Name         string          `json:"nome"`
	Description  string          `json:"textoDescritivo"`
	Manufacturer string          `json:"fabricante"`
	Color        string          `json:"cor"`
	Price        decimal.Decimal `json:"preco"`
	Quantity     int             `json:"quantidade"`
	Images       []string        `json:"imagens"`
}

// Persisted reports whether the remote collection has assigned an id.
func (p Product) Persisted() bool {
	return p.ID != 0
}

// Draft returns the editable fields of p.
func (p Product) Draft() ProductDraft {
	return ProductDraft{
		Name:         p.Name,
		Description:  p.Description,
		Manufacturer: p.Manufacturer,
		Color:        p.Color,
		Price:        p.Price,
		Quantity:     p.Quantity,
	}
}

// ProductDraft carries the editable fields sent on create and update. Images
// is only honoured by bulk import, where entries are source URLs the backend
// downloads itself.
type ProductDraft struct {
	Name         string          `json:"nome" validate:"required,notblank,max=100"`
	Description  string          `json:"textoDescritivo" validate:"max=500"`
	Manufacturer string          `json:"fabricante" validate:"max=100"`
	Color        string          `json:"cor" validate:"max=50"`
	Price        decimal.Decimal `json:"preco" validate:"gte=0"`
	Quantity     int             `json:"quantidade" validate:"gte=0"`
	Images       []string        `json:"imagens,omitempty" validate:"omitempty,dive,url"`
}

// ImageUpload is a binary image sent as one multipart file part.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GroupSummary is one bucket of an aggregation: a categorical key and the
// summed (or counted) total for it.
type GroupSummary struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// Clone returns a deep copy of products.
func Clone(products []Product) []Product {
	if products == nil {
		return nil
	}
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p
		if p.Images != nil {
			out[i].Images = append(make([]string, 0, len(p.Images)), p.Images...)
		}
	}
	return out
}
