// internal/services/draft.go
package services

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/javajoker/tecnova-catalog/internal/models"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

// DraftInput is the raw product form as submitted by a user. Price and
// quantity arrive as text and may be empty or malformed.
type DraftInput struct {
	Name         string     `form:"nome" json:"nome"`
	Description  string     `form:"textoDescritivo" json:"textoDescritivo"`
	Manufacturer string     `form:"fabricante" json:"fabricante"`
	Color        string     `form:"cor" json:"cor"`
	Price        FlexString `form:"preco" json:"preco"`
	Quantity     FlexString `form:"quantidade" json:"quantidade"`
}

// FlexString is form text that JSON clients may also send as a number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n jsoniter.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Draft converts the form into a validated ProductDraft. Both "19.99" and
// "19,99" are accepted as prices.
func (in DraftInput) Draft() (models.ProductDraft, error) {
	var fieldErrs []utils.ValidationError

	draft := models.ProductDraft{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Color:        strings.TrimSpace(in.Color),
	}

	price, err := parsePrice(string(in.Price))
	if err != nil {
		fieldErrs = append(fieldErrs, utils.ValidationError{Field: "preco", Tag: "numeric", Message: "preco must be a number"})
	}
	draft.Price = price

	qty, err := parseQuantity(string(in.Quantity))
	if err != nil {
		fieldErrs = append(fieldErrs, utils.ValidationError{Field: "quantidade", Tag: "numeric", Message: "quantidade must be a whole number"})
	}
	draft.Quantity = qty

	if err := ValidateDraft(draft); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			fieldErrs = append(fieldErrs, ve.Fields...)
		}
	}

	if len(fieldErrs) > 0 {
		return draft, &ValidationError{Fields: fieldErrs}
	}
	return draft, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	return decimal.NewFromString(raw)
}

// parseQuantity reads a base-10 whole number. Leading zeros are ignored so
// "010" is ten, and base prefixes such as "0x" are rejected.
func parseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	digits := strings.TrimPrefix(raw, "-")
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return 0, fmt.Errorf("invalid quantity %q", raw)
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 0, nil
	}
	if strings.HasPrefix(raw, "-") {
		digits = "-" + digits
	}
	return cast.ToIntE(digits)
}

// ValidateDraft checks the invariants a draft must hold before submission.
func ValidateDraft(draft models.ProductDraft) error {
	if err := utils.ValidateStruct(&draft); err != nil {
		fields := utils.GetValidationErrors(err)
		if len(fields) == 0 {
			return &ValidationError{Fields: []utils.ValidationError{{Field: "produto", Tag: "invalid", Message: err.Error()}}}
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}
