// internal/services/aggregation.go
package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/javajoker/tecnova-catalog/internal/config"
	"github.com/javajoker/tecnova-catalog/internal/models"
)

// UnknownKey groups products whose key is empty or blank.
const UnknownKey = "unknown"

// KeyFunc selects the grouping key of a product.
type KeyFunc func(models.Product) string

func ByManufacturer(p models.Product) string { return p.Manufacturer }

func ByColor(p models.Product) string { return p.Color }

func ByName(p models.Product) string { return p.Name }

// ByID keys every product separately, so a top-N over it ranks single
// products instead of aggregated names.
func ByID(p models.Product) string { return strconv.FormatInt(p.ID, 10) }

func ByManufacturerColor(p models.Product) string {
	return normalizeKey(p.Manufacturer) + " / " + normalizeKey(p.Color)
}

var keyFuncs = map[string]KeyFunc{
	config.TopKeyName:              ByName,
	config.TopKeyID:                ByID,
	config.TopKeyManufacturer:      ByManufacturer,
	config.TopKeyColor:             ByColor,
	config.TopKeyManufacturerColor: ByManufacturerColor,
}

// KeyFuncFor looks up a key function by its configuration name.
func KeyFuncFor(name string) (KeyFunc, bool) {
	key, ok := keyFuncs[strings.ToLower(strings.TrimSpace(name))]
	return key, ok
}

func normalizeKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return UnknownKey
	}
	return key
}

// accumulate folds products into buckets in first-seen key order.
func accumulate(products []models.Product, key KeyFunc, weight func(models.Product) int64) []models.GroupSummary {
	groups := make([]models.GroupSummary, 0)
	index := make(map[string]int)

	for _, p := range products {
		k := normalizeKey(key(p))
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.GroupSummary{Key: k})
		}
		groups[i].Total += weight(p)
	}
	return groups
}

func quantityOf(p models.Product) int64 { return int64(p.Quantity) }

// GroupByField sums quantity per key. Groups keep the order in which their
// key first appears in products.
func GroupByField(products []models.Product, key KeyFunc) []models.GroupSummary {
	return accumulate(products, key, quantityOf)
}

// CountByField counts products per key, in first-seen order.
func CountByField(products []models.Product, key KeyFunc) []models.GroupSummary {
	return accumulate(products, key, func(models.Product) int64 { return 1 })
}

// TopNByQuantity sums quantity per key and returns the n largest groups,
// largest first. Equal totals keep first-seen order.
func TopNByQuantity(products []models.Product, n int, key KeyFunc) []models.GroupSummary {
	if n <= 0 {
		return []models.GroupSummary{}
	}

	groups := accumulate(products, key, quantityOf)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})

	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// SumTotals adds up the totals of groups.
func SumTotals(groups []models.GroupSummary) int64 {
	var total int64
	for _, g := range groups {
		total += g.Total
	}
	return total
}
