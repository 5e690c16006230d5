package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/tecnova-catalog/internal/models"
)

func product(id int64, name, maker, color string, qty int) models.Product {
	return models.Product{ID: id, Name: name, Manufacturer: maker, Color: color, Quantity: qty}
}

func TestGroupByFieldMergesSameKey(t *testing.T) {
	products := []models.Product{
		product(1, "X", "", "", 5),
		product(2, "X", "", "", 3),
	}

	groups := GroupByField(products, ByName)

	assert.Equal(t, []models.GroupSummary{{Key: "X", Total: 8}}, groups)
}

func TestGroupByFieldPreservesTotalQuantity(t *testing.T) {
	products := SampleProducts()

	var want int64
	for _, p := range products {
		want += int64(p.Quantity)
	}

	for name, key := range map[string]KeyFunc{
		"manufacturer": ByManufacturer,
		"color":        ByColor,
		"name":         ByName,
		"id":           ByID,
		"pair":         ByManufacturerColor,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, SumTotals(GroupByField(products, key)))
		})
	}
}

func TestGroupByFieldSampleManufacturers(t *testing.T) {
	groups := GroupByField(SampleProducts(), ByManufacturer)

	assert.Equal(t, []models.GroupSummary{
		{Key: "JBL", Total: 48},
		{Key: "Philips", Total: 27},
		{Key: "Acer", Total: 18},
		{Key: "Fortrek", Total: 31},
		{Key: "Hyperx", Total: 5},
		{Key: "Redragon", Total: 14},
	}, groups)
}

func TestGroupByFieldUnknownKey(t *testing.T) {
	products := []models.Product{
		product(1, "A", "", "Preto", 2),
		product(2, "B", "   ", "Preto", 4),
		product(3, "C", "JBL", "", 1),
	}

	groups := GroupByField(products, ByManufacturer)
	assert.Equal(t, []models.GroupSummary{
		{Key: UnknownKey, Total: 6},
		{Key: "JBL", Total: 1},
	}, groups)

	assert.Equal(t, "JBL / unknown", ByManufacturerColor(products[2]))
}

func TestAggregationEmptyInput(t *testing.T) {
	groups := GroupByField(nil, ByColor)
	require.NotNil(t, groups)
	assert.Empty(t, groups)

	top := TopNByQuantity([]models.Product{}, 5, ByName)
	require.NotNil(t, top)
	assert.Empty(t, top)

	assert.Empty(t, CountByField(nil, ByManufacturer))
}

func TestCountByField(t *testing.T) {
	groups := CountByField(SampleProducts(), ByManufacturer)

	assert.Equal(t, int64(len(SampleProducts())), SumTotals(groups))
	assert.Equal(t, models.GroupSummary{Key: "JBL", Total: 4}, groups[0])
}

func TestTopNByQuantity(t *testing.T) {
	products := []models.Product{
		product(1, "Mouse", "", "", 10),
		product(2, "Fone", "", "", 3),
		product(3, "Teclado", "", "", 7),
		product(4, "Fone", "", "", 9),
		product(5, "Caixa", "", "", 1),
	}

	tests := []struct {
		name string
		n    int
		want []models.GroupSummary
	}{
		{
			name: "top two",
			n:    2,
			want: []models.GroupSummary{{Key: "Fone", Total: 12}, {Key: "Mouse", Total: 10}},
		},
		{
			name: "n larger than distinct keys",
			n:    10,
			want: []models.GroupSummary{
				{Key: "Fone", Total: 12},
				{Key: "Mouse", Total: 10},
				{Key: "Teclado", Total: 7},
				{Key: "Caixa", Total: 1},
			},
		},
		{name: "zero", n: 0, want: []models.GroupSummary{}},
		{name: "negative", n: -3, want: []models.GroupSummary{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopNByQuantity(products, tt.n, ByName))
		})
	}
}

func TestTopNByQuantityTiesKeepFirstSeenOrder(t *testing.T) {
	products := []models.Product{
		product(1, "B", "", "", 5),
		product(2, "A", "", "", 5),
		product(3, "C", "", "", 5),
	}

	top := TopNByQuantity(products, 2, ByName)
	assert.Equal(t, []models.GroupSummary{{Key: "B", Total: 5}, {Key: "A", Total: 5}}, top)
}

func TestTopNByQuantityOrderIndependentForDistinctTotals(t *testing.T) {
	products := []models.Product{
		product(1, "a", "", "", 1),
		product(2, "b", "", "", 20),
		product(3, "c", "", "", 300),
		product(4, "d", "", "", 4000),
		product(5, "e", "", "", 50),
		product(6, "f", "", "", 6),
	}
	want := TopNByQuantity(products, 4, ByName)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := models.Clone(products)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := TopNByQuantity(shuffled, 4, ByName)
		require.Len(t, got, 4)
		assert.Equal(t, want, got)
		for j := 1; j < len(got); j++ {
			assert.GreaterOrEqual(t, got[j-1].Total, got[j].Total)
		}
	}
}

func TestTopNByIDRanksSingleProducts(t *testing.T) {
	products := []models.Product{
		product(1, "X", "", "", 5),
		product(2, "X", "", "", 3),
	}

	assert.Equal(t, []models.GroupSummary{{Key: "1", Total: 5}}, TopNByQuantity(products, 1, ByID))
}

func TestKeyFuncFor(t *testing.T) {
	p := product(7, "Mouse", "Acer", "Preto", 1)

	for name, want := range map[string]string{
		"name":               "Mouse",
		" ID ":               "7",
		"manufacturer":       "Acer",
		"color":              "Preto",
		"manufacturer_color": "Acer / Preto",
	} {
		key, ok := KeyFuncFor(name)
		require.True(t, ok, name)
		assert.Equal(t, want, key(p), name)
	}

	_, ok := KeyFuncFor("price")
	assert.False(t, ok)
}
