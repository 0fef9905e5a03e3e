package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/mall-pricing/db"
)

func TestParseProducts_EmbeddedCatalog(t *testing.T) {
	products, err := parseProducts(db.SeedProducts)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	keys := make(map[string]bool)
	for _, p := range products {
		key := p.Name + "/" + p.Category
		assert.False(t, keys[key], "duplicate name and category %s", key)
		keys[key] = true
		assert.False(t, p.BasePrice.IsNegative())
	}
}

func TestParseProducts(t *testing.T) {
	products, err := parseProducts([]byte(`[
		{"id":"a","name":"Mug","category":"kitchen","basePrice":7900,"unused":{"x":1}},
		{"id":"b","internalCode":"B-1","name":"Mug","category":"gift","basePrice":"12000"}
	]`))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "7900", products[0].BasePrice.String())
	assert.Equal(t, "B-1", products[1].InternalCode)
	assert.Equal(t, "12000", products[1].BasePrice.String())
}

func TestParseProducts_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not an array", `{"id":"a"}`, ""},
		{"missing category", `[{"id":"a","name":"Mug","basePrice":1}]`, "product 0"},
		{"negative price", `[{"id":"a","name":"Mug","category":"k","basePrice":-1}]`, "negative base price"},
		{"bad price", `[{"id":"a","name":"Mug","category":"k","basePrice":"cheap"}]`, "basePrice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProducts([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
