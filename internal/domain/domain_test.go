package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	canonical := "0f8fad5b-d9cb-469f-a165-70867728950e"
	id, changed := NormalizeID(CollectionProducts, canonical)
	assert.Equal(t, canonical, id)
	assert.False(t, changed)

	id, changed = NormalizeID(CollectionProducts, "0F8FAD5B-D9CB-469F-A165-70867728950E")
	assert.Equal(t, canonical, id)
	assert.True(t, changed)

	a, changed := NormalizeID(CollectionProducts, "p1")
	require.True(t, changed)
	assert.True(t, IsCanonicalID(a))
	b, _ := NormalizeID(CollectionProducts, "p1")
	assert.Equal(t, a, b, "legacy ids map deterministically")
	c, _ := NormalizeID(CollectionVouchers, "p1")
	assert.NotEqual(t, a, c, "collections use separate namespaces")

	id, changed = NormalizeID(CollectionOrders, "  ")
	assert.True(t, changed)
	assert.True(t, IsCanonicalID(id))

	assert.False(t, IsCanonicalID("0f8fad5bd9cb469fa16570867728950e"))
	assert.True(t, IsCanonicalID(NewID()))
}

func TestCart(t *testing.T) {
	ebook := Product{ID: "e", Name: "E-book", Price: 150000, DiscountPrice: ptr64(99000)}
	tpl := Product{ID: "t", Name: "Template", Price: 75000}

	var c Cart
	require.NoError(t, c.Add(ebook, 1))
	require.NoError(t, c.Add(tpl, 1))
	require.NoError(t, c.Add(tpl, 1))
	require.NoError(t, c.Add(tpl, 0))
	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, int64(99000), c.Items[0].LineTotal())
	assert.Equal(t, int64(150000), c.Items[1].LineTotal())

	require.NoError(t, c.SetQuantity("t", 5))
	assert.Equal(t, 5, c.Items[1].Quantity)
	require.NoError(t, c.SetQuantity("t", 0))
	require.Len(t, c.Items, 1)
	c.Remove("e")
	assert.Empty(t, c.Items)
	assert.Zero(t, c.Count())
}

func TestCartCapsLineQuantity(t *testing.T) {
	ebook := Product{ID: "e", Name: "E-book", Price: 150000, DiscountPrice: ptr64(99000)}

	var c Cart
	err := c.Add(ebook, 100_000_000_000_000)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, c.Items)

	require.NoError(t, c.Add(ebook, MaxLineQuantity-1))
	assert.ErrorIs(t, c.Add(ebook, 2), ErrValidation)
	assert.Equal(t, MaxLineQuantity-1, c.Items[0].Quantity)
	require.NoError(t, c.Add(ebook, 1))
	assert.Equal(t, MaxLineQuantity, c.Count())

	assert.ErrorIs(t, c.SetQuantity("e", MaxLineQuantity+1), ErrValidation)
	assert.Equal(t, MaxLineQuantity, c.Items[0].Quantity)

	var ve *ValidationError
	require.ErrorAs(t, c.SetQuantity("e", 5000), &ve)
	assert.Equal(t, "quantity", ve.Field)
}

func TestProductValidate(t *testing.T) {
	cases := []struct {
		name  string
		p     Product
		field string
	}{
		{"ok", Product{Name: "A", Price: 10, DiscountPrice: ptr64(5)}, ""},
		{"no name", Product{Name: " ", Price: 10}, "name"},
		{"zero price", Product{Name: "A"}, "price"},
		{"discount not lower", Product{Name: "A", Price: 10, DiscountPrice: ptr64(10)}, "discountPrice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Equal(t, "kelas-canva-pro", Product{Name: "Kelas Canva Pro"}.Slug())
}

func TestVoucherValidate(t *testing.T) {
	assert.NoError(t, Voucher{Code: "A", Type: VoucherFixed, Value: 1}.Validate())
	assert.ErrorIs(t, Voucher{Code: "", Type: VoucherFixed, Value: 1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Voucher{Code: "A", Type: "HALF", Value: 1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Voucher{Code: "A", Type: VoucherPercent, Value: 101}.Validate(), ErrValidation)
	assert.ErrorIs(t, Voucher{Code: "A", Type: VoucherFixed, Value: 0}.Validate(), ErrValidation)
	assert.Equal(t, "HEMAT10", CanonicalCode("  hemat10 "))
}

func ptr64(v int64) *int64 { return &v }
