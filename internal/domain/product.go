package domain

import (
	"strings"

	"github.com/gosimple/slug"
)

type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discountPrice,omitempty"`
	Image         string `json:"image"`
	FileURL       string `json:"fileUrl,omitempty"`
	IsPopular     bool   `json:"isPopular"`
}

// EffectivePrice is the unit price a buyer pays: the discount price when one is set.
func (p Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p Product) Slug() string {
	return slug.Make(p.Name)
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Invalid("name", "required")
	}
	if p.Price <= 0 {
		return Invalid("price", "must be positive")
	}
	if p.DiscountPrice != nil {
		if *p.DiscountPrice <= 0 {
			return Invalid("discountPrice", "must be positive")
		}
		if *p.DiscountPrice >= p.Price {
			return Invalid("discountPrice", "must be lower than price")
		}
	}
	return nil
}
