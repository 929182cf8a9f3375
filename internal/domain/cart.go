package domain

import "fmt"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 1000

func CheckQuantity(qty int) error {
	if qty > MaxLineQuantity {
		return Invalid("quantity", fmt.Sprintf("must not exceed %d", MaxLineQuantity))
	}
	return nil
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (c CartItem) LineTotal() int64 {
	return c.Product.EffectivePrice() * int64(c.Quantity)
}

// Cart lives for one storefront session and is never written to the state store.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add sums qty into an existing line. The cart is left unchanged when the
// resulting quantity exceeds MaxLineQuantity.
func (c *Cart) Add(p Product, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := CheckQuantity(qty); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == p.ID {
			if err := CheckQuantity(c.Items[i].Quantity + qty); err != nil {
				return err
			}
			c.Items[i].Quantity += qty
			c.Items[i].Product = p
			return nil
		}
	}
	c.Items = append(c.Items, CartItem{Product: p, Quantity: qty})
	return nil
}

// SetQuantity drops the line when qty is not positive.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty <= 0 {
		c.Remove(productID)
		return nil
	}
	if err := CheckQuantity(qty); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity = qty
			return nil
		}
	}
	return nil
}

func (c *Cart) Remove(productID string) {
	out := c.Items[:0]
	for _, it := range c.Items {
		if it.Product.ID != productID {
			out = append(out, it)
		}
	}
	c.Items = out
}

func (c *Cart) Clear() { c.Items = nil }

func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}
