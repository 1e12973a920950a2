package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID           string
	Name         string
	Description  string
	ImageLocator string
	Price        decimal.NullDecimal
}

type CartItem struct {
	Key         string
	Name        string
	Description string
	ProductRef  string
	Price       decimal.NullDecimal
}

// CartKey derives the de-duplication key of a product. Two products with the
// same name are the same cart entry.
func CartKey(name string) string {
	return name
}

func NewCartItem(p Product) CartItem {
	return CartItem{
		Key:         CartKey(p.Name),
		Name:        p.Name,
		Description: p.Description,
		ProductRef:  p.ID,
		Price:       p.Price,
	}
}

type UploadResult struct {
	UploadID string
	Message  string
}

type Recommendation struct {
	Products []Product
	Message  string
}

type SelectResult struct {
	OK      bool
	Message string
}
