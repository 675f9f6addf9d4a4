package dto

import "github.com/shopspring/decimal"

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name      string          `json:"name" validate:"required"`
	SKU       string          `json:"sku" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Trackable *bool           `json:"trackable,omitempty"` // nil = true (se controla stock)
}

// ProductResponse representación HTTP de un producto del catálogo.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Trackable bool            `json:"trackable"`
}
