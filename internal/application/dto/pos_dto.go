package dto

import "github.com/shopspring/decimal"

// SaleItemRequest una línea de venta tal como llega del mostrador.
type SaleItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid4"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/pos/sales.
type CreateSaleRequest struct {
	OutletID      string            `json:"outlet_id" validate:"required"`
	CustomerName  string            `json:"customer_name,omitempty"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=CASH CARD MOBILE_MONEY TRANSFER"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateSaleResponse resultado de una venta liquidada.
// MovementCount y LedgerEntryCount permiten al caller verificar la
// correspondencia 1:1 con las líneas de la venta.
type CreateSaleResponse struct {
	OrderID          string          `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	SessionID        string          `json:"session_id"`
	TotalHT          decimal.Decimal `json:"total_ht"`
	TotalTTC         decimal.Decimal `json:"total_ttc"`
	MovementCount    int             `json:"movement_count"`
	LedgerEntryCount int             `json:"ledger_entry_count"`
}

// SaleItemResponse una línea de la orden en respuestas de consulta.
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Position    int             `json:"position"`
}

// OrderResponse cabecera + líneas para GET /api/pos/sales/:id.
type OrderResponse struct {
	ID            string             `json:"id"`
	OutletID      string             `json:"outlet_id"`
	SessionID     string             `json:"session_id"`
	Number        string             `json:"number"`
	CustomerName  string             `json:"customer_name,omitempty"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	PaymentMethod string             `json:"payment_method"`
	TotalHT       decimal.Decimal    `json:"total_ht"`
	TotalTTC      decimal.Decimal    `json:"total_ttc"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Date          string             `json:"date"`
	Items         []SaleItemResponse `json:"items"`
}
