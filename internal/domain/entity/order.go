package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de venta.
// El núcleo POS crea las órdenes CONFIRMED/PAID (la venta en mostrador se
// liquida de inmediato); transiciones posteriores son de otros colaboradores.
const (
	OrderStatusConfirmed = "CONFIRMED"

	PaymentStatusPaid = "PAID"
)

// Order es la cabecera de una venta de mostrador.
type Order struct {
	ID            string
	OutletID      string
	SessionID     string
	Number        string // PREFIX-AÑO-NNNNNN, consecutivo por punto de venta
	CustomerName  string
	CustomerPhone string
	Status        string
	PaymentStatus string
	PaymentMethod string
	TotalHT       decimal.Decimal // total sin impuesto
	TotalTTC      decimal.Decimal // total con impuesto
	TaxRate       decimal.Decimal
	CreatedAt     time.Time
	CreatedBy     string
}

// OrderItem es una línea de la orden; Position conserva el orden de captura.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Position    int
}
