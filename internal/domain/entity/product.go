package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo del punto de venta.
// Datos de referencia inmutables para el núcleo de liquidación: el stock
// se deriva de los movimientos, nunca se guarda aquí.
// Trackable indica si el producto controla existencias (los servicios no).
type Product struct {
	ID        string
	Name      string
	SKU       string
	Price     decimal.Decimal // precio de venta sugerido
	Trackable bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
