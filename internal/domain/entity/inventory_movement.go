package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada (recepción de mercancía)
	MovementTypeOUT        = "OUT"        // salida (venta, consumo)
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste con signo
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre puntos de venta
)

// Estados de un movimiento.
const (
	MovementStatusCompleted = "COMPLETED"
	MovementStatusPending   = "PENDING"
	MovementStatusCancelled = "CANCELLED"
)

// Tipos de referencia de un movimiento (documento que lo originó).
const (
	MovementRefOrder      = "ORDER"
	MovementRefReceiving  = "RECEIVING"
	MovementRefAdjustment = "ADJUSTMENT"
	MovementRefTransfer   = "TRANSFER"
)

// InventoryMovement es una fila del libro de inventario: un cambio de cantidad
// con signo para un producto en un punto de venta. Append-only: nunca se
// actualiza ni se borra; las correcciones son movimientos compensatorios.
// El stock actual es la suma de Quantity sobre los movimientos COMPLETED.
type InventoryMovement struct {
	ID            string
	OutletID      string
	ProductID     string
	Quantity      int64 // con signo: positivo entrada, negativo salida
	Type          string
	ReferenceType string
	ReferenceID   string
	Status        string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
