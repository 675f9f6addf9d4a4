package entity

import "time"

// Stock es el contador materializado de existencias por (punto de venta, producto).
// Se actualiza en la misma transacción que cada movimiento; el libro de
// movimientos sigue siendo la fuente autoritativa para auditorías.
type Stock struct {
	OutletID  string
	ProductID string
	Quantity  int64
	UpdatedAt time.Time
}
