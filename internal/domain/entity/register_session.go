package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sesión de caja.
const (
	SessionStatusOpen   = "OPEN"
	SessionStatusClosed = "CLOSED"
)

// RegisterSession es el ciclo de vida de la caja para un punto de venta y un
// día de operación: abierta con un fondo inicial, cerrada una sola vez con
// arqueo. Invariante: a lo sumo una sesión OPEN por (outlet, fecha).
// Los campos de cierre quedan en nil hasta Close y no se recalculan después.
type RegisterSession struct {
	ID                 string
	OutletID           string
	Date               time.Time // solo fecha (día de operación)
	Status             string
	OpeningFloat       decimal.Decimal
	ClosingCount       *decimal.Decimal // conteo físico declarado al cierre
	TheoreticalBalance *decimal.Decimal // fondo + ventas + ingresos − egresos
	Variance           *decimal.Decimal // conteo físico − saldo teórico
	OpenedBy           string
	ClosedBy           string
	OpenedAt           time.Time
	ClosedAt           *time.Time
}

// IsOpen indica si la sesión sigue abierta.
func (s *RegisterSession) IsOpen() bool { return s.Status == SessionStatusOpen }

// BusinessDate normaliza un instante al día de operación (fecha sin hora, UTC).
func BusinessDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
