package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
)

// LedgerTotals agrupa las sumas por tipo de asiento de una sesión.
type LedgerTotals struct {
	Sales     decimal.Decimal
	ManualIn  decimal.Decimal
	ManualOut decimal.Decimal
	SaleCount int64
}

// RegisterLedgerRepository define el puerto del libro de caja (append-only).
type RegisterLedgerRepository interface {
	Create(entry *entity.RegisterLedgerEntry) error
	ListBySession(sessionID string) ([]*entity.RegisterLedgerEntry, error)
	// TotalsBySession agrega los asientos de la sesión; usado por el cierre
	// dentro de la misma transacción que congela el saldo teórico.
	TotalsBySession(sessionID string) (*LedgerTotals, error)
}
