package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del libro de caja.
// Los asientos son inmutables: una anulación sería un asiento inverso, nunca
// una modificación.
const (
	LedgerEntrySale      = "SALE"
	LedgerEntryManualIn  = "MANUAL_IN"
	LedgerEntryManualOut = "MANUAL_OUT"
)

// Métodos de pago aceptados en caja.
const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodMobile   = "MOBILE_MONEY"
	PaymentMethodTransfer = "TRANSFER"
)

// Tipos de referencia de un asiento de caja.
const (
	LedgerRefOrder  = "ORDER"
	LedgerRefManual = "MANUAL"
)

// RegisterLedgerEntry es una fila del libro de caja, ligada a una sesión que
// debe estar OPEN al momento del append.
type RegisterLedgerEntry struct {
	ID            string
	SessionID     string
	Type          string
	Amount        decimal.Decimal
	PaymentMethod string
	ReferenceType string
	ReferenceID   string
	CreatedAt     time.Time
	CreatedBy     string
}
