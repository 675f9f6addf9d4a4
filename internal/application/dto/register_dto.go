package dto

import "github.com/shopspring/decimal"

// OpenSessionRequest body para POST /api/register/sessions.
type OpenSessionRequest struct {
	OutletID     string          `json:"outlet_id" validate:"required"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// CloseSessionRequest body para POST /api/register/sessions/:id/close.
type CloseSessionRequest struct {
	ClosingCount decimal.Decimal `json:"closing_count"`
}

// CloseSessionResponse resultado del cierre con arqueo.
type CloseSessionResponse struct {
	SessionID          string          `json:"session_id"`
	TheoreticalBalance decimal.Decimal `json:"theoretical_balance"`
	Variance           decimal.Decimal `json:"variance"`
}

// AppendEntryRequest body para POST /api/register/sessions/:id/entries
// (ingresos y egresos manuales de caja; las ventas entran por el orquestador).
type AppendEntryRequest struct {
	Type          string          `json:"type" validate:"required,oneof=MANUAL_IN MANUAL_OUT"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=CASH CARD MOBILE_MONEY TRANSFER"`
	Reference     string          `json:"reference,omitempty"`
}

// SessionResponse estado de una sesión de caja.
type SessionResponse struct {
	ID                 string           `json:"id"`
	OutletID           string           `json:"outlet_id"`
	Date               string           `json:"date"`
	Status             string           `json:"status"`
	OpeningFloat       decimal.Decimal  `json:"opening_float"`
	ClosingCount       *decimal.Decimal `json:"closing_count,omitempty"`
	TheoreticalBalance *decimal.Decimal `json:"theoretical_balance,omitempty"`
	Variance           *decimal.Decimal `json:"variance,omitempty"`
	OpenedBy           string           `json:"opened_by"`
	ClosedBy           string           `json:"closed_by,omitempty"`
}

// SessionSummaryResponse agregado de solo lectura sobre el libro de la sesión.
type SessionSummaryResponse struct {
	SessionID             string                     `json:"session_id"`
	TotalSales            decimal.Decimal            `json:"total_sales"`
	TotalsByPaymentMethod map[string]decimal.Decimal `json:"totals_by_payment_method"`
	SaleCount             int64                      `json:"sale_count"`
	AverageTicket         decimal.Decimal            `json:"average_ticket"`
	TotalManualIn         decimal.Decimal            `json:"total_manual_in"`
	TotalManualOut        decimal.Decimal            `json:"total_manual_out"`
	TheoreticalBalanceNow decimal.Decimal            `json:"theoretical_balance_now"`
}
