package register

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-caja/internal/application/dto"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// Summarize agrega el libro de la sesión: solo lectura, sin caché, se
// recalcula en cada llamada. Funciona igual con la sesión abierta (saldo
// teórico "ahora") o cerrada (coincide con el saldo congelado al cierre).
func (uc *UseCase) Summarize(sessionID string) (*dto.SessionSummaryResponse, error) {
	session, err := uc.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}

	entries, err := uc.ledgerRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	totals := &repository.LedgerTotals{}
	byMethod := make(map[string]decimal.Decimal)
	for _, e := range entries {
		switch e.Type {
		case entity.LedgerEntrySale:
			totals.Sales = totals.Sales.Add(e.Amount)
			totals.SaleCount++
			byMethod[e.PaymentMethod] = byMethod[e.PaymentMethod].Add(e.Amount)
		case entity.LedgerEntryManualIn:
			totals.ManualIn = totals.ManualIn.Add(e.Amount)
		case entity.LedgerEntryManualOut:
			totals.ManualOut = totals.ManualOut.Add(e.Amount)
		}
	}

	averageTicket := decimal.Zero
	if totals.SaleCount > 0 {
		averageTicket = totals.Sales.Div(decimal.NewFromInt(totals.SaleCount))
	}

	return &dto.SessionSummaryResponse{
		SessionID:             session.ID,
		TotalSales:            totals.Sales,
		TotalsByPaymentMethod: byMethod,
		SaleCount:             totals.SaleCount,
		AverageTicket:         averageTicket,
		TotalManualIn:         totals.ManualIn,
		TotalManualOut:        totals.ManualOut,
		TheoreticalBalanceNow: theoreticalBalance(session.OpeningFloat, totals),
	}, nil
}
