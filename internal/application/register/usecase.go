package register

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-caja/internal/application/dto"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// UseCase maneja el ciclo de vida de la caja: abrir sesión, asientos manuales
// y cierre con arqueo. Máquina de estados: CLOSED --open--> OPEN --close-->
// CLOSED (terminal; un nuevo día de operación arranca una sesión nueva).
type UseCase struct {
	txRunner    TxRunner
	sessionRepo repository.RegisterSessionRepository
	ledgerRepo  repository.RegisterLedgerRepository
}

// NewUseCase construye el caso de uso. sessionRepo y ledgerRepo son los
// repositorios sin transacción, para lecturas.
func NewUseCase(
	txRunner TxRunner,
	sessionRepo repository.RegisterSessionRepository,
	ledgerRepo repository.RegisterLedgerRepository,
) *UseCase {
	return &UseCase{txRunner: txRunner, sessionRepo: sessionRepo, ledgerRepo: ledgerRepo}
}

// Open abre la sesión de caja del día para un punto de venta con su fondo
// inicial. La unicidad "una sesión OPEN por (outlet, fecha)" la garantiza el
// repositorio (índice único parcial en PostgreSQL); el GetOpen previo solo da
// un error amable sin esperar el conflicto.
func (uc *UseCase) Open(ctx context.Context, userID string, in dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if in.OutletID == "" || in.OpeningFloat.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	today := entity.BusinessDate(now)

	existing, err := uc.sessionRepo.GetOpen(in.OutletID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSessionAlreadyOpen
	}

	session := &entity.RegisterSession{
		ID:           uuid.New().String(),
		OutletID:     in.OutletID,
		Date:         today,
		Status:       entity.SessionStatusOpen,
		OpeningFloat: in.OpeningFloat,
		OpenedBy:     userID,
		OpenedAt:     now,
	}
	if err := uc.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// AppendEntry agrega un asiento manual (MANUAL_IN / MANUAL_OUT) al libro de la
// sesión. La sesión se bloquea y se verifica OPEN dentro de la misma
// transacción, para que un cierre concurrente no deje asientos huérfanos.
func (uc *UseCase) AppendEntry(ctx context.Context, userID, sessionID string, in dto.AppendEntryRequest) (string, error) {
	if in.Type != entity.LedgerEntryManualIn && in.Type != entity.LedgerEntryManualOut {
		return "", domain.ErrInvalidInput
	}
	if !in.Amount.IsPositive() {
		return "", domain.ErrInvalidInput
	}

	entryID := uuid.New().String()
	err := uc.txRunner.RunRegister(ctx, func(
		sessionRepo repository.RegisterSessionRepository,
		ledgerRepo repository.RegisterLedgerRepository,
	) error {
		session, err := sessionRepo.GetForUpdate(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if !session.IsOpen() {
			return domain.ErrSessionNotOpen
		}
		return ledgerRepo.Create(&entity.RegisterLedgerEntry{
			ID:            entryID,
			SessionID:     session.ID,
			Type:          in.Type,
			Amount:        in.Amount,
			PaymentMethod: in.PaymentMethod,
			ReferenceType: entity.LedgerRefManual,
			ReferenceID:   in.Reference,
			CreatedAt:     time.Now(),
			CreatedBy:     userID,
		})
	})
	if err != nil {
		return "", err
	}
	return entryID, nil
}

// Close cierra la sesión con el conteo físico declarado. Congela el saldo
// teórico fondo + Σventas + Σingresos − Σegresos en ese instante y el desvío
// conteo − teórico; nunca se recalculan después. No es idempotente: un segundo
// cierre es ErrSessionAlreadyClosed, no un recálculo.
func (uc *UseCase) Close(ctx context.Context, userID, sessionID string, in dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	if in.ClosingCount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var resp *dto.CloseSessionResponse
	err := uc.txRunner.RunRegister(ctx, func(
		sessionRepo repository.RegisterSessionRepository,
		ledgerRepo repository.RegisterLedgerRepository,
	) error {
		session, err := sessionRepo.GetForUpdate(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if session.Status == entity.SessionStatusClosed {
			return domain.ErrSessionAlreadyClosed
		}
		if !session.IsOpen() {
			return domain.ErrSessionNotOpen
		}

		totals, err := ledgerRepo.TotalsBySession(session.ID)
		if err != nil {
			return err
		}
		theoretical := theoreticalBalance(session.OpeningFloat, totals)
		variance := in.ClosingCount.Sub(theoretical)

		now := time.Now()
		closing := in.ClosingCount
		session.Status = entity.SessionStatusClosed
		session.ClosingCount = &closing
		session.TheoreticalBalance = &theoretical
		session.Variance = &variance
		session.ClosedBy = userID
		session.ClosedAt = &now
		if err := sessionRepo.Close(session); err != nil {
			return err
		}
		resp = &dto.CloseSessionResponse{
			SessionID:          session.ID,
			TheoreticalBalance: theoretical,
			Variance:           variance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSession devuelve el estado de una sesión.
func (uc *UseCase) GetSession(sessionID string) (*dto.SessionResponse, error) {
	session, err := uc.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return toSessionResponse(session), nil
}

// ListSessions lista las sesiones de un punto de venta.
func (uc *UseCase) ListSessions(outletID string, from, to *time.Time, page dto.PageRequest) ([]*dto.SessionResponse, error) {
	page.DefaultPage()
	sessions, err := uc.sessionRepo.ListByOutlet(outletID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out, nil
}

func toSessionResponse(s *entity.RegisterSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:                 s.ID,
		OutletID:           s.OutletID,
		Date:               s.Date.Format("2006-01-02"),
		Status:             s.Status,
		OpeningFloat:       s.OpeningFloat,
		ClosingCount:       s.ClosingCount,
		TheoreticalBalance: s.TheoreticalBalance,
		Variance:           s.Variance,
		OpenedBy:           s.OpenedBy,
		ClosedBy:           s.ClosedBy,
	}
}

// theoreticalBalance = fondo inicial + Σventas + Σingresos − Σegresos.
// Compartido entre el cierre y el agregador de estadísticas.
func theoreticalBalance(openingFloat decimal.Decimal, totals *repository.LedgerTotals) decimal.Decimal {
	return openingFloat.Add(totals.Sales).Add(totals.ManualIn).Sub(totals.ManualOut)
}
