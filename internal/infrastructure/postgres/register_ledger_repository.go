package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

var _ repository.RegisterLedgerRepository = (*RegisterLedgerRepo)(nil)

// RegisterLedgerRepo implementación sobre PostgreSQL (usable con pool o tx).
// Append-only: sin UPDATE ni DELETE.
type RegisterLedgerRepo struct {
	q Querier
}

// NewRegisterLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRegisterLedgerRepository(q Querier) *RegisterLedgerRepo {
	return &RegisterLedgerRepo{q: q}
}

// Create persiste un asiento del libro de caja.
func (r *RegisterLedgerRepo) Create(entry *entity.RegisterLedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO register_ledger_entries (id, session_id, type, amount, payment_method, reference_type, reference_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.SessionID, entry.Type, entry.Amount, entry.PaymentMethod,
		entry.ReferenceType, entry.ReferenceID, entry.CreatedAt, entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// ListBySession lista los asientos de una sesión en orden de llegada.
func (r *RegisterLedgerRepo) ListBySession(sessionID string) ([]*entity.RegisterLedgerEntry, error) {
	query := `
		SELECT id, session_id, type, amount, payment_method, reference_type, reference_id, created_at, created_by
		FROM register_ledger_entries WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.RegisterLedgerEntry
	for rows.Next() {
		var e entity.RegisterLedgerEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &e.Amount, &e.PaymentMethod,
			&e.ReferenceType, &e.ReferenceID, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// TotalsBySession agrega los asientos por tipo en una sola pasada SQL.
func (r *RegisterLedgerRepo) TotalsBySession(sessionID string) (*repository.LedgerTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = $3), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = $4), 0),
			COUNT(*) FILTER (WHERE type = $2)
		FROM register_ledger_entries WHERE session_id = $1`
	var totals repository.LedgerTotals
	err := r.q.QueryRow(context.Background(), query, sessionID,
		entity.LedgerEntrySale, entity.LedgerEntryManualIn, entity.LedgerEntryManualOut,
	).Scan(&totals.Sales, &totals.ManualIn, &totals.ManualOut, &totals.SaleCount)
	if err != nil {
		return nil, fmt.Errorf("totals by session: %w", err)
	}
	return &totals, nil
}
