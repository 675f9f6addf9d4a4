package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

var _ repository.RegisterSessionRepository = (*RegisterSessionRepo)(nil)

// RegisterSessionRepo implementación sobre PostgreSQL (usable con pool o tx).
// La unicidad "una sesión OPEN por (outlet, fecha)" la garantiza el índice
// único parcial uq_register_sessions_open, no un pre-chequeo en aplicación.
type RegisterSessionRepo struct {
	q Querier
}

// NewRegisterSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRegisterSessionRepository(q Querier) *RegisterSessionRepo {
	return &RegisterSessionRepo{q: q}
}

const sessionColumns = `id, outlet_id, date, status, opening_float, closing_count, theoretical_balance, variance, opened_by, closed_by, opened_at, closed_at`

// Create persiste una sesión recién abierta. Dos opens concurrentes para el
// mismo (outlet, fecha): el segundo choca con el índice parcial y se traduce a
// ErrSessionAlreadyOpen.
func (r *RegisterSessionRepo) Create(session *entity.RegisterSession) error {
	query := `
		INSERT INTO register_sessions (id, outlet_id, date, status, opening_float, opened_by, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		session.ID, session.OutletID, session.Date, session.Status,
		session.OpeningFloat, session.OpenedBy, session.OpenedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("create register session: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión por ID. Devuelve nil, nil si no existe.
func (r *RegisterSessionRepo) GetByID(id string) (*entity.RegisterSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM register_sessions WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene la sesión y bloquea la fila (SELECT FOR UPDATE).
func (r *RegisterSessionRepo) GetForUpdate(id string) (*entity.RegisterSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM register_sessions WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetOpen busca la sesión OPEN de un punto de venta para una fecha.
func (r *RegisterSessionRepo) GetOpen(outletID string, date time.Time) (*entity.RegisterSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM register_sessions
		WHERE outlet_id = $1 AND date = $2 AND status = $3`
	return r.scanOne(r.q.QueryRow(context.Background(), query, outletID, date, entity.SessionStatusOpen))
}

// GetOpenForUpdate igual que GetOpen pero bloqueando la fila, para que un
// cierre concurrente no gane la carrera durante una venta.
func (r *RegisterSessionRepo) GetOpenForUpdate(outletID string, date time.Time) (*entity.RegisterSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM register_sessions
		WHERE outlet_id = $1 AND date = $2 AND status = $3
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, outletID, date, entity.SessionStatusOpen))
}

// Close persiste la única mutación permitida de una sesión: los campos de
// cierre y el estado CLOSED. La cláusula status = OPEN hace el UPDATE inocuo
// si otro cierre llegó primero.
func (r *RegisterSessionRepo) Close(session *entity.RegisterSession) error {
	query := `
		UPDATE register_sessions
		SET status = $1, closing_count = $2, theoretical_balance = $3, variance = $4,
		    closed_by = $5, closed_at = $6
		WHERE id = $7 AND status = $8`
	tag, err := r.q.Exec(context.Background(), query,
		session.Status, session.ClosingCount, session.TheoreticalBalance, session.Variance,
		session.ClosedBy, session.ClosedAt,
		session.ID, entity.SessionStatusOpen,
	)
	if err != nil {
		return fmt.Errorf("close register session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionAlreadyClosed
	}
	return nil
}

// ListByOutlet lista sesiones de un punto de venta en un rango de fechas.
func (r *RegisterSessionRepo) ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.RegisterSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM register_sessions WHERE outlet_id = $1`
	args := []any{outletID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, opened_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.RegisterSession
	for rows.Next() {
		var s entity.RegisterSession
		var closedBy *string
		if err := rows.Scan(&s.ID, &s.OutletID, &s.Date, &s.Status, &s.OpeningFloat,
			&s.ClosingCount, &s.TheoreticalBalance, &s.Variance,
			&s.OpenedBy, &closedBy, &s.OpenedAt, &s.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if closedBy != nil {
			s.ClosedBy = *closedBy
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *RegisterSessionRepo) scanOne(row pgx.Row) (*entity.RegisterSession, error) {
	var s entity.RegisterSession
	var closedBy *string
	err := row.Scan(&s.ID, &s.OutletID, &s.Date, &s.Status, &s.OpeningFloat,
		&s.ClosingCount, &s.TheoreticalBalance, &s.Variance,
		&s.OpenedBy, &closedBy, &s.OpenedAt, &s.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get register session: %w", err)
	}
	if closedBy != nil {
		s.ClosedBy = *closedBy
	}
	return &s, nil
}
