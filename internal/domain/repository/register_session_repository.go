package repository

import (
	"time"

	"github.com/tu-usuario/pos-caja/internal/domain/entity"
)

// RegisterSessionRepository define el puerto de persistencia de sesiones de caja.
// Create debe fallar con domain.ErrSessionAlreadyOpen si ya existe una sesión
// OPEN para (outlet, fecha): la implementación PostgreSQL lo delega a un índice
// único parcial, no a un pre-chequeo.
type RegisterSessionRepository interface {
	Create(session *entity.RegisterSession) error
	GetByID(id string) (*entity.RegisterSession, error)
	// GetForUpdate bloquea la fila de la sesión para serializar cierre,
	// asientos y ventas concurrentes sobre la misma sesión.
	GetForUpdate(id string) (*entity.RegisterSession, error)
	GetOpen(outletID string, date time.Time) (*entity.RegisterSession, error)
	GetOpenForUpdate(outletID string, date time.Time) (*entity.RegisterSession, error)
	// Close persiste la única mutación permitida: conteo, saldo teórico,
	// desvío, estado CLOSED y datos de quién/cuándo cerró.
	Close(session *entity.RegisterSession) error
	ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.RegisterSession, error)
}
