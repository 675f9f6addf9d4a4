package repository

import (
	"time"

	"github.com/tu-usuario/pos-caja/internal/domain/entity"
)

// InventoryMovementRepository define el puerto del libro de inventario.
// Solo Create: las filas nunca se actualizan ni se borran.
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByReference(referenceType, referenceID string) ([]*entity.InventoryMovement, error)
	// SumCompleted suma las cantidades con signo de los movimientos COMPLETED
	// para (outlet, producto). Recorre el libro: es la verdad de auditoría
	// contra la que se reconcilia el contador materializado.
	SumCompleted(outletID, productID string) (int64, error)
}
