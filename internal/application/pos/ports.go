package pos

import (
	"context"

	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// TxRunner ejecuta una venta completa dentro de UNA transacción de BD: sesión,
// libro de caja, libro de inventario, contador de stock y orden viven o mueren
// juntos. No hay compensación parcial porque no hay estado parcial que
// compensar.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		sessionRepo repository.RegisterSessionRepository,
		ledgerRepo repository.RegisterLedgerRepository,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error) error
}
