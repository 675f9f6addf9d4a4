package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/pos-caja/internal/application/inventory"
	"github.com/tu-usuario/pos-caja/internal/application/pos"
	"github.com/tu-usuario/pos-caja/internal/application/register"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// Ensure TxRunner implements the application TxRunner ports.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ register.TxRunner = (*TxRunner)(nil)
var _ pos.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos de inventario atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventoryMovementRepository(tx), NewStockRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRegister inicia una transacción con los repos de caja (asientos, cierre).
func (r *TxRunner) RunRegister(ctx context.Context, fn func(
	sessionRepo repository.RegisterSessionRepository,
	ledgerRepo repository.RegisterLedgerRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRegisterSessionRepository(tx), NewRegisterLedgerRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale inicia la transacción de una venta completa: sesión, libro de caja,
// libro de inventario, stock y órdenes en el mismo alcance transaccional.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	sessionRepo repository.RegisterSessionRepository,
	ledgerRepo repository.RegisterLedgerRepository,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewRegisterSessionRepository(tx),
		NewRegisterLedgerRepository(tx),
		NewInventoryMovementRepository(tx),
		NewStockRepository(tx),
		NewOrderRepository(tx),
		NewProductRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
