package repository

import "github.com/tu-usuario/pos-caja/internal/domain/entity"

// StockRepository define el puerto del contador materializado de existencias.
// Usado dentro de transacciones para garantizar consistencia con el libro.
type StockRepository interface {
	Get(outletID, productID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para serializar el
	// check-then-decrement por (outlet, producto).
	GetForUpdate(outletID, productID string) (*entity.Stock, error)
}
