package repository

import "github.com/tu-usuario/pos-caja/internal/domain/entity"

// OrderRepository define el puerto de persistencia de órdenes de venta.
type OrderRepository interface {
	Create(order *entity.Order) error
	CreateItem(item *entity.OrderItem) error
	GetByID(id string) (*entity.Order, error)
	GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error)
	// NextNumber devuelve el siguiente consecutivo por (outlet, año).
	// Debe incrementarse de forma atómica (upsert + RETURNING) para que dos
	// ventas concurrentes nunca compartan número.
	NextNumber(outletID string, year int) (int64, error)
}
