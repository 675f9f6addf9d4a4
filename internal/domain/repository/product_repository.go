package repository

import "github.com/tu-usuario/pos-caja/internal/domain/entity"

// ProductRepository define el puerto de persistencia del catálogo.
// El catálogo es dato de referencia para el núcleo POS: solo lectura aquí.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
