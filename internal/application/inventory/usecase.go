package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-caja/internal/application/dto"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// UseCase maneja el libro de inventario: appends transaccionales con bloqueo
// de fila (SELECT FOR UPDATE) sobre el contador materializado, consulta de
// stock y reconciliación contador-vs-libro.
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	stockRepo   repository.StockRepository
}

// NewUseCase construye el caso de uso. movRepo y stockRepo son los
// repositorios sin transacción, usados solo para lecturas.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		stockRepo:   stockRepo,
	}
}

// AppendMovementInput entrada para un append directo al libro.
type AppendMovementInput struct {
	OutletID      string
	ProductID     string
	Quantity      int64 // con signo
	Type          string
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
}

// AppendMovement agrega una fila al libro sin validar cantidades: el libro es
// una superficie de append deliberadamente tonta y auditable; la validación de
// negocio es responsabilidad del caller. El contador materializado se
// actualiza en la misma transacción.
func (uc *UseCase) AppendMovement(ctx context.Context, input AppendMovementInput) (string, error) {
	now := time.Now()
	movementID := uuid.New().String()
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		return appendCompleted(movRepo, stockRepo, &entity.InventoryMovement{
			ID:            movementID,
			OutletID:      input.OutletID,
			ProductID:     input.ProductID,
			Quantity:      input.Quantity,
			Type:          input.Type,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			Status:        entity.MovementStatusCompleted,
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     input.CreatedBy,
		})
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}

// appendCompleted bloquea la fila del contador, aplica el delta y guarda el
// movimiento COMPLETED. Debe llamarse con repositorios atados a una tx.
func appendCompleted(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	mov *entity.InventoryMovement,
) error {
	stock, err := stockRepo.GetForUpdate(mov.OutletID, mov.ProductID)
	if err != nil {
		return err
	}
	stock.Quantity += mov.Quantity
	stock.UpdatedAt = mov.CreatedAt
	if err := stockRepo.Upsert(stock); err != nil {
		return err
	}
	return movRepo.Create(mov)
}

// RegisterMovement registra recepciones (IN), ajustes con signo (ADJUSTMENT)
// y traslados entre puntos de venta (TRANSFER), cada uno en una transacción.
// Las salidas por venta no pasan por aquí: las escribe el orquestador POS.
func (uc *UseCase) RegisterMovement(ctx context.Context, userID string, in dto.RegisterMovementRequest) error {
	switch in.Type {
	case entity.MovementTypeIN:
		if in.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeADJUSTMENT:
		if in.Quantity == 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeTRANSFER:
		if in.Quantity <= 0 || in.ToOutletID == "" || in.ToOutletID == in.OutletID {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	if in.OutletID == "" || in.ProductID == "" {
		return domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	refType := entity.MovementRefReceiving
	switch in.Type {
	case entity.MovementTypeADJUSTMENT:
		refType = entity.MovementRefAdjustment
	case entity.MovementTypeTRANSFER:
		refType = entity.MovementRefTransfer
	}

	return uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		if in.Type == entity.MovementTypeTRANSFER {
			return doTransfer(movRepo, stockRepo, product, userID, now, in)
		}
		return appendCompleted(movRepo, stockRepo, &entity.InventoryMovement{
			ID:            uuid.New().String(),
			OutletID:      in.OutletID,
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			Type:          in.Type,
			ReferenceType: refType,
			ReferenceID:   in.Reference,
			Status:        entity.MovementStatusCompleted,
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     userID,
		})
	})
}

// doTransfer resta en el outlet origen y suma en el destino dentro de la misma
// transacción; quedan dos filas en el libro con la misma referencia.
func doTransfer(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	product *entity.Product,
	userID string,
	now time.Time,
	in dto.RegisterMovementRequest,
) error {
	origin, err := stockRepo.GetForUpdate(in.OutletID, in.ProductID)
	if err != nil {
		return err
	}
	if product.Trackable && origin.Quantity < in.Quantity {
		return &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   in.Quantity,
			Available:   origin.Quantity,
		}
	}
	transferID := uuid.New().String()
	out := &entity.InventoryMovement{
		ID:            uuid.New().String(),
		OutletID:      in.OutletID,
		ProductID:     in.ProductID,
		Quantity:      -in.Quantity,
		Type:          entity.MovementTypeTRANSFER,
		ReferenceType: entity.MovementRefTransfer,
		ReferenceID:   transferID,
		Status:        entity.MovementStatusCompleted,
		Date:          now,
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if err := appendCompleted(movRepo, stockRepo, out); err != nil {
		return err
	}
	entry := *out
	entry.ID = uuid.New().String()
	entry.OutletID = in.ToOutletID
	entry.Quantity = in.Quantity
	return appendCompleted(movRepo, stockRepo, &entry)
}

// CurrentStock devuelve el stock actual desde el contador materializado.
func (uc *UseCase) CurrentStock(outletID, productID string) (int64, error) {
	stock, err := uc.stockRepo.Get(outletID, productID)
	if err != nil {
		return 0, err
	}
	return stock.Quantity, nil
}

// Reconcile compara el contador materializado contra la suma de movimientos
// COMPLETED del libro. El libro manda: un drift distinto de cero indica que el
// contador necesita corrección.
func (uc *UseCase) Reconcile(outletID, productID string) (*dto.ReconcileResponse, error) {
	sum, err := uc.movRepo.SumCompleted(outletID, productID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.stockRepo.Get(outletID, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResponse{
		OutletID:   outletID,
		ProductID:  productID,
		LedgerSum:  sum,
		Counter:    stock.Quantity,
		Drift:      stock.Quantity - sum,
		Consistent: stock.Quantity == sum,
	}, nil
}

// ListMovements lista el libro de un punto de venta en un rango de fechas.
func (uc *UseCase) ListMovements(outletID string, from, to *time.Time, page dto.PageRequest) ([]*entity.InventoryMovement, error) {
	page.DefaultPage()
	return uc.movRepo.ListByOutlet(outletID, from, to, page.Limit, page.Offset)
}
