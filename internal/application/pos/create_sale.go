package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-caja/internal/application/dto"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// CreateSaleUseCase liquida una venta de mostrador: valida las precondiciones,
// escribe la orden con sus líneas, descuenta inventario (un movimiento OUT por
// línea) y asienta exactamente una fila SALE en el libro de caja, todo en una
// sola transacción con bloqueo de fila por (outlet, producto).
type CreateSaleUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	orderPrefix string
}

// NewCreateSaleUseCase construye el orquestador. orderPrefix es el prefijo del
// consecutivo de órdenes (ej. "POS" -> POS-2026-000123).
func NewCreateSaleUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	orderPrefix string,
) *CreateSaleUseCase {
	if orderPrefix == "" {
		orderPrefix = "POS"
	}
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		orderPrefix: orderPrefix,
	}
}

// CreateSale ejecuta la venta. Precondiciones, en orden y cada una abortando
// sin escribir nada: sesión de caja abierta para (outlet, hoy); stock
// suficiente por producto, con las líneas repetidas agregadas (solo productos
// con control de existencias); entrada bien formada. Todo dentro de la
// transacción. Los efectos corren después, en el orden fijo orden → líneas →
// movimientos → asiento de caja; cualquier fallo hace rollback de todo.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	now := time.Now()
	today := entity.BusinessDate(now)
	orderID := uuid.New().String()
	var resp *dto.CreateSaleResponse

	err := uc.txRunner.RunSale(ctx, func(
		sessionRepo repository.RegisterSessionRepository,
		ledgerRepo repository.RegisterLedgerRepository,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error {
		// 1) Sesión abierta para (outlet, hoy), bloqueada para que un cierre
		// concurrente no gane la carrera a mitad de venta. Primera
		// precondición: corre antes de resolver catálogo o stock.
		session, err := sessionRepo.GetOpenForUpdate(in.OutletID, today)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrOpenSessionRequired
		}

		// 2) Resolver productos y verificar stock bajo SELECT FOR UPDATE.
		// Las cantidades se agregan por producto antes de comparar: líneas
		// repetidas del mismo producto no pueden pasar el chequeo por
		// separado y sobrevender. Precio por defecto del catálogo cuando la
		// línea no trae precio.
		productsByID := make(map[string]*entity.Product, len(in.Items))
		required := make(map[string]int64, len(in.Items))
		for i := range in.Items {
			item := &in.Items[i]
			if item.ProductID == "" {
				return domain.ErrInvalidInput
			}
			required[item.ProductID] += item.Quantity
			if productsByID[item.ProductID] != nil {
				continue
			}
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			productsByID[item.ProductID] = product
		}
		for i := range in.Items {
			if in.Items[i].UnitPrice.IsZero() {
				in.Items[i].UnitPrice = productsByID[in.Items[i].ProductID].Price
			}
		}

		stocks := make(map[string]*entity.Stock, len(productsByID))
		for _, item := range in.Items {
			if _, ok := stocks[item.ProductID]; ok {
				continue
			}
			stock, err := stockRepo.GetForUpdate(in.OutletID, item.ProductID)
			if err != nil {
				return err
			}
			stocks[item.ProductID] = stock
			product := productsByID[item.ProductID]
			if product.Trackable && stock.Quantity < required[item.ProductID] {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   required[item.ProductID],
					Available:   stock.Quantity,
				}
			}
		}

		// 3) Entrada bien formada.
		if len(in.Items) == 0 {
			return domain.ErrInvalidInput
		}
		for _, item := range in.Items {
			if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
				return domain.ErrInvalidInput
			}
		}
		taxRate := normalizeTaxRate(in.TaxRate)
		if taxRate.IsNegative() {
			return domain.ErrInvalidInput
		}

		// Totales
		totalHT := decimal.Zero
		for _, item := range in.Items {
			totalHT = totalHT.Add(decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice))
		}
		totalTTC := totalHT.Mul(decimal.NewFromInt(1).Add(taxRate))

		// Consecutivo por (outlet, año): incrementado atómicamente en la tx,
		// dos ventas concurrentes nunca comparten número.
		seq, err := orderRepo.NextNumber(in.OutletID, now.Year())
		if err != nil {
			return err
		}
		number := fmt.Sprintf("%s-%d-%06d", uc.orderPrefix, now.Year(), seq)

		// Orden confirmada y pagada: la venta en mostrador liquida de inmediato.
		order := &entity.Order{
			ID:            orderID,
			OutletID:      in.OutletID,
			SessionID:     session.ID,
			Number:        number,
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			Status:        entity.OrderStatusConfirmed,
			PaymentStatus: entity.PaymentStatusPaid,
			PaymentMethod: in.PaymentMethod,
			TotalHT:       totalHT,
			TotalTTC:      totalTTC,
			TaxRate:       taxRate,
			CreatedAt:     now,
			CreatedBy:     userID,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for i, item := range in.Items {
			product := productsByID[item.ProductID]
			description := item.Description
			if description == "" {
				description = product.Name
			}
			if err := orderRepo.CreateItem(&entity.OrderItem{
				ID:          uuid.New().String(),
				OrderID:     order.ID,
				ProductID:   item.ProductID,
				Description: description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice),
				Position:    i,
			}); err != nil {
				return err
			}
		}

		// Un movimiento OUT por línea (cantidad negada, referencia a la
		// orden) y el contador materializado actualizado en la misma tx.
		movementCount := 0
		for _, item := range in.Items {
			stock := stocks[item.ProductID]
			stock.Quantity -= item.Quantity
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}
			if err := movRepo.Create(&entity.InventoryMovement{
				ID:            uuid.New().String(),
				OutletID:      in.OutletID,
				ProductID:     item.ProductID,
				Quantity:      -item.Quantity,
				Type:          entity.MovementTypeOUT,
				ReferenceType: entity.MovementRefOrder,
				ReferenceID:   order.ID,
				Status:        entity.MovementStatusCompleted,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}
			movementCount++
		}

		// Exactamente un asiento SALE por el total con impuesto.
		if err := ledgerRepo.Create(&entity.RegisterLedgerEntry{
			ID:            uuid.New().String(),
			SessionID:     session.ID,
			Type:          entity.LedgerEntrySale,
			Amount:        totalTTC,
			PaymentMethod: in.PaymentMethod,
			ReferenceType: entity.LedgerRefOrder,
			ReferenceID:   order.ID,
			CreatedAt:     now,
			CreatedBy:     userID,
		}); err != nil {
			return err
		}

		resp = &dto.CreateSaleResponse{
			OrderID:          order.ID,
			OrderNumber:      order.Number,
			SessionID:        session.ID,
			TotalHT:          totalHT,
			TotalTTC:         totalTTC,
			MovementCount:    movementCount,
			LedgerEntryCount: 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSale devuelve la orden con sus líneas.
func (uc *CreateSaleUseCase) GetSale(orderID string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.orderRepo.GetItemsByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrderResponse{
		ID:            order.ID,
		OutletID:      order.OutletID,
		SessionID:     order.SessionID,
		Number:        order.Number,
		CustomerName:  order.CustomerName,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		TotalHT:       order.TotalHT,
		TotalTTC:      order.TotalTTC,
		TaxRate:       order.TaxRate,
		Date:          order.CreatedAt.Format("2006-01-02"),
		Items:         make([]dto.SaleItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
			Position:    it.Position,
		})
	}
	return resp, nil
}

// normalizeTaxRate acepta la tasa como fracción (0.18) o porcentaje (18).
func normalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}
