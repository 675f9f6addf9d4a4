package pos_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-caja/internal/application/dto"
	"github.com/tu-usuario/pos-caja/internal/application/pos"
	"github.com/tu-usuario/pos-caja/internal/application/register"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testUserID   = "00000000-0000-0000-0000-000000000001"
	testOutletID = "00000000-0000-0000-0000-0000000000aa"
)

// fixture arma el almacén en memoria con los casos de uso cableados igual que
// en main.
type fixture struct {
	store      *memory.Store
	registerUC *register.UseCase
	saleUC     *pos.CreateSaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store:      store,
		registerUC: register.NewUseCase(store, store.Sessions(), store.Ledger()),
		saleUC:     pos.NewCreateSaleUseCase(store, store.Orders(), "POS"),
	}
}

// seedProduct crea un producto con stock inicial en el outlet de prueba.
func (f *fixture) seedProduct(t *testing.T, price int64, trackable bool, stock int64) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	require.NoError(t, f.store.Products().Create(&entity.Product{
		ID:        id,
		Name:      "Producto " + id[:8],
		SKU:       "SKU-" + id[:8],
		Price:     decimal.NewFromInt(price),
		Trackable: trackable,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	if stock != 0 {
		require.NoError(t, f.store.Stocks().Upsert(&entity.Stock{
			OutletID:  testOutletID,
			ProductID: id,
			Quantity:  stock,
			UpdatedAt: now,
		}))
	}
	return id
}

// openSession abre la sesión del día con el fondo indicado.
func (f *fixture) openSession(t *testing.T, openingFloat int64) string {
	t.Helper()
	session, err := f.registerUC.Open(context.Background(), testUserID, dto.OpenSessionRequest{
		OutletID:     testOutletID,
		OpeningFloat: decimal.NewFromInt(openingFloat),
	})
	require.NoError(t, err)
	return session.ID
}

func saleRequest(productID string, qty int64, taxRate string) dto.CreateSaleRequest {
	rate, _ := decimal.NewFromString(taxRate)
	return dto.CreateSaleRequest{
		OutletID:      testOutletID,
		PaymentMethod: entity.PaymentMethodCash,
		TaxRate:       rate,
		Items: []dto.SaleItemRequest{
			{ProductID: productID, Quantity: qty},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta feliz: totales, movimientos, asiento de caja
// ──────────────────────────────────────────────────────────────────────────────

// Venta de 2 unidades a 450000 con 18% de impuesto: HT 900000, TTC 1062000.
func TestCreateSale_LiquidaTotalesConImpuesto(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t, 50000)
	productID := f.seedProduct(t, 450000, true, 10)

	resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 2, "0.18"))
	require.NoError(t, err)

	assert.Equal(t, sessionID, resp.SessionID)
	assert.True(t, resp.TotalHT.Equal(decimal.NewFromInt(900000)), "HT = 2 × 450000")
	assert.True(t, resp.TotalTTC.Equal(decimal.NewFromInt(1062000)), "TTC = 900000 × 1.18")
	assert.Equal(t, 1, resp.MovementCount, "un movimiento OUT por línea")
	assert.Equal(t, 1, resp.LedgerEntryCount, "exactamente un asiento SALE")

	// Stock descontado en el contador materializado.
	stock, err := f.store.Stocks().Get(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stock.Quantity)

	// El movimiento OUT referencia la orden con cantidad negada.
	movements, err := f.store.Movements().ListByReference(entity.MovementRefOrder, resp.OrderID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(-2), movements[0].Quantity)
	assert.Equal(t, entity.MovementTypeOUT, movements[0].Type)
	assert.Equal(t, entity.MovementStatusCompleted, movements[0].Status)

	// El asiento SALE va por el total con impuesto.
	entries, err := f.store.Ledger().ListBySession(sessionID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.LedgerEntrySale, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(1062000)))
	assert.Equal(t, resp.OrderID, entries[0].ReferenceID)
}

// La tasa llega como porcentaje (18) y debe normalizarse a fracción (0.18).
func TestCreateSale_NormalizaTasaPorcentual(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 450000, true, 10)

	resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 2, "18"))
	require.NoError(t, err)
	assert.True(t, resp.TotalTTC.Equal(decimal.NewFromInt(1062000)))
}

// Línea sin precio: se toma el precio del catálogo.
func TestCreateSale_PrecioPorDefectoDelCatalogo(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 1500, true, 5)

	resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 3, "0"))
	require.NoError(t, err)
	assert.True(t, resp.TotalHT.Equal(decimal.NewFromInt(4500)))
	assert.True(t, resp.TotalTTC.Equal(decimal.NewFromInt(4500)), "sin impuesto TTC = HT")
}

// Producto sin control de existencias: vende aunque el contador esté en cero.
func TestCreateSale_NoTrackableVendeSinStock(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 2000, false, 0)

	resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 4, "0"))
	require.NoError(t, err)

	// El movimiento se escribe igual: el libro registra todo, el contador
	// puede quedar negativo para no trackables.
	stock, err := f.store.Stocks().Get(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), stock.Quantity)
	assert.Equal(t, 1, resp.MovementCount)
}

// Consecutivo por outlet y año: números monotónicos, sin huecos entre ventas.
func TestCreateSale_NumeracionMonotona(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 100, true, 100)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 1, "0"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("POS-%d-%06d", year, i), resp.OrderNumber)
	}
}

// Ventas concurrentes sobre el mismo producto: el stock termina exacto y no
// hay números de orden repetidos.
func TestCreateSale_VentasConcurrentesSerializadas(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 100, true, 50)

	const n = 20
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 1, "0"))
			if assert.NoError(t, err) {
				numbers <- resp.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "número de orden repetido: %s", num)
		seen[num] = true
	}

	stock, err := f.store.Stocks().Get(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), stock.Quantity, "50 − 20 ventas de 1 unidad")
}

// ──────────────────────────────────────────────────────────────────────────────
// Precondiciones: cada una aborta sin escribir nada
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_SinSesionAbierta(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, 100, true, 10)

	_, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 1, "0"))
	assert.ErrorIs(t, err, domain.ErrOpenSessionRequired)

	// Nada escrito.
	stock, _ := f.store.Stocks().Get(testOutletID, productID)
	assert.Equal(t, int64(10), stock.Quantity)
}

func TestCreateSale_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t, 0)
	productID := f.seedProduct(t, 100, true, 1)

	_, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 2, "0"))

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, productID, stockErr.ProductID)
	assert.Equal(t, int64(2), stockErr.Requested)
	assert.Equal(t, int64(1), stockErr.Available)
	assert.Equal(t, int64(1), stockErr.Shortfall())

	// Rollback total: ni stock, ni movimientos, ni asientos, ni orden.
	stock, _ := f.store.Stocks().Get(testOutletID, productID)
	assert.Equal(t, int64(1), stock.Quantity)
	entries, _ := f.store.Ledger().ListBySession(sessionID)
	assert.Empty(t, entries)
	sum, _ := f.store.Movements().SumCompleted(testOutletID, productID)
	assert.Equal(t, int64(0), sum, "el libro no debe tener movimientos")
}

// Líneas repetidas del mismo producto se agregan antes del chequeo de stock:
// 6 + 6 contra 10 no puede sobrevender pasando cada línea por separado.
func TestCreateSale_LineasDuplicadasAgregadas(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t, 0)
	productID := f.seedProduct(t, 100, true, 10)

	in := dto.CreateSaleRequest{
		OutletID:      testOutletID,
		PaymentMethod: entity.PaymentMethodCash,
		Items: []dto.SaleItemRequest{
			{ProductID: productID, Quantity: 6},
			{ProductID: productID, Quantity: 6},
		},
	}
	_, err := f.saleUC.CreateSale(context.Background(), testUserID, in)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(12), stockErr.Requested, "cantidad agregada de las dos líneas")
	assert.Equal(t, int64(10), stockErr.Available)

	// Rollback total: el contador nunca baja de cero.
	stock, _ := f.store.Stocks().Get(testOutletID, productID)
	assert.Equal(t, int64(10), stock.Quantity)
	sum, _ := f.store.Movements().SumCompleted(testOutletID, productID)
	assert.Equal(t, int64(0), sum)
	entries, _ := f.store.Ledger().ListBySession(sessionID)
	assert.Empty(t, entries)
}

// Una venta con todas las líneas a precio cero es válida: asienta SALE por 0.
func TestCreateSale_VentaTotalCero(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t, 0)
	productID := f.seedProduct(t, 0, true, 5)

	resp, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 2, "0.18"))
	require.NoError(t, err)
	assert.True(t, resp.TotalTTC.IsZero())

	stock, _ := f.store.Stocks().Get(testOutletID, productID)
	assert.Equal(t, int64(3), stock.Quantity, "el inventario sí se descuenta")

	entries, err := f.store.Ledger().ListBySession(sessionID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.LedgerEntrySale, entries[0].Type)
	assert.True(t, entries[0].Amount.IsZero())
}

// La sesión es la primera precondición: sin sesión abierta, ni el catálogo ni
// el outlet se consultan todavía.
func TestCreateSale_SesionAntesQueCatalogo(t *testing.T) {
	f := newFixture(t)

	// Producto inexistente sin sesión: gana la precondición de sesión.
	_, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(uuid.NewString(), 1, "0"))
	assert.ErrorIs(t, err, domain.ErrOpenSessionRequired)

	// Outlet vacío: no puede tener sesión abierta.
	in := saleRequest(uuid.NewString(), 1, "0")
	in.OutletID = ""
	_, err = f.saleUC.CreateSale(context.Background(), testUserID, in)
	assert.ErrorIs(t, err, domain.ErrOpenSessionRequired)
}

func TestCreateSale_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)

	_, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(uuid.NewString(), 1, "0"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSale_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 100, true, 10)

	cases := []struct {
		name string
		in   dto.CreateSaleRequest
	}{
		{"sin items", dto.CreateSaleRequest{OutletID: testOutletID, PaymentMethod: entity.PaymentMethodCash}},
		{"cantidad cero", saleRequest(productID, 0, "0")},
		{"tasa negativa", saleRequest(productID, 1, "-0.05")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.saleUC.CreateSale(context.Background(), testUserID, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Correspondencia 1:1 y consulta
// ──────────────────────────────────────────────────────────────────────────────

// Cada línea produce exactamente un movimiento OUT; la venta entera produce
// exactamente un asiento SALE.
func TestCreateSale_CorrespondenciaLineasMovimientos(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t, 0)
	p1 := f.seedProduct(t, 100, true, 10)
	p2 := f.seedProduct(t, 200, true, 10)

	in := dto.CreateSaleRequest{
		OutletID:      testOutletID,
		PaymentMethod: entity.PaymentMethodCard,
		Items: []dto.SaleItemRequest{
			{ProductID: p1, Quantity: 2},
			{ProductID: p2, Quantity: 3},
		},
	}
	resp, err := f.saleUC.CreateSale(context.Background(), testUserID, in)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.MovementCount)
	assert.Equal(t, 1, resp.LedgerEntryCount)

	movements, err := f.store.Movements().ListByReference(entity.MovementRefOrder, resp.OrderID)
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	entries, err := f.store.Ledger().ListBySession(sessionID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(800)), "TTC = 2×100 + 3×200")
}

func TestGetSale_DevuelveOrdenConLineas(t *testing.T) {
	f := newFixture(t)
	f.openSession(t, 0)
	productID := f.seedProduct(t, 700, true, 10)

	created, err := f.saleUC.CreateSale(context.Background(), testUserID, saleRequest(productID, 2, "0"))
	require.NoError(t, err)

	order, err := f.saleUC.GetSale(created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNumber, order.Number)
	assert.Equal(t, entity.OrderStatusConfirmed, order.Status)
	assert.Equal(t, entity.PaymentStatusPaid, order.PaymentStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2), order.Items[0].Quantity)
	assert.True(t, order.Items[0].Total.Equal(decimal.NewFromInt(1400)))
}

func TestGetSale_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.saleUC.GetSale(uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
