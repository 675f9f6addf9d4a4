package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-caja/internal/application/dto"
	"github.com/tu-usuario/pos-caja/internal/application/inventory"
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
	otherOutlet  = "00000000-0000-0000-0000-0000000000bb"
)

type fixture struct {
	store *memory.Store
	uc    *inventory.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store: store,
		uc:    inventory.NewUseCase(store, store.Products(), store.Movements(), store.Stocks()),
	}
}

func (f *fixture) seedProduct(t *testing.T, trackable bool) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	require.NoError(t, f.store.Products().Create(&entity.Product{
		ID:        id,
		Name:      "Producto " + id[:8],
		SKU:       "SKU-" + id[:8],
		Price:     decimal.NewFromInt(1000),
		Trackable: trackable,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	return id
}

func (f *fixture) receive(t *testing.T, productID string, qty int64) {
	t.Helper()
	require.NoError(t, f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:  testOutletID,
		ProductID: productID,
		Type:      entity.MovementTypeIN,
		Quantity:  qty,
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Append directo: libro + contador en la misma transacción
// ──────────────────────────────────────────────────────────────────────────────

func TestAppendMovement_ActualizaLibroYContador(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)

	id, err := f.uc.AppendMovement(context.Background(), inventory.AppendMovementInput{
		OutletID:      testOutletID,
		ProductID:     productID,
		Quantity:      7,
		Type:          entity.MovementTypeIN,
		ReferenceType: entity.MovementRefReceiving,
		CreatedBy:     testUserID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	qty, err := f.uc.CurrentStock(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty)

	mov, err := f.store.Movements().GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementStatusCompleted, mov.Status)
}

// El orden de los appends no afecta la suma del libro ni el contador.
func TestAppendMovement_SumaConmutativa(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)

	deltas := []int64{10, -3, 5, -7, 2}
	for _, d := range deltas {
		movType := entity.MovementTypeIN
		if d < 0 {
			movType = entity.MovementTypeOUT
		}
		_, err := f.uc.AppendMovement(context.Background(), inventory.AppendMovementInput{
			OutletID:  testOutletID,
			ProductID: productID,
			Quantity:  d,
			Type:      movType,
			CreatedBy: testUserID,
		})
		require.NoError(t, err)
	}

	qty, err := f.uc.CurrentStock(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty, "10 − 3 + 5 − 7 + 2")

	sum, err := f.store.Movements().SumCompleted(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, qty, sum, "contador y libro deben coincidir")
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterMovement: IN / ADJUSTMENT / TRANSFER
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_Recepcion(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)

	f.receive(t, productID, 12)

	qty, err := f.uc.CurrentStock(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), qty)
}

func TestRegisterMovement_AjusteNegativo(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)
	f.receive(t, productID, 10)

	err := f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:  testOutletID,
		ProductID: productID,
		Type:      entity.MovementTypeADJUSTMENT,
		Quantity:  -4,
		Reference: "conteo físico",
	})
	require.NoError(t, err)

	qty, _ := f.uc.CurrentStock(testOutletID, productID)
	assert.Equal(t, int64(6), qty)
}

// El traslado deja dos filas con la misma referencia y mueve la cantidad.
func TestRegisterMovement_Traslado(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)
	f.receive(t, productID, 10)

	err := f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:   testOutletID,
		ToOutletID: otherOutlet,
		ProductID:  productID,
		Type:       entity.MovementTypeTRANSFER,
		Quantity:   4,
	})
	require.NoError(t, err)

	origin, _ := f.uc.CurrentStock(testOutletID, productID)
	dest, _ := f.uc.CurrentStock(otherOutlet, productID)
	assert.Equal(t, int64(6), origin)
	assert.Equal(t, int64(4), dest)

	// Dos filas en el libro compartiendo referencia de traslado.
	movements, err := f.store.Movements().ListByOutlet(otherOutlet, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	ref := movements[0].ReferenceID
	pair, err := f.store.Movements().ListByReference(entity.MovementRefTransfer, ref)
	require.NoError(t, err)
	assert.Len(t, pair, 2)
}

// Traslado sin existencias suficientes: nada se escribe en ningún outlet.
func TestRegisterMovement_TrasladoSinStock(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)
	f.receive(t, productID, 2)

	err := f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:   testOutletID,
		ToOutletID: otherOutlet,
		ProductID:  productID,
		Type:       entity.MovementTypeTRANSFER,
		Quantity:   5,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	origin, _ := f.uc.CurrentStock(testOutletID, productID)
	dest, _ := f.uc.CurrentStock(otherOutlet, productID)
	assert.Equal(t, int64(2), origin)
	assert.Equal(t, int64(0), dest)
}

func TestRegisterMovement_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)

	cases := []struct {
		name string
		in   dto.RegisterMovementRequest
	}{
		{"IN con cantidad cero", dto.RegisterMovementRequest{OutletID: testOutletID, ProductID: productID, Type: entity.MovementTypeIN, Quantity: 0}},
		{"IN con cantidad negativa", dto.RegisterMovementRequest{OutletID: testOutletID, ProductID: productID, Type: entity.MovementTypeIN, Quantity: -5}},
		{"ajuste cero", dto.RegisterMovementRequest{OutletID: testOutletID, ProductID: productID, Type: entity.MovementTypeADJUSTMENT, Quantity: 0}},
		{"traslado al mismo outlet", dto.RegisterMovementRequest{OutletID: testOutletID, ToOutletID: testOutletID, ProductID: productID, Type: entity.MovementTypeTRANSFER, Quantity: 1}},
		{"traslado sin destino", dto.RegisterMovementRequest{OutletID: testOutletID, ProductID: productID, Type: entity.MovementTypeTRANSFER, Quantity: 1}},
		{"tipo desconocido", dto.RegisterMovementRequest{OutletID: testOutletID, ProductID: productID, Type: "OUT", Quantity: 1}},
		{"sin outlet", dto.RegisterMovementRequest{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.uc.RegisterMovement(context.Background(), testUserID, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegisterMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	err := f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:  testOutletID,
		ProductID: uuid.NewString(),
		Type:      entity.MovementTypeIN,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliación y listado
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_Consistente(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)
	f.receive(t, productID, 10)
	require.NoError(t, f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:  testOutletID,
		ProductID: productID,
		Type:      entity.MovementTypeADJUSTMENT,
		Quantity:  -3,
	}))

	result, err := f.uc.Reconcile(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.LedgerSum)
	assert.Equal(t, int64(7), result.Counter)
	assert.Equal(t, int64(0), result.Drift)
	assert.True(t, result.Consistent)
}

// Un contador torcido a mano debe reportar deriva: el libro manda.
func TestReconcile_DetectaDeriva(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)
	f.receive(t, productID, 10)

	require.NoError(t, f.store.Stocks().Upsert(&entity.Stock{
		OutletID:  testOutletID,
		ProductID: productID,
		Quantity:  12,
		UpdatedAt: time.Now(),
	}))

	result, err := f.uc.Reconcile(testOutletID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.LedgerSum)
	assert.Equal(t, int64(12), result.Counter)
	assert.Equal(t, int64(2), result.Drift)
	assert.False(t, result.Consistent)
}

func TestListMovements_FiltraPorOutlet(t *testing.T) {
	f := newFixture(t)
	productID := f.seedProduct(t, true)
	f.receive(t, productID, 5)
	require.NoError(t, f.uc.RegisterMovement(context.Background(), testUserID, dto.RegisterMovementRequest{
		OutletID:  otherOutlet,
		ProductID: productID,
		Type:      entity.MovementTypeIN,
		Quantity:  3,
	}))

	movements, err := f.uc.ListMovements(testOutletID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, testOutletID, movements[0].OutletID)
}
