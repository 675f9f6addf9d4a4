package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-caja/internal/application/catalog"
	"github.com/tu-usuario/pos-caja/internal/application/inventory"
	"github.com/tu-usuario/pos-caja/internal/application/pos"
	"github.com/tu-usuario/pos-caja/internal/application/register"
	"github.com/tu-usuario/pos-caja/internal/infrastructure/memory"
	apphttp "github.com/tu-usuario/pos-caja/internal/interfaces/http"
)

// buildAPI levanta la API completa sobre el almacén en memoria, cableada igual
// que en main.
func buildAPI() *fiber.App {
	store := memory.NewStore()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   catalog.NewUseCase(store.Products()),
		InventoryUC: inventory.NewUseCase(store, store.Products(), store.Movements(), store.Stocks()),
		RegisterUC:  register.NewUseCase(store, store.Sessions(), store.Ledger()),
		CreateSale:  pos.NewCreateSaleUseCase(store, store.Orders(), "POS"),
		JWTSecret:   testJWTSecret,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "cajero"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

// Flujo completo de un día de caja: producto → recepción → apertura → venta →
// resumen → cierre con arqueo.
func TestAPI_FlujoCompletoDeCaja(t *testing.T) {
	app := buildAPI()

	// Alta de producto.
	resp, product := doJSON(t, app, http.MethodPost, "/api/products/", map[string]any{
		"name":  "Café molido 500g",
		"sku":   "CAFE-500",
		"price": "450000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := product["id"].(string)

	// Recepción de 10 unidades.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/inventory/movements", map[string]any{
		"outlet_id":  testOutletID,
		"product_id": productID,
		"type":       "IN",
		"quantity":   10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Apertura de la sesión del día con fondo 50000.
	resp, session := doJSON(t, app, http.MethodPost, "/api/register/sessions/", map[string]any{
		"outlet_id":     testOutletID,
		"opening_float": "50000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := session["id"].(string)

	// Venta: 2 × 450000 al 18% → TTC 1062000.
	resp, sale := doJSON(t, app, http.MethodPost, "/api/pos/sales", map[string]any{
		"outlet_id":      testOutletID,
		"payment_method": "CASH",
		"tax_rate":       "0.18",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, sessionID, sale["session_id"])
	assert.Equal(t, "1062000", fmt.Sprint(sale["total_ttc"]))

	// El stock quedó en 8.
	resp, stock := doJSON(t, app, http.MethodGet,
		"/api/inventory/stock?outlet_id="+testOutletID+"&product_id="+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(8), stock["quantity"])

	// Contador y libro consistentes.
	resp, reconcile := doJSON(t, app, http.MethodGet,
		"/api/inventory/reconcile?outlet_id="+testOutletID+"&product_id="+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, reconcile["consistent"])

	// Resumen de la sesión: una venta en efectivo.
	resp, summary := doJSON(t, app, http.MethodGet, "/api/register/sessions/"+sessionID+"/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), summary["sale_count"])

	// Cierre con conteo exacto: desvío cero.
	resp, closed := doJSON(t, app, http.MethodPost, "/api/register/sessions/"+sessionID+"/close", map[string]any{
		"closing_count": "1112000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1112000", fmt.Sprint(closed["theoretical_balance"]))
	assert.Equal(t, "0", fmt.Sprint(closed["variance"]))

	// Una segunda venta del día ya no encuentra sesión abierta.
	resp, errBody := doJSON(t, app, http.MethodPost, "/api/pos/sales", map[string]any{
		"outlet_id":      testOutletID,
		"payment_method": "CASH",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "OPEN_SESSION_REQUIRED", errBody["code"])
}

// Venta que excede el stock: 409 con el detalle del faltante.
func TestAPI_VentaConStockInsuficiente(t *testing.T) {
	app := buildAPI()

	_, product := doJSON(t, app, http.MethodPost, "/api/products/", map[string]any{
		"name":  "Azúcar 1kg",
		"sku":   "AZU-1000",
		"price": "3000",
	})
	productID := product["id"].(string)

	doJSON(t, app, http.MethodPost, "/api/inventory/movements", map[string]any{
		"outlet_id":  testOutletID,
		"product_id": productID,
		"type":       "IN",
		"quantity":   1,
	})
	doJSON(t, app, http.MethodPost, "/api/register/sessions/", map[string]any{
		"outlet_id":     testOutletID,
		"opening_float": "0",
	})

	resp, body := doJSON(t, app, http.MethodPost, "/api/pos/sales", map[string]any{
		"outlet_id":      testOutletID,
		"payment_method": "CASH",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 3},
		},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, float64(3), body["requested"])
	assert.Equal(t, float64(1), body["available"])
}

// Las rutas del POS exigen token.
func TestAPI_SinTokenRetorna401(t *testing.T) {
	app := buildAPI()
	req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
