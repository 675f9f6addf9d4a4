package dto

// RegisterMovementRequest body para POST /api/inventory/movements
// (recepciones, ajustes y traslados; las salidas por venta entran por el POS).
type RegisterMovementRequest struct {
	OutletID     string `json:"outlet_id" validate:"required"`
	ToOutletID   string `json:"to_outlet_id,omitempty"`
	ProductID    string `json:"product_id" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=IN ADJUSTMENT TRANSFER"`
	Quantity     int64  `json:"quantity"`
	Reference    string `json:"reference,omitempty"`
}

// StockResponse stock actual de un producto en un punto de venta.
type StockResponse struct {
	OutletID  string `json:"outlet_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// MovementResponse fila del libro de inventario en listados.
type MovementResponse struct {
	ID            string `json:"id"`
	OutletID      string `json:"outlet_id"`
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Type          string `json:"type"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	Status        string `json:"status"`
	Date          string `json:"date"`
}

// ReconcileResponse resultado de reconciliar el contador materializado
// contra la suma del libro de movimientos.
type ReconcileResponse struct {
	OutletID   string `json:"outlet_id"`
	ProductID  string `json:"product_id"`
	LedgerSum  int64  `json:"ledger_sum"`
	Counter    int64  `json:"counter"`
	Drift      int64  `json:"drift"`
	Consistent bool   `json:"consistent"`
}
