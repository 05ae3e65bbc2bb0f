package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostHistory registro de cada recálculo del costo promedio ponderado (solo inserción).
type CostHistory struct {
	ID           string
	ProductID    string
	SupplierID   string
	InvoiceID    string
	PreviousCost decimal.Decimal
	NewCost      decimal.Decimal
	Quantity     decimal.Decimal
	IncomingCost decimal.Decimal
	VariancePct  decimal.Decimal // (nuevo - anterior) / anterior * 100; cero si el anterior es cero
	Actor        string
	CreatedAt    time.Time
}
