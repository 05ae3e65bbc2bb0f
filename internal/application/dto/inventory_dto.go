package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest body para POST /api/stock/in y /api/stock/out.
type StockMovementRequest struct {
	ProductID      string           `json:"product_id" validate:"required"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Note           string           `json:"note" validate:"max=500"`
	IdempotencyKey string           `json:"idempotency_key,omitempty" validate:"max=120"`
}

// StockAdjustRequest body para POST /api/stock/adjust (conteo físico).
type StockAdjustRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	NewOnHand      decimal.Decimal `json:"new_on_hand"`
	Note           string          `json:"note" validate:"required,max=500"`
	IdempotencyKey string          `json:"idempotency_key,omitempty" validate:"max=120"`
}

// StockBalanceResponse saldo de un producto.
type StockBalanceResponse struct {
	ProductID string          `json:"product_id"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by"`
}

// StockMovementResponse movimiento del libro de stock.
type StockMovementResponse struct {
	ID            string           `json:"id"`
	Kind          string           `json:"kind"`
	ProductID     string           `json:"product_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Decrease      bool             `json:"decrease,omitempty"`
	BalanceBefore decimal.Decimal  `json:"balance_before"`
	BalanceAfter  decimal.Decimal  `json:"balance_after"`
	Actor         string           `json:"actor"`
	Note          string           `json:"note,omitempty"`
	OrderID       string           `json:"order_id,omitempty"`
	InvoiceID     string           `json:"invoice_id,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ReplenishmentSuggestionDTO representa una alerta de stock bajo con la sugerencia de reposición.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	Code               string          `json:"code"`
	ProductName        string          `json:"product_name"`
	Available          decimal.Decimal `json:"available"`
	Reserved           decimal.Decimal `json:"reserved"`
	MinStock           decimal.Decimal `json:"min_stock"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - Available
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	BelowMinimum       bool            `json:"below_minimum"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
