package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders. Solicitante y sector salen del token.
type CreateOrderRequest struct {
	Type             string             `json:"type" validate:"omitempty,oneof=A B"`
	Sector           string             `json:"sector" validate:"max=80"`
	Items            []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryDeadline *time.Time         `json:"delivery_deadline"`
	Notes            string             `json:"notes" validate:"max=1000"`
}

// OrderItemRequest línea del pedido.
type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status           string     `json:"status" validate:"required"`
	Notes            string     `json:"notes" validate:"max=1000"`
	DeliveryDeadline *time.Time `json:"delivery_deadline"`
}

// CancelOrderRequest body para POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// OrderItemResponse línea del pedido en la respuesta.
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ReservedQty decimal.Decimal `json:"reserved_qty"`
	Delivered   bool            `json:"delivered"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID                 string              `json:"id"`
	Number             string              `json:"number"`
	Type               string              `json:"type,omitempty"`
	RequesterID        string              `json:"requester_id"`
	Sector             string              `json:"sector,omitempty"`
	Items              []OrderItemResponse `json:"items"`
	TotalValue         decimal.Decimal     `json:"total_value"`
	Status             string              `json:"status"`
	StockReservationOK bool                `json:"stock_reservation_ok"`
	RequestedAt        time.Time           `json:"requested_at"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	FinalizedAt        *time.Time          `json:"finalized_at,omitempty"`
	StatusChangedAt    time.Time           `json:"status_changed_at"`
	DeliveryDeadline   *time.Time          `json:"delivery_deadline,omitempty"`
	Notes              string              `json:"notes,omitempty"`
}

// LineOutcomeDTO resultado por línea de una operación de stock sobre el pedido.
type LineOutcomeDTO struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	OK        bool            `json:"ok"`
	Error     string          `json:"error,omitempty"`
}

// OrderOperationResponse pedido más el detalle de éxito parcial de las líneas.
type OrderOperationResponse struct {
	Order    OrderResponse    `json:"order"`
	Lines    []LineOutcomeDTO `json:"lines,omitempty"`
	Complete bool             `json:"complete"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
