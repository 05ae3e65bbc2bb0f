package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido.
type OrderStatus string

const (
	OrderRequested        OrderStatus = "REQUESTED"
	OrderAnalysis         OrderStatus = "ANALYSIS"
	OrderApproved         OrderStatus = "APPROVED"
	OrderPurchasing       OrderStatus = "PURCHASING"
	OrderAwaitingDelivery OrderStatus = "AWAITING_DELIVERY"
	OrderFinalized        OrderStatus = "FINALIZED"
	OrderCancelled        OrderStatus = "CANCELLED"
)

// orderFlow camino lineal; Cancelled queda fuera.
var orderFlow = map[OrderStatus]int{
	OrderRequested:        0,
	OrderAnalysis:         1,
	OrderApproved:         2,
	OrderPurchasing:       3,
	OrderAwaitingDelivery: 4,
	OrderFinalized:        5,
}

// Rank posición en el camino lineal; -1 para Cancelled o desconocido.
func (s OrderStatus) Rank() int {
	if r, ok := orderFlow[s]; ok {
		return r
	}
	return -1
}

// Valid indica si el estado es conocido.
func (s OrderStatus) Valid() bool {
	return s == OrderCancelled || s.Rank() >= 0
}

// Terminal Finalized y Cancelled no admiten más transiciones.
func (s OrderStatus) Terminal() bool {
	return s == OrderFinalized || s == OrderCancelled
}

// OrderItem línea del pedido (propiedad del pedido).
// ReservedQty es lo que efectivamente se reservó en el libro al crear el pedido.
type OrderItem struct {
	ProductID   string
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	LineTotal   decimal.Decimal
	ReservedQty decimal.Decimal
	Delivered   bool // salida registrada en el libro al finalizar
}

// Order pedido de consumibles. Nunca se elimina; la cancelación es un estado terminal.
type Order struct {
	ID                 string
	Number             string // ORDyyyyMMdd-NNN
	Type               string
	RequesterID        string
	RequesterEmail     string
	Sector             string
	Items              []OrderItem
	TotalValue         decimal.Decimal
	Status             OrderStatus
	StockReservationOK bool
	RequestedAt        time.Time
	ApprovedAt         *time.Time
	FinalizedAt        *time.Time
	StatusChangedAt    time.Time
	DeliveryDeadline   *time.Time
	Notes              string
}
