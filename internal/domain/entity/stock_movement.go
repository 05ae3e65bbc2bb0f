package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del libro de stock.
type MovementKind string

const (
	MovementIn      MovementKind = "IN"      // entrada física
	MovementOut     MovementKind = "OUT"     // salida física
	MovementAdjust  MovementKind = "ADJUST"  // ajuste por conteo
	MovementReserve MovementKind = "RESERVE" // reserva para un pedido
	MovementRelease MovementKind = "RELEASE" // liberación de reserva
)

// StockMovement registro inmutable de auditoría. Quantity siempre es positiva; el signo lo da Kind.
// BalanceBefore/BalanceAfter son la cantidad en mano para IN/OUT/ADJUST y la disponible para RESERVE/RELEASE.
// ADJUST con salida neta se marca con Decrease=true.
type StockMovement struct {
	ID            string // también es la clave de idempotencia
	Kind          MovementKind
	ProductID     string
	Quantity      decimal.Decimal
	Decrease      bool
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Actor         string
	Note          string
	OrderID       string
	InvoiceID     string
	UnitCost      *decimal.Decimal
	CreatedAt     time.Time
}
