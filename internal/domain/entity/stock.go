package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance proyección del saldo actual de un producto (una fila por producto).
// Invariantes: Reserved >= 0, OnHand >= Reserved, Available = OnHand - Reserved.
// Solo el Ledger puede modificarla.
type StockBalance struct {
	ProductID string
	OnHand    decimal.Decimal
	Reserved  decimal.Decimal
	UpdatedAt time.Time
	UpdatedBy string
}

// Available cantidad disponible derivada (en mano menos reservada).
func (b *StockBalance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// NewStockBalance saldo vacío para un producto sin movimientos.
func NewStockBalance(productID string) *StockBalance {
	return &StockBalance{ProductID: productID, OnHand: decimal.Zero, Reserved: decimal.Zero}
}
