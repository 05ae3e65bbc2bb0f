package order

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// StockLedger operaciones del Ledger que usa el ciclo de vida del pedido.
type StockLedger interface {
	Reserve(ctx context.Context, in inventory.MovementInput) (*entity.StockMovement, error)
	Release(ctx context.Context, in inventory.MovementInput) (*entity.StockMovement, error)
	Commit(ctx context.Context, in inventory.MovementInput) (*inventory.CommitResult, error)
	RecordOut(ctx context.Context, in inventory.MovementInput) (*entity.StockMovement, error)
}

// Notifier avisa al solicitante de cambios en su pedido (best-effort).
type Notifier interface {
	OrderChanged(ctx context.Context, order *entity.Order) error
}

// PDFRenderer genera la hoja imprimible del pedido.
type PDFRenderer interface {
	RenderOrder(order *entity.Order) ([]byte, error)
}
