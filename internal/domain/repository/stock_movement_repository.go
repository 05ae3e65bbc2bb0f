package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	ProductID string
	OrderID   string
	InvoiceID string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// StockMovementRepository libro de movimientos (solo inserción).
// Create devuelve domain.ErrDuplicate si el ID (clave de idempotencia) ya existe.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
