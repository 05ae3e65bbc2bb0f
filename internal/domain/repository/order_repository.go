package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// OrderFilter filtros para listar pedidos.
type OrderFilter struct {
	Status      entity.OrderStatus
	RequesterID string
	Sector      string
	Limit       int
	Offset      int
}

// OrderRepository puerto de persistencia de pedidos (los ítems van embebidos).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// NumbersWithPrefix devuelve los números de pedido que empiezan con prefix (ej. ORD20250115-).
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
