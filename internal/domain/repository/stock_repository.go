package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// StockRepository puerto para consultar/actualizar el saldo por producto.
// Get devuelve un saldo en cero si el producto aún no tiene fila.
// Solo el Ledger debe invocar Upsert, siempre bajo el bloqueo del producto.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	List(ctx context.Context) ([]*entity.StockBalance, error)
}
