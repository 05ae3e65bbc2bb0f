package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el saldo de un producto; en cero si aún no tiene fila.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, `
		SELECT product_id, on_hand, reserved, updated_at, updated_by
		FROM stock_balances WHERE product_id = $1`, productID,
	).Scan(&b.ProductID, &b.OnHand, &b.Reserved, &b.UpdatedAt, &b.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewStockBalance(productID), nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &b, nil
}

// Upsert inserta o reemplaza el saldo. Los CHECK de la tabla rechazan saldos incoherentes.
func (r *StockRepo) Upsert(ctx context.Context, b *entity.StockBalance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, on_hand, reserved, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, reserved = EXCLUDED.reserved,
			updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`,
		b.ProductID, b.OnHand, b.Reserved, b.UpdatedAt, b.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (r *StockRepo) List(ctx context.Context) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, on_hand, reserved, updated_at, updated_by
		FROM stock_balances ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockBalance, 0)
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.OnHand, &b.Reserved, &b.UpdatedAt, &b.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
