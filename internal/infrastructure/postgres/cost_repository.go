package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.CostHistoryRepository = (*CostHistoryRepo)(nil)
	_ repository.CodeMappingRepository = (*CodeMappingRepo)(nil)
)

// CostHistoryRepo historial de costos (solo inserción).
type CostHistoryRepo struct {
	q Querier
}

// NewCostHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostHistoryRepository(q Querier) *CostHistoryRepo {
	return &CostHistoryRepo{q: q}
}

func (r *CostHistoryRepo) Create(ctx context.Context, h *entity.CostHistory) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cost_history (id, product_id, supplier_id, invoice_id, previous_cost, new_cost, quantity,
			incoming_cost, variance_pct, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		h.ID, h.ProductID, h.SupplierID, h.InvoiceID, h.PreviousCost, h.NewCost, h.Quantity,
		h.IncomingCost, h.VariancePct, h.Actor, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cost history: %w", err)
	}
	return nil
}

func (r *CostHistoryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.CostHistory, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, supplier_id, invoice_id, previous_cost, new_cost, quantity,
			incoming_cost, variance_pct, actor, created_at
		FROM cost_history WHERE product_id = $1 ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list cost history: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.CostHistory, 0)
	for rows.Next() {
		var h entity.CostHistory
		if err := rows.Scan(&h.ID, &h.ProductID, &h.SupplierID, &h.InvoiceID, &h.PreviousCost, &h.NewCost,
			&h.Quantity, &h.IncomingCost, &h.VariancePct, &h.Actor, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cost history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

// CodeMappingRepo mapeo (proveedor, código) -> producto. El código se guarda en mayúsculas.
type CodeMappingRepo struct {
	q Querier
}

// NewCodeMappingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCodeMappingRepository(q Querier) *CodeMappingRepo {
	return &CodeMappingRepo{q: q}
}

func (r *CodeMappingRepo) Find(ctx context.Context, supplierID, supplierCode string) (*entity.CodeMapping, error) {
	var m entity.CodeMapping
	err := r.q.QueryRow(ctx, `
		SELECT supplier_id, supplier_code, product_id, created_at
		FROM code_mappings WHERE supplier_id = $1 AND supplier_code = upper(trim($2))`, supplierID, supplierCode,
	).Scan(&m.SupplierID, &m.SupplierCode, &m.ProductID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get code mapping: %w", err)
	}
	return &m, nil
}

func (r *CodeMappingRepo) Save(ctx context.Context, m *entity.CodeMapping) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO code_mappings (supplier_id, supplier_code, product_id, created_at)
		VALUES ($1, upper(trim($2)), $3, COALESCE($4, now()))
		ON CONFLICT (supplier_id, supplier_code) DO UPDATE SET product_id = EXCLUDED.product_id`,
		m.SupplierID, m.SupplierCode, m.ProductID, nullTime(m),
	)
	if err != nil {
		return fmt.Errorf("save code mapping: %w", err)
	}
	return nil
}

func nullTime(m *entity.CodeMapping) any {
	if m.CreatedAt.IsZero() {
		return nil
	}
	return m.CreatedAt
}
