package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := inventory.TxRepos{
		Stock:     NewStockRepository(tx),
		Movements: NewMovementRepository(tx),
		Products:  NewProductRepository(tx),
		Costs:     NewCostHistoryRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories repositorios fuera de transacción sobre el pool.
type Repositories struct {
	Products     *ProductRepo
	Suppliers    *SupplierRepo
	Stock        *StockRepo
	Movements    *MovementRepo
	Orders       *OrderRepo
	Invoices     *InvoiceRepo
	CostHistory  *CostHistoryRepo
	CodeMappings *CodeMappingRepo
}

// NewRepositories arma todos los adaptadores sobre el mismo pool.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Products:     NewProductRepository(pool),
		Suppliers:    NewSupplierRepository(pool),
		Stock:        NewStockRepository(pool),
		Movements:    NewMovementRepository(pool),
		Orders:       NewOrderRepository(pool),
		Invoices:     NewInvoiceRepository(pool),
		CostHistory:  NewCostHistoryRepository(pool),
		CodeMappings: NewCodeMappingRepository(pool),
	}
}
