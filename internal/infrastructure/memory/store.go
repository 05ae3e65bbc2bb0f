// Package memory almacén en memoria que implementa todos los repositorios del dominio.
// Se usa con STORE_DRIVER=memory y en las pruebas. Devuelve siempre copias.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store tablas en memoria protegidas por un RWMutex.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products    map[string]*entity.Product
	suppliers   map[string]*entity.Supplier
	balances    map[string]*entity.StockBalance
	movements   []*entity.StockMovement
	movementIdx map[string]int
	orders      map[string]*entity.Order
	invoices    map[string]*entity.Invoice
	costs       []*entity.CostHistory
	mappings    map[string]*entity.CodeMapping
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		products:    make(map[string]*entity.Product),
		suppliers:   make(map[string]*entity.Supplier),
		balances:    make(map[string]*entity.StockBalance),
		movements:   make([]*entity.StockMovement, 0),
		movementIdx: make(map[string]int),
		orders:      make(map[string]*entity.Order),
		invoices:    make(map[string]*entity.Invoice),
		costs:       make([]*entity.CostHistory, 0),
		mappings:    make(map[string]*entity.CodeMapping),
	}
}

// Repositorios fuera de transacción.
func (s *Store) Products() *ProductRepo         { return &ProductRepo{s: s} }
func (s *Store) Suppliers() *SupplierRepo       { return &SupplierRepo{s: s} }
func (s *Store) Stock() *StockRepo              { return &StockRepo{s: s} }
func (s *Store) Movements() *MovementRepo       { return &MovementRepo{s: s} }
func (s *Store) Orders() *OrderRepo             { return &OrderRepo{s: s} }
func (s *Store) Invoices() *InvoiceRepo         { return &InvoiceRepo{s: s} }
func (s *Store) CostHistory() *CostHistoryRepo  { return &CostHistoryRepo{s: s} }
func (s *Store) CodeMappings() *CodeMappingRepo { return &CodeMappingRepo{s: s} }

// Run ejecuta fn con repositorios que registran cómo deshacer cada escritura.
// Si fn falla se revierten en orden inverso. Las transacciones se serializan entre sí.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	j := &journal{}
	repos := inventory.TxRepos{
		Stock:     &StockRepo{s: s, j: j},
		Movements: &MovementRepo{s: s, j: j},
		Products:  &ProductRepo{s: s, j: j},
		Costs:     &CostHistoryRepo{s: s, j: j},
	}
	if err := fn(repos); err != nil {
		s.mu.Lock()
		j.rollback()
		s.mu.Unlock()
		return err
	}
	return nil
}

// journal acciones para deshacer; nil fuera de transacción.
type journal struct {
	undo []func()
}

func (j *journal) push(fn func()) {
	if j == nil {
		return
	}
	j.undo = append(j.undo, fn)
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func normKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}
