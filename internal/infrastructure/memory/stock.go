package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

// StockRepo saldos por producto.
type StockRepo struct {
	s *Store
	j *journal
}

func (r *StockRepo) Get(_ context.Context, productID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if b, ok := r.s.balances[productID]; ok {
		cp := *b
		return &cp, nil
	}
	return entity.NewStockBalance(productID), nil
}

func (r *StockRepo) Upsert(_ context.Context, b *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, existed := r.s.balances[b.ProductID]
	cp := *b
	r.s.balances[b.ProductID] = &cp
	id := b.ProductID
	r.j.push(func() {
		if existed {
			r.s.balances[id] = prev
		} else {
			delete(r.s.balances, id)
		}
	})
	return nil
}

func (r *StockRepo) List(_ context.Context) ([]*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*entity.StockBalance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		cp := *b
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result, nil
}

// MovementRepo libro de movimientos, solo inserción.
type MovementRepo struct {
	s *Store
	j *journal
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.movementIdx[m.ID]; exists {
		return domain.ErrDuplicate
	}
	cp := *m
	r.s.movementIdx[m.ID] = len(r.s.movements)
	r.s.movements = append(r.s.movements, &cp)
	id := m.ID
	r.j.push(func() {
		r.s.movements = r.s.movements[:len(r.s.movements)-1]
		delete(r.s.movementIdx, id)
	})
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i, ok := r.s.movementIdx[id]; ok {
		cp := *r.s.movements[i]
		return &cp, nil
	}
	return nil, nil
}

// List en orden de inserción (cronológico).
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.OrderID != "" && m.OrderID != f.OrderID {
			continue
		}
		if f.InvoiceID != "" && m.InvoiceID != f.InvoiceID {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}
	return paginate(result, f.Limit, 0), nil
}
