package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *Store
	j *journal
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; exists {
		return domain.ErrDuplicate
	}
	if p.InternalCode != "" && r.internalCodeTaken(p.InternalCode, p.ID) {
		return domain.ErrDuplicate
	}
	r.s.products[p.ID] = cloneProduct(p)
	id := p.ID
	r.j.push(func() { delete(r.s.products, id) })
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p, ok := r.s.products[id]; ok {
		return cloneProduct(p), nil
	}
	return nil, nil
}

// List ordenado por código y luego por ID para que el resultado sea estable.
func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.OnlyIncomplete && p.DataComplete {
			continue
		}
		if f.SupplierID != "" && p.SupplierID != f.SupplierID {
			continue
		}
		result = append(result, cloneProduct(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Code() != result[j].Code() {
			return result[i].Code() < result[j].Code()
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Update actualiza los datos de catálogo. UnitCost y CreatedAt se conservan; el costo solo cambia por UpdateCost.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrUnknownProduct
	}
	if p.InternalCode != "" && r.internalCodeTaken(p.InternalCode, p.ID) {
		return domain.ErrDuplicate
	}
	next := cloneProduct(p)
	next.UnitCost = prev.UnitCost
	next.CreatedAt = prev.CreatedAt
	r.s.products[p.ID] = next
	r.j.push(func() { r.s.products[prev.ID] = prev })
	return nil
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.products[productID]
	if !ok {
		return domain.ErrUnknownProduct
	}
	next := cloneProduct(prev)
	next.UnitCost = cost
	next.UpdatedAt = time.Now().UTC()
	r.s.products[productID] = next
	r.j.push(func() { r.s.products[productID] = prev })
	return nil
}

func (r *ProductRepo) internalCodeTaken(code, exceptID string) bool {
	for id, other := range r.s.products {
		if id != exceptID && strings.EqualFold(other.InternalCode, code) {
			return true
		}
	}
	return false
}
