package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

func cloneSupplier(sp *entity.Supplier) *entity.Supplier {
	cp := *sp
	cp.ProductTypes = append([]entity.ProductType(nil), sp.ProductTypes...)
	return &cp
}

func (r *SupplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.suppliers[sp.ID]; exists {
		return domain.ErrDuplicate
	}
	if sp.TaxID != "" {
		for _, other := range r.s.suppliers {
			if other.TaxID == sp.TaxID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.suppliers[sp.ID] = cloneSupplier(sp)
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if sp, ok := r.s.suppliers[id]; ok {
		return cloneSupplier(sp), nil
	}
	return nil, nil
}

func (r *SupplierRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if taxID == "" {
		return nil, nil
	}
	for _, sp := range r.s.suppliers {
		if sp.TaxID == taxID {
			return cloneSupplier(sp), nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) List(_ context.Context) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*entity.Supplier, 0, len(r.s.suppliers))
	for _, sp := range r.s.suppliers {
		result = append(result, cloneSupplier(sp))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
