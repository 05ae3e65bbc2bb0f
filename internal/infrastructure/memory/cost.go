package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.CostHistoryRepository = (*CostHistoryRepo)(nil)
	_ repository.CodeMappingRepository = (*CodeMappingRepo)(nil)
)

// CostHistoryRepo historial de costos, solo inserción.
type CostHistoryRepo struct {
	s *Store
	j *journal
}

func (r *CostHistoryRepo) Create(_ context.Context, h *entity.CostHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *h
	r.s.costs = append(r.s.costs, &cp)
	r.j.push(func() { r.s.costs = r.s.costs[:len(r.s.costs)-1] })
	return nil
}

func (r *CostHistoryRepo) ListByProduct(_ context.Context, productID string) ([]*entity.CostHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*entity.CostHistory, 0)
	for _, h := range r.s.costs {
		if h.ProductID == productID {
			cp := *h
			result = append(result, &cp)
		}
	}
	return result, nil
}

// CodeMappingRepo mapeo (proveedor, código de proveedor) -> producto.
type CodeMappingRepo struct {
	s *Store
}

func (r *CodeMappingRepo) Find(_ context.Context, supplierID, supplierCode string) (*entity.CodeMapping, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if m, ok := r.s.mappings[normKey(supplierID, supplierCode)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

// Save inserta o reemplaza el mapeo.
func (r *CodeMappingRepo) Save(_ context.Context, m *entity.CodeMapping) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *m
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.s.mappings[normKey(m.SupplierID, m.SupplierCode)] = &cp
	return nil
}
