package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas de proveedor en memoria.
type InvoiceRepo struct {
	s *Store
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &cp
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.invoices[inv.ID]; exists {
		return domain.ErrDuplicate
	}
	key := normKey(inv.Number, inv.SupplierTaxID)
	for _, other := range r.s.invoices {
		if normKey(other.Number, other.SupplierTaxID) == key {
			return domain.ErrDuplicateInvoice
		}
	}
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if inv, ok := r.s.invoices[id]; ok {
		return cloneInvoice(inv), nil
	}
	return nil, nil
}

func (r *InvoiceRepo) GetByNumberAndTaxID(_ context.Context, number, supplierTaxID string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	key := normKey(number, supplierTaxID)
	for _, inv := range r.s.invoices {
		if normKey(inv.Number, inv.SupplierTaxID) == key {
			return cloneInvoice(inv), nil
		}
	}
	return nil, nil
}

// List de la entrada más reciente a la más antigua.
func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*entity.Invoice, 0)
	for _, inv := range r.s.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.SupplierID != "" && inv.SupplierID != f.SupplierID {
			continue
		}
		result = append(result, cloneInvoice(inv))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].EntryDate.Equal(result[j].EntryDate) {
			return result[i].EntryDate.After(result[j].EntryDate)
		}
		return result[i].ID < result[j].ID
	})
	return paginate(result, f.Limit, f.Offset), nil
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrUnknownInvoice
	}
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}
