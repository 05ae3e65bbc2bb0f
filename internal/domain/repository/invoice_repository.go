package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// InvoiceFilter filtros para listar facturas.
type InvoiceFilter struct {
	Status     entity.InvoiceStatus
	SupplierID string
	Limit      int
	Offset     int
}

// InvoiceRepository puerto de persistencia de facturas de proveedor.
// Create devuelve domain.ErrDuplicateInvoice si ya existe (Number, SupplierTaxID).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByNumberAndTaxID(ctx context.Context, number, supplierTaxID string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
}
