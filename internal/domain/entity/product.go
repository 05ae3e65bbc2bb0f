package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType categoría del consumible.
type ProductType string

const (
	ProductTypeA ProductType = "A"
	ProductTypeB ProductType = "B"
)

// Valid indica si el tipo es uno de los conocidos. Vacío se permite en productos pendientes de curaduría.
func (t ProductType) Valid() bool {
	return t == ProductTypeA || t == ProductTypeB
}

// Product representa un consumible del catálogo.
// UnitCost es promedio ponderado y solo lo modifica el motor de costo; nunca se borra físicamente (Active=false).
// DataComplete=false marca productos creados automáticamente por la conciliación de facturas.
type Product struct {
	ID                  string
	SupplierID          string // referencia débil al proveedor
	SupplierCode        string // código del ítem en la factura del proveedor
	SupplierDescription string
	InternalCode        string // vacío hasta completar la curaduría
	InternalDescription string
	Type                ProductType
	UnitMeasure         string
	TaxCode             string // clasificación fiscal (NCM)
	UnitCost            decimal.Decimal
	MinStock            decimal.Decimal
	ReorderPoint        decimal.Decimal
	Active              bool
	DataComplete        bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DisplayName devuelve la descripción interna si existe, si no la del proveedor.
func (p *Product) DisplayName() string {
	if p.InternalDescription != "" {
		return p.InternalDescription
	}
	return p.SupplierDescription
}

// Code devuelve el código interno si existe, si no el del proveedor.
func (p *Product) Code() string {
	if p.InternalCode != "" {
		return p.InternalCode
	}
	return p.SupplierCode
}
