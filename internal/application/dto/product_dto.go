package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto manualmente. UnitCost inicia en 0.
type CreateProductRequest struct {
	SupplierID          string          `json:"supplier_id"`
	SupplierCode        string          `json:"supplier_code" validate:"max=60"`
	SupplierDescription string          `json:"supplier_description" validate:"max=300"`
	InternalCode        string          `json:"internal_code" validate:"required,max=60"`
	InternalDescription string          `json:"internal_description" validate:"required,min=1,max=300"`
	Type                string          `json:"type" validate:"required,oneof=A B"`
	UnitMeasure         string          `json:"unit_measure" validate:"required,max=10"`
	TaxCode             string          `json:"tax_code" validate:"max=10"`
	MinStock            decimal.Decimal `json:"min_stock"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
}

// CompleteProductRequest curaduría de un producto creado por la conciliación.
type CompleteProductRequest struct {
	InternalCode        string          `json:"internal_code" validate:"required,max=60"`
	InternalDescription string          `json:"internal_description" validate:"required,min=1,max=300"`
	Type                string          `json:"type" validate:"required,oneof=A B"`
	UnitMeasure         *string         `json:"unit_measure" validate:"omitempty,max=10"`
	MinStock            decimal.Decimal `json:"min_stock"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                  string          `json:"id"`
	SupplierID          string          `json:"supplier_id,omitempty"`
	SupplierCode        string          `json:"supplier_code,omitempty"`
	SupplierDescription string          `json:"supplier_description,omitempty"`
	InternalCode        string          `json:"internal_code,omitempty"`
	InternalDescription string          `json:"internal_description,omitempty"`
	Type                string          `json:"type,omitempty"`
	UnitMeasure         string          `json:"unit_measure"`
	TaxCode             string          `json:"tax_code,omitempty"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	MinStock            decimal.Decimal `json:"min_stock"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
	Active              bool            `json:"active"`
	DataComplete        bool            `json:"data_complete"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
