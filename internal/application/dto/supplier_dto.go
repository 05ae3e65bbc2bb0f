package dto

import "time"

// CreateSupplierRequest entrada para registrar un proveedor.
type CreateSupplierRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=200"`
	TradeName    string   `json:"trade_name" validate:"max=200"`
	TaxID        string   `json:"tax_id" validate:"omitempty,min=8,max=20"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone" validate:"max=30"`
	ContactName  string   `json:"contact_name" validate:"max=120"`
	ProductTypes []string `json:"product_types" validate:"dive,oneof=A B"`
	Notes        string   `json:"notes" validate:"max=500"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TradeName    string    `json:"trade_name,omitempty"`
	TaxID        string    `json:"tax_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	ContactName  string    `json:"contact_name,omitempty"`
	ProductTypes []string  `json:"product_types"`
	Active       bool      `json:"active"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
