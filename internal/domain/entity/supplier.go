package entity

import "time"

// Supplier proveedor de consumibles. TaxID es único cuando está presente.
type Supplier struct {
	ID           string
	Name         string // razón social
	TradeName    string // nombre comercial
	TaxID        string // CNPJ/CPF sin puntuación
	Email        string
	Phone        string
	ContactName  string
	ProductTypes []ProductType // tipos de producto que suministra
	Active       bool
	Notes        string // procedencia cuando se crea desde una factura
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
