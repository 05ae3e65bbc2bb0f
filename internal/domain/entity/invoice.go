package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de procesamiento de una factura de proveedor.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceProcessed InvoiceStatus = "PROCESSED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// Estrategias con las que se resolvió una línea de factura.
const (
	MatchInternalCode = "internal_code"
	MatchSupplierCode = "supplier_code"
	MatchCodeMapping  = "code_mapping"
	MatchDescription  = "description"
	MatchCreated      = "created"
)

// InvoiceItem línea de la factura (propiedad de la factura).
type InvoiceItem struct {
	Line          int
	SupplierCode  string
	Description   string
	TaxCode       string // NCM
	UnitMeasure   string
	Quantity      decimal.Decimal
	UnitValue     decimal.Decimal
	TotalValue    decimal.Decimal
	ProductID     string // se completa al conciliar
	MatchStrategy string
	MatchScore    decimal.Decimal
}

// Invoice factura de proveedor ingresada. (Number, SupplierTaxID) es único.
type Invoice struct {
	ID            string
	Number        string
	Series        string
	SupplierID    string
	SupplierTaxID string
	IssueDate     time.Time
	EntryDate     time.Time
	DeclaredTotal decimal.Decimal
	Items         []InvoiceItem
	Status        InvoiceStatus
	ProcessedAt   *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
