package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemResponse línea de la factura con el producto resuelto.
type InvoiceItemResponse struct {
	Line          int             `json:"line"`
	SupplierCode  string          `json:"supplier_code"`
	Description   string          `json:"description"`
	TaxCode       string          `json:"tax_code,omitempty"`
	UnitMeasure   string          `json:"unit_measure"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitValue     decimal.Decimal `json:"unit_value"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ProductID     string          `json:"product_id,omitempty"`
	MatchStrategy string          `json:"match_strategy,omitempty"`
	MatchScore    float64         `json:"match_score,omitempty"`
}

// InvoiceResponse salida de una factura de proveedor.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	Series        string                `json:"series,omitempty"`
	SupplierID    string                `json:"supplier_id"`
	SupplierTaxID string                `json:"supplier_tax_id"`
	IssueDate     time.Time             `json:"issue_date"`
	EntryDate     time.Time             `json:"entry_date"`
	DeclaredTotal decimal.Decimal       `json:"declared_total"`
	Status        string                `json:"status"`
	ProcessedAt   *time.Time            `json:"processed_at,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
}

// ReviewItemDTO ítem que requiere revisión manual.
type ReviewItemDTO struct {
	Line        int     `json:"line"`
	Description string  `json:"description"`
	ProductID   string  `json:"product_id,omitempty"`
	Candidate   string  `json:"candidate_product_id,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Reason      string  `json:"reason"`
}

// ReconciliationResponse resultado de la ingesta de una factura.
type ReconciliationResponse struct {
	Invoice     InvoiceResponse  `json:"invoice"`
	Matched     int              `json:"matched"`
	Created     int              `json:"created"`
	Review      []ReviewItemDTO  `json:"review"`
	Failed      []LineOutcomeDTO `json:"failed,omitempty"`
	SupplierNew bool             `json:"supplier_created"`
	Processed   bool             `json:"processed"`
}
