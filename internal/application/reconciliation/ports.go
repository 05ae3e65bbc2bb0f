package reconciliation

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// Document factura ya parseada, independiente del formato de origen.
type Document struct {
	Number            string
	Series            string
	SupplierTaxID     string
	SupplierName      string
	SupplierTradeName string
	SupplierEmail     string
	SupplierPhone     string
	IssueDate         time.Time
	DeclaredTotal     decimal.Decimal
	Items             []DocumentItem
}

// DocumentItem línea de la factura tal como la declara el proveedor.
type DocumentItem struct {
	Line         int
	SupplierCode string
	Description  string
	TaxCode      string
	UnitMeasure  string
	Quantity     decimal.Decimal
	UnitValue    decimal.Decimal
	TotalValue   decimal.Decimal
}

// DocumentParser convierte el archivo de la factura en un Document.
type DocumentParser interface {
	Parse(r io.Reader) (*Document, error)
}

// CostReceiver registra la entrada con recálculo de costo (inventory.CostEngine).
type CostReceiver interface {
	Receive(ctx context.Context, in inventory.ReceiveInput) (*inventory.ReceiveResult, error)
}
