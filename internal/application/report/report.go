// Package report exporta instantáneas de solo lectura (saldos, movimientos, pedidos, facturas y
// catálogo) en CSV o XLSX. Números con decimales fijos y fechas en UTC con formato fijo.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/domain/schema"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DateLayout formato de fecha de todas las exportaciones.
const DateLayout = "2006-01-02 15:04:05"

// Kind instantánea exportable.
type Kind string

const (
	Balances  Kind = "balances"
	Movements Kind = "movements"
	Orders    Kind = "orders"
	Invoices  Kind = "invoices"
	Products  Kind = "products"
)

// Format formato de salida.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ContentType tipo MIME del formato.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseKind valida el nombre del reporte.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Balances, Movements, Orders, Invoices, Products:
		return k, nil
	}
	return "", domain.Invalid("report", "desconocido "+s)
}

// ParseFormat valida el formato; vacío equivale a CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return f, nil
	}
	return "", domain.Invalid("format", "debe ser csv o xlsx")
}

// Service lee los repositorios y arma las filas según el esquema de cada tabla.
type Service struct {
	products  repository.ProductRepository
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	orders    repository.OrderRepository
	invoices  repository.InvoiceRepository
}

// NewService construye el servicio de reportes.
func NewService(
	products repository.ProductRepository,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	orders repository.OrderRepository,
	invoices repository.InvoiceRepository,
) *Service {
	return &Service{products: products, stock: stock, movements: movements, orders: orders, invoices: invoices}
}

// Export escribe el reporte en w.
func (s *Service) Export(ctx context.Context, w io.Writer, kind Kind, format Format) error {
	table, rows, err := s.Rows(ctx, kind)
	if err != nil {
		return err
	}
	if format == XLSX {
		return WriteXLSX(w, table, rows)
	}
	return WriteCSV(w, table, rows)
}

// Rows arma las filas del reporte en orden estable.
func (s *Service) Rows(ctx context.Context, kind Kind) (schema.Table, [][]string, error) {
	switch kind {
	case Balances:
		rows, err := s.balanceRows(ctx)
		return schema.Balances, rows, err
	case Movements:
		rows, err := s.movementRows(ctx)
		return schema.Movements, rows, err
	case Orders:
		rows, err := s.orderRows(ctx)
		return schema.Orders, rows, err
	case Invoices:
		rows, err := s.invoiceRows(ctx)
		return schema.Invoices, rows, err
	case Products:
		rows, err := s.productRows(ctx)
		return schema.Products, rows, err
	}
	return schema.Table{}, nil, domain.Invalid("report", "desconocido "+string(kind))
}

func (s *Service) balanceRows(ctx context.Context) ([][]string, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	balances, err := s.stock.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.StockBalance, len(balances))
	for _, b := range balances {
		byID[b.ProductID] = b
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		b, ok := byID[p.ID]
		if !ok {
			b = entity.NewStockBalance(p.ID)
		}
		rows = append(rows, schema.Balances.Row().
			Set("id", p.ID).
			Set("product_code", p.Code()).
			Set("description", p.DisplayName()).
			Set("on_hand", qty(b.OnHand)).
			Set("reserved", qty(b.Reserved)).
			Set("available", qty(b.Available())).
			Set("updated_at", date(b.UpdatedAt)).
			Set("updated_by", b.UpdatedBy).
			Cells())
	}
	return rows, nil
}

func (s *Service) movementRows(ctx context.Context) ([][]string, error) {
	list, err := s.movements.List(ctx, repository.MovementFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		kind := string(m.Kind)
		if m.Kind == entity.MovementAdjust && m.Decrease {
			kind += "-"
		}
		unitCost := ""
		if m.UnitCost != nil {
			unitCost = cost(*m.UnitCost)
		}
		rows = append(rows, schema.Movements.Row().
			Set("id", m.ID).
			Set("created_at", date(m.CreatedAt)).
			Set("kind", kind).
			Set("product_id", m.ProductID).
			Set("quantity", qty(m.Quantity)).
			Set("balance_before", qty(m.BalanceBefore)).
			Set("balance_after", qty(m.BalanceAfter)).
			Set("actor", m.Actor).
			Set("note", m.Note).
			Set("order_id", m.OrderID).
			Set("invoice_id", m.InvoiceID).
			Set("unit_cost", unitCost).
			Cells())
	}
	return rows, nil
}

func (s *Service) orderRows(ctx context.Context) ([][]string, error) {
	list, err := s.orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	rows := make([][]string, 0, len(list))
	for _, o := range list {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, it.ProductCode+"="+qty(it.Quantity))
		}
		rows = append(rows, schema.Orders.Row().
			Set("id", o.ID).
			Set("number", o.Number).
			Set("type", o.Type).
			Set("requester_id", o.RequesterID).
			Set("sector", o.Sector).
			Set("items", strings.Join(items, ";")).
			Set("total_value", qty(o.TotalValue)).
			Set("status", string(o.Status)).
			Set("stock_reservation_ok", strconv.FormatBool(o.StockReservationOK)).
			Set("requested_at", date(o.RequestedAt)).
			Set("approved_at", datePtr(o.ApprovedAt)).
			Set("finalized_at", datePtr(o.FinalizedAt)).
			Set("delivery_deadline", datePtr(o.DeliveryDeadline)).
			Set("notes", o.Notes).
			Cells())
	}
	return rows, nil
}

func (s *Service) invoiceRows(ctx context.Context) ([][]string, error) {
	list, err := s.invoices.List(ctx, repository.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].EntryDate.Equal(list[j].EntryDate) {
			return list[i].EntryDate.Before(list[j].EntryDate)
		}
		return list[i].ID < list[j].ID
	})
	rows := make([][]string, 0, len(list))
	for _, inv := range list {
		items := make([]string, 0, len(inv.Items))
		for _, it := range inv.Items {
			items = append(items, fmt.Sprintf("%d:%s=%s@%s", it.Line, it.SupplierCode, qty(it.Quantity), cost(it.UnitValue)))
		}
		rows = append(rows, schema.Invoices.Row().
			Set("id", inv.ID).
			Set("number", inv.Number).
			Set("series", inv.Series).
			Set("supplier_id", inv.SupplierID).
			Set("supplier_tax_id", inv.SupplierTaxID).
			Set("issue_date", date(inv.IssueDate)).
			Set("entry_date", date(inv.EntryDate)).
			Set("declared_total", qty(inv.DeclaredTotal)).
			Set("items", strings.Join(items, ";")).
			Set("status", string(inv.Status)).
			Set("processed_at", datePtr(inv.ProcessedAt)).
			Cells())
	}
	return rows, nil
}

func (s *Service) productRows(ctx context.Context) ([][]string, error) {
	list, err := s.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, schema.Products.Row().
			Set("id", p.ID).
			Set("supplier_id", p.SupplierID).
			Set("supplier_code", p.SupplierCode).
			Set("supplier_description", p.SupplierDescription).
			Set("internal_code", p.InternalCode).
			Set("internal_description", p.InternalDescription).
			Set("type", string(p.Type)).
			Set("unit_measure", p.UnitMeasure).
			Set("tax_code", p.TaxCode).
			Set("unit_cost", cost(p.UnitCost)).
			Set("min_stock", qty(p.MinStock)).
			Set("reorder_point", qty(p.ReorderPoint)).
			Set("active", strconv.FormatBool(p.Active)).
			Set("data_complete", strconv.FormatBool(p.DataComplete)).
			Set("created_at", date(p.CreatedAt)).
			Set("updated_at", date(p.UpdatedAt)).
			Cells())
	}
	return rows, nil
}

// WriteCSV encabezado del esquema más las filas.
func WriteCSV(w io.Writer, table schema.Table, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("exportar %s: %w", table.Name, err)
	}
	return nil
}

// WriteXLSX una hoja con el nombre de la tabla; todas las celdas como texto.
func WriteXLSX(w io.Writer, table schema.Table, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeXLSXRow(f, sheet, 1, table.Header()); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeXLSXRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("exportar %s: %w", table.Name, err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, sheet string, rowNo int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func qty(d decimal.Decimal) string  { return d.StringFixed(2) }
func cost(d decimal.Decimal) string { return d.StringFixed(4) }

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func datePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date(*t)
}
