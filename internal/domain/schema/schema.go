// Package schema define el mapeo estático nombre -> índice de columna de cada tabla lógica.
// La primera columna siempre es la clave generada. Se valida al arrancar la aplicación.
package schema

import (
	"fmt"
	"sort"
)

// Table describe una tabla lógica en una versión de esquema.
type Table struct {
	Name    string
	Version int
	Columns map[string]int
}

// Validate verifica que la clave esté en la columna 0, que los índices sean contiguos y no se repitan.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("schema: tabla sin nombre")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("schema %s: sin columnas", t.Name)
	}
	seen := make(map[int]string, len(t.Columns))
	for name, idx := range t.Columns {
		if idx < 0 || idx >= len(t.Columns) {
			return fmt.Errorf("schema %s v%d: columna %q con índice %d fuera de rango", t.Name, t.Version, name, idx)
		}
		if other, dup := seen[idx]; dup {
			return fmt.Errorf("schema %s v%d: índice %d repetido (%s, %s)", t.Name, t.Version, idx, other, name)
		}
		seen[idx] = name
	}
	if seen[0] != "id" {
		return fmt.Errorf("schema %s v%d: la columna 0 debe ser id", t.Name, t.Version)
	}
	return nil
}

// Header nombres de columna ordenados por índice.
func (t Table) Header() []string {
	names := make([]string, len(t.Columns))
	for name, idx := range t.Columns {
		names[idx] = name
	}
	return names
}

// Index devuelve el índice de una columna; entra en pánico si no existe (error de programación).
func (t Table) Index(name string) int {
	idx, ok := t.Columns[name]
	if !ok {
		panic(fmt.Sprintf("schema %s: columna desconocida %q", t.Name, name))
	}
	return idx
}

// Row construye una fila vacía con el ancho de la tabla.
func (t Table) Row() Row {
	return Row{table: t, cells: make([]string, len(t.Columns))}
}

// Row fila posicional tipada por su tabla.
type Row struct {
	table Table
	cells []string
}

// Set asigna una celda por nombre de columna.
func (r Row) Set(column, value string) Row {
	r.cells[r.table.Index(column)] = value
	return r
}

// Cells valores en orden de columna.
func (r Row) Cells() []string { return r.cells }

func columns(names ...string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}

// Tablas de la versión actual del esquema.
var (
	Products = Table{Name: "products", Version: 2, Columns: columns(
		"id", "supplier_id", "supplier_code", "supplier_description", "internal_code", "internal_description",
		"type", "unit_measure", "tax_code", "unit_cost", "min_stock", "reorder_point", "active", "data_complete",
		"created_at", "updated_at",
	)}
	Suppliers = Table{Name: "suppliers", Version: 1, Columns: columns(
		"id", "name", "trade_name", "tax_id", "email", "phone", "contact_name", "product_types", "active", "notes", "created_at",
	)}
	Balances = Table{Name: "stock_balances", Version: 1, Columns: columns(
		"id", "product_code", "description", "on_hand", "reserved", "available", "updated_at", "updated_by",
	)}
	Movements = Table{Name: "stock_movements", Version: 2, Columns: columns(
		"id", "created_at", "kind", "product_id", "quantity", "balance_before", "balance_after",
		"actor", "note", "order_id", "invoice_id", "unit_cost",
	)}
	Orders = Table{Name: "orders", Version: 1, Columns: columns(
		"id", "number", "type", "requester_id", "sector", "items", "total_value", "status",
		"stock_reservation_ok", "requested_at", "approved_at", "finalized_at", "delivery_deadline", "notes",
	)}
	Invoices = Table{Name: "invoices", Version: 1, Columns: columns(
		"id", "number", "series", "supplier_id", "supplier_tax_id", "issue_date", "entry_date",
		"declared_total", "items", "status", "processed_at",
	)}
	CostHistory = Table{Name: "cost_history", Version: 1, Columns: columns(
		"id", "created_at", "product_id", "new_cost", "quantity", "supplier_id", "invoice_id",
		"previous_cost", "variance_pct", "actor",
	)}
)

// All todas las tablas registradas, ordenadas por nombre.
func All() []Table {
	tables := []Table{Products, Suppliers, Balances, Movements, Orders, Invoices, CostHistory}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables
}

// ValidateAll valida todas las tablas; se invoca al arrancar.
func ValidateAll() error {
	for _, t := range All() {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
