package entity

import "time"

// CodeMapping asocia el código de un proveedor con un producto del catálogo.
// Se usa como tercera estrategia de la conciliación de facturas.
type CodeMapping struct {
	SupplierID   string
	SupplierCode string
	ProductID    string
	CreatedAt    time.Time
}
