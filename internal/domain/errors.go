package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrValidation              = errors.New("entrada inválida")
	ErrInvalidQuantity         = fmt.Errorf("%w: la cantidad debe ser mayor que cero", ErrValidation)
	ErrUnknownProduct          = fmt.Errorf("%w: producto", ErrNotFound)
	ErrUnknownOrder            = fmt.Errorf("%w: pedido", ErrNotFound)
	ErrUnknownInvoice          = fmt.Errorf("%w: factura", ErrNotFound)
	ErrUnknownSupplier         = fmt.Errorf("%w: proveedor", ErrNotFound)
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrDuplicateInvoice        = errors.New("la factura ya fue registrada para este proveedor")
	ErrAlreadyProcessed        = errors.New("la factura ya fue procesada")
	ErrInvoiceCancelled        = errors.New("la factura está anulada")
	ErrInvalidTransition       = errors.New("transición de estado no permitida")
	ErrLockTimeout             = errors.New("tiempo de espera agotado al adquirir el bloqueo")
	ErrReconciliationAmbiguous = errors.New("ninguna estrategia superó el umbral de coincidencia")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
)

// ValidationError describe un campo de entrada inválido. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "entrada inválida: " + e.Reason
	}
	return fmt.Sprintf("entrada inválida: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
