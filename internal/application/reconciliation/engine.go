// Package reconciliation ingesta de facturas de proveedor: resuelve proveedor y productos,
// y alimenta el Ledger a través del motor de costo.
package reconciliation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/matching"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config umbral de similitud y banda de revisión.
type Config struct {
	SimilarityThreshold float64
	ReviewBand          float64
	LockTimeout         time.Duration
}

// Engine motor de conciliación.
type Engine struct {
	invoices  repository.InvoiceRepository
	suppliers repository.SupplierRepository
	products  repository.ProductRepository
	mappings  repository.CodeMappingRepository
	costs     CostReceiver
	locks     inventory.LockManager
	parser    DocumentParser
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
}

// NewEngine construye el motor.
func NewEngine(
	invoices repository.InvoiceRepository,
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
	mappings repository.CodeMappingRepository,
	costs CostReceiver,
	locks inventory.LockManager,
	parser DocumentParser,
	cfg Config,
	log zerolog.Logger,
) *Engine {
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = matching.DefaultThreshold
	}
	return &Engine{
		invoices:  invoices,
		suppliers: suppliers,
		products:  products,
		mappings:  mappings,
		costs:     costs,
		locks:     locks,
		parser:    parser,
		cfg:       cfg,
		log:       log.With().Str("component", "reconciliation").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ReviewItem línea que requiere revisión manual.
type ReviewItem struct {
	Line        int
	Description string
	ProductID   string // producto asignado (creado o coincidente)
	CandidateID string // mejor candidato difuso por debajo del umbral
	Score       float64
	Reason      string
}

// LineFailure línea cuya entrada en el Ledger falló; la factura queda pendiente.
type LineFailure struct {
	Line      int
	ProductID string
	Quantity  decimal.Decimal
	Err       error
}

// Result resultado de ingerir o reprocesar una factura.
type Result struct {
	Invoice         *entity.Invoice
	Matched         int
	Created         int
	Review          []ReviewItem
	Failed          []LineFailure
	SupplierCreated bool
	Processed       bool
}

// Ingest parsea el archivo y lo procesa.
func (e *Engine) Ingest(ctx context.Context, r io.Reader, actor string) (*Result, error) {
	doc, err := e.parser.Parse(r)
	if err != nil {
		return nil, err
	}
	return e.IngestDocument(ctx, doc, actor)
}

// IngestDocument registra la factura como pendiente (rechazando duplicados) y la procesa.
func (e *Engine) IngestDocument(ctx context.Context, doc *Document, actor string) (*Result, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	inv, supplierCreated, err := e.register(ctx, doc, actor)
	if err != nil {
		return nil, err
	}
	res, err := e.Process(ctx, inv.ID, actor)
	if err != nil {
		return nil, err
	}
	res.SupplierCreated = supplierCreated
	return res, nil
}

func (e *Engine) register(ctx context.Context, doc *Document, actor string) (*entity.Invoice, bool, error) {
	release, err := e.locks.Acquire(ctx, "invoice:"+doc.SupplierTaxID+":"+doc.Number, e.cfg.LockTimeout)
	if err != nil {
		return nil, false, err
	}
	defer release()

	existing, err := e.invoices.GetByNumberAndTaxID(ctx, doc.Number, doc.SupplierTaxID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return nil, false, fmt.Errorf("%w: %s / %s", domain.ErrDuplicateInvoice, doc.Number, doc.SupplierTaxID)
	}

	supplier, created, err := e.resolveSupplier(ctx, doc)
	if err != nil {
		return nil, false, err
	}

	now := e.now()
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		Number:        doc.Number,
		Series:        doc.Series,
		SupplierID:    supplier.ID,
		SupplierTaxID: doc.SupplierTaxID,
		IssueDate:     doc.IssueDate,
		EntryDate:     now,
		DeclaredTotal: doc.DeclaredTotal,
		Status:        entity.InvoicePending,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	sum := decimal.Zero
	for _, it := range doc.Items {
		inv.Items = append(inv.Items, entity.InvoiceItem{
			Line:         it.Line,
			SupplierCode: strings.TrimSpace(it.SupplierCode),
			Description:  strings.TrimSpace(it.Description),
			TaxCode:      it.TaxCode,
			UnitMeasure:  it.UnitMeasure,
			Quantity:     it.Quantity,
			UnitValue:    it.UnitValue,
			TotalValue:   it.TotalValue,
		})
		sum = sum.Add(it.TotalValue)
	}
	if doc.DeclaredTotal.IsPositive() && !sum.Round(2).Equal(doc.DeclaredTotal.Round(2)) {
		e.log.Warn().
			Str("invoice", doc.Number).
			Str("declared_total", doc.DeclaredTotal.StringFixed(2)).
			Str("items_total", sum.StringFixed(2)).
			Msg("total declarado distinto de la suma de ítems")
	}
	if err := e.invoices.Create(ctx, inv); err != nil {
		return nil, false, err
	}
	return inv, created, nil
}

// resolveSupplier busca por identificación fiscal exacta; si no existe lo crea con nota de procedencia.
func (e *Engine) resolveSupplier(ctx context.Context, doc *Document) (*entity.Supplier, bool, error) {
	release, err := e.locks.Acquire(ctx, "supplier:"+doc.SupplierTaxID, e.cfg.LockTimeout)
	if err != nil {
		return nil, false, err
	}
	defer release()

	sp, err := e.suppliers.GetByTaxID(ctx, doc.SupplierTaxID)
	if err != nil {
		return nil, false, err
	}
	if sp != nil {
		return sp, false, nil
	}
	name := doc.SupplierName
	if name == "" {
		name = "Proveedor " + doc.SupplierTaxID
	}
	now := e.now()
	sp = &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      name,
		TradeName: doc.SupplierTradeName,
		TaxID:     doc.SupplierTaxID,
		Email:     doc.SupplierEmail,
		Phone:     doc.SupplierPhone,
		Active:    true,
		Notes:     fmt.Sprintf("Creado automáticamente desde la factura %s el %s", doc.Number, now.Format("2006-01-02")),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.suppliers.Create(ctx, sp); err != nil {
		return nil, false, fmt.Errorf("crear proveedor %s: %w", doc.SupplierTaxID, err)
	}
	e.log.Info().Str("supplier_id", sp.ID).Str("tax_id", sp.TaxID).Msg("proveedor creado desde factura")
	return sp, true, nil
}

// Process concilia las líneas pendientes de la factura y registra las entradas.
// Si alguna entrada falla la factura queda PENDING y puede reprocesarse; las líneas ya
// registradas no se duplican (clave invoice:<id>:<línea>).
func (e *Engine) Process(ctx context.Context, invoiceID, actor string) (*Result, error) {
	release, err := e.locks.Acquire(ctx, "invoice:"+invoiceID, e.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := e.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case entity.InvoiceProcessed:
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyProcessed, inv.Number)
	case entity.InvoiceCancelled:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvoiceCancelled, inv.Number)
	}
	supplier, err := e.suppliers.GetByID(ctx, inv.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSupplier, inv.SupplierID)
	}
	catalog, err := e.products.List(ctx, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}

	m := &matcher{engine: e, supplier: supplier, catalog: catalog}
	res := &Result{Invoice: inv}
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ProductID == "" {
			out, err := m.resolve(ctx, it)
			if err != nil {
				res.Failed = append(res.Failed, LineFailure{Line: it.Line, Quantity: it.Quantity, Err: err})
				continue
			}
			it.ProductID = out.product.ID
			it.MatchStrategy = out.strategy
			it.MatchScore = decimal.NewFromFloat(out.score).Round(4)
			if out.review != nil {
				res.Review = append(res.Review, *out.review)
			}
		}
		if it.MatchStrategy == entity.MatchCreated {
			res.Created++
		} else {
			res.Matched++
		}

		_, err := e.costs.Receive(ctx, inventory.ReceiveInput{
			Key:        fmt.Sprintf("invoice:%s:%d", inv.ID, it.Line),
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitValue,
			SupplierID: supplier.ID,
			InvoiceID:  inv.ID,
			Actor:      actor,
			Note:       fmt.Sprintf("factura %s línea %d", inv.Number, it.Line),
		})
		if err != nil {
			e.log.Warn().Err(err).Str("invoice_id", inv.ID).Int("line", it.Line).Msg("entrada de stock no registrada")
			res.Failed = append(res.Failed, LineFailure{Line: it.Line, ProductID: it.ProductID, Quantity: it.Quantity, Err: err})
		}
	}

	now := e.now()
	inv.UpdatedAt = now
	if len(res.Failed) == 0 {
		inv.Status = entity.InvoiceProcessed
		inv.ProcessedAt = &now
		res.Processed = true
	}
	if err := e.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	e.log.Info().
		Str("invoice_id", inv.ID).
		Int("matched", res.Matched).
		Int("created", res.Created).
		Int("review", len(res.Review)).
		Int("failed", len(res.Failed)).
		Msg("factura conciliada")
	return res, nil
}

// Cancel anula una factura pendiente.
func (e *Engine) Cancel(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	release, err := e.locks.Acquire(ctx, "invoice:"+invoiceID, e.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := e.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case entity.InvoiceProcessed:
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyProcessed, inv.Number)
	case entity.InvoiceCancelled:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvoiceCancelled, inv.Number)
	}
	inv.Status = entity.InvoiceCancelled
	inv.UpdatedAt = e.now()
	if err := e.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get obtiene una factura.
func (e *Engine) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	return e.load(ctx, id)
}

// List facturas filtradas.
func (e *Engine) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	return e.invoices.List(ctx, filter)
}

func (e *Engine) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := e.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownInvoice, id)
	}
	return inv, nil
}

func validateDocument(doc *Document) error {
	if doc == nil {
		return domain.Invalid("document", "vacío")
	}
	if strings.TrimSpace(doc.Number) == "" {
		return domain.Invalid("number", "requerido")
	}
	if strings.TrimSpace(doc.SupplierTaxID) == "" {
		return domain.Invalid("supplier_tax_id", "requerido")
	}
	if len(doc.Items) == 0 {
		return domain.Invalid("items", "la factura no tiene ítems")
	}
	for _, it := range doc.Items {
		if !it.Quantity.IsPositive() {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", it.Line), "debe ser mayor que cero")
		}
		if it.UnitValue.IsNegative() {
			return domain.Invalid(fmt.Sprintf("items[%d].unit_value", it.Line), "no puede ser negativo")
		}
		if strings.TrimSpace(it.SupplierCode) == "" && strings.TrimSpace(it.Description) == "" {
			return domain.Invalid(fmt.Sprintf("items[%d]", it.Line), "sin código ni descripción")
		}
	}
	return nil
}
