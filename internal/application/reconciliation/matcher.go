package reconciliation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/matching"
	"github.com/shopspring/decimal"
)

// matcher resuelve líneas contra el catálogo en memoria de una factura.
// Los productos creados se agregan al catálogo para que líneas posteriores los encuentren.
type matcher struct {
	engine   *Engine
	supplier *entity.Supplier
	catalog  []*entity.Product
}

type resolution struct {
	product  *entity.Product
	strategy string
	score    float64
	review   *ReviewItem
}

// resolve cascada: código interno, código del proveedor, mapeo histórico, descripción; si nada
// coincide crea el producto pendiente de curaduría.
func (m *matcher) resolve(ctx context.Context, it *entity.InvoiceItem) (*resolution, error) {
	e := m.engine
	code := strings.TrimSpace(it.SupplierCode)

	if code != "" {
		for _, p := range m.catalog {
			if p.InternalCode != "" && strings.EqualFold(p.InternalCode, code) {
				return m.matched(ctx, it, p, entity.MatchInternalCode, 1)
			}
		}
		for _, p := range m.catalog {
			if strings.EqualFold(p.SupplierCode, code) && (p.SupplierID == m.supplier.ID || p.SupplierID == "") {
				return &resolution{product: p, strategy: entity.MatchSupplierCode, score: 1}, nil
			}
		}
		mapping, err := e.mappings.Find(ctx, m.supplier.ID, code)
		if err != nil {
			return nil, err
		}
		if mapping != nil {
			if p := m.byID(mapping.ProductID); p != nil {
				return &resolution{product: p, strategy: entity.MatchCodeMapping, score: 1}, nil
			}
		}
	}

	candidates := make([]matching.Candidate, 0, len(m.catalog))
	for _, p := range m.catalog {
		candidates = append(candidates, matching.Candidate{
			Key:          p.ID,
			Descriptions: []string{p.SupplierDescription, p.InternalDescription},
		})
	}
	ranked := matching.Rank(it.Description, candidates)
	var review *ReviewItem
	if len(ranked) > 0 {
		best := ranked[0]
		if best.Score >= e.cfg.SimilarityThreshold {
			return m.matched(ctx, it, m.byID(best.Key), entity.MatchDescription, best.Score)
		}
		if best.Score >= e.cfg.SimilarityThreshold-e.cfg.ReviewBand {
			review = &ReviewItem{
				Line:        it.Line,
				Description: it.Description,
				CandidateID: best.Key,
				Score:       best.Score,
				Reason:      domain.ErrReconciliationAmbiguous.Error(),
			}
		}
	}

	p, err := m.create(ctx, it)
	if err != nil {
		return nil, err
	}
	if review == nil {
		review = &ReviewItem{Line: it.Line, Description: it.Description, Reason: "producto creado automáticamente; completar datos"}
	}
	review.ProductID = p.ID
	return &resolution{product: p, strategy: entity.MatchCreated, review: review}, nil
}

// matched guarda el mapeo para que la próxima factura del proveedor resuelva por código.
func (m *matcher) matched(ctx context.Context, it *entity.InvoiceItem, p *entity.Product, strategy string, score float64) (*resolution, error) {
	if code := strings.TrimSpace(it.SupplierCode); code != "" {
		err := m.engine.mappings.Save(ctx, &entity.CodeMapping{
			SupplierID:   m.supplier.ID,
			SupplierCode: code,
			ProductID:    p.ID,
			CreatedAt:    m.engine.now(),
		})
		if err != nil {
			m.engine.log.Warn().Err(err).Str("product_id", p.ID).Msg("no se guardó el mapeo de código")
		}
	}
	return &resolution{product: p, strategy: strategy, score: score}, nil
}

func (m *matcher) create(ctx context.Context, it *entity.InvoiceItem) (*entity.Product, error) {
	now := m.engine.now()
	var ptype entity.ProductType
	if len(m.supplier.ProductTypes) == 1 {
		ptype = m.supplier.ProductTypes[0]
	}
	unit := it.UnitMeasure
	if unit == "" {
		unit = "UN"
	}
	p := &entity.Product{
		ID:                  uuid.New().String(),
		SupplierID:          m.supplier.ID,
		SupplierCode:        strings.TrimSpace(it.SupplierCode),
		SupplierDescription: strings.TrimSpace(it.Description),
		Type:                ptype,
		UnitMeasure:         unit,
		TaxCode:             it.TaxCode,
		UnitCost:            decimal.Zero,
		MinStock:            decimal.Zero,
		ReorderPoint:        decimal.Zero,
		Active:              true,
		DataComplete:        false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := m.engine.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear producto para la línea %d: %w", it.Line, err)
	}
	m.catalog = append(m.catalog, p)
	m.engine.log.Info().Str("product_id", p.ID).Str("supplier_code", p.SupplierCode).Msg("producto creado desde factura")
	return p, nil
}

func (m *matcher) byID(id string) *entity.Product {
	for _, p := range m.catalog {
		if p.ID == id {
			return p
		}
	}
	return nil
}
