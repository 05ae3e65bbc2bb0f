package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase catálogo de productos. UnitCost solo lo modifica el motor de costo.
type ProductUseCase struct {
	repo     repository.ProductRepository
	mappings repository.CodeMappingRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, mappings repository.CodeMappingRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, mappings: mappings}
}

// Create alta manual de un producto ya curado. UnitCost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := checkLevels(in.MinStock, in.ReorderPoint); err != nil {
		return nil, err
	}
	ptype := entity.ProductType(strings.ToUpper(in.Type))
	if !ptype.Valid() {
		return nil, domain.Invalid("type", "debe ser A o B")
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:                  uuid.New().String(),
		SupplierID:          in.SupplierID,
		SupplierCode:        strings.TrimSpace(in.SupplierCode),
		SupplierDescription: strings.TrimSpace(in.SupplierDescription),
		InternalCode:        strings.TrimSpace(in.InternalCode),
		InternalDescription: strings.TrimSpace(in.InternalDescription),
		Type:                ptype,
		UnitMeasure:         strings.ToUpper(in.UnitMeasure),
		TaxCode:             in.TaxCode,
		UnitCost:            decimal.Zero,
		MinStock:            in.MinStock,
		ReorderPoint:        in.ReorderPoint,
		Active:              true,
		DataComplete:        true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("crear producto %s: %w", product.InternalCode, err)
	}
	if err := uc.remember(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total := len(list)
	if page.Offset > total {
		page.Offset = total
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	items := make([]dto.ProductResponse, 0, end-page.Offset)
	for _, p := range list[page.Offset:end] {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: total}, nil
}

// PendingCuration productos creados por la conciliación que aún no tienen datos internos.
func (uc *ProductUseCase) PendingCuration(ctx context.Context) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, repository.ProductFilter{OnlyActive: true, OnlyIncomplete: true})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// Complete curaduría: asigna código y descripción interna, tipo y niveles, y marca DataComplete.
// Registra el mapeo (proveedor, código) para que las próximas facturas resuelvan por código.
func (uc *ProductUseCase) Complete(ctx context.Context, id string, in dto.CompleteProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.Invalid("id", "producto inactivo")
	}
	if err := checkLevels(in.MinStock, in.ReorderPoint); err != nil {
		return nil, err
	}
	ptype := entity.ProductType(strings.ToUpper(in.Type))
	if !ptype.Valid() {
		return nil, domain.Invalid("type", "debe ser A o B")
	}
	product.InternalCode = strings.TrimSpace(in.InternalCode)
	product.InternalDescription = strings.TrimSpace(in.InternalDescription)
	product.Type = ptype
	product.MinStock = in.MinStock
	product.ReorderPoint = in.ReorderPoint
	if in.UnitMeasure != nil && *in.UnitMeasure != "" {
		product.UnitMeasure = strings.ToUpper(*in.UnitMeasure)
	}
	product.DataComplete = true
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("completar producto %s: %w", id, err)
	}
	if err := uc.remember(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate baja lógica; el historial del producto se conserva.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	product, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !product.Active {
		return nil
	}
	product.Active = false
	product.UpdatedAt = time.Now().UTC()
	return uc.repo.Update(ctx, product)
}

func (uc *ProductUseCase) load(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, id)
	}
	return product, nil
}

func (uc *ProductUseCase) remember(ctx context.Context, p *entity.Product) error {
	if uc.mappings == nil || p.SupplierID == "" || p.SupplierCode == "" {
		return nil
	}
	return uc.mappings.Save(ctx, &entity.CodeMapping{
		SupplierID:   p.SupplierID,
		SupplierCode: p.SupplierCode,
		ProductID:    p.ID,
		CreatedAt:    p.UpdatedAt,
	})
}

func checkLevels(minStock, reorderPoint decimal.Decimal) error {
	if minStock.IsNegative() {
		return domain.Invalid("min_stock", "no puede ser negativo")
	}
	if reorderPoint.IsNegative() {
		return domain.Invalid("reorder_point", "no puede ser negativo")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                  p.ID,
		SupplierID:          p.SupplierID,
		SupplierCode:        p.SupplierCode,
		SupplierDescription: p.SupplierDescription,
		InternalCode:        p.InternalCode,
		InternalDescription: p.InternalDescription,
		Type:                string(p.Type),
		UnitMeasure:         p.UnitMeasure,
		TaxCode:             p.TaxCode,
		UnitCost:            p.UnitCost,
		MinStock:            p.MinStock,
		ReorderPoint:        p.ReorderPoint,
		Active:              p.Active,
		DataComplete:        p.DataComplete,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
