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
)

// SupplierUseCase alta y consulta de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create registra un proveedor. La identificación fiscal se guarda solo con dígitos.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	types := make([]entity.ProductType, 0, len(in.ProductTypes))
	for _, t := range in.ProductTypes {
		pt := entity.ProductType(strings.ToUpper(t))
		if !pt.Valid() {
			return nil, domain.Invalid("product_types", "tipo desconocido "+t)
		}
		types = append(types, pt)
	}
	now := time.Now().UTC()
	supplier := &entity.Supplier{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		TradeName:    strings.TrimSpace(in.TradeName),
		TaxID:        onlyDigits(in.TaxID),
		Email:        in.Email,
		Phone:        in.Phone,
		ContactName:  in.ContactName,
		ProductTypes: types,
		Active:       true,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if supplier.Name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("crear proveedor %s: %w", supplier.TaxID, err)
	}
	return toSupplierResponse(supplier), nil
}

// GetByID obtiene un proveedor por ID.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSupplier, id)
	}
	return toSupplierResponse(supplier), nil
}

// List lista todos los proveedores.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return items, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	if s == nil {
		return nil
	}
	types := make([]string, 0, len(s.ProductTypes))
	for _, t := range s.ProductTypes {
		types = append(types, string(t))
	}
	return &dto.SupplierResponse{
		ID:           s.ID,
		Name:         s.Name,
		TradeName:    s.TradeName,
		TaxID:        s.TaxID,
		Email:        s.Email,
		Phone:        s.Phone,
		ContactName:  s.ContactName,
		ProductTypes: types,
		Active:       s.Active,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}
