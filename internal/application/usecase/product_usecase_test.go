package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (*usecase.ProductUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	return usecase.NewProductUseCase(store.Products(), store.CodeMappings()), store
}

func TestProductUseCase_Create(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		InternalCode:        "LIM-001",
		InternalDescription: "Limpador multiuso 500ml",
		Type:                "a",
		UnitMeasure:         "un",
		ReorderPoint:        decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", out.Type)
	assert.Equal(t, "UN", out.UnitMeasure)
	assert.True(t, out.UnitCost.IsZero())
	assert.True(t, out.DataComplete)

	_, err = uc.Create(ctx, dto.CreateProductRequest{InternalCode: "lim-001", InternalDescription: "x", Type: "A", UnitMeasure: "UN"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateProductRequest{InternalCode: "X", InternalDescription: "x", Type: "C", UnitMeasure: "UN"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, dto.CreateProductRequest{InternalCode: "Y", InternalDescription: "y", Type: "B", UnitMeasure: "UN", MinStock: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProductUseCase_CompleteRegistraMapeo(t *testing.T) {
	uc, store := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "auto", SupplierID: "s1", SupplierCode: "FX-9", SupplierDescription: "Papel toalha", UnitMeasure: "PC", Active: true,
	}))

	pending, err := uc.PendingCuration(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, pending.Total)

	unit := "fd"
	out, err := uc.Complete(ctx, "auto", dto.CompleteProductRequest{
		InternalCode:        "PAP-010",
		InternalDescription: "Papel toalha interfolhado",
		Type:                "B",
		UnitMeasure:         &unit,
		MinStock:            decimal.NewFromInt(5),
		ReorderPoint:        decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.True(t, out.DataComplete)
	assert.Equal(t, "FD", out.UnitMeasure)
	assert.Equal(t, "Papel toalha interfolhado", out.InternalDescription)

	mapping, err := store.CodeMappings().Find(ctx, "s1", "FX-9")
	require.NoError(t, err)
	require.NotNil(t, mapping)
	assert.Equal(t, "auto", mapping.ProductID)

	pending, err = uc.PendingCuration(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending.Total)
}

func TestProductUseCase_DeactivateYList(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()
	var ids []string
	for _, code := range []string{"C", "A", "B"} {
		out, err := uc.Create(ctx, dto.CreateProductRequest{InternalCode: code, InternalDescription: code, Type: "A", UnitMeasure: "UN"})
		require.NoError(t, err)
		ids = append(ids, out.ID)
	}
	require.NoError(t, uc.Deactivate(ctx, ids[0]))
	require.NoError(t, uc.Deactivate(ctx, ids[0]))

	active, err := uc.List(ctx, repository.ProductFilter{OnlyActive: true}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, active.Items, 2)
	assert.Equal(t, "A", active.Items[0].InternalCode)

	page, err := uc.List(ctx, repository.ProductFilter{}, dto.PageRequest{Limit: 1, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "C", page.Items[0].InternalCode)
	assert.False(t, page.Items[0].Active)

	_, err = uc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Deactivate(ctx, "missing"), domain.ErrUnknownProduct)
}
