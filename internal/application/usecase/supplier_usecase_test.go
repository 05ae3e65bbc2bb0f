package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierUseCase(t *testing.T) {
	store := memory.New()
	uc := usecase.NewSupplierUseCase(store.Suppliers())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateSupplierRequest{
		Name:         "Distribuidora Limpa Tudo",
		TaxID:        "12.345.678/0001-90",
		ProductTypes: []string{"a", "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "12345678000190", out.TaxID)
	assert.Equal(t, []string{"A", "B"}, out.ProductTypes)

	_, err = uc.Create(ctx, dto.CreateSupplierRequest{Name: "Otra", TaxID: "12345678000190"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateSupplierRequest{Name: "Otra", ProductTypes: []string{"Z"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := uc.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Name, got.Name)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownSupplier)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
