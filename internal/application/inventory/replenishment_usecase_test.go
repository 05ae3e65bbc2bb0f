package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReplenishmentList_OrdenaPorDeficit(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "a", "2", "10")
	f.addProduct(t, "b", "1", "10")
	f.addProduct(t, "c", "1", "0") // sin punto de reorden: se ignora
	ctx := context.Background()
	_, err := f.ledger.RecordIn(ctx, in("a", "8"))
	require.NoError(t, err)
	_, err = f.ledger.RecordIn(ctx, in("b", "2"))
	require.NoError(t, err)

	uc := inventory.NewReplenishmentUseCase(f.store.Products(), f.store.Stock())
	list, err := uc.GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "b", list[0].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].IdealStock.Equal(d("15")))
	assert.True(t, list[0].SuggestedOrderQty.Equal(d("13")))

	assert.Equal(t, "a", list[1].ProductID)
	assert.True(t, list[1].SuggestedOrderQty.Equal(d("7")))
	assert.True(t, list[1].EstimatedOrderCost.Equal(d("14")))
}
