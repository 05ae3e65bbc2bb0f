package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceive_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "100"))
	require.NoError(t, err)

	engine := inventory.NewCostEngine(f.ledger)
	res, err := engine.Receive(context.Background(), inventory.ReceiveInput{
		Key:        "invoice:i1:1",
		ProductID:  "p1",
		Quantity:   d("50"),
		UnitCost:   d("5"),
		SupplierID: "s1",
		InvoiceID:  "i1",
		Actor:      "tester",
	})
	require.NoError(t, err)
	require.NotNil(t, res.History)
	assert.True(t, res.History.NewCost.Equal(d("3")))
	assert.True(t, res.History.PreviousCost.Equal(d("2")))
	assert.True(t, res.History.VariancePct.Equal(d("50")))
	assert.Equal(t, "i1", res.Movement.InvoiceID)
	require.NotNil(t, res.Movement.UnitCost)
	assert.True(t, res.Movement.UnitCost.Equal(d("5")))

	p, err := f.store.Products().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, p.UnitCost.Equal(d("3")))
	assert.True(t, f.balance(t, "p1").OnHand.Equal(d("150")))

	hist, err := f.store.CostHistory().ListByProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestReceive_SinStockUsaCostoDeEntrada(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "0", "0")

	engine := inventory.NewCostEngine(f.ledger)
	res, err := engine.Receive(context.Background(), inventory.ReceiveInput{ProductID: "p1", Quantity: d("10"), UnitCost: d("4.25")})
	require.NoError(t, err)
	assert.True(t, res.History.NewCost.Equal(d("4.25")))
	assert.True(t, res.History.VariancePct.IsZero())
}

func TestReceive_ReintentoNoRecalcula(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	engine := inventory.NewCostEngine(f.ledger)
	input := inventory.ReceiveInput{Key: "invoice:i1:1", ProductID: "p1", Quantity: d("10"), UnitCost: d("6")}

	_, err := engine.Receive(context.Background(), input)
	require.NoError(t, err)
	res, err := engine.Receive(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Nil(t, res.History)

	hist, err := f.store.CostHistory().ListByProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	assert.True(t, f.balance(t, "p1").OnHand.Equal(d("10")))
}

func TestReceive_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	engine := inventory.NewCostEngine(f.ledger)

	_, err := engine.Receive(context.Background(), inventory.ReceiveInput{ProductID: "p1", Quantity: d("0"), UnitCost: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = engine.Receive(context.Background(), inventory.ReceiveInput{ProductID: "p1", Quantity: d("1"), UnitCost: d("-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = engine.Receive(context.Background(), inventory.ReceiveInput{ProductID: "zz", Quantity: d("1"), UnitCost: d("1")})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}
