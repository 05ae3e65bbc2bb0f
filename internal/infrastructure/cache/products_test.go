package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/cache"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducts_GetByIDCacheaYDevuelveCopias(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := cache.NewProducts(store.Products(), 10, time.Minute)
	require.NoError(t, c.Create(ctx, &entity.Product{ID: "p1", InternalCode: "A", Active: true}))

	p, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	p.InternalCode = "mutado"

	again, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.InternalCode)

	missing, err := c.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 1, c.Len())
}

func TestProducts_EscriturasInvalidan(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := cache.NewProducts(store.Products(), 10, time.Minute)
	require.NoError(t, c.Create(ctx, &entity.Product{ID: "p1", UnitCost: decimal.NewFromInt(1), Active: true}))
	_, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, c.UpdateCost(ctx, "p1", decimal.NewFromInt(7)))
	p, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.UnitCost.Equal(decimal.NewFromInt(7)))
}

func TestProducts_Expira(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := cache.NewProducts(store.Products(), 10, 20*time.Millisecond)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Active: true}))
	_, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestTxRunner_InvalidaLoEscritoEnLaTransaccion(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := cache.NewProducts(store.Products(), 10, time.Minute)
	tx := cache.NewTxRunner(store, c)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", UnitCost: decimal.NewFromInt(2), Active: true}))
	_, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, tx.Run(ctx, func(r inventory.TxRepos) error {
		return r.Products.UpdateCost(ctx, "p1", decimal.NewFromInt(3))
	}))
	p, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.UnitCost.Equal(decimal.NewFromInt(3)))

	boom := errors.New("boom")
	err = tx.Run(ctx, func(r inventory.TxRepos) error {
		require.NoError(t, r.Products.UpdateCost(ctx, "p1", decimal.NewFromInt(9)))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	p, err = c.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.UnitCost.Equal(decimal.NewFromInt(3)))
}
