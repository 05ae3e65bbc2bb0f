package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RevierteEscriturasSiFalla(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", UnitCost: decimal.NewFromInt(2)}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(r inventory.TxRepos) error {
		require.NoError(t, r.Stock.Upsert(ctx, &entity.StockBalance{ProductID: "p1", OnHand: decimal.NewFromInt(5), Reserved: decimal.Zero}))
		require.NoError(t, r.Movements.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1", Kind: entity.MovementIn}))
		require.NoError(t, r.Products.UpdateCost(ctx, "p1", decimal.NewFromInt(9)))
		require.NoError(t, r.Costs.Create(ctx, &entity.CostHistory{ID: "h1", ProductID: "p1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := s.Stock().Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, b.OnHand.IsZero())
	m, err := s.Movements().GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)
	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.UnitCost.Equal(decimal.NewFromInt(2)))
	h, err := s.CostHistory().ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestMovements_ClaveDuplicada(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Movements().Create(ctx, &entity.StockMovement{ID: "k"}))
	assert.ErrorIs(t, s.Movements().Create(ctx, &entity.StockMovement{ID: "k"}), domain.ErrDuplicate)
}

func TestInvoices_DuplicadoPorNumeroYProveedor(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Invoices().Create(ctx, &entity.Invoice{ID: "1", Number: "123", SupplierTaxID: "111"}))
	assert.ErrorIs(t, s.Invoices().Create(ctx, &entity.Invoice{ID: "2", Number: "123", SupplierTaxID: "111"}), domain.ErrDuplicateInvoice)
	require.NoError(t, s.Invoices().Create(ctx, &entity.Invoice{ID: "3", Number: "123", SupplierTaxID: "222"}))
}

func TestProducts_DevuelveCopias(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", InternalCode: "X"}))
	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	p.InternalCode = "mutado"

	again, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "X", again.InternalCode)
}

func TestProducts_UpdateNoPisaElCosto(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	created := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", UnitCost: decimal.NewFromInt(2), CreatedAt: created}))

	stale, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, s.Products().UpdateCost(ctx, "p1", decimal.NewFromInt(3)))

	stale.InternalCode = "LIM-001"
	stale.DataComplete = true
	stale.CreatedAt = time.Time{}
	require.NoError(t, s.Products().Update(ctx, stale))

	got, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.UnitCost.Equal(decimal.NewFromInt(3)), "costo %s", got.UnitCost)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "LIM-001", got.InternalCode)
	assert.True(t, got.DataComplete)
}

func TestOrders_NumbersWithPrefix(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "1", Number: "ORD20250115-001"}))
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "2", Number: "ORD20250115-002"}))
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "3", Number: "ORD20250116-001"}))
	assert.ErrorIs(t, s.Orders().Create(ctx, &entity.Order{ID: "4", Number: "ORD20250115-001"}), domain.ErrDuplicate)

	nums, err := s.Orders().NumbersWithPrefix(ctx, "ORD20250115-")
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD20250115-001", "ORD20250115-002"}, nums)
}
