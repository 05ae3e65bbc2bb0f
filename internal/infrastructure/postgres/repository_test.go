package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/lock"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere TEST_DATABASE_URL apuntando a una base descartable.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	return pool
}

func newProduct(code string) *entity.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.Product{
		ID: uuid.NewString(), InternalCode: code, InternalDescription: "Produto " + code, Type: entity.ProductTypeA,
		UnitMeasure: "UN", UnitCost: decimal.RequireFromString("2.5"), Active: true, DataComplete: true,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestPostgres_ProductosYDuplicados(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.NewRepositories(pool)

	code := "T-" + uuid.NewString()[:8]
	p := newProduct(code)
	require.NoError(t, repos.Products.Create(ctx, p))
	dup := newProduct(code)
	assert.ErrorIs(t, repos.Products.Create(ctx, dup), domain.ErrDuplicate)

	got, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.UnitCost.Equal(p.UnitCost))
	assert.Equal(t, entity.ProductTypeA, got.Type)

	missing, err := repos.Products.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_LedgerSobreTransacciones(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.NewRepositories(pool)
	p := newProduct("L-" + uuid.NewString()[:8])
	require.NoError(t, repos.Products.Create(ctx, p))

	ledger := inventory.NewLedger(postgres.NewTxRunner(pool), lock.NewLocal(), time.Second,
		repos.Products, repos.Stock, repos.Movements, zerolog.Nop())
	key := "test:" + uuid.NewString()
	_, err := ledger.RecordIn(ctx, inventory.MovementInput{Key: key, ProductID: p.ID, Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = ledger.RecordIn(ctx, inventory.MovementInput{Key: key, ProductID: p.ID, Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = ledger.RecordOut(ctx, inventory.MovementInput{ProductID: p.ID, Quantity: decimal.NewFromInt(9)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	b, err := repos.Stock.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, b.OnHand.Equal(decimal.NewFromInt(5)))
	movs, err := repos.Movements.List(ctx, repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestPostgres_FacturaDuplicadaYMapeos(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.NewRepositories(pool)
	now := time.Now().UTC()

	sp := &entity.Supplier{ID: uuid.NewString(), Name: "Fornecedor", TaxID: uuid.NewString()[:14], Active: true,
		ProductTypes: []entity.ProductType{entity.ProductTypeB}, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Suppliers.Create(ctx, sp))
	got, err := repos.Suppliers.GetByTaxID(ctx, sp.TaxID)
	require.NoError(t, err)
	assert.Equal(t, []entity.ProductType{entity.ProductTypeB}, got.ProductTypes)

	inv := &entity.Invoice{ID: uuid.NewString(), Number: "77", SupplierID: sp.ID, SupplierTaxID: sp.TaxID,
		IssueDate: now, EntryDate: now, Status: entity.InvoicePending, CreatedAt: now, UpdatedAt: now,
		Items: []entity.InvoiceItem{{Line: 1, SupplierCode: "X", Quantity: decimal.NewFromInt(2), UnitValue: decimal.NewFromInt(3)}}}
	require.NoError(t, repos.Invoices.Create(ctx, inv))
	inv2 := *inv
	inv2.ID = uuid.NewString()
	assert.ErrorIs(t, repos.Invoices.Create(ctx, &inv2), domain.ErrDuplicateInvoice)

	found, err := repos.Invoices.GetByNumberAndTaxID(ctx, " 77 ", sp.TaxID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].UnitValue.Equal(decimal.NewFromInt(3)))

	p := newProduct("M-" + uuid.NewString()[:8])
	require.NoError(t, repos.Products.Create(ctx, p))
	require.NoError(t, repos.CodeMappings.Save(ctx, &entity.CodeMapping{SupplierID: sp.ID, SupplierCode: "ab-1", ProductID: p.ID}))
	m, err := repos.CodeMappings.Find(ctx, sp.ID, "AB-1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, p.ID, m.ProductID)
}
