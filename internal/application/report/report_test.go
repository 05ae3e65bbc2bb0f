package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/report"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/schema"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var day = time.Date(2025, 1, 15, 13, 4, 5, 0, time.FixedZone("BRT", -3*3600))

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func seeded(t *testing.T) *report.Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, p := range []*entity.Product{
		{ID: "p2", InternalCode: "B-02", InternalDescription: "Luva nitrílica", UnitCost: d("1.23456"), Active: true, DataComplete: true},
		{ID: "p1", InternalCode: "A-01", InternalDescription: "Copo 200ml", UnitCost: d("3"), Active: true, DataComplete: true},
	} {
		require.NoError(t, store.Products().Create(ctx, p))
	}
	require.NoError(t, store.Stock().Upsert(ctx, &entity.StockBalance{
		ProductID: "p1", OnHand: d("10"), Reserved: d("2.5"), UpdatedAt: day, UpdatedBy: "ana",
	}))
	cost := d("2.5")
	for _, m := range []*entity.StockMovement{
		{ID: "m2", Kind: entity.MovementAdjust, Decrease: true, ProductID: "p1", Quantity: d("1"), BalanceBefore: d("11"), BalanceAfter: d("10"), CreatedAt: day.Add(time.Hour)},
		{ID: "m1", Kind: entity.MovementIn, ProductID: "p1", Quantity: d("11"), BalanceAfter: d("11"), UnitCost: &cost, CreatedAt: day},
	} {
		require.NoError(t, store.Movements().Create(ctx, m))
	}
	require.NoError(t, store.Orders().Create(ctx, &entity.Order{
		ID: "o1", Number: "ORD20250115-001", Status: entity.OrderRequested, RequestedAt: day, TotalValue: d("7.5"),
		Items: []entity.OrderItem{{ProductID: "p1", ProductCode: "A-01", Quantity: d("2.5")}},
	}))
	return report.NewService(store.Products(), store.Stock(), store.Movements(), store.Orders(), store.Invoices())
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExport_CSVDeterminista(t *testing.T) {
	svc := seeded(t)
	for _, kind := range []report.Kind{report.Balances, report.Movements, report.Orders, report.Invoices, report.Products} {
		var first, second bytes.Buffer
		require.NoError(t, svc.Export(context.Background(), &first, kind, report.CSV))
		require.NoError(t, svc.Export(context.Background(), &second, kind, report.CSV))
		assert.Equal(t, first.String(), second.String(), kind)
	}
}

func TestExport_Balances(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, seeded(t).Export(context.Background(), &buf, report.Balances, report.CSV))
	records := readCSV(t, buf.Bytes())

	require.Len(t, records, 3)
	assert.Equal(t, schema.Balances.Header(), records[0])
	assert.Equal(t, []string{"p1", "A-01", "Copo 200ml", "10.00", "2.50", "7.50", "2025-01-15 16:04:05", "ana"}, records[1])
	assert.Equal(t, []string{"p2", "B-02", "Luva nitrílica", "0.00", "0.00", "0.00", "", ""}, records[2])
}

func TestExport_MovementsOrdenCronologico(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, seeded(t).Export(context.Background(), &buf, report.Movements, report.CSV))
	records := readCSV(t, buf.Bytes())

	require.Len(t, records, 3)
	kind := schema.Movements.Index("kind")
	unitCost := schema.Movements.Index("unit_cost")
	assert.Equal(t, "m1", records[1][0])
	assert.Equal(t, "IN", records[1][kind])
	assert.Equal(t, "2.5000", records[1][unitCost])
	assert.Equal(t, "ADJUST-", records[2][kind])
	assert.Empty(t, records[2][unitCost])
}

func TestExport_OrdersYProducts(t *testing.T) {
	svc := seeded(t)
	_, rows, err := svc.Rows(context.Background(), report.Orders)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A-01=2.50", rows[0][schema.Orders.Index("items")])
	assert.Equal(t, "7.50", rows[0][schema.Orders.Index("total_value")])
	assert.Empty(t, rows[0][schema.Orders.Index("finalized_at")])

	_, rows, err = svc.Rows(context.Background(), report.Products)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3.0000", rows[0][schema.Products.Index("unit_cost")])
	assert.Equal(t, "1.2346", rows[1][schema.Products.Index("unit_cost")])
}

func TestExport_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, seeded(t).Export(context.Background(), &buf, report.Balances, report.XLSX))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(schema.Balances.Name)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, schema.Balances.Header(), rows[0])
	assert.Equal(t, "7.50", rows[1][schema.Balances.Index("available")])
}

func TestParse(t *testing.T) {
	k, err := report.ParseKind("Orders")
	require.NoError(t, err)
	assert.Equal(t, report.Orders, k)
	_, err = report.ParseKind("users")
	assert.ErrorIs(t, err, domain.ErrValidation)

	f, err := report.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, report.CSV, f)
	_, err = report.ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, report.XLSX.ContentType(), "spreadsheetml")
}
