package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0,00",
		"12.5":       "12,50",
		"1234":       "1.234,00",
		"1234567.5":  "1.234.567,50",
		"-98765.432": "-98.765,43",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRenderOrder(t *testing.T) {
	deadline := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	o := &entity.Order{
		Number:           "ORD20250115-003",
		Type:             "A",
		RequesterEmail:   "ana@example.com",
		Sector:           "Limpieza",
		Status:           entity.OrderApproved,
		RequestedAt:      time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		DeliveryDeadline: &deadline,
		TotalValue:       decimal.RequireFromString("37.50"),
		Items: []entity.OrderItem{
			{ProductCode: "LIM-001", Description: "Limpador multiuso", Quantity: decimal.NewFromInt(5),
				UnitCost: decimal.RequireFromString("7.5"), LineTotal: decimal.RequireFromString("37.5")},
		},
	}
	out, err := NewOrderSheet("Suministros").RenderOrder(o)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
