package inventory_test

import (
	"testing"

	"github.com/jhoicas/Suministros-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// 100 unidades a 2.00 + 50 a 5.00 => 3.00 y variación +50%.
func TestCostCalculator_PromedioPonderado(t *testing.T) {
	got := inventory.CostCalculator(d("100"), d("2.00"), d("50"), d("5.00"))
	assert.True(t, got.Equal(d("3")), "esperado 3.00, obtenido %s", got)

	variance := inventory.CostVariancePct(d("2.00"), got)
	assert.True(t, variance.Equal(d("50")), "esperado 50%%, obtenido %s", variance)
}

func TestCostCalculator_SinStockUsaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("9.99"), d("10"), d("4.25"))
	assert.True(t, got.Equal(d("4.25")))
}

func TestCostCalculator_DenominadorCeroNoDivide(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("1"), decimal.Zero, d("7.50"))
	assert.True(t, got.Equal(d("7.50")), "denominador cero debe resolver al costo de entrada")
}

func TestCostVariancePct_AnteriorCero(t *testing.T) {
	assert.True(t, inventory.CostVariancePct(decimal.Zero, d("3")).IsZero())
}

func TestCostVariancePct_Baja(t *testing.T) {
	got := inventory.CostVariancePct(d("4"), d("3"))
	assert.True(t, got.Equal(d("-25")), "obtenido %s", got)
}
