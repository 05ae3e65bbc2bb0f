package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// StockActual es la cantidad en mano ANTES de aplicar la entrada. Si el denominador es cero
// (o negativo por datos inconsistentes) el resultado es el costo de entrada.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoEntrada
	}
	if stockActual.LessThan(decimal.Zero) {
		stockActual = decimal.Zero
		sum = cantEntrada
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// CostVariancePct variación porcentual entre el costo anterior y el nuevo, a dos decimales.
// Devuelve cero cuando el costo anterior es cero (primer ingreso).
func CostVariancePct(anterior, nuevo decimal.Decimal) decimal.Decimal {
	if anterior.IsZero() {
		return decimal.Zero
	}
	return nuevo.Sub(anterior).Div(anterior).Mul(hundred).Round(2)
}
