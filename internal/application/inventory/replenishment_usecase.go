package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var idealFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase lista los productos activos cuyo disponible está en o bajo el punto de reorden.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, stockRepo repository.StockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, stockRepo: stockRepo}
}

// GenerateReplenishmentList devuelve las alertas de stock bajo con la cantidad sugerida de pedido,
// ordenadas por déficit relativo (disponible / punto de reorden), el más crítico primero.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		if !p.ReorderPoint.IsPositive() {
			continue
		}
		bal, err := uc.stockRepo.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		available := bal.Available()
		if available.GreaterThan(p.ReorderPoint) {
			continue
		}
		// Stock ideal = punto de reorden * 1.5, nunca menor que el mínimo
		idealStock := decimal.Max(p.ReorderPoint.Mul(idealFactor), p.MinStock)
		suggestedQty := idealStock.Sub(available)
		if suggestedQty.IsNegative() {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			Code:               p.Code(),
			ProductName:        p.DisplayName(),
			Available:          available,
			Reserved:           bal.Reserved,
			MinStock:           p.MinStock,
			ReorderPoint:       p.ReorderPoint,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           p.UnitCost,
			EstimatedOrderCost: suggestedQty.Mul(p.UnitCost).Round(2),
			BelowMinimum:       available.LessThan(p.MinStock),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := a.Available.Div(a.ReorderPoint)
		rb := b.Available.Div(b.ReorderPoint)
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		return a.Code < b.Code
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
