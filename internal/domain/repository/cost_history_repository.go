package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// CostHistoryRepository historial de costos (solo inserción).
type CostHistoryRepository interface {
	Create(ctx context.Context, entry *entity.CostHistory) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.CostHistory, error)
}

// CodeMappingRepository tabla histórica código de proveedor -> producto.
type CodeMappingRepository interface {
	Find(ctx context.Context, supplierID, supplierCode string) (*entity.CodeMapping, error)
	Save(ctx context.Context, mapping *entity.CodeMapping) error
}
