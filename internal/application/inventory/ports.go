package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción del almacén.
type TxRepos struct {
	Stock     repository.StockRepository
	Movements repository.StockMovementRepository
	Products  repository.ProductRepository
	Costs     repository.CostHistoryRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ninguna escritura aplicada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// LockManager exclusión mutua por clave con espera acotada.
// Acquire devuelve domain.ErrLockTimeout si no obtiene el bloqueo dentro de timeout;
// la función release siempre debe invocarse (es segura ante llamadas repetidas).
type LockManager interface {
	Acquire(ctx context.Context, key string, timeout time.Duration) (release func(), err error)
}

// AlertNotifier recibe avisos de stock bajo. Es best-effort: sus errores solo se registran.
type AlertNotifier interface {
	LowStock(ctx context.Context, product *entity.Product, balance *entity.StockBalance) error
}

// ProductLockKey clave de bloqueo por producto, compartida por el Ledger y el motor de costo.
func ProductLockKey(productID string) string {
	return "product:" + productID
}
