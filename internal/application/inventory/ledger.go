package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger único punto de escritura del saldo de stock.
// Cada operación toma el bloqueo del producto, verifica la clave de idempotencia y aplica
// saldo + movimiento dentro de una transacción (TxRunner). Nunca deja saldos negativos.
type Ledger struct {
	tx          TxRunner
	locks       LockManager
	lockTimeout time.Duration
	products    repository.ProductRepository
	stock       repository.StockRepository
	movements   repository.StockMovementRepository
	notifier    AlertNotifier
	log         zerolog.Logger
	now         func() time.Time
}

// NewLedger construye el Ledger.
func NewLedger(
	tx TxRunner,
	locks LockManager,
	lockTimeout time.Duration,
	products repository.ProductRepository,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		tx:          tx,
		locks:       locks,
		lockTimeout: lockTimeout,
		products:    products,
		stock:       stock,
		movements:   movements,
		log:         log.With().Str("component", "ledger").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier registra el destinatario de alertas de stock bajo (opcional).
func (l *Ledger) SetNotifier(n AlertNotifier) { l.notifier = n }

// MovementInput entrada común de RecordIn/RecordOut/Reserve/Release/Commit.
// Key es la clave de idempotencia; si viene vacía se genera una nueva (sin protección ante reintentos).
type MovementInput struct {
	Key       string
	ProductID string
	Quantity  decimal.Decimal
	Actor     string
	Note      string
	OrderID   string
	InvoiceID string
	UnitCost  *decimal.Decimal
}

// AdjustInput ajuste por conteo físico: fija la cantidad en mano.
type AdjustInput struct {
	Key       string
	ProductID string
	NewOnHand decimal.Decimal
	Actor     string
	Note      string
}

// CommitResult movimientos generados por Commit. Release es nil si no había reserva.
type CommitResult struct {
	Release *entity.StockMovement
	Out     *entity.StockMovement
}

// RecordIn suma qty a la cantidad en mano y registra un movimiento IN.
func (l *Ledger) RecordIn(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		var err error
		mov, err = l.applyIn(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordOut resta qty de la cantidad en mano. Exige disponible >= qty (no consume reservas ajenas).
func (l *Ledger) RecordOut(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var (
		mov   *entity.StockMovement
		alert *lowStockHit
	)
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		if prev, err := l.replay(ctx, repos, in.Key, entity.MovementOut, in.ProductID); prev != nil || err != nil {
			mov = prev
			return err
		}
		product, bal, err := l.load(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		if bal.Available().LessThan(in.Quantity) {
			return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, bal.Available(), in.Quantity)
		}
		mov, err = l.applyOut(ctx, repos, product, bal, in, in.Key)
		if err != nil {
			return err
		}
		alert = checkLowStock(product, bal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notify(ctx, alert)
	return mov, nil
}

// Reserve aparta qty del disponible para un pedido.
func (l *Ledger) Reserve(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		if prev, err := l.replay(ctx, repos, in.Key, entity.MovementReserve, in.ProductID); prev != nil || err != nil {
			mov = prev
			return err
		}
		_, bal, err := l.load(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		if bal.Available().LessThan(in.Quantity) {
			return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, bal.Available(), in.Quantity)
		}
		before := bal.Available()
		bal.Reserved = bal.Reserved.Add(in.Quantity)
		mov = l.newMovement(in, in.Key, entity.MovementReserve, in.Quantity, before, bal.Available())
		return l.persist(ctx, repos, bal, in.Actor, mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Release devuelve qty reservada al disponible. Si qty supera lo reservado se libera solo lo
// existente y se registra un aviso ReservationMismatch.
// Si no había nada reservado devuelve (nil, nil) sin agregar movimiento RELEASE: los movimientos
// siempre tienen cantidad positiva. La clave no queda registrada, así que un reintento vuelve a evaluar.
func (l *Ledger) Release(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		if prev, err := l.replay(ctx, repos, in.Key, entity.MovementRelease, in.ProductID); prev != nil || err != nil {
			mov = prev
			return err
		}
		_, bal, err := l.load(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		mov, err = l.applyRelease(ctx, repos, bal, in, in.Key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Commit convierte una reserva en salida: libera min(qty, reservado) y registra OUT por qty,
// ambos en la misma transacción. Falla sin efectos si el disponible tras liberar no alcanza.
func (l *Ledger) Commit(ctx context.Context, in MovementInput) (*CommitResult, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	releaseKey, outKey := in.Key+":release", in.Key+":out"
	res := &CommitResult{}
	var alert *lowStockHit
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		prevOut, err := l.replay(ctx, repos, outKey, entity.MovementOut, in.ProductID)
		if err != nil {
			return err
		}
		if prevOut != nil {
			res.Out = prevOut
			res.Release, _ = repos.Movements.GetByID(ctx, releaseKey)
			return nil
		}
		product, bal, err := l.load(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		released := decimal.Min(in.Quantity, bal.Reserved)
		if bal.Available().Add(released).LessThan(in.Quantity) {
			return fmt.Errorf("%w: disponible %s + reservado %s, solicitado %s",
				domain.ErrInsufficientStock, bal.Available(), released, in.Quantity)
		}
		if released.IsPositive() {
			rel := in
			rel.Quantity = released
			if res.Release, err = l.applyRelease(ctx, repos, bal, rel, releaseKey); err != nil {
				return err
			}
		}
		if res.Out, err = l.applyOut(ctx, repos, product, bal, in, outKey); err != nil {
			return err
		}
		alert = checkLowStock(product, bal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notify(ctx, alert)
	return res, nil
}

// Adjust fija la cantidad en mano tras un conteo físico y registra la diferencia como ADJUST.
// No puede quedar por debajo de lo reservado.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if in.NewOnHand.IsNegative() {
		return nil, domain.Invalid("new_on_hand", "no puede ser negativa")
	}
	if in.Key == "" {
		in.Key = uuid.NewString()
	}
	var (
		mov   *entity.StockMovement
		alert *lowStockHit
	)
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		if prev, err := l.replay(ctx, repos, in.Key, entity.MovementAdjust, in.ProductID); prev != nil || err != nil {
			mov = prev
			return err
		}
		product, bal, err := l.load(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		if in.NewOnHand.LessThan(bal.Reserved) {
			return fmt.Errorf("%w: reservado %s", domain.Invalid("new_on_hand", "menor que la cantidad reservada"), bal.Reserved)
		}
		delta := in.NewOnHand.Sub(bal.OnHand)
		if delta.IsZero() {
			return domain.Invalid("new_on_hand", "igual a la cantidad en mano")
		}
		before := bal.OnHand
		bal.OnHand = in.NewOnHand
		mov = l.newMovement(MovementInput{ProductID: in.ProductID, Actor: in.Actor, Note: in.Note},
			in.Key, entity.MovementAdjust, delta.Abs(), before, bal.OnHand)
		mov.Decrease = delta.IsNegative()
		if err := l.persist(ctx, repos, bal, in.Actor, mov); err != nil {
			return err
		}
		if mov.Decrease {
			alert = checkLowStock(product, bal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notify(ctx, alert)
	return mov, nil
}

// Balance saldo actual de un producto.
func (l *Ledger) Balance(ctx context.Context, productID string) (*entity.StockBalance, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUnknownProduct
	}
	return l.stock.Get(ctx, productID)
}

// Balances todos los saldos registrados.
func (l *Ledger) Balances(ctx context.Context) ([]*entity.StockBalance, error) {
	return l.stock.List(ctx)
}

// Movements historial de movimientos filtrado.
func (l *Ledger) Movements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return l.movements.List(ctx, filter)
}

// locked toma el bloqueo del producto y ejecuta fn dentro de una transacción.
func (l *Ledger) locked(ctx context.Context, productID string, fn func(repos TxRepos) error) error {
	release, err := l.locks.Acquire(ctx, ProductLockKey(productID), l.lockTimeout)
	if err != nil {
		return err
	}
	defer release()
	return l.tx.Run(ctx, fn)
}

// applyIn lógica de entrada; el caller debe tener el bloqueo del producto.
func (l *Ledger) applyIn(ctx context.Context, repos TxRepos, in MovementInput) (*entity.StockMovement, error) {
	if prev, err := l.replay(ctx, repos, in.Key, entity.MovementIn, in.ProductID); prev != nil || err != nil {
		return prev, err
	}
	_, bal, err := l.load(ctx, repos, in.ProductID)
	if err != nil {
		return nil, err
	}
	before := bal.OnHand
	bal.OnHand = bal.OnHand.Add(in.Quantity)
	mov := l.newMovement(in, in.Key, entity.MovementIn, in.Quantity, before, bal.OnHand)
	if err := l.persist(ctx, repos, bal, in.Actor, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (l *Ledger) applyOut(ctx context.Context, repos TxRepos, product *entity.Product, bal *entity.StockBalance, in MovementInput, key string) (*entity.StockMovement, error) {
	before := bal.OnHand
	bal.OnHand = bal.OnHand.Sub(in.Quantity)
	if in.UnitCost == nil {
		cost := product.UnitCost
		in.UnitCost = &cost
	}
	mov := l.newMovement(in, key, entity.MovementOut, in.Quantity, before, bal.OnHand)
	if err := l.persist(ctx, repos, bal, in.Actor, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (l *Ledger) applyRelease(ctx context.Context, repos TxRepos, bal *entity.StockBalance, in MovementInput, key string) (*entity.StockMovement, error) {
	qty := in.Quantity
	if qty.GreaterThan(bal.Reserved) {
		l.log.Warn().
			Str("event", "ReservationMismatch").
			Str("product_id", in.ProductID).
			Str("order_id", in.OrderID).
			Str("requested", qty.String()).
			Str("reserved", bal.Reserved.String()).
			Msg("liberación mayor que la reserva; se libera solo lo reservado")
		qty = bal.Reserved
	}
	if !qty.IsPositive() {
		return nil, nil
	}
	before := bal.Available()
	bal.Reserved = bal.Reserved.Sub(qty)
	mov := l.newMovement(in, key, entity.MovementRelease, qty, before, bal.Available())
	if err := l.persist(ctx, repos, bal, in.Actor, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// replay devuelve el movimiento ya registrado con esa clave (reintento idempotente).
func (l *Ledger) replay(ctx context.Context, repos TxRepos, key string, kind entity.MovementKind, productID string) (*entity.StockMovement, error) {
	prev, err := repos.Movements.GetByID(ctx, key)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, nil
	}
	if prev.Kind != kind || prev.ProductID != productID {
		return nil, fmt.Errorf("%w: clave %s", domain.Invalid("key", "clave de idempotencia usada por otro movimiento"), key)
	}
	l.log.Debug().Str("key", key).Str("product_id", productID).Msg("movimiento repetido; se devuelve el original")
	return prev, nil
}

func (l *Ledger) load(ctx context.Context, repos TxRepos, productID string) (*entity.Product, *entity.StockBalance, error) {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, productID)
	}
	bal, err := repos.Stock.Get(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return product, bal, nil
}

func (l *Ledger) persist(ctx context.Context, repos TxRepos, bal *entity.StockBalance, actor string, mov *entity.StockMovement) error {
	if bal.Reserved.IsNegative() || bal.OnHand.LessThan(bal.Reserved) {
		return fmt.Errorf("saldo inconsistente para %s: en mano %s, reservado %s", bal.ProductID, bal.OnHand, bal.Reserved)
	}
	bal.UpdatedAt = mov.CreatedAt
	bal.UpdatedBy = actor
	if err := repos.Stock.Upsert(ctx, bal); err != nil {
		return fmt.Errorf("actualizar saldo: %w", err)
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return fmt.Errorf("registrar movimiento %s: %w", mov.Kind, err)
	}
	return nil
}

func (l *Ledger) newMovement(in MovementInput, key string, kind entity.MovementKind, qty, before, after decimal.Decimal) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            key,
		Kind:          kind,
		ProductID:     in.ProductID,
		Quantity:      qty,
		BalanceBefore: before,
		BalanceAfter:  after,
		Actor:         in.Actor,
		Note:          in.Note,
		OrderID:       in.OrderID,
		InvoiceID:     in.InvoiceID,
		UnitCost:      in.UnitCost,
		CreatedAt:     l.now(),
	}
}

func validateInput(in *MovementInput) error {
	if in.ProductID == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if in.Key == "" {
		in.Key = uuid.NewString()
	}
	return nil
}

type lowStockHit struct {
	product *entity.Product
	balance entity.StockBalance
}

func checkLowStock(p *entity.Product, bal *entity.StockBalance) *lowStockHit {
	if !p.ReorderPoint.IsPositive() || bal.Available().GreaterThan(p.ReorderPoint) {
		return nil
	}
	return &lowStockHit{product: p, balance: *bal}
}

// notify se llama fuera del bloqueo; un fallo del notificador no afecta la operación.
func (l *Ledger) notify(ctx context.Context, hit *lowStockHit) {
	if hit == nil || l.notifier == nil {
		return
	}
	if err := l.notifier.LowStock(ctx, hit.product, &hit.balance); err != nil {
		l.log.Warn().Err(err).Str("product_id", hit.product.ID).Msg("aviso de stock bajo no enviado")
	}
}
