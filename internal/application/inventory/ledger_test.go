package inventory_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/lock"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (s *spyNotifier) LowStock(_ context.Context, p *entity.Product, _ *entity.StockBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p.ID)
	return nil
}

func (s *spyNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fixture struct {
	store    *memory.Store
	ledger   *inventory.Ledger
	notifier *spyNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ledger := inventory.NewLedger(store, lock.NewLocal(), time.Second,
		store.Products(), store.Stock(), store.Movements(), zerolog.Nop())
	n := &spyNotifier{}
	ledger.SetNotifier(n)
	return &fixture{store: store, ledger: ledger, notifier: n}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func (f *fixture) addProduct(t *testing.T, id string, unitCost, reorderPoint string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:                  id,
		SupplierCode:        "SUP-" + id,
		SupplierDescription: "Produto " + id,
		InternalCode:        "INT-" + id,
		Type:                entity.ProductTypeA,
		UnitMeasure:         "UN",
		UnitCost:            d(unitCost),
		ReorderPoint:        d(reorderPoint),
		Active:              true,
		DataComplete:        true,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) balance(t *testing.T, id string) *entity.StockBalance {
	t.Helper()
	b, err := f.ledger.Balance(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) movements(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	ms, err := f.ledger.Movements(context.Background(), repository.MovementFilter{ProductID: id})
	require.NoError(t, err)
	return ms
}

func in(productID, qty string) inventory.MovementInput {
	return inventory.MovementInput{ProductID: productID, Quantity: d(qty), Actor: "tester"}
}

func TestRecordIn_SumaEnManoYRegistraMovimiento(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")

	mov, err := f.ledger.RecordIn(context.Background(), in("p1", "10"))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementIn, mov.Kind)
	assert.True(t, mov.BalanceBefore.IsZero())
	assert.True(t, mov.BalanceAfter.Equal(d("10")))

	b := f.balance(t, "p1")
	assert.True(t, b.OnHand.Equal(d("10")))
	assert.True(t, b.Available().Equal(d("10")))
	assert.Equal(t, "tester", b.UpdatedBy)
}

func TestRecordIn_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")

	for _, q := range []string{"0", "-1"} {
		_, err := f.ledger.RecordIn(context.Background(), in("p1", q))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Empty(t, f.movements(t, "p1"))
}

func TestRecordIn_ProductoDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.RecordIn(context.Background(), in("nope", "1"))
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordOut_StockInsuficienteNoModificaSaldo(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "5"))
	require.NoError(t, err)

	_, err = f.ledger.RecordOut(context.Background(), in("p1", "6"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	b := f.balance(t, "p1")
	assert.True(t, b.OnHand.Equal(d("5")))
	assert.Len(t, f.movements(t, "p1"), 1)
}

func TestRecordOut_NoConsumeReservas(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "10"))
	require.NoError(t, err)
	_, err = f.ledger.Reserve(context.Background(), in("p1", "8"))
	require.NoError(t, err)

	_, err = f.ledger.RecordOut(context.Background(), in("p1", "3"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	mov, err := f.ledger.RecordOut(context.Background(), in("p1", "2"))
	require.NoError(t, err)
	require.NotNil(t, mov.UnitCost)
	assert.True(t, mov.UnitCost.Equal(d("2")))

	b := f.balance(t, "p1")
	assert.True(t, b.OnHand.Equal(d("8")))
	assert.True(t, b.Reserved.Equal(d("8")))
	assert.True(t, b.Available().IsZero())
}

func TestReserve_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "3"))
	require.NoError(t, err)

	_, err = f.ledger.Reserve(context.Background(), in("p1", "4"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.balance(t, "p1").Reserved.IsZero())
}

func TestRelease_MayorQueReservadoSeAcotaEnCero(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "10"))
	require.NoError(t, err)
	_, err = f.ledger.Reserve(context.Background(), in("p1", "3"))
	require.NoError(t, err)

	mov, err := f.ledger.Release(context.Background(), in("p1", "5"))
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.True(t, mov.Quantity.Equal(d("3")))
	assert.True(t, f.balance(t, "p1").Reserved.IsZero())

	movs, err := f.ledger.Movements(context.Background(), repository.MovementFilter{ProductID: "p1"})
	require.NoError(t, err)

	mov, err = f.ledger.Release(context.Background(), in("p1", "1"))
	require.NoError(t, err)
	assert.Nil(t, mov)

	after, err := f.ledger.Movements(context.Background(), repository.MovementFilter{ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, after, len(movs), "sin reserva no se agrega RELEASE")
}

func TestCommit_LiberaYDescuenta(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "10"))
	require.NoError(t, err)
	_, err = f.ledger.Reserve(context.Background(), in("p1", "4"))
	require.NoError(t, err)

	c := in("p1", "4")
	c.Key = "order:o1:p1:commit"
	c.OrderID = "o1"
	res, err := f.ledger.Commit(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, res.Release)
	require.NotNil(t, res.Out)
	assert.Equal(t, "o1", res.Out.OrderID)

	b := f.balance(t, "p1")
	assert.True(t, b.OnHand.Equal(d("6")))
	assert.True(t, b.Reserved.IsZero())
	assert.True(t, b.Available().Equal(d("6")))

	// reintento con la misma clave: no reaplica
	again, err := f.ledger.Commit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, res.Out.ID, again.Out.ID)
	assert.True(t, f.balance(t, "p1").OnHand.Equal(d("6")))
	assert.Len(t, f.movements(t, "p1"), 4)
}

func TestCommit_InsuficienteNoDejaEfectos(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "5"))
	require.NoError(t, err)
	_, err = f.ledger.Reserve(context.Background(), in("p1", "2"))
	require.NoError(t, err)

	_, err = f.ledger.Commit(context.Background(), in("p1", "6"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	b := f.balance(t, "p1")
	assert.True(t, b.OnHand.Equal(d("5")))
	assert.True(t, b.Reserved.Equal(d("2")))
	assert.Len(t, f.movements(t, "p1"), 2)
}

func TestIdempotencia_MismaClaveDevuelveOriginal(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")

	req := in("p1", "7")
	req.Key = "invoice:i1:1"
	first, err := f.ledger.RecordIn(context.Background(), req)
	require.NoError(t, err)
	second, err := f.ledger.RecordIn(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, f.balance(t, "p1").OnHand.Equal(d("7")))
	assert.Len(t, f.movements(t, "p1"), 1)

	// la misma clave en otra operación es un error de validación
	_, err = f.ledger.Reserve(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdjust_FijaEnManoRespetandoReservas(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "10"))
	require.NoError(t, err)
	_, err = f.ledger.Reserve(context.Background(), in("p1", "4"))
	require.NoError(t, err)

	_, err = f.ledger.Adjust(context.Background(), inventory.AdjustInput{ProductID: "p1", NewOnHand: d("3"), Note: "conteo"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	mov, err := f.ledger.Adjust(context.Background(), inventory.AdjustInput{ProductID: "p1", NewOnHand: d("7"), Note: "conteo"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjust, mov.Kind)
	assert.True(t, mov.Decrease)
	assert.True(t, mov.Quantity.Equal(d("3")))
	assert.True(t, f.balance(t, "p1").OnHand.Equal(d("7")))
}

func TestAlertaStockBajo(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "2", "5")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "10"))
	require.NoError(t, err)

	_, err = f.ledger.RecordOut(context.Background(), in("p1", "4"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.notifier.count())

	_, err = f.ledger.RecordOut(context.Background(), in("p1", "1"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count())
}

func TestConcurrencia_SalidasNuncaDejanSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", "1", "0")
	_, err := f.ledger.RecordIn(context.Background(), in("p1", "100"))
	require.NoError(t, err)

	var ok, insufficient int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordOut(context.Background(), in("p1", "3"))
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				atomic.AddInt32(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(33), ok)
	assert.Equal(t, int32(17), insufficient)
	assert.True(t, f.balance(t, "p1").OnHand.Equal(d("1")))
}

// Reconstruye el saldo a partir del libro y lo compara con la proyección.
func TestPropiedad_SaldoIgualAReplayDelLibro(t *testing.T) {
	f := newFixture(t)
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		f.addProduct(t, id, "1", "0")
	}
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for i := 0; i < 400; i++ {
		id := ids[rng.Intn(len(ids))]
		req := in(id, fmt.Sprintf("%d", rng.Intn(6)+1))
		switch rng.Intn(6) {
		case 0, 1:
			_, _ = f.ledger.RecordIn(ctx, req)
		case 2:
			_, _ = f.ledger.RecordOut(ctx, req)
		case 3:
			_, _ = f.ledger.Reserve(ctx, req)
		case 4:
			_, _ = f.ledger.Release(ctx, req)
		case 5:
			_, _ = f.ledger.Commit(ctx, req)
		}
	}

	for _, id := range ids {
		onHand, reserved := decimal.Zero, decimal.Zero
		for _, m := range f.movements(t, id) {
			require.True(t, m.Quantity.IsPositive(), "cantidad del movimiento debe ser positiva")
			switch m.Kind {
			case entity.MovementIn:
				onHand = onHand.Add(m.Quantity)
			case entity.MovementOut:
				onHand = onHand.Sub(m.Quantity)
			case entity.MovementAdjust:
				if m.Decrease {
					onHand = onHand.Sub(m.Quantity)
				} else {
					onHand = onHand.Add(m.Quantity)
				}
			case entity.MovementReserve:
				reserved = reserved.Add(m.Quantity)
			case entity.MovementRelease:
				reserved = reserved.Sub(m.Quantity)
			}
			require.False(t, reserved.IsNegative())
			require.False(t, onHand.LessThan(reserved))
		}
		b := f.balance(t, id)
		assert.True(t, b.OnHand.Equal(onHand), "en mano %s: %s vs %s", id, b.OnHand, onHand)
		assert.True(t, b.Reserved.Equal(reserved), "reservado %s: %s vs %s", id, b.Reserved, reserved)
		assert.False(t, b.Available().IsNegative())
	}
}
