package notification_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/notification"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spySender struct {
	mu   sync.Mutex
	msgs []notification.Message
	at   []time.Time
}

func (s *spySender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	s.at = append(s.at, time.Now())
	return nil
}

func (s *spySender) sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Message(nil), s.msgs...)
}

func product(id string) *entity.Product {
	return &entity.Product{
		ID: id, InternalCode: "INT-" + id, InternalDescription: "Produto " + id, UnitMeasure: "UN",
		ReorderPoint: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(5),
	}
}

func balance(id string, onHand int64) *entity.StockBalance {
	return &entity.StockBalance{ProductID: id, OnHand: decimal.NewFromInt(onHand), Reserved: decimal.Zero}
}

func TestLowStock_DeduplicaPorProducto(t *testing.T) {
	spy := &spySender{}
	svc := notification.New(spy, notification.Config{Recipient: "compras@example.com"}, zerolog.Nop())
	svc.Start(context.Background())

	ctx := context.Background()
	require.NoError(t, svc.LowStock(ctx, product("p1"), balance("p1", 4)))
	require.NoError(t, svc.LowStock(ctx, product("p1"), balance("p1", 3)))
	require.NoError(t, svc.LowStock(ctx, product("p2"), balance("p2", 1)))
	svc.Close()

	msgs := spy.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Stock bajo: INT-p1", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "Disponible: 4.00 UN")
	assert.Equal(t, "compras@example.com", msgs[1].To)
}

func TestService_TopeHorarioPorDestinatario(t *testing.T) {
	spy := &spySender{}
	svc := notification.New(spy, notification.Config{Recipient: "ops@example.com", HourlyCap: 2}, zerolog.Nop())
	svc.Start(context.Background())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.OrderChanged(ctx, &entity.Order{Number: fmt.Sprintf("ORD20250115-%03d", i+1), RequesterEmail: "ana@example.com", Status: entity.OrderRequested}))
	}
	require.NoError(t, svc.OrderChanged(ctx, &entity.Order{Number: "ORD20250115-009", Status: entity.OrderFinalized}))
	svc.Close()

	perRecipient := map[string]int{}
	for _, m := range spy.sent() {
		perRecipient[m.To]++
	}
	assert.Equal(t, 2, perRecipient["ana@example.com"])
	assert.Equal(t, 1, perRecipient["ops@example.com"])
}

func TestService_IntervaloMinimo(t *testing.T) {
	spy := &spySender{}
	interval := 30 * time.Millisecond
	svc := notification.New(spy, notification.Config{Recipient: "ops@example.com", MinInterval: interval}, zerolog.Nop())
	svc.Start(context.Background())

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, svc.LowStock(ctx, product(id), balance(id, 0)))
	}
	svc.Close()

	require.Len(t, spy.at, 3)
	for i := 1; i < len(spy.at); i++ {
		assert.GreaterOrEqual(t, spy.at[i].Sub(spy.at[i-1]), interval-5*time.Millisecond)
	}
}

func TestService_CerradoDescarta(t *testing.T) {
	spy := &spySender{}
	svc := notification.New(spy, notification.Config{Recipient: "ops@example.com"}, zerolog.Nop())
	svc.Start(context.Background())
	svc.Close()
	svc.Close()

	require.NoError(t, svc.LowStock(context.Background(), product("x"), balance("x", 0)))
	assert.Empty(t, spy.sent())
}
