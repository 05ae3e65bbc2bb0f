package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_ExclusionMutuaPorClave(t *testing.T) {
	l := NewLocal()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "product:p1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.size())
}

func TestLocal_Timeout(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "order-number", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(context.Background(), "order-number", 20*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestLocal_ClavesDistintasNoSeBloquean(t *testing.T) {
	l := NewLocal()
	r1, err := l.Acquire(context.Background(), "product:a", time.Second)
	require.NoError(t, err)
	r2, err := l.Acquire(context.Background(), "product:b", 10*time.Millisecond)
	require.NoError(t, err)
	r1()
	r2()
	assert.Equal(t, 0, l.size())
}

func TestLocal_ReleaseRepetidoEsSeguro(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	release()
	release()

	again, err := l.Acquire(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	again()
}

func TestLocal_ContextoCancelado(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
