// Package lock implementaciones de inventory.LockManager: local (un proceso) y Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"golang.org/x/sync/semaphore"
)

var _ inventory.LockManager = (*Local)(nil)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Local bloqueos por clave dentro del proceso. Las entradas se eliminan cuando nadie las espera.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal crea el gestor de bloqueos en memoria.
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

// Acquire espera hasta timeout por la clave.
func (l *Local) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	e := l.ref(key)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := e.sem.Acquire(waitCtx, 1); err != nil {
		l.unref(key, e)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
		}
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.unref(key, e)
		})
	}, nil
}

func (l *Local) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size cantidad de claves vivas (para pruebas).
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
