package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ inventory.LockManager = (*Redis)(nil)

const (
	keyPrefix  = "suministros:lock:"
	retryEvery = 50 * time.Millisecond
)

// Redis bloqueos con redislock, para cuando la API corre con más de una réplica.
// El TTL acota cuánto queda tomado un bloqueo si el proceso muere sin liberarlo.
type Redis struct {
	locker *redislock.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// RedisConfig conexión y TTL de los bloqueos.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisClient crea el cliente go-redis y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return rdb, nil
}

// NewRedis construye el gestor sobre un cliente existente.
func NewRedis(client redislock.RedisClient, ttl time.Duration, log zerolog.Logger) *Redis {
	return &Redis{
		locker: redislock.New(client),
		ttl:    ttl,
		log:    log.With().Str("component", "redis_lock").Logger(),
	}
}

// Acquire reintenta cada 50ms hasta timeout.
func (r *Redis) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lk, err := r.locker.Obtain(waitCtx, keyPrefix+key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryEvery),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
		}
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo")
			}
		})
	}, nil
}
