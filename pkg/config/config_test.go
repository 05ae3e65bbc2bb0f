package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorePostgres, cfg.Store.Driver)
	assert.Equal(t, config.LockLocal, cfg.Locks.Driver)
	assert.Equal(t, 5*time.Second, cfg.Locks.Timeout)
	assert.Equal(t, 50, cfg.Orders.MaxItems)
	assert.Equal(t, "1000", cfg.Orders.MaxItemQty.String())
	assert.Equal(t, "100000", cfg.Orders.MaxTotal.String())
	assert.Equal(t, "ORD", cfg.Orders.NumberPrefix)
	assert.InDelta(t, 0.80, cfg.Reconciliation.SimilarityThreshold, 1e-9)
	assert.Equal(t, time.Minute, cfg.Notify.MinInterval)
	assert.Equal(t, 20, cfg.Notify.HourlyCap)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, "./docs/swagger.json", cfg.HTTP.SwaggerFile)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("LOCK_DRIVER", "redis")
	t.Setenv("LOCK_TIMEOUT_MS", "250")
	t.Setenv("RECONCILE_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("ORDER_MAX_TOTAL", "500.50")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store.Driver)
	assert.Equal(t, config.LockRedis, cfg.Locks.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Locks.Timeout)
	assert.InDelta(t, 0.9, cfg.Reconciliation.SimilarityThreshold, 1e-9)
	assert.Equal(t, "500.5", cfg.Orders.MaxTotal.String())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"sin secret":     {"JWT_SECRET": ""},
		"umbral > 1":     {"JWT_SECRET": "s", "RECONCILE_SIMILARITY_THRESHOLD": "1.5"},
		"umbral cero":    {"JWT_SECRET": "s", "RECONCILE_SIMILARITY_THRESHOLD": "0"},
		"tope horario":   {"JWT_SECRET": "s", "NOTIFY_HOURLY_CAP": "0"},
		"driver":         {"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"},
		"total inválido": {"JWT_SECRET": "s", "ORDER_MAX_TOTAL": "mucho"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
