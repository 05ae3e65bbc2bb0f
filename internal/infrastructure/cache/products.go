// Package cache caché de productos con expiración, inyectada como decorador del repositorio.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository = (*Products)(nil)
	_ inventory.TxRunner           = (*TxRunner)(nil)
)

// Products cachea GetByID; las escrituras hechas a través del decorador invalidan la entrada.
// List no se cachea.
type Products struct {
	next repository.ProductRepository
	lru  *expirable.LRU[string, *entity.Product]
}

// NewProducts envuelve next con una caché de size entradas y expiración ttl.
func NewProducts(next repository.ProductRepository, size int, ttl time.Duration) *Products {
	if size <= 0 {
		size = 1024
	}
	return &Products{next: next, lru: expirable.NewLRU[string, *entity.Product](size, nil, ttl)}
}

func (c *Products) Create(ctx context.Context, p *entity.Product) error {
	if err := c.next.Create(ctx, p); err != nil {
		return err
	}
	c.Invalidate(p.ID)
	return nil
}

func (c *Products) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := c.lru.Get(id); ok {
		cp := *p
		return &cp, nil
	}
	p, err := c.next.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	cp := *p
	c.lru.Add(id, &cp)
	return p, nil
}

func (c *Products) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	return c.next.List(ctx, f)
}

func (c *Products) Update(ctx context.Context, p *entity.Product) error {
	defer c.Invalidate(p.ID)
	return c.next.Update(ctx, p)
}

func (c *Products) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	defer c.Invalidate(productID)
	return c.next.UpdateCost(ctx, productID, cost)
}

// Invalidate descarta la entrada de un producto.
func (c *Products) Invalidate(id string) { c.lru.Remove(id) }

// Len entradas vigentes.
func (c *Products) Len() int { return c.lru.Len() }

// Purge vacía la caché (apagado).
func (c *Products) Purge() { c.lru.Purge() }

// TxRunner invalida al terminar la transacción los productos escritos dentro de ella.
type TxRunner struct {
	next  inventory.TxRunner
	cache *Products
}

// NewTxRunner envuelve el ejecutor de transacciones del almacén.
func NewTxRunner(next inventory.TxRunner, cache *Products) *TxRunner {
	return &TxRunner{next: next, cache: cache}
}

func (t *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	var touched []string
	err := t.next.Run(ctx, func(repos inventory.TxRepos) error {
		repos.Products = &trackedProducts{ProductRepository: repos.Products, touched: &touched}
		return fn(repos)
	})
	for _, id := range touched {
		t.cache.Invalidate(id)
	}
	return err
}

type trackedProducts struct {
	repository.ProductRepository
	touched *[]string
}

func (p *trackedProducts) Create(ctx context.Context, product *entity.Product) error {
	*p.touched = append(*p.touched, product.ID)
	return p.ProductRepository.Create(ctx, product)
}

func (p *trackedProducts) Update(ctx context.Context, product *entity.Product) error {
	*p.touched = append(*p.touched, product.ID)
	return p.ProductRepository.Update(ctx, product)
}

func (p *trackedProducts) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	*p.touched = append(*p.touched, productID)
	return p.ProductRepository.UpdateCost(ctx, productID, cost)
}
