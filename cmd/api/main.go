package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Suministros-api/docs"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/application/notification"
	"github.com/jhoicas/Suministros-api/internal/application/order"
	"github.com/jhoicas/Suministros-api/internal/application/reconciliation"
	"github.com/jhoicas/Suministros-api/internal/application/report"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/domain/schema"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/cache"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/lock"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/mail"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/nfe"
	infrapdf "github.com/jhoicas/Suministros-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Suministros-api/internal/interfaces/http"
	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	"github.com/rs/zerolog"
)

// stores adaptadores de almacenamiento según STORE_DRIVER.
type stores struct {
	tx           inventory.TxRunner
	products     repository.ProductRepository
	suppliers    repository.SupplierRepository
	stock        repository.StockRepository
	movements    repository.StockMovementRepository
	orders       repository.OrderRepository
	invoices     repository.InvoiceRepository
	codeMappings repository.CodeMappingRepository
	close        func()
}

// @title                       Suministros API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("locks", cfg.Locks.Driver).
		Msg("iniciando aplicación")

	if err := schema.ValidateAll(); err != nil {
		log.Fatal().Err(err).Msg("esquema de tablas inválido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén")
	}
	defer st.close()

	locks, closeLocks, err := openLocks(ctx, cfg, log.Component("locks"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir gestor de bloqueos")
	}
	defer closeLocks()

	// Caché del catálogo: la transacción invalida los productos que toca
	products := cache.NewProducts(st.products, cfg.Cache.Size, cfg.Cache.TTL)
	tx := cache.NewTxRunner(st.tx, products)

	var sender notification.Sender = mail.NewLogSender(log.Zerolog())
	if cfg.Notify.SMTPHost != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			User:     cfg.Notify.SMTPUser,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.SMTPFrom,
		})
	}
	notifier := notification.New(sender, notification.Config{
		Recipient:   cfg.Notify.Recipient,
		MinInterval: cfg.Notify.MinInterval,
		HourlyCap:   cfg.Notify.HourlyCap,
		QueueSize:   256,
		DedupeTTL:   time.Hour,
	}, log.Zerolog())
	notifier.Start(ctx)
	defer notifier.Close()

	ledger := inventory.NewLedger(tx, locks, cfg.Locks.Timeout, products, st.stock, st.movements, log.Zerolog())
	ledger.SetNotifier(notifier)

	orders := order.NewService(st.orders, products, ledger, locks, order.Config{
		MaxItems:     cfg.Orders.MaxItems,
		MaxItemQty:   cfg.Orders.MaxItemQty,
		MaxTotal:     cfg.Orders.MaxTotal,
		NumberPrefix: cfg.Orders.NumberPrefix,
		LockTimeout:  cfg.Locks.Timeout,
	}, log.Zerolog())
	orders.SetNotifier(notifier)
	orders.SetPDFRenderer(infrapdf.NewOrderSheet(cfg.App.Name))

	engine := reconciliation.NewEngine(
		st.invoices, st.suppliers, products, st.codeMappings,
		inventory.NewCostEngine(ledger), locks, nfe.NewParser(),
		reconciliation.Config{
			SimilarityThreshold: cfg.Reconciliation.SimilarityThreshold,
			ReviewBand:          cfg.Reconciliation.ReviewBand,
			LockTimeout:         cfg.Locks.Timeout,
		},
		log.Zerolog(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    10 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado; ejecutar go generate ./docs para servir /docs")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      usecase.NewProductUseCase(products, st.codeMappings),
		SupplierUC:     usecase.NewSupplierUseCase(st.suppliers),
		Ledger:         ledger,
		Replenishment:  inventory.NewReplenishmentUseCase(products, st.stock),
		Orders:         orders,
		Reconciliation: engine,
		Reports:        report.NewService(products, st.stock, st.movements, st.orders, st.invoices),
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		m := memory.New()
		return &stores{
			tx:           m,
			products:     m.Products(),
			suppliers:    m.Suppliers(),
			stock:        m.Stock(),
			movements:    m.Movements(),
			orders:       m.Orders(),
			invoices:     m.Invoices(),
			codeMappings: m.CodeMappings(),
			close:        func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Migrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	repos := postgres.NewRepositories(pool)
	return &stores{
		tx:           postgres.NewTxRunner(pool),
		products:     repos.Products,
		suppliers:    repos.Suppliers,
		stock:        repos.Stock,
		movements:    repos.Movements,
		orders:       repos.Orders,
		invoices:     repos.Invoices,
		codeMappings: repos.CodeMappings,
		close:        pool.Close,
	}, nil
}

func openLocks(ctx context.Context, cfg *config.Config, log zerolog.Logger) (inventory.LockManager, func(), error) {
	if cfg.Locks.Driver != config.LockRedis {
		return lock.NewLocal(), func() {}, nil
	}
	rdb, err := lock.NewRedisClient(ctx, lock.RedisConfig{
		Address:  cfg.Locks.RedisAddress,
		Password: cfg.Locks.RedisPassword,
		DB:       cfg.Locks.RedisDB,
		TTL:      cfg.Locks.TTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedis(rdb, cfg.Locks.TTL, log), func() { _ = rdb.Close() }, nil
}
