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
	"github.com/tu-usuario/pos-caja/internal/application/catalog"
	"github.com/tu-usuario/pos-caja/internal/application/inventory"
	"github.com/tu-usuario/pos-caja/internal/application/pos"
	"github.com/tu-usuario/pos-caja/internal/application/register"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
	"github.com/tu-usuario/pos-caja/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-caja/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/pos-caja/internal/interfaces/http"
	"github.com/tu-usuario/pos-caja/pkg/config"
	"github.com/tu-usuario/pos-caja/pkg/logger"
)

// stores agrupa los repositorios y runners que varían según DB_DRIVER.
type stores struct {
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	stockRepo   repository.StockRepository
	sessionRepo repository.RegisterSessionRepository
	ledgerRepo  repository.RegisterLedgerRepository
	orderRepo   repository.OrderRepository

	inventoryTx inventory.TxRunner
	registerTx  register.TxRunner
	saleTx      pos.TxRunner

	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := buildStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización de persistencia")
	}
	defer st.close()

	productUC := catalog.NewUseCase(st.productRepo)
	inventoryUC := inventory.NewUseCase(st.inventoryTx, st.productRepo, st.movRepo, st.stockRepo)
	registerUC := register.NewUseCase(st.registerTx, st.sessionRepo, st.ledgerRepo)
	createSaleUC := pos.NewCreateSaleUseCase(st.saleTx, st.orderRepo, cfg.POS.OrderPrefix)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Caja API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		InventoryUC: inventoryUC,
		RegisterUC:  registerUC,
		CreateSale:  createSaleUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildStores arma la capa de persistencia según DB_DRIVER: "postgres"
// (default) o "memory" para desarrollo sin base de datos.
func buildStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DB.Driver == "memory" {
		store := memory.NewStore()
		return &stores{
			productRepo: store.Products(),
			movRepo:     store.Movements(),
			stockRepo:   store.Stocks(),
			sessionRepo: store.Sessions(),
			ledgerRepo:  store.Ledger(),
			orderRepo:   store.Orders(),
			inventoryTx: store,
			registerTx:  store,
			saleTx:      store,
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool)
	return &stores{
		productRepo: postgres.NewProductRepository(pool),
		movRepo:     postgres.NewInventoryMovementRepository(pool),
		stockRepo:   postgres.NewStockRepository(pool),
		sessionRepo: postgres.NewRegisterSessionRepository(pool),
		ledgerRepo:  postgres.NewRegisterLedgerRepository(pool),
		orderRepo:   postgres.NewOrderRepository(pool),
		inventoryTx: txRunner,
		registerTx:  txRunner,
		saleTx:      txRunner,
		close:       pool.Close,
	}, nil
}
