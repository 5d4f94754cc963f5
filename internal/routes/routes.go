package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/blockrepublic/subledger/internal/authz"
	"github.com/blockrepublic/subledger/internal/config"
	"github.com/blockrepublic/subledger/internal/ledger"
	"github.com/blockrepublic/subledger/internal/middleware"
	"github.com/blockrepublic/subledger/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	// Gateway overrides the default transfer connector; nil selects the
	// logging stub.
	Gateway transfer.Gateway
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Ledger service and handler
	var store ledger.Store
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB, d.Cfg.LedgerSymbol, d.Cfg.LedgerPrec)
	} else {
		store = ledger.NewMemoryStore()
	}

	gateway := d.Gateway
	if gateway == nil {
		gateway = transfer.NewLoggerGateway(d.Logger)
	}

	currency := ledger.Currency{Symbol: d.Cfg.LedgerSymbol, Precision: d.Cfg.LedgerPrec}
	ledgerSvc := ledger.NewService(store, gateway, authz.ContextAuthorizer{}, d.Cfg.LedgerAccount, currency, d.Logger)
	ledgerHandler := ledger.NewHandler(ledgerSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Transfer notifications come from the trusted issuer's forwarding shim,
	// not from end users.
	api.Post("/transfers/notify", middleware.IssuerToken(d.Cfg.IssuerToken), ledgerHandler.Notify)

	// Account operations require a bearer principal.
	protected := api.Group("", middleware.Principal(d.Cfg.JWTSecret))
	RegisterLedgerRoutes(protected, ledgerHandler)

	return nil
}
