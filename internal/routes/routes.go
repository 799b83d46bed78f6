package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/srivaari-capital/backend/internal/account"
	"github.com/srivaari-capital/backend/internal/config"
	"github.com/srivaari-capital/backend/internal/loan"
	"github.com/srivaari-capital/backend/internal/middleware"
	"github.com/srivaari-capital/backend/internal/session"
	"github.com/srivaari-capital/backend/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. The record store
// backend follows DATABASE_URL (Postgres when set, the JSON data file
// otherwise) and the session backend follows REDIS_URL; production refuses to
// start without Redis because sessions must outlive the process.
func Setup(app *fiber.App, d Deps) error {
	if d.Cfg.Production() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.FrontendOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Admin-Pass",
	}))
	if d.Logger != nil {
		app.Use(middleware.Audit(d.Logger))
	}

	// Record store backend
	var (
		records store.Store
		err     error
	)
	if d.DB != nil {
		records, err = store.NewPostgresStore(context.Background(), d.DB)
	} else {
		records, err = store.NewFileStore(d.Cfg.DataFile)
	}
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}

	// Session backend
	var sessionStore session.Store
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache)
	} else {
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, d.Cfg.SessionTTL)

	accountSvc := account.NewService(records)
	loanSvc := loan.NewService(records)
	accountHandler := account.NewHandler(d.Cfg, accountSvc, sessions)
	loanHandler := loan.NewHandler(loanSvc)

	guard := middleware.SessionAuth(d.Cfg.SessionCookie, sessions)

	api := app.Group("/api")
	RegisterHealthRoutes(api, d)
	RegisterAccountRoutes(api, accountHandler, guard, middleware.LoginRateLimit(d.Cache, 5))
	RegisterLoanRoutes(api, loanHandler, guard, middleware.AdminAuth(d.Cfg.AdminPass))

	return nil
}
