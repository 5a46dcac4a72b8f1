package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/internal/worker"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// @title                       Stock Ledger API
// @version                     1.0
// @description                 Libro de existencias: artículos, ubicaciones, movimientos con aprobación y reservas.
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
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Stock.Storage).
		Msg("iniciando aplicación")

	tokens, err := jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.ExpectedIssuer(), time.Duration(cfg.JWT.LeewaySeconds)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, log, bootstrap.Options{LiveNotifications: true, Reports: true})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios de stock")
	}
	defer svc.Close()

	go svc.Hub.Run(ctx)

	// Con memoria no hay otro proceso que vea estos datos: el barrido corre aquí.
	if cfg.Stock.Storage == config.StorageMemory {
		sweeper := worker.NewExpirySweeper(svc.Reservations, time.Duration(cfg.Sweeper.IntervalSeconds)*time.Second, cfg.Sweeper.BatchSize, log.Zerolog())
		go sweeper.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs (generar con swag init)
	const specPath = "./docs/swagger.json"
	if _, err := os.Stat(specPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: specPath,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", specPath).Msg("sin especificación swagger, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	roles := append(append([]string{}, cfg.Stock.ManageRoles...), cfg.Stock.ViewRoles...)
	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:      svc.Catalog,
		Ledger:       svc.Ledger,
		Reservations: svc.Reservations,
		Balances:     svc.Balances,
		Auth:         svc.Auth,
		Hub:          svc.Hub,
		Tokens:       tokens,
		Roles:        roles,
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
	stop()

	log.Info().Msg("aplicación detenida")
}
