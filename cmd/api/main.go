package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"

	"github.com/jhoicas/nordiqua-api/docs"
	appanalytics "github.com/jhoicas/nordiqua-api/internal/application/analytics"
	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/application/billing"
	"github.com/jhoicas/nordiqua-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/nordiqua-api/internal/infrastructure/pdf"
	"github.com/jhoicas/nordiqua-api/internal/infrastructure/postgres"
	"github.com/jhoicas/nordiqua-api/internal/infrastructure/storage"
	"github.com/jhoicas/nordiqua-api/internal/infrastructure/supabase"
	"github.com/jhoicas/nordiqua-api/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/nordiqua-api/internal/interfaces/http"
	"github.com/jhoicas/nordiqua-api/pkg/config"
	"github.com/jhoicas/nordiqua-api/pkg/logger"
)

// @title                       Nordiqua API
// @version                     1.0
// @description                 API de facturación: clientes, facturas, productos y tablero.
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
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("auth_provider", cfg.Auth.Provider).
		Msg("iniciando aplicación")

	// Sentry: solo con DSN configurado
	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.App.Env,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			log.Error().Err(err).Msg("inicializar Sentry")
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	if cfg.DB.RunMigrations {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	identity := newIdentityProvider(cfg, pool)
	archiver := newPDFArchiver(ctx, cfg.Storage, zl)

	authUC := auth.NewAuthUseCase(identity, userRepo, auth.JWTConfig{
		Secret: cfg.JWT.Secret,
		TTL:    time.Duration(cfg.JWT.ExpirationHours) * time.Hour,
		Issuer: cfg.JWT.Issuer,
	}, zl)
	userUC := usecase.NewUserUseCase(userRepo, identity, zl)
	clientUC := billing.NewClientUseCase(clientRepo)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo)

	// PDF de la factura; copia en S3 si hay bucket
	invoicePDFUC := billing.NewPDFUseCase(
		invoiceRepo, clientRepo, userRepo, infrapdf.NewMarotoPDFGenerator(), archiver, zl,
	)
	invoiceUBLUC := billing.NewUBLUseCase(invoiceRepo, clientRepo, userRepo, ubl.NewBuilder())

	validator, err := httpRouter.NewValidator()
	if err != nil {
		log.Fatal().Err(err).Msg("esquemas de validación")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    1 * 1024 * 1024,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: httpRouter.ErrorHandler(cfg.App.IsProduction(), zl),
	})

	if sentryEnabled {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New(recover.Config{
		EnableStackTrace:  !cfg.App.IsProduction(),
		StackTraceHandler: httpRouter.StackTraceHandler,
	}))
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} | ${path}\n",
	}))
	origins := strings.Join(cfg.HTTP.Origins(), ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders:    "Content-Disposition, " + httpRouter.HeaderDocumentDigest,
		AllowCredentials: origins != "*",
	}))

	// Swagger UI: http://localhost:<port>/swagger
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: docs.FilePath,
		Path:     "swagger",
		Title:    "Nordiqua API",
	}))
	app.Get("/api/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Nordiqua API", "status": "running"})
	})
	app.Get("/health", healthHandler(pool, cfg.App.Name))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		ClientUC:    clientUC,
		InvoiceUC:   invoiceUC,
		InvoicePDF:  invoicePDFUC,
		InvoiceUBL:  invoiceUBLUC,
		ProductUC:   productUC,
		DashboardUC: dashboardUC,
		Users:       userRepo,
		Validator:   validator,
		JWTSecret:   cfg.JWT.Secret,
		Log:         zl,
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

// newIdentityProvider elige el proveedor de identidades según AUTH_PROVIDER.
func newIdentityProvider(cfg *config.Config, pool *pgxpool.Pool) auth.IdentityProvider {
	if cfg.Auth.Provider == config.AuthProviderSupabase {
		return supabase.NewGoTrueClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.ServiceRoleKey)
	}
	return postgres.NewIdentityProvider(pool)
}

// newPDFArchiver devuelve nil (interfaz nil, no puntero nil) si el archivo en S3 está deshabilitado o falla.
func newPDFArchiver(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) billing.PDFArchiver {
	if !cfg.Enabled() {
		return nil
	}
	archiver, err := storage.NewS3Archiver(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("archivo S3 deshabilitado")
		return nil
	}
	log.Info().Str("bucket", cfg.Bucket).Msg("archivo de PDFs en S3 habilitado")
	return archiver
}

// healthHandler responde 200 si la base contesta y 503 si no.
func healthHandler(pool *pgxpool.Pool, service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": service, "database": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service, "database": "up"})
	}
}
