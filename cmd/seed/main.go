// seed crea un administrador y datos de ejemplo (clientes, productos y facturas) para desarrollo.
//
// Uso: go run ./cmd/seed [-email admin@nordiqua.fr] [-password Secret1] [-name Admin]
// Usa la misma configuración que la API (DATABASE_URL, AUTH_PROVIDER, ...). Es idempotente
// respecto al administrador: si el email ya existe, inicia sesión y reutiliza la cuenta.
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/application/billing"
	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/application/usecase"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/catalog"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/infrastructure/postgres"
	"github.com/jhoicas/nordiqua-api/internal/infrastructure/supabase"
	"github.com/jhoicas/nordiqua-api/pkg/config"
	"github.com/jhoicas/nordiqua-api/pkg/logger"
)

func main() {
	email := flag.String("email", "admin@nordiqua.fr", "email del administrador")
	password := flag.String("password", "Admin123", "contraseña del administrador")
	name := flag.String("name", "Administrateur", "nombre del administrador")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "nordiqua-seed"})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	zl := log.Zerolog()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var identity auth.IdentityProvider = postgres.NewIdentityProvider(pool)
	if cfg.Auth.Provider == config.AuthProviderSupabase {
		identity = supabase.NewGoTrueClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.ServiceRoleKey)
	}

	userRepo := postgres.NewUserRepository(pool)
	authUC := auth.NewAuthUseCase(identity, userRepo, auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, zl)
	clientUC := billing.NewClientUseCase(postgres.NewClientRepository(pool))
	invoiceUC := billing.NewInvoiceUseCase(postgres.NewTxRunner(pool), postgres.NewInvoiceRepository(pool))
	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool))

	// ── Administrador ─────────────────────────────────────────────────────────
	session, err := authUC.Register(ctx, dto.RegisterRequest{Email: *email, Password: *password, Name: *name})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		session, err = authUC.Login(ctx, dto.LoginRequest{Email: *email, Password: *password})
	}
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("crear administrador")
	}
	ownerID := session.User.ID

	admin, err := userRepo.GetByID(ctx, ownerID)
	if err != nil || admin == nil {
		log.Fatal().Err(err).Msg("leer administrador")
	}
	if admin.Role != entity.RoleAdmin {
		admin.Role = entity.RoleAdmin
		admin.UpdatedAt = time.Now().UTC()
		if err := userRepo.Update(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("promover administrador")
		}
	}
	log.Info().Str("user_id", ownerID).Str("email", admin.Email).Msg("administrador listo")

	existing, err := clientUC.List(ctx, ownerID, catalog.ClientQuery{})
	if err != nil {
		log.Fatal().Err(err).Msg("listar clientes")
	}
	if len(existing) > 0 {
		log.Info().Int("clients", len(existing)).Msg("datos de ejemplo ya presentes, nada que hacer")
		return
	}

	// ── Clientes ──────────────────────────────────────────────────────────────
	clientIDs := make([]string, 0, len(sampleClients))
	for _, in := range sampleClients {
		c, err := clientUC.Create(ctx, ownerID, in)
		if err != nil {
			log.Fatal().Err(err).Str("client", in.Name).Msg("crear cliente")
		}
		clientIDs = append(clientIDs, c.ID)
	}

	// ── Productos ─────────────────────────────────────────────────────────────
	for _, in := range sampleProducts {
		if _, err := productUC.Create(ctx, ownerID, in); err != nil {
			log.Fatal().Err(err).Str("product", in.Name).Msg("crear producto")
		}
	}

	// ── Facturas ──────────────────────────────────────────────────────────────
	for i, in := range sampleInvoices(clientIDs) {
		inv, err := invoiceUC.Create(ctx, ownerID, in)
		if err != nil {
			log.Fatal().Err(err).Int("index", i).Msg("crear factura")
		}
		log.Debug().Str("number", inv.Number).Str("amount", inv.Amount.StringFixed(2)).Msg("factura creada")
	}

	log.Info().
		Int("clients", len(sampleClients)).
		Int("products", len(sampleProducts)).
		Msg("datos de ejemplo creados")
}

var sampleClients = []dto.ClientRequest{
	{Name: "Entreprise ABC", Contact: "Jean Dupont", Email: "contact@abc.fr", Phone: "01 23 45 67 89", Address: "123 Rue de Paris, 75001 Paris"},
	{Name: "Studio Design", Contact: "Marie Martin", Email: "hello@studiodesign.fr", Phone: "01 98 76 54 32", Website: "https://studiodesign.fr", Address: "45 Avenue des Arts, 69002 Lyon"},
	{Name: "Tech Solutions", Contact: "Pierre Durand", Email: "info@techsolutions.fr", Phone: "04 56 78 90 12", Address: "8 Boulevard du Port, 13002 Marseille"},
}

var sampleProducts = []dto.CreateProductRequest{
	{Name: "Développement web", Type: entity.ProductTypeService, Description: "Développement d'applications web", Price: decimal.NewFromInt(75), Unit: "heure", Reference: "SRV-DEV"},
	{Name: "Maintenance mensuelle", Type: entity.ProductTypeService, Description: "Forfait de maintenance", Price: decimal.NewFromInt(450), Unit: "mois", Reference: "SRV-MAINT"},
	{Name: "Audit SEO", Type: entity.ProductTypeService, Price: decimal.NewFromInt(1200), Unit: "forfait", Reference: "SRV-SEO"},
	{Name: "Licence logicielle", Type: entity.ProductTypeProduct, Description: "Licence annuelle", Price: decimal.RequireFromString("299.99"), Reference: "PRD-LIC"},
}

func sampleInvoices(clientIDs []string) []dto.InvoiceRequest {
	today := time.Now().UTC()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format("2006-01-02") }
	return []dto.InvoiceRequest{
		{
			ClientID: clientIDs[0], Date: day(-45), DueDate: day(-15), Status: entity.InvoiceStatusPaid,
			Items: []dto.InvoiceItemDTO{
				{Description: "Développement web", Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(75)},
				{Description: "Maintenance mensuelle", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(450)},
			},
		},
		{
			ClientID: clientIDs[1], Date: day(-20), DueDate: day(10), Status: entity.InvoiceStatusPending,
			Items: []dto.InvoiceItemDTO{
				{Description: "Audit SEO", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1200)},
			},
		},
		{
			ClientID: clientIDs[2], Date: day(-60), DueDate: day(-30), Status: entity.InvoiceStatusOverdue,
			Notes: "Relance envoyée",
			Items: []dto.InvoiceItemDTO{
				{Description: "Licence logicielle", Quantity: decimal.NewFromInt(3), Price: decimal.RequireFromString("299.99")},
			},
		},
	}
}
