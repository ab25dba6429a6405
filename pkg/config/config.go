package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Proveedores de identidad soportados.
const (
	AuthProviderLocal    = "local"
	AuthProviderSupabase = "supabase"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	Supabase SupabaseConfig
	Sentry   SentryConfig
	Storage  StorageConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// IsProduction indica si los detalles internos de los errores deben ocultarse.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL   string
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	RunMigrations bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de los tokens de sesión.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host         string
	Port         int
	AllowOrigins string // lista separada por comas para CORS
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig selecciona el proveedor de identidades.
type AuthConfig struct {
	Provider string // local | supabase
}

// SupabaseConfig credenciales del servicio de autenticación de Supabase (GoTrue).
type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string // opcional: habilita el borrado de identidades huérfanas
}

// SentryConfig reporte de errores; DSN vacío = deshabilitado.
type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

// StorageConfig archivo de PDFs en S3; Bucket vacío = deshabilitado.
type StorageConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
}

// Enabled indica si hay un bucket configurado.
func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, PORT, DATABASE_URL, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	env := getString(v, "APP_ENV", "")
	if env == "" {
		env = getString(v, "NODE_ENV", "development")
	}
	port := getInt(v, "PORT", 0)
	if port == 0 {
		port = getInt(v, "HTTP_PORT", 3200)
	}

	return &Config{
		App: AppConfig{
			Env:      env,
			Name:     getString(v, "APP_NAME", "nordiqua-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:   getString(v, "DATABASE_URL", ""),
			Host:          getString(v, "DB_HOST", ""),
			Port:          getInt(v, "DB_PORT", 5432),
			User:          getString(v, "DB_USER", "postgres"),
			Password:      getString(v, "DB_PASSWORD", ""),
			DBName:        getString(v, "DB_NAME", "nordiqua"),
			SSLMode:       getString(v, "DB_SSLMODE", "disable"),
			MaxConns:      getInt(v, "DB_MAX_CONNS", 10),
			RunMigrations: getBool(v, "DB_RUN_MIGRATIONS", true),
		},
		JWT: JWTConfig{
			Secret:          getString(v, "JWT_SECRET", ""),
			ExpirationHours: getInt(v, "JWT_EXPIRATION_HOURS", 24),
			Issuer:          getString(v, "JWT_ISSUER", "nordiqua"),
		},
		HTTP: HTTPConfig{
			Host:         getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:         port,
			AllowOrigins: getString(v, "CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		},
		Auth: AuthConfig{
			Provider: strings.ToLower(getString(v, "AUTH_PROVIDER", AuthProviderLocal)),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(getString(v, "SUPABASE_URL", ""), "/"),
			AnonKey:        getString(v, "SUPABASE_ANON_KEY", ""),
			ServiceRoleKey: getString(v, "SUPABASE_SERVICE_ROLE_KEY", ""),
		},
		Sentry: SentryConfig{
			DSN:              getString(v, "SENTRY_DSN", ""),
			TracesSampleRate: getFloat(v, "SENTRY_TRACES_SAMPLE_RATE", 0.2),
		},
		Storage: StorageConfig{
			Bucket:          getString(v, "S3_BUCKET", ""),
			Region:          getString(v, "S3_REGION", "eu-west-3"),
			AccessKeyID:     getString(v, "S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getString(v, "S3_SECRET_ACCESS_KEY", ""),
			KeyPrefix:       getString(v, "S3_KEY_PREFIX", "invoices/"),
		},
	}
}

// Validate verifica las variables obligatorias. Sin credenciales del almacén de filas ni secreto JWT
// el proceso no debe arrancar.
func (c *Config) Validate() error {
	var errs []error
	if c.DB.DatabaseURL == "" && c.DB.Host == "" {
		errs = append(errs, errors.New("DATABASE_URL o DB_HOST es obligatorio"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET es obligatorio"))
	}
	if c.JWT.ExpirationHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_HOURS debe ser positivo"))
	}
	switch c.Auth.Provider {
	case AuthProviderLocal:
	case AuthProviderSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL y SUPABASE_ANON_KEY son obligatorios con AUTH_PROVIDER=supabase"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_PROVIDER desconocido: %q", c.Auth.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Origins devuelve los orígenes CORS limpios.
func (c HTTPConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}
