package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 3200, cfg.HTTP.Port)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, AuthProviderLocal, cfg.Auth.Provider)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.Origins())
	assert.False(t, cfg.Storage.Enabled())
}

func TestFromViper_NodeEnvYPort(t *testing.T) {
	v := viper.New()
	v.Set("NODE_ENV", "production")
	v.Set("PORT", "4000")
	v.Set("SUPABASE_URL", "https://abc.supabase.co/")

	cfg := fromViper(v)
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, 4000, cfg.HTTP.Port)
	assert.Equal(t, "https://abc.supabase.co", cfg.Supabase.URL)
}

func TestValidate_SinCredenciales(t *testing.T) {
	cfg := fromViper(viper.New())
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_SupabaseIncompleto(t *testing.T) {
	v := viper.New()
	v.Set("DATABASE_URL", "postgres://localhost/nordiqua")
	v.Set("JWT_SECRET", "secret")
	v.Set("AUTH_PROVIDER", "supabase")

	err := fromViper(v).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")

	v.Set("SUPABASE_URL", "https://abc.supabase.co")
	v.Set("SUPABASE_ANON_KEY", "anon")
	assert.NoError(t, fromViper(v).Validate())
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "n", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/n?sslmode=require", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
