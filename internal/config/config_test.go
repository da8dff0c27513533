package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Admin.TokenTTL != 12*time.Hour {
		t.Errorf("TokenTTL = %v, want 12h", cfg.Admin.TokenTTL)
	}
	if len(cfg.CORS.AllowedOrigins) != len(defaultOrigins) {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Generator.Mock || !cfg.Generator.Verify || cfg.Generator.CLIPath != "" {
		t.Errorf("Generator = %+v, want API client with verification", cfg.Generator)
	}
}

func TestLoad_GeneratorEnv(t *testing.T) {
	t.Setenv("QUIZ_GENERATOR_MOCK", "true")
	t.Setenv("QUIZ_GENERATOR_VERIFY", "false")
	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Generator.Mock || cfg.Generator.Verify {
		t.Errorf("Generator = %+v, want mock without verification", cfg.Generator)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "PORT: \"9000\"\nDB:\n  DRIVER: pgx\n  NAME: quiz_test\nADMIN:\n  TOKEN_TTL: 30m\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUIZ_PORT", "9100")
	t.Setenv("QUIZ_ADMIN_SECRET", "s3cret")

	cfg, err := load(viper.New(), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("Port = %q, want env override 9100", cfg.Port)
	}
	if cfg.Database.Driver != "pgx" || cfg.Database.Name != "quiz_test" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Admin.Secret != "s3cret" || cfg.Admin.TokenTTL != 30*time.Minute {
		t.Errorf("Admin = %+v", cfg.Admin)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("QUIZ_DB_DRIVER", "mysql")
	if _, err := load(viper.New(), t.TempDir()); err == nil {
		t.Errorf("load accepted driver mysql")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	base := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"url wins", DatabaseConfig{URL: "postgres://x/y", Driver: "postgres"}, "postgres://x/y"},
		{"lib/pq keywords", withDriver(base, "postgres"), "host=db port=5432 user=u password=p dbname=n sslmode=disable"},
		{"pgx url", withDriver(base, "pgx"), "postgres://u:p@db:5432/n?sslmode=disable"},
	}
	for _, tt := range tests {
		if got := tt.cfg.DSN(); got != tt.want {
			t.Errorf("%s: DSN() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func withDriver(d DatabaseConfig, driver string) DatabaseConfig {
	d.Driver = driver
	return d
}

func TestLoad_JWTKey(t *testing.T) {
	first, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(first.Admin.JWTKey) < MinJWTKeyLength {
		t.Errorf("generated key %q is shorter than %d", first.Admin.JWTKey, MinJWTKeyLength)
	}
	if first.Admin.JWTKey == second.Admin.JWTKey {
		t.Errorf("two loads without ADMIN.JWT_KEY drew the same key")
	}

	key := strings.Repeat("k", MinJWTKeyLength)
	t.Setenv("QUIZ_ADMIN_JWT_KEY", key)
	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Admin.JWTKey != key {
		t.Errorf("JWTKey = %q, want the configured key", cfg.Admin.JWTKey)
	}

	t.Setenv("QUIZ_ADMIN_JWT_KEY", "short")
	if _, err := load(viper.New(), t.TempDir()); err == nil {
		t.Errorf("load accepted a %d-byte ADMIN.JWT_KEY", len("short"))
	}
}
