package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds server configuration.
type Config struct {
	Port            string          `mapstructure:"PORT"`
	Database        DatabaseConfig  `mapstructure:"DB"`
	Admin           AdminConfig     `mapstructure:"ADMIN"`
	CORS            CORSConfig      `mapstructure:"CORS"`
	Generator       GeneratorConfig `mapstructure:"GENERATOR"`
	ShutdownTimeout time.Duration   `mapstructure:"SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	// Driver is "postgres" (lib/pq) or "pgx" (pgx stdlib).
	Driver   string `mapstructure:"DRIVER"`
	URL      string `mapstructure:"URL"`
	Host     string `mapstructure:"HOST"`
	Port     string `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	Name     string `mapstructure:"NAME"`
	SSLMode  string `mapstructure:"SSLMODE"`
}

// DSN returns URL when set, otherwise a connection string built from the
// discrete fields in the form the selected driver accepts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "pgx" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type AdminConfig struct {
	// Secret is the plain admin password. PasswordHash, when set, wins.
	Secret       string        `mapstructure:"SECRET"`
	PasswordHash string        `mapstructure:"PASSWORD_HASH"`
	// JWTKey signs admin tokens. When unset a random key is drawn at startup
	// and tokens do not survive a restart.
	JWTKey       string        `mapstructure:"JWT_KEY"`
	TokenTTL     time.Duration `mapstructure:"TOKEN_TTL"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
}

type GeneratorConfig struct {
	Mock   bool   `mapstructure:"MOCK"`
	APIKey string `mapstructure:"API_KEY"`
	Model  string `mapstructure:"MODEL"`
	// CLIPath selects a local model CLI instead of the API.
	CLIPath string `mapstructure:"CLI_PATH"`
	Verify  bool   `mapstructure:"VERIFY"`
}

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"https://zhy2on.github.io",
	"https://ssafy-quiz-club.github.io",
	"https://quiz-api.kro.kr",
}

// Load reads config.yaml from the working directory when present, then
// applies QUIZ_-prefixed environment overrides (QUIZ_PORT, QUIZ_DB_URL, ...).
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, dir string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB.DRIVER", "postgres")
	v.SetDefault("DB.URL", "")
	v.SetDefault("DB.HOST", "localhost")
	v.SetDefault("DB.PORT", "5432")
	v.SetDefault("DB.USER", "quiz_user")
	v.SetDefault("DB.PASSWORD", "quiz_password")
	v.SetDefault("DB.NAME", "quiz_club")
	v.SetDefault("DB.SSLMODE", "disable")
	v.SetDefault("ADMIN.SECRET", "admin1234")
	v.SetDefault("ADMIN.PASSWORD_HASH", "")
	v.SetDefault("ADMIN.JWT_KEY", "")
	v.SetDefault("ADMIN.TOKEN_TTL", "12h")
	v.SetDefault("CORS.ALLOWED_ORIGINS", defaultOrigins)
	v.SetDefault("GENERATOR.MOCK", false)
	v.SetDefault("GENERATOR.API_KEY", "")
	v.SetDefault("GENERATOR.MODEL", "claude-sonnet-4-5")
	v.SetDefault("GENERATOR.CLI_PATH", "")
	v.SetDefault("GENERATOR.VERIFY", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Println("[config] config.yaml not found, using environment variables and defaults")
	}

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "pgx" {
		return nil, fmt.Errorf("unsupported DB.DRIVER %q", cfg.Database.Driver)
	}
	if err := cfg.Admin.ensureJWTKey(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MinJWTKeyLength is the shortest accepted ADMIN.JWT_KEY, in bytes.
const MinJWTKeyLength = 32

func (a *AdminConfig) ensureJWTKey() error {
	if a.JWTKey != "" {
		if len(a.JWTKey) < MinJWTKeyLength {
			return fmt.Errorf("ADMIN.JWT_KEY must be at least %d bytes", MinJWTKeyLength)
		}
		return nil
	}
	buf := make([]byte, MinJWTKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate jwt key: %w", err)
	}
	a.JWTKey = hex.EncodeToString(buf)
	log.Println("[config] ADMIN.JWT_KEY not set, using a random key; admin tokens end with this process")
	return nil
}
