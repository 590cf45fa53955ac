package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Env         string `mapstructure:"env"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
	FrontendURL   string        `mapstructure:"frontend_url"`
}

type StorageConfig struct {
	UploadPath  string `mapstructure:"upload_path"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

type EmailConfig struct {
	Provider     string `mapstructure:"provider"`
	FromName     string `mapstructure:"from_name"`
	FromAddress  string `mapstructure:"from_address"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SESRegion    string `mapstructure:"ses_region"`
}

type RateLimitConfig struct {
	ApplyLimit  int           `mapstructure:"apply_limit"`
	ApplyWindow time.Duration `mapstructure:"apply_window"`
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	EmbedModel string `mapstructure:"embed_model"`
}

type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]interface{}{
	"server.port":            "3000",
	"server.env":             "development",
	"server.cors_origins":    "*",
	"database.driver":        "postgres",
	"database.host":          "localhost",
	"database.port":          "5432",
	"database.user":          "postgres",
	"database.password":      "postgres",
	"database.name":          "job_portal",
	"database.sslmode":       "disable",
	"database.sqlite_path":   "./job_portal.db",
	"redis.enabled":          false,
	"redis.addr":             "localhost:6379",
	"redis.db":               0,
	"auth.token_ttl":         "24h",
	"auth.cookie_name":       "token",
	"auth.reset_token_ttl":   "1h",
	"auth.frontend_url":      "http://localhost:5173",
	"storage.upload_path":    "./uploads/resumes",
	"storage.max_file_size":  10485760,
	"email.provider":         "log",
	"email.from_name":        "DEBO Engineering",
	"email.from_address":     "no-reply@debo.engineering",
	"email.smtp_port":        587,
	"email.ses_region":       "us-east-1",
	"ratelimit.apply_limit":  10,
	"ratelimit.apply_window": "1h",
	"ratelimit.login_limit":  5,
	"ratelimit.login_window": "15m",
	"gemini.embed_model":     "text-embedding-004",
	"qdrant.url":             "http://localhost:6334",
	"qdrant.collection":      "job_portal_jobs",
	"log.level":              "info",
	"log.format":             "console",
}

// Flat env names kept for existing .env files.
var envAliases = map[string]string{
	"server.port":           "PORT",
	"server.env":            "ENV",
	"server.cors_origins":   "CORS_ORIGINS",
	"database.driver":       "DB_DRIVER",
	"database.host":         "DB_HOST",
	"database.port":         "DB_PORT",
	"database.user":         "DB_USER",
	"database.password":     "DB_PASSWORD",
	"database.name":         "DB_NAME",
	"database.sslmode":      "DB_SSLMODE",
	"database.sqlite_path":  "SQLITE_PATH",
	"redis.enabled":         "REDIS_ENABLED",
	"redis.addr":            "REDIS_ADDR",
	"redis.password":        "REDIS_PASSWORD",
	"redis.db":              "REDIS_DB",
	"auth.jwt_secret":       "JWT_SECRET",
	"auth.token_ttl":        "JWT_TTL",
	"auth.frontend_url":     "FRONTEND_URL",
	"storage.upload_path":   "UPLOAD_PATH",
	"storage.max_file_size": "MAX_FILE_SIZE",
	"email.provider":        "EMAIL_PROVIDER",
	"email.from_address":    "EMAIL_FROM",
	"email.smtp_host":       "EMAIL_HOST",
	"email.smtp_port":       "EMAIL_PORT",
	"email.smtp_user":       "EMAIL_USER",
	"email.smtp_password":   "EMAIL_PASSWORD",
	"email.ses_region":      "AWS_REGION",
	"gemini.api_key":        "GEMINI_API_KEY",
	"qdrant.url":            "QDRANT_URL",
	"qdrant.api_key":        "QDRANT_API_KEY",
	"qdrant.collection":     "QDRANT_COLLECTION",
	"log.level":             "LOG_LEVEL",
	"log.format":            "LOG_FORMAT",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and defaults.")
	}

	return LoadFrom(viper.New(), ".", "./configs")
}

// LoadFrom reads config.yaml from the given paths into v, applying defaults
// and env overrides.
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Email.Provider {
	case "log", "smtp", "ses":
	default:
		return fmt.Errorf("unsupported email provider %q", c.Email.Provider)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}

	if c.Email.Provider == "smtp" && c.Email.SMTPHost == "" {
		return fmt.Errorf("EMAIL_HOST is required for the smtp provider")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}
