package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	VLM        VLMConfig        `mapstructure:"vlm"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Pagination PaginationConfig `mapstructure:"pagination"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // local, s3, r2, s3compatible
	LocalRoot string `mapstructure:"local_root"`
	Namespace string `mapstructure:"namespace"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type VLMConfig struct {
	Provider  string        `mapstructure:"provider"` // gemini, openai
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

type UploadConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeMB) * 1024 * 1024
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type PaginationConfig struct {
	DefaultPerPage int `mapstructure:"default_per_page"`
	MaxPerPage     int `mapstructure:"max_per_page"`
	PostsPerPage   int `mapstructure:"posts_per_page"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and deployment-specific values get conventional env names
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.bucket", "S3_BUCKET")
	v.BindEnv("storage.public_url", "S3_PUBLIC_URL")
	v.BindEnv("vlm.provider", "VLM_PROVIDER")
	v.BindEnv("vlm.model", "VLM_MODEL")
	v.BindEnv("vlm.base_url", "VLM_BASE_URL")
	v.BindEnv("vlm.api_key", "VLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/promptgen.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "promptgen")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_root", "./storage/public")
	v.SetDefault("storage.namespace", "uploads/images")
	v.SetDefault("storage.public_url", "/storage")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("vlm.provider", "gemini")
	v.SetDefault("vlm.model", "gemini-2.5-flash")
	v.SetDefault("vlm.timeout", 60*time.Second)
	v.SetDefault("vlm.max_tokens", 1024)

	v.SetDefault("upload.max_size_mb", 10)

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "promptgen")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 60)

	v.SetDefault("pagination.default_per_page", 10)
	v.SetDefault("pagination.max_per_page", 100)
	v.SetDefault("pagination.posts_per_page", 2)
}

// Validate checks cross-field requirements that defaults cannot cover.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalRoot == "" {
			return fmt.Errorf("storage: local_root is required for local storage")
		}
	case "s3", "r2", "s3compatible", "":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage: bucket is required for %q storage", c.Storage.Type)
		}
	default:
		return fmt.Errorf("storage: unknown type %q", c.Storage.Type)
	}
	if strings.Trim(c.Storage.Namespace, "/") == "" {
		return fmt.Errorf("storage: namespace is required")
	}

	switch c.VLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("vlm: unknown provider %q", c.VLM.Provider)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth: jwt_secret is required (set JWT_SECRET)")
	}
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("upload: max_size_mb must be positive")
	}
	if c.Pagination.DefaultPerPage <= 0 || c.Pagination.MaxPerPage < c.Pagination.DefaultPerPage {
		return fmt.Errorf("pagination: need 0 < default_per_page <= max_per_page")
	}
	return nil
}
