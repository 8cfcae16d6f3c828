package config

import (
	"fmt"
	"time"
)

// DatabaseConfig selects the gorm driver and its connection settings.
// Driver "sqlite" uses Path; driver "postgres" uses URL when set, otherwise
// the discrete host/port/user fields.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// DSN returns the driver-specific data source name.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	default:
		if c.Path == "" || c.Path == ":memory:" {
			return "file::memory:?cache=shared"
		}
		return c.Path + "?_busy_timeout=5000"
	}
}
