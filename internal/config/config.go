package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Environment names accepted in ServerConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development production test"`
}

// IsProduction reports whether the server runs in the production environment.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// DatabaseConfig contains all database-related configuration settings.
//
// URL and ReplicaURL accept either a postgres:// URL or a keyword/value DSN.
// When URL is empty it is built from Host, Port, User, Password and Name.
//
// PoolSize is the number of idle connections kept per pool and MaxOverflow the
// number of extra connections that may be opened under load on top of it.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url" validate:"required"`
	ReplicaURL     string        `mapstructure:"replica_url"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	PoolSize       int           `mapstructure:"pool_size" validate:"gt=0"`
	MaxOverflow    int           `mapstructure:"max_overflow" validate:"gte=0"`
	ConnRecycle    time.Duration `mapstructure:"conn_recycle" validate:"gt=0"`
	PrePing        bool          `mapstructure:"pre_ping"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
}

// ComponentURL builds a postgres:// URL from the individual connection settings.
// It returns "" when Host is empty.
func (c DatabaseConfig) ComponentURL() string {
	if c.Host == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u.String()
}

// ReplicaOrPrimary returns the replica URL, falling back to the primary URL.
func (c DatabaseConfig) ReplicaOrPrimary() string {
	if c.ReplicaURL == "" {
		return c.URL
	}
	return c.ReplicaURL
}

// RateLimitConfig controls per-client admission control on the API routes.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"gt=0"`
}
