// Package config provides the configuration options of the service
// from command-line flags with environment variable overrides.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// BaseURL is the base of the constructed public and admin links.
	BaseURL string

	// DatabaseDSN holds the Postgres connection string. Empty means
	// the in-memory store is used.
	DatabaseDSN string

	// RedisAddr is the cache address (host:port). Empty disables the
	// cache; every lookup goes straight to the store.
	RedisAddr string

	// CacheTTLSeconds is how long redirect targets stay cached.
	CacheTTLSeconds int

	// LogLevel is the zap log level.
	LogLevel string

	// EnablePprof indicates whether to enable pprof for profiling.
	EnablePprof bool

	// EnableHTTPS indicates whether to serve TLS via autocert.
	EnableHTTPS bool
}

// options holds the current configuration values.
var options = &Options{}

func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BaseURL, "b", "http://localhost:8080", "base url for generated links")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.RedisAddr, "r", "", "redis address")
	flag.IntVar(&options.CacheTTLSeconds, "t", 86400, "cache ttl in seconds")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	flag.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
}

// Parse parses the command-line flags and environment variables and
// returns the resulting Options. Environment variables win over flags.
func Parse() *Options {
	flag.Parse()

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		options.RedisAddr = redisAddr
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		seconds, err := strconv.Atoi(ttl)
		if err == nil && seconds > 0 {
			options.CacheTTLSeconds = seconds
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	if enableHTTPS := os.Getenv("ENABLE_HTTPS"); enableHTTPS != "" {
		httpsMode, err := strconv.ParseBool(enableHTTPS)
		if err != nil {
			options.EnableHTTPS = false
		}

		options.EnableHTTPS = httpsMode
	}

	return options
}
