package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ShardRange is one boundary shard: every commune whose department prefix
// number lies in [From, To] is written to the same file.
type ShardRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set.
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// EnablePprof mounts net/http/pprof under /debug/pprof/
		EnablePprof bool `env:"HTTP_ENABLE_PPROF" env-default:"false" yaml:"enablePprof"`
		// AllowedOrigins lists the CORS origins; empty allows any origin
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," yaml:"allowedOrigins"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"densitymap" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Boundaries configures the commune boundary shards and their source.
	Boundaries struct {
		// Dir holds the boundaries-<from>-<to>.json shards
		Dir string `env:"BOUNDARIES_DIR" env-default:"data/boundaries" yaml:"dir"`
		// CacheTTL is how long the merged shards are served before a reload
		CacheTTL time.Duration `env:"BOUNDARIES_CACHE_TTL" env-default:"1h" yaml:"cacheTTL"`
		// SourcePath is the GeoJSON FeatureCollection the shards are built from
		SourcePath string `env:"BOUNDARIES_SOURCE_PATH" env-default:"data/source/communes.geojson" yaml:"sourcePath"`
		// SourceURL, when set, is fetched instead of SourcePath
		SourceURL string `env:"BOUNDARIES_SOURCE_URL" yaml:"sourceURL"`
		// FetchTimeout bounds the download of SourceURL
		FetchTimeout time.Duration `env:"BOUNDARIES_FETCH_TIMEOUT" env-default:"2m" yaml:"fetchTimeout"`
		// MaxShardBytes rejects a build producing a larger shard
		MaxShardBytes int64 `env:"BOUNDARIES_MAX_SHARD_BYTES" env-default:"52428800" yaml:"maxShardBytes"`
		// Shards lists the department prefix ranges; empty uses the built-in split
		Shards []ShardRange `yaml:"shards"`
		// CodeProperties are the feature properties tried, in order, for the commune code
		CodeProperties []string `env:"BOUNDARIES_CODE_PROPERTIES" env-separator:"," yaml:"codeProperties"`
		// NameProperties are the feature properties tried, in order, for the commune name
		NameProperties []string `env:"BOUNDARIES_NAME_PROPERTIES" env-separator:"," yaml:"nameProperties"`
	} `yaml:"boundaries"`

	// Density configures the zoning dataset.
	Density struct {
		// Source is "file" (Path) or "postgres" (the town_density table)
		Source string `env:"DENSITY_SOURCE" env-default:"file" yaml:"source"`
		// Path is the consolidated density JSON file
		Path string `env:"DENSITY_PATH" env-default:"data/density.json" yaml:"path"`
		// Sources maps each profession to its raw CSV file
		Sources map[string]string `yaml:"sources"`
		// SourceEncoding is "utf-8" or "windows-1252"
		SourceEncoding string `env:"DENSITY_SOURCE_ENCODING" env-default:"utf-8" yaml:"sourceEncoding"`
	} `yaml:"density"`

	// Query bounds the size of aggregation responses.
	Query struct {
		// DefaultMaxResults applies when the caller sends no limit
		DefaultMaxResults int `env:"QUERY_DEFAULT_MAX_RESULTS" env-default:"500" yaml:"defaultMaxResults"`
		// HardMaxResults is the ceiling applied to every request
		HardMaxResults int `env:"QUERY_HARD_MAX_RESULTS" env-default:"2000" yaml:"hardMaxResults"`
	} `yaml:"query"`

	// Rebuild configures the periodic dataset rebuild job.
	Rebuild struct {
		// Enabled starts the job queue with the serve command
		Enabled bool `env:"REBUILD_ENABLED" env-default:"false" yaml:"enabled"`
		// Interval between two periodic rebuilds
		Interval time.Duration `env:"REBUILD_INTERVAL" env-default:"24h" yaml:"interval"`
		// MaxAttempts before a rebuild job is discarded
		MaxAttempts int `env:"REBUILD_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// Publish also replaces the town_density table on rebuild
		Publish bool `env:"REBUILD_PUBLISH" env-default:"false" yaml:"publish"`
	} `yaml:"rebuild"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Density sources.
const (
	DensitySourceFile     = "file"
	DensitySourcePostgres = "postgres"
)

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Density.Source {
	case DensitySourceFile, DensitySourcePostgres:
	default:
		return fmt.Errorf("density.source must be %q or %q, got %q",
			DensitySourceFile, DensitySourcePostgres, c.Density.Source)
	}
	if c.Query.DefaultMaxResults <= 0 || c.Query.HardMaxResults <= 0 {
		return fmt.Errorf("query limits must be positive")
	}
	if c.Query.DefaultMaxResults > c.Query.HardMaxResults {
		return fmt.Errorf("query.defaultMaxResults %d exceeds query.hardMaxResults %d",
			c.Query.DefaultMaxResults, c.Query.HardMaxResults)
	}
	if c.Boundaries.CacheTTL < 0 {
		return fmt.Errorf("boundaries.cacheTTL must not be negative")
	}

	return nil
}
