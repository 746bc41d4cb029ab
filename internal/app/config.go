package app

import (
	"strings"

	"github.com/yungbote/lexgraph-backend/internal/data/db"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/envutil"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/platform/neo4jdb"
	"github.com/yungbote/lexgraph-backend/internal/realtime/bus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultVersionBumpRetries = 3
)

type Config struct {
	HTTPAddr    string
	LogMode     string
	Environment string
	Version     string

	DBDriver   string
	Postgres   db.PostgresConfig
	SQLitePath string

	Neo4j neo4jdb.Config
	Redis bus.RedisConfig
	Otel  observability.OtelConfig

	VersionBumpMaxRetries int
	Ingest                pipeline.Config
	JurisdictionMinScore  float64
	AllowOrigins          []string
}

// LoadConfig reads the process environment. JURISDICTION_SIGNALS_YAML and
// INGEST_LANGUAGES_YAML are read directly by the table loaders.
func LoadConfig(log *logger.Logger) Config {
	env := envutil.String("APP_ENV", "development")
	version := envutil.String("APP_VERSION", "dev")
	cfg := Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: env,
		Version:     version,

		DBDriver:   strings.ToLower(envutil.String("DB_DRIVER", DriverPostgres)),
		Postgres:   db.PostgresConfigFromEnv(),
		SQLitePath: envutil.String("SQLITE_PATH", "lexgraph.db"),

		Neo4j: neo4jdb.ConfigFromEnv(),
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", bus.DefaultChannel),
		},
		Otel: observability.OtelConfigFromEnv("lexgraph", env, version),

		VersionBumpMaxRetries: envutil.Int("VERSION_BUMP_MAX_RETRIES", defaultVersionBumpRetries),
		Ingest:                pipeline.ConfigFromEnv(),
		JurisdictionMinScore:  envutil.Float("JURISDICTION_MIN_SCORE", jurisdiction.DefaultMinScore),
		AllowOrigins:          envutil.List("CORS_ALLOW_ORIGINS", nil),
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		if log != nil {
			log.Warn("unknown DB_DRIVER, using postgres", "driver", cfg.DBDriver)
		}
		cfg.DBDriver = DriverPostgres
	}
	if cfg.VersionBumpMaxRetries < 1 {
		cfg.VersionBumpMaxRetries = defaultVersionBumpRetries
	}
	return cfg
}
