package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "bolao"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Game         GameConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		cfg.DB.DSN = ""
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Game.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOLAO_APP_ENV" required:"true"`
	Port         string `envconfig:"BOLAO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BOLAO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOLAO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOLAO_DB_DSN"`
	Driver string `envconfig:"BOLAO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOLAO_DB_HOST"`
	LegacyPort     int    `envconfig:"BOLAO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOLAO_DB_USER"`
	LegacyPassword string `envconfig:"BOLAO_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOLAO_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOLAO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOLAO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOLAO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOLAO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOLAO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOLAO_REDIS_URL"`
	Address      string        `envconfig:"BOLAO_REDIS_ADDR"`
	Password     string        `envconfig:"BOLAO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOLAO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOLAO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOLAO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOLAO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOLAO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOLAO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// GameConfig carries the numeric rules of the bolão itself.
type GameConfig struct {
	TicketPrice         decimal.Decimal `envconfig:"BOLAO_GAME_TICKET_PRICE" default:"2.00"`
	SellerCommissionPct decimal.Decimal `envconfig:"BOLAO_GAME_SELLER_COMMISSION_PCT" default:"0.10"`
	OwnerCommissionPct  decimal.Decimal `envconfig:"BOLAO_GAME_OWNER_COMMISSION_PCT" default:"0.15"`

	PickCount  int `envconfig:"BOLAO_GAME_PICK_COUNT" default:"10"`
	MinValue   int `envconfig:"BOLAO_GAME_MIN_VALUE" default:"1"`
	MaxValue   int `envconfig:"BOLAO_GAME_MAX_VALUE" default:"25"`
	MaxRepeats int `envconfig:"BOLAO_GAME_MAX_REPEATS" default:"4"`

	BoardSize         int `envconfig:"BOLAO_GAME_BOARD_SIZE" default:"5"`
	SettlementRetries int `envconfig:"BOLAO_GAME_SETTLEMENT_RETRIES" default:"3"`
}

func (g GameConfig) validate() error {
	if g.TicketPrice.IsNegative() || g.TicketPrice.IsZero() {
		return fmt.Errorf("ticket price must be positive, got %s", g.TicketPrice)
	}
	if g.PickCount <= 0 {
		return fmt.Errorf("pick count must be positive, got %d", g.PickCount)
	}
	if g.MinValue > g.MaxValue {
		return fmt.Errorf("value range inverted: %d..%d", g.MinValue, g.MaxValue)
	}
	total := g.SellerCommissionPct.Add(g.OwnerCommissionPct)
	if total.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("commissions consume the whole revenue: %s", total)
	}
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BOLAO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BOLAO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BOLAO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	TicketExportTopic string `envconfig:"BOLAO_PUBSUB_TICKET_EXPORT_TOPIC" default:"bolao-ticket-export"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOLAO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOLAO_AUTO_MIGRATE" default:"false"`
	// ExportSink toggles the post-settlement ticket export publisher.
	ExportSink bool `envconfig:"BOLAO_FEATURE_EXPORT_SINK" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file:bolao.db?_fk=1"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"BOLAO_DB_HOST": db.LegacyHost,
		"BOLAO_DB_USER": db.LegacyUser,
		"BOLAO_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"BOLAO_DB_HOST", "BOLAO_DB_USER", "BOLAO_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either BOLAO_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
