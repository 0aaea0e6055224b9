package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DAILYKART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Promo    PromoWindowConfig
	Delivery DeliveryConfig
	Cart     CartConfig
	Catalog  CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Promo.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DAILYKART_APP_ENV" required:"true"`
	Port         string `envconfig:"DAILYKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DAILYKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DAILYKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"DAILYKART_REDIS_URL"`
	Address      string        `envconfig:"DAILYKART_REDIS_ADDR"`
	Password     string        `envconfig:"DAILYKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"DAILYKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DAILYKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DAILYKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DAILYKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DAILYKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DAILYKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PromoWindowConfig describes the recurring daily window during which the
// promotional price list is active. The window wraps midnight when the start
// hour is greater than the end hour (the default 18:00-09:00 does).
type PromoWindowConfig struct {
	StartHour    int           `envconfig:"DAILYKART_PROMO_START_HOUR" default:"18"`
	EndHour      int           `envconfig:"DAILYKART_PROMO_END_HOUR" default:"9"`
	PollInterval time.Duration `envconfig:"DAILYKART_PROMO_POLL_INTERVAL" default:"60s"`
}

func (p PromoWindowConfig) validate() error {
	if p.StartHour < 0 || p.StartHour > 23 {
		return fmt.Errorf("promo start hour out of range: %d", p.StartHour)
	}
	if p.EndHour < 0 || p.EndHour > 23 {
		return fmt.Errorf("promo end hour out of range: %d", p.EndHour)
	}
	if p.PollInterval <= 0 {
		return fmt.Errorf("promo poll interval must be positive: %s", p.PollInterval)
	}
	return nil
}

// DeliveryConfig carries the shipping-policy values used by the order total
// calculator. The standard charge is retained for struck-through display even
// while the waived flag keeps the effective charge at zero.
type DeliveryConfig struct {
	StandardChargePaise int64 `envconfig:"DAILYKART_DELIVERY_STANDARD_CHARGE_PAISE" default:"2500"`
	Waived              bool  `envconfig:"DAILYKART_DELIVERY_WAIVED" default:"true"`
}

// EffectiveChargePaise returns the delivery charge actually added to totals.
func (d DeliveryConfig) EffectiveChargePaise() int64 {
	if d.Waived {
		return 0
	}
	return d.StandardChargePaise
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"DAILYKART_CART_SNAPSHOT_TTL" default:"168h"`
}

// CatalogConfig points at the local product seed used until the catalog
// service client lands. Empty means an empty catalog.
type CatalogConfig struct {
	SeedPath string `envconfig:"DAILYKART_CATALOG_SEED_PATH"`
}
