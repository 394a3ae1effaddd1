package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Simplici0/staffquote/internal/pricing"
)

const (
	defaultDBPath = "./dev.db"
	defaultPort   = "8080"
	defaultEnv    = "development"
)

// Config holds application configuration sourced from an optional config
// file, a .env file and the process environment, in increasing precedence.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// RedisConfig configures the rule cache. An empty Address disables it.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PricingConfig carries the rule matching options and the global default
// parameters used when no rule applies.
type PricingConfig struct {
	HomeState             string  `mapstructure:"home_state"`
	DefaultRuleID         string  `mapstructure:"default_rule_id"`
	MinimumWage           float64 `mapstructure:"minimum_wage"`
	WageFloor             float64 `mapstructure:"wage_floor"`
	MealVoucher           float64 `mapstructure:"meal_voucher"`
	MealVoucherMonthly    bool    `mapstructure:"meal_voucher_monthly"`
	TransportDaily        float64 `mapstructure:"transport_daily"`
	FoodBasket            float64 `mapstructure:"food_basket"`
	Uniform               float64 `mapstructure:"uniform"`
	TransportDiscountRate float64 `mapstructure:"transport_discount_rate"`
	MealDiscountRate      float64 `mapstructure:"meal_discount_rate"`
	MedicalExams          float64 `mapstructure:"medical_exams"`
	OtherOperational      float64 `mapstructure:"other_operational"`
	SocialSecurity        float64 `mapstructure:"social_security"`
	HousingFund           float64 `mapstructure:"housing_fund"`
	AccidentInsurance     float64 `mapstructure:"accident_insurance"`
	PIS                   float64 `mapstructure:"pis"`
	COFINS                float64 `mapstructure:"cofins"`
	ISS                   float64 `mapstructure:"iss"`
	ProfitMargin          float64 `mapstructure:"profit_margin"`
}

// Defaults converts the configured values into pricing defaults.
func (p PricingConfig) Defaults() pricing.Defaults {
	return pricing.Defaults{
		MinimumWage:           p.MinimumWage,
		WageFloor:             p.WageFloor,
		MealVoucher:           p.MealVoucher,
		MealVoucherMonthly:    p.MealVoucherMonthly,
		TransportDaily:        p.TransportDaily,
		FoodBasket:            p.FoodBasket,
		Uniform:               p.Uniform,
		TransportDiscountRate: p.TransportDiscountRate,
		MealDiscountRate:      p.MealDiscountRate,
		MedicalExams:          p.MedicalExams,
		OtherOperational:      p.OtherOperational,
		Rates: pricing.Rates{
			SocialSecurity:    p.SocialSecurity,
			HousingFund:       p.HousingFund,
			AccidentInsurance: p.AccidentInsurance,
			PIS:               p.PIS,
			COFINS:            p.COFINS,
			ISS:               p.ISS,
			ProfitMargin:      p.ProfitMargin,
		},
	}
}

// IsDev reports whether the app runs in a development environment.
func (c *Config) IsDev() bool {
	switch strings.ToLower(c.App.Environment) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Load reads .env from the working directory, then config.yaml from ./configs
// or the working directory, then the environment.
func Load() (*Config, error) {
	return load(".env", "./configs", ".")
}

func load(envFile string, configDirs ...string) (*Config, error) {
	// Best-effort: production should use real env injection.
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Names kept from the original environment-only setup.
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("database.path", "DATABASE_PATH", "DB_PATH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Pricing.HomeState = strings.ToUpper(strings.TrimSpace(cfg.Pricing.HomeState))

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", defaultEnv)

	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", defaultDBPath)
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	d := pricing.StandardDefaults()
	v.SetDefault("pricing.home_state", pricing.DefaultHomeState)
	v.SetDefault("pricing.default_rule_id", pricing.DefaultRuleID)
	v.SetDefault("pricing.minimum_wage", d.MinimumWage)
	v.SetDefault("pricing.wage_floor", d.WageFloor)
	v.SetDefault("pricing.meal_voucher", d.MealVoucher)
	v.SetDefault("pricing.meal_voucher_monthly", d.MealVoucherMonthly)
	v.SetDefault("pricing.transport_daily", d.TransportDaily)
	v.SetDefault("pricing.food_basket", d.FoodBasket)
	v.SetDefault("pricing.uniform", d.Uniform)
	v.SetDefault("pricing.transport_discount_rate", d.TransportDiscountRate)
	v.SetDefault("pricing.meal_discount_rate", d.MealDiscountRate)
	v.SetDefault("pricing.medical_exams", d.MedicalExams)
	v.SetDefault("pricing.other_operational", d.OtherOperational)
	v.SetDefault("pricing.social_security", d.Rates.SocialSecurity)
	v.SetDefault("pricing.housing_fund", d.Rates.HousingFund)
	v.SetDefault("pricing.accident_insurance", d.Rates.AccidentInsurance)
	v.SetDefault("pricing.pis", d.Rates.PIS)
	v.SetDefault("pricing.cofins", d.Rates.COFINS)
	v.SetDefault("pricing.iss", d.Rates.ISS)
	v.SetDefault("pricing.profit_margin", d.Rates.ProfitMargin)
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Server.Port) == "" {
		return fmt.Errorf("server.port is required")
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if len(cfg.Pricing.HomeState) != 2 {
		return fmt.Errorf("pricing.home_state must be a two-letter state code, got %q", cfg.Pricing.HomeState)
	}
	if cfg.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	if rate := cfg.Pricing.Defaults().Rates.TaxRate(); rate < 0 || rate >= 1 {
		return fmt.Errorf("combined default tax rate %.4f must be in [0, 1)", rate)
	}
	return nil
}
