package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/logging"
)

// EnvPrefix prefixes every environment override, e.g. JOBSHOP_STORE_DSN
const EnvPrefix = "JOBSHOP"

type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	Store  StoreConfig    `mapstructure:"store"`
	Log    logging.Config `mapstructure:"log"`
	Quote  QuoteConfig    `mapstructure:"quote"`
	Sync   SyncConfig     `mapstructure:"sync"`
	Status StatusConfig   `mapstructure:"status"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver  string `mapstructure:"driver"` // memory or postgres
	DSN     string `mapstructure:"dsn"`
	Verbose bool   `mapstructure:"verbose"`
}

// QuoteConfig holds the default rates as decimal strings so they load exactly
type QuoteConfig struct {
	LaborRate     string `mapstructure:"labor_rate"`
	MachineRate   string `mapstructure:"machine_rate"`
	MarkupPercent string `mapstructure:"markup_percent"`
}

type SyncConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Epsilon  string        `mapstructure:"epsilon"`
}

type StatusConfig struct {
	Consuming []string `mapstructure:"consuming"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.verbose", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.development", false)

	v.SetDefault("quote.labor_rate", "0")
	v.SetDefault("quote.machine_rate", "0")
	v.SetDefault("quote.markup_percent", "0")

	v.SetDefault("sync.debounce", time.Second)
	v.SetDefault("sync.epsilon", "0.0001")

	v.SetDefault("status.consuming", []string{string(entities.JobFinished), string(entities.JobDelivered)})
}

// Load reads config.yaml from ./configs or the working directory, if present,
// then applies JOBSHOP_ environment overrides. An explicit path takes precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that are parsed lazily elsewhere
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	if _, err := c.QuoteDefaults(); err != nil {
		return err
	}
	if _, err := c.SyncEpsilon(); err != nil {
		return err
	}
	if _, err := c.StatusPolicy(); err != nil {
		return err
	}
	return nil
}

// QuoteDefaults converts the configured rates for the quote calculator
func (c *Config) QuoteDefaults() (services.QuoteConfig, error) {
	labor, err := parseDecimal("quote.labor_rate", c.Quote.LaborRate)
	if err != nil {
		return services.QuoteConfig{}, err
	}
	machine, err := parseDecimal("quote.machine_rate", c.Quote.MachineRate)
	if err != nil {
		return services.QuoteConfig{}, err
	}
	markup, err := parseDecimal("quote.markup_percent", c.Quote.MarkupPercent)
	if err != nil {
		return services.QuoteConfig{}, err
	}
	return services.QuoteConfig{LaborRate: labor, MachineRate: machine, MarkupPercent: markup}, nil
}

// SyncEpsilon is the tolerance below which a line quantity counts as unchanged
func (c *Config) SyncEpsilon() (decimal.Decimal, error) {
	return parseDecimal("sync.epsilon", c.Sync.Epsilon)
}

// StatusPolicy builds the material-consuming status set
func (c *Config) StatusPolicy() (entities.StatusPolicy, error) {
	statuses := make([]entities.JobStatus, 0, len(c.Status.Consuming))
	for _, s := range c.Status.Consuming {
		status, err := entities.ParseJobStatus(s)
		if err != nil {
			return entities.StatusPolicy{}, fmt.Errorf("status.consuming: %w", err)
		}
		statuses = append(statuses, status)
	}
	return entities.NewStatusPolicy(statuses...), nil
}

func parseDecimal(key, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", key, value)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative, got %s", key, d)
	}
	return d, nil
}
