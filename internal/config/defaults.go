package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ExampleRange is one starter tier of the generated example table.
type ExampleRange struct {
	Min       int     `mapstructure:"min"`
	Max       *int    `mapstructure:"max"`
	UnitPrice float64 `mapstructure:"unitPrice"`
}

// PricingDefaults describes the example table created when the studio
// switches to global-table mode without having built a table yet.
type PricingDefaults struct {
	ExampleTableName string         `mapstructure:"exampleTableName"`
	ExampleRanges    []ExampleRange `mapstructure:"exampleRanges"`
}

func DefaultPricingDefaults() PricingDefaults {
	return PricingDefaults{
		ExampleTableName: "Tabela Exemplo",
		ExampleRanges: []ExampleRange{
			{Min: 1, Max: intPtr(5), UnitPrice: 35},
			{Min: 6, Max: intPtr(10), UnitPrice: 30},
			{Min: 11, Max: intPtr(20), UnitPrice: 25},
			{Min: 21, Max: nil, UnitPrice: 20},
		},
	}
}

func intPtr(v int) *int { return &v }

// DefaultsHolder exposes the current pricing defaults, hot reloaded when the
// config file changes on disk.
type DefaultsHolder struct {
	current atomic.Value // holds PricingDefaults
}

func NewDefaultsHolder() (*DefaultsHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fotura/config")
	v.AddConfigPath("/etc/fotura")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FOTURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPricingDefaults()
		v.SetDefault("pricing.exampleTableName", defaults.ExampleTableName)
		v.SetDefault("pricing.exampleRanges", defaults.ExampleRanges)
	}

	var cfg PricingDefaults
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingDefaults(cfg); err != nil {
		return nil, err
	}

	holder := &DefaultsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingDefaults
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-defaults] reload failed: %v", err)
			return
		}
		if err := validatePricingDefaults(updated); err != nil {
			log.Printf("[pricing-defaults] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

func (h *DefaultsHolder) Current() PricingDefaults {
	return h.current.Load().(PricingDefaults)
}

func validatePricingDefaults(cfg PricingDefaults) error {
	if strings.TrimSpace(cfg.ExampleTableName) == "" {
		return errors.New("pricing defaults: exampleTableName is required")
	}
	if len(cfg.ExampleRanges) == 0 {
		return errors.New("pricing defaults: at least one example range is required")
	}
	for _, r := range cfg.ExampleRanges {
		if r.Min < 1 {
			return errors.New("pricing defaults: range min must be >= 1")
		}
		if r.Max != nil && *r.Max < r.Min {
			return errors.New("pricing defaults: range max must be >= min")
		}
		if r.UnitPrice < 0 {
			return errors.New("pricing defaults: unit price must not be negative")
		}
	}
	return nil
}
