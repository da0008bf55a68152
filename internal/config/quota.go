package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// QuotaDefaults are the bootstrap print limits used until an administrator
// has saved explicit values, and the fallback for any unset key.
type QuotaDefaults struct {
	DailyLimit        int64   `mapstructure:"dailyLimit"`
	WeeklyLimit       int64   `mapstructure:"weeklyLimit"`
	OverageUnitCost   float64 `mapstructure:"overageUnitCost"`
	ApplyToAllSellers bool    `mapstructure:"applyToAllSellers"`
}

func DefaultQuotaDefaults() QuotaDefaults {
	return QuotaDefaults{
		DailyLimit:        30,
		WeeklyLimit:       150,
		OverageUnitCost:   0.50,
		ApplyToAllSellers: true,
	}
}

// QuotaDefaultsHolder serves the current quota defaults and hot-reloads
// them when the config file changes on disk.
type QuotaDefaultsHolder struct {
	current atomic.Value // holds QuotaDefaults
}

func NewQuotaDefaultsHolder() (*QuotaDefaultsHolder, error) {
	v := viper.New()

	v.SetConfigName("quota")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/megaprint/config") // Volume-mounted config
	v.AddConfigPath("/etc/megaprint")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("MEGAPRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultQuotaDefaults()
		v.SetDefault("quota.dailyLimit", defaults.DailyLimit)
		v.SetDefault("quota.weeklyLimit", defaults.WeeklyLimit)
		v.SetDefault("quota.overageUnitCost", defaults.OverageUnitCost)
		v.SetDefault("quota.applyToAllSellers", defaults.ApplyToAllSellers)
	}

	var cfg QuotaDefaults
	if err := v.UnmarshalKey("quota", &cfg); err != nil {
		return nil, err
	}
	if err := validateQuotaDefaults(cfg); err != nil {
		return nil, err
	}

	holder := &QuotaDefaultsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated QuotaDefaults
		if err := v.UnmarshalKey("quota", &updated); err != nil {
			log.Printf("[quota-config] reload failed: %v", err)
			return
		}
		if err := validateQuotaDefaults(updated); err != nil {
			log.Printf("[quota-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[quota-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *QuotaDefaultsHolder) Get() QuotaDefaults {
	return h.current.Load().(QuotaDefaults)
}

func validateQuotaDefaults(cfg QuotaDefaults) error {
	if cfg.DailyLimit < 0 {
		return errors.New("quota.dailyLimit cannot be negative")
	}
	if cfg.WeeklyLimit < 0 {
		return errors.New("quota.weeklyLimit cannot be negative")
	}
	if cfg.OverageUnitCost < 0 {
		return errors.New("quota.overageUnitCost cannot be negative")
	}
	return nil
}
