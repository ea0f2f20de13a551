package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/krau/ocw-saver/config/storage"
	"github.com/krau/ocw-saver/pkg/scrape"
)

type Config struct {
	Workers int `toml:"workers" mapstructure:"workers" json:"workers"`
	Threads int `toml:"threads" mapstructure:"threads" json:"threads"`
	Retry   int `toml:"retry" mapstructure:"retry" json:"retry"`
	// RetryInterval is the initial backoff between attempts, in milliseconds.
	RetryInterval int `toml:"retry_interval" mapstructure:"retry_interval" json:"retry_interval"`
	// Timeout bounds each HTTP request, in seconds. 0 disables it.
	Timeout   int    `toml:"timeout" mapstructure:"timeout" json:"timeout"`
	UserAgent string `toml:"user_agent" mapstructure:"user_agent" json:"user_agent"`
	Proxy     string `toml:"proxy" mapstructure:"proxy" json:"proxy"`

	// Flag is tested against every anchor of a listing page, see MatchKind.
	Flag        string `toml:"flag" mapstructure:"flag" json:"flag"`
	MatchKind   string `toml:"match_kind" mapstructure:"match_kind" json:"match_kind"`
	UniqueLinks bool   `toml:"unique_links" mapstructure:"unique_links" json:"unique_links"`
	MultiAsset  string `toml:"multi_asset" mapstructure:"multi_asset" json:"multi_asset"`
	FailFast    bool   `toml:"fail_fast" mapstructure:"fail_fast" json:"fail_fast"`

	// Dest is the parent directory of the course tree; empty means ~/Downloads/MIT_OCW.
	Dest string `toml:"dest" mapstructure:"dest" json:"dest"`
	// Storage selects one of Storages by name; empty means a local storage rooted at Dest.
	Storage string `toml:"storage" mapstructure:"storage" json:"storage"`

	Log      logConfig               `toml:"log" mapstructure:"log" json:"log"`
	DB       dbConfig                `toml:"db" mapstructure:"db" json:"db"`
	Cache    cacheConfig             `toml:"cache" mapstructure:"cache" json:"cache"`
	Storages []storage.StorageConfig `toml:"-" mapstructure:"-" json:"storages"`
}

// Values of multi_asset, mirrored by the persister policies.
const (
	MultiAssetOverwrite = "overwrite"
	MultiAssetSuffix    = "suffix"
)

type logConfig struct {
	Level string `toml:"level" mapstructure:"level" json:"level"`
	// File also receives every record when set.
	File string `toml:"file" mapstructure:"file" json:"file"`
}

var (
	cfg  *Config
	once sync.Once
)

// C returns the loaded configuration. Before Init it returns the defaults.
func C() *Config {
	once.Do(func() {
		if cfg == nil {
			v := newViper()
			cfg = &Config{}
			if err := v.Unmarshal(cfg); err != nil {
				panic(fmt.Errorf("failed to unmarshal default config: %w", err))
			}
		}
	})
	return cfg
}

func (c *Config) GetStorageByName(name string) storage.StorageConfig {
	for _, s := range c.Storages {
		if s.GetName() == name {
			return s
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 || c.Threads < 1 || c.Retry < 1 {
		return fmt.Errorf("workers, threads and retry must be greater than 0, got workers=%d threads=%d retry=%d", c.Workers, c.Threads, c.Retry)
	}
	if c.Timeout < 0 || c.RetryInterval < 0 {
		return fmt.Errorf("timeout and retry_interval must not be negative")
	}
	if _, err := scrape.NewPredicate(c.MatchKind, c.Flag); err != nil {
		return fmt.Errorf("invalid flag: %w", err)
	}
	switch c.MultiAsset {
	case MultiAssetOverwrite, MultiAssetSuffix:
	default:
		return fmt.Errorf("multi_asset must be %q or %q, got %q", MultiAssetOverwrite, MultiAssetSuffix, c.MultiAsset)
	}
	if c.Storage != "" && c.GetStorageByName(c.Storage) == nil {
		return fmt.Errorf("storage %q is not configured or not enabled", c.Storage)
	}
	return nil
}

// DefaultDest is the course tree parent used when none is configured.
func DefaultDest() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Downloads", "MIT_OCW"), nil
}

func newViper() *viper.Viper {
	v := viper.GetViper()
	v.SetConfigType("toml")
	v.SetEnvPrefix("OCW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("workers", 1)
	v.SetDefault("threads", 1)
	v.SetDefault("retry", 1)
	v.SetDefault("retry_interval", 500)
	v.SetDefault("timeout", 60)
	v.SetDefault("user_agent", scrape.DefaultUserAgent)
	v.SetDefault("flag", "resources")
	v.SetDefault("match_kind", scrape.MatchKindSubstring)
	v.SetDefault("multi_asset", MultiAssetOverwrite)
	v.SetDefault("fail_fast", false)
	v.SetDefault("unique_links", false)

	v.SetDefault("log.level", "INFO")

	v.SetDefault("db.enable", true)
	v.SetDefault("db.path", "data/ocw-saver.db")

	v.SetDefault("cache.num_counters", 100_000)
	v.SetDefault("cache.max_cost", 1_000_000)
	v.SetDefault("cache.ttl", 0)
	return v
}

// Init loads configFile, or config.toml from the working directory when it is empty.
// A missing default config file is not an error.
func Init(ctx context.Context, configFile string) error {
	logger := log.FromContext(ctx)
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		logger.Debug("No config file found, using defaults")
	} else {
		logger.Debug("Loaded config file", "file", v.ConfigFileUsed())
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}
	storages, err := storage.LoadStorageConfigs(v)
	if err != nil {
		return fmt.Errorf("error loading storage configs: %w", err)
	}
	c.Storages = storages
	if err := c.Validate(); err != nil {
		return err
	}
	for _, s := range c.Storages {
		logger.Debugf("Storage %s (%s)", s.GetName(), s.GetType())
	}

	once.Do(func() {})
	cfg = c
	return nil
}

func Set(key string, value any) {
	viper.Set(key, value)
}
