// Package config binds Viper keys and environment variables to the runtime
// configuration: source paths, correction store selection, and the
// corrections service settings.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/sources"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreHTTP   = "http"
)

// Config is the full runtime configuration.
type Config struct {
	Sources sources.Config `mapstructure:"sources"`

	// SourceRoot is the local directory sources load from; SourceBaseURL
	// switches loading to HTTP when set.
	SourceRoot    string `mapstructure:"source_root"`
	SourceBaseURL string `mapstructure:"source_base_url"`

	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
}

// StoreConfig selects and parameterizes the correction store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
}

// ServerConfig holds the corrections service settings.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Token          string   `mapstructure:"token"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SetDefaults registers defaults on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source_root", ".")
	v.SetDefault("sources.partitions", []string{"USS", "USC", "USE", "USW"})
	v.SetDefault("sources.facility_path_prefix", "gdos/GDOS-")
	v.SetDefault("sources.facility_path_suffix", ".json")
	v.SetDefault("sources.web_primary_path", "web/LocationsData.json")
	v.SetDefault("sources.division_list_path", "web/division-locations.csv")
	v.SetDefault("sources.service_area_list_path", "web/service-area-locations.csv")
	v.SetDefault("sources.suppression_list_path", "gdos/do-not-import.csv")
	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.path", "corrections.json")
	v.SetDefault("server.addr", ":8787")
}

// Load reads configuration from the optional config file and the
// environment into a Config.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("LOCSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapIO("read", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Secrets come from the environment, never the config file.
	if token := os.Getenv("LOCSYNC_WORKER_TOKEN"); token != "" {
		cfg.Store.Token = token
		cfg.Server.Token = token
	}

	return &cfg, nil
}

// Validate checks the configuration can drive a run.
func (c *Config) Validate() error {
	if err := c.Sources.Validate(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			return errors.NewValidationError("store.path", c.Store.Path, "path is required for the "+c.Store.Backend+" backend")
		}
	case StoreHTTP:
		if c.Store.URL == "" {
			return errors.NewValidationError("store.url", c.Store.URL, "url is required for the http backend")
		}
	default:
		return errors.NewValidationError("store.backend", c.Store.Backend, "unknown store backend")
	}
	return nil
}
