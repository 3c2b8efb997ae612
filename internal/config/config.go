// Package config loads and validates the vcsync configuration. Settings
// come from a YAML config file, environment variables with the VCSYNC_
// prefix, and .env files, in that order of precedence (env wins).
// Credentials only ever come from the environment, never the config file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/match"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Defaults applied before reading any source.
const (
	DefaultTimeoutSeconds = 30
	DefaultWorkers        = 4
	EnvPrefix             = "VCSYNC"
)

// Server is one configured virtualization server.
type Server struct {
	// Host is the server address; it doubles as the cache key.
	Host string `mapstructure:"host"`

	// MFAHint is an informational string shown to the operator before
	// authentication (for example which MFA device approves the login).
	// It has no protocol effect.
	MFAHint string `mapstructure:"mfa_hint"`
}

// Config is the validated application configuration.
type Config struct {
	// Servers lists the virtualization servers to reconcile against.
	Servers []Server `mapstructure:"servers"`

	// Cluster is the target-side cluster new VMs are created in.
	Cluster string `mapstructure:"cluster"`

	// TimeoutSeconds bounds each inventory fetch and target listing.
	TimeoutSeconds int `mapstructure:"timeout"`

	// VerifySSL controls TLS certificate verification on server sessions.
	VerifySSL bool `mapstructure:"verify_ssl"`

	// MatchMode selects identity matching: exact, hostname or regex.
	MatchMode string `mapstructure:"match_mode"`

	// MatchPattern is the capture-group pattern for regex mode.
	MatchPattern string `mapstructure:"match_pattern"`

	// NormalizeNames lowercases and strips the domain from imported names.
	NormalizeNames bool `mapstructure:"normalize_names"`

	// UpdateExisting lets imports update records that already exist.
	UpdateExisting bool `mapstructure:"update_existing"`

	// Defaults stamped onto newly created target records.
	DefaultTag      string `mapstructure:"default_tag"`
	DefaultRole     string `mapstructure:"default_role"`
	DefaultPlatform string `mapstructure:"default_platform"`

	// Workers caps concurrent target writes per apply batch.
	Workers int `mapstructure:"workers"`

	// InventoryFile points at a YAML inventory export standing in for a
	// live server session. Optional; offline/dev use.
	InventoryFile string `mapstructure:"inventory_file"`

	// AssetFile points at a YAML file standing in for the asset system.
	// Optional; offline/dev use.
	AssetFile string `mapstructure:"asset_file"`

	// Credentials from VCSYNC_USERNAME / VCSYNC_PASSWORD.
	Username string `mapstructure:"-"`
	Password string `mapstructure:"-"`

	// ConfigFile records which file was actually read, if any.
	ConfigFile string `mapstructure:"-"`
}

// Load reads configuration from .env files, the environment and the config
// file, then validates the result. An empty path searches for .vcsync.yaml
// in the current directory and the home directory.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", DefaultTimeoutSeconds)
	v.SetDefault("verify_ssl", true)
	v.SetDefault("match_mode", string(match.ModeExact))
	v.SetDefault("workers", DefaultWorkers)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+path, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".vcsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		// A missing default config file is fine; env alone can be enough.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot read config file", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "cannot parse config", err)
	}
	cfg.Username = v.GetString("username")
	cfg.Password = v.GetString("password")
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration once at startup so every later
// workflow can rely on it.
func (c *Config) Validate() error {
	if len(c.Servers) == 0 && c.InventoryFile == "" {
		return errors.NewValidationError("servers", nil, "at least one server (or an inventory_file) is required")
	}
	for _, s := range c.Servers {
		if strings.TrimSpace(s.Host) == "" {
			return errors.NewValidationError("servers", s, "server host cannot be empty")
		}
	}
	if c.TimeoutSeconds <= 0 {
		return errors.NewValidationError("timeout", c.TimeoutSeconds, "timeout must be positive")
	}
	if c.Workers <= 0 {
		return errors.NewValidationError("workers", c.Workers, "workers must be positive")
	}

	mode, err := match.ParseMode(c.MatchMode)
	if err != nil {
		return err
	}
	// Compiling here surfaces a bad pattern at startup, not mid-comparison.
	if _, err := match.New(mode, c.MatchPattern); err != nil {
		return err
	}
	return nil
}

// Timeout returns the fetch/listing bound as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Matcher builds the identity matcher from the validated settings.
func (c *Config) Matcher() (*match.Matcher, error) {
	mode, err := match.ParseMode(c.MatchMode)
	if err != nil {
		return nil, err
	}
	return match.New(mode, c.MatchPattern)
}

// Credentials returns the environment-sourced session credentials.
func (c *Config) Credentials() vcenter.Credentials {
	return vcenter.Credentials{Username: c.Username, Password: c.Password}
}

// ServerIDs returns the configured servers as cache keys.
func (c *Config) ServerIDs() []vcenter.ServerID {
	ids := make([]vcenter.ServerID, 0, len(c.Servers))
	for _, s := range c.Servers {
		ids = append(ids, vcenter.ServerID(s.Host))
	}
	return ids
}

// loadEnvFiles loads .env files before viper binds the environment.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(f)
	}
}
