// Package config loads the oracle's per-chain validation configuration: how
// many RPC servers back each chain and how many of them must agree.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

// rawConfig is the on-disk shape: chain validation settings keyed by the
// chain's numeric wire id, since YAML map keys can't carry oracletypes.ChainId's
// custom codec directly.
type rawConfig struct {
	Server ServerConfig                                 `mapstructure:"server"`
	Events EventsConfig                                 `mapstructure:"events"`
	Chains map[uint64]oracletypes.ChainValidationConfig `mapstructure:"chains"`
}

// ServerConfig configures the inbound HTTP surface (internal/httpapi).
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	AuthSecret   string `mapstructure:"auth_secret"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// EventsConfig configures the optional NATS outcome publisher
// (internal/events). An empty URLs list disables publication.
type EventsConfig struct {
	URLs    []string `mapstructure:"urls"`
	Stream  string   `mapstructure:"stream"`
	Subject string   `mapstructure:"subject"`
}

// AppConfig is everything the oracle process needs at startup: per-chain
// validation settings plus the ambient server/events configuration.
type AppConfig struct {
	Chains oracletypes.ValidationConfig
	Server ServerConfig
	Events EventsConfig
}

// Load reads validation config from path (or, when path is empty, from
// config.yaml found in "." or "./config") and validates it, returning a
// *oraclerr.ConfigurationError for any violation.
func Load(path string) (oracletypes.ValidationConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("ORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, &oraclerr.ConfigurationError{Reason: fmt.Sprintf("reading config: %v", err)}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, &oraclerr.ConfigurationError{Reason: fmt.Sprintf("decoding config: %v", err)}
	}

	cfg := make(oracletypes.ValidationConfig, len(raw.Chains))
	for id, chainCfg := range raw.Chains {
		cfg[oracletypes.FromUint64(id)] = chainCfg
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadApp reads the full AppConfig (chains, server, events) from path.
func LoadApp(path string) (AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("ORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	if err := v.ReadInConfig(); err != nil {
		return AppConfig{}, &oraclerr.ConfigurationError{Reason: fmt.Sprintf("reading config: %v", err)}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return AppConfig{}, &oraclerr.ConfigurationError{Reason: fmt.Sprintf("decoding config: %v", err)}
	}

	chains := make(oracletypes.ValidationConfig, len(raw.Chains))
	for id, chainCfg := range raw.Chains {
		chains[oracletypes.FromUint64(id)] = chainCfg
	}
	if err := Validate(chains); err != nil {
		return AppConfig{}, err
	}

	return AppConfig{Chains: chains, Server: raw.Server, Events: raw.Events}, nil
}

// Validate enforces the invariants every chain's ChainValidationConfig must
// hold, plus the oracle-wide requirement that NEAR be configured (every
// Verify call resolves a wallet's auth methods via NEAR first).
func Validate(cfg oracletypes.ValidationConfig) error {
	if _, ok := cfg[oracletypes.Near]; !ok {
		return &oraclerr.ConfigurationError{Reason: "no NEAR configuration found (chain_id = 0)"}
	}

	for id, chainCfg := range cfg {
		if err := validateChain(id, chainCfg); err != nil {
			return err
		}
	}
	return nil
}

func validateChain(id oracletypes.ChainId, cfg oracletypes.ChainValidationConfig) error {
	if len(cfg.Servers) == 0 {
		return &oraclerr.ConfigurationError{Reason: fmt.Sprintf("chain %s: at least one server is required", id)}
	}
	if cfg.Threshold <= len(cfg.Servers)/2 {
		return &oraclerr.ConfigurationError{
			Reason: fmt.Sprintf("chain %s: threshold (%d) must be greater than half of servers.len() (%d)", id, cfg.Threshold, len(cfg.Servers)),
		}
	}

	seen := make(map[string]struct{}, len(cfg.Servers))
	for _, s := range cfg.Servers {
		if _, dup := seen[s]; dup {
			return &oraclerr.ConfigurationError{Reason: fmt.Sprintf("chain %s: duplicate server %q", id, s)}
		}
		seen[s] = struct{}{}
	}
	return nil
}
