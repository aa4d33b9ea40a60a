// Package config provides configuration of the vault command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported networks.
const (
	MainNet  = "mainnet"
	TestNet  = "testnet"
	LocalNet = "localnet"
)

// Configuration keys.
const (
	KeyNetwork        = "network"
	KeyRPC            = "rpc"
	KeyWallet         = "wallet"
	KeyAccount        = "account"
	KeyPassword       = "password"
	KeyContract       = "contract"
	KeyDialTimeout    = "dial_timeout"
	KeyRequestTimeout = "request_timeout"
	KeyChunkSize      = "chunk_size"
	KeyLogLevel       = "log_level"
)

// envKeys are bound to VAULT_<KEY> environment variables.
var envKeys = []string{
	KeyRPC,
	KeyWallet,
	KeyAccount,
	KeyPassword,
	KeyContract,
	KeyDialTimeout,
	KeyRequestTimeout,
	KeyChunkSize,
	KeyLogLevel,
}

const (
	fileName  = "vault"
	envPrefix = "vault"
	appDir    = "ownervault"
)

var (
	// ErrNoNetwork is returned when neither network nor RPC endpoint is set.
	ErrNoNetwork = errors.New("no network")
	// ErrUnknownNetwork is returned for networks without known endpoint.
	ErrUnknownNetwork = errors.New("given network is not supported")
)

var endpoints = map[string]string{
	MainNet:  "https://mainnet1.neo.coz.io:443",
	TestNet:  "https://testnet1.neo.coz.io:443",
	LocalNet: "http://localhost:30333",
}

// Config is a configuration of the vault tool.
type Config struct {
	Network        string        `mapstructure:"network" yaml:"network"`
	RPC            string        `mapstructure:"rpc" yaml:"rpc,omitempty"`
	Wallet         string        `mapstructure:"wallet" yaml:"wallet"`
	Account        string        `mapstructure:"account" yaml:"account,omitempty"`
	Password       string        `mapstructure:"password" yaml:"-"`
	Contract       string        `mapstructure:"contract" yaml:"contract,omitempty"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ChunkSize      int           `mapstructure:"chunk_size" yaml:"chunk_size"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns default configuration values.
func Defaults() map[string]any {
	return map[string]any{
		KeyDialTimeout:    15 * time.Second,
		KeyRequestTimeout: 15 * time.Second,
		KeyChunkSize:      300,
		KeyLogLevel:       "info",
	}
}

// DefaultPath returns path to the user configuration file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName+".yaml"), nil
}

// Load reads configuration. Sources in ascending priority: defaults,
// configuration file, environment, flags of cmd. File is searched in the user
// config directory and the current one unless path is set explicitly.
// Environment variables are prefixed with VAULT_, network may be also set
// by NETWORK.
//
// Flags are matched with keys replacing dashes by underscores.
func Load(cmd *cobra.Command, path string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return c, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
	}

	if userPath, err := DefaultPath(); err == nil {
		v.AddConfigPath(filepath.Dir(userPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(KeyNetwork, "VAULT_NETWORK", "NETWORK"); err != nil {
		return c, fmt.Errorf("bind network env: %w", err)
	}
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return c, fmt.Errorf("bind %s env: %w", key, err)
		}
	}

	if cmd != nil {
		var err error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if err == nil {
				err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
			}
		})
		if err != nil {
			return c, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}

	c.Network = strings.ToLower(c.Network)

	return c, nil
}

// Endpoint returns RPC endpoint of the configured network. Explicit RPC
// setting takes precedence.
func (c Config) Endpoint() (string, error) {
	if c.RPC != "" {
		return c.RPC, nil
	}

	if c.Network == "" {
		return "", ErrNoNetwork
	}

	e, ok := endpoints[c.Network]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNetwork, c.Network)
	}

	return e, nil
}

// WriteFile saves c in YAML format to the given path creating missing
// directories. Password is never written.
func WriteFile(c Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}

	return os.WriteFile(path, data, 0o600)
}
