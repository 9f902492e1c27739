// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	appconfig "github.com/teradata-labs/salesforce-mcp/pkg/config"
)

const (
	// ServiceName is the keyring service holding Salesforce secrets.
	ServiceName = "salesforce-mcp"
	// DefaultConfigFileName is the config file name without extension.
	DefaultConfigFileName = "salesforce-mcp"
	// EnvPrefix prefixes every environment variable except the bare
	// SALESFORCE_* credential names.
	EnvPrefix = "SALESFORCE_MCP"

	DefaultUpstreamTimeout = 120 * time.Second
	DefaultHTTPPort        = 8080
	DefaultSimplePort      = 8123
)

// Transport names accepted by server.transport.
const (
	TransportStdio  = "stdio"
	TransportHTTP   = "http"
	TransportSimple = "simple"
)

// Config is the merged configuration of flags, environment, config file and
// keyring.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Salesforce SalesforceConfig `mapstructure:"salesforce"`

	// DataDir is resolved from the environment, not from the config file.
	DataDir string `mapstructure:"-"`
}

// ServerConfig selects and tunes the MCP transport.
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	Host      string `mapstructure:"host"`
	// Port zero picks the transport default.
	Port            int           `mapstructure:"port"`
	RequireSession  bool          `mapstructure:"require_session"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ListenPort returns the configured port or the transport default.
func (s ServerConfig) ListenPort() int {
	if s.Port != 0 {
		return s.Port
	}
	if s.Transport == TransportSimple {
		return DefaultSimplePort
	}
	return DefaultHTTPPort
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SalesforceConfig holds the credentials and the upstream call timeout.
type SalesforceConfig struct {
	salesforce.Credentials `mapstructure:",squash"`
	Timeout                time.Duration `mapstructure:"timeout"`
}

// credentialEnv maps credential keys to the environment names used by
// existing Salesforce tooling.
var credentialEnv = map[string]string{
	"salesforce.access_token":   "SALESFORCE_ACCESS_TOKEN",
	"salesforce.instance_url":   "SALESFORCE_INSTANCE_URL",
	"salesforce.username":       "SALESFORCE_USERNAME",
	"salesforce.password":       "SALESFORCE_PASSWORD",
	"salesforce.security_token": "SALESFORCE_SECURITY_TOKEN",
	"salesforce.domain":         "SALESFORCE_DOMAIN",
	"salesforce.api_version":    "SALESFORCE_API_VERSION",
}

// LoadConfig merges defaults, the config file, the environment and the
// keyring into a Config. Flags must already be bound to v.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(appconfig.GetDataDir())
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/salesforce-mcp/")
		v.SetConfigName(DefaultConfigFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, bare := range credentialEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, bare); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.DataDir = appconfig.GetDataDir()

	// Non-fatal: the keyring may be unavailable, e.g. in containers.
	_ = loadSecretsFromKeyring(&config)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 0)
	v.SetDefault("server.require_session", false)
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	for key := range credentialEnv {
		v.SetDefault(key, "")
	}
	v.SetDefault("salesforce.timeout", DefaultUpstreamTimeout)
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP, TransportSimple:
	default:
		return fmt.Errorf("invalid transport: %q (must be stdio, http or simple)", c.Server.Transport)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Salesforce.Timeout < 0 {
		return fmt.Errorf("invalid salesforce.timeout: %s", c.Salesforce.Timeout)
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("invalid server.session_ttl: %s", c.Server.SessionTTL)
	}

	if c.Server.RequireSession {
		if _, err := c.Salesforce.Mode(); err != nil {
			return fmt.Errorf("%w (set SALESFORCE_ACCESS_TOKEN and SALESFORCE_INSTANCE_URL, or SALESFORCE_USERNAME and SALESFORCE_PASSWORD, or store them with 'salesforce-mcp config set-secret')", err)
		}
	}
	return nil
}

// SecretMapping binds a keyring entry to a Config field.
type SecretMapping struct {
	KeyringKey string
	Setter     func(*Config, string)
	IsSet      func(*Config) bool
}

// GetSecretMappings returns every secret that may live in the keyring.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: "access_token",
			Setter:     func(c *Config, val string) { c.Salesforce.AccessToken = val },
			IsSet:      func(c *Config) bool { return c.Salesforce.AccessToken != "" },
		},
		{
			KeyringKey: "password",
			Setter:     func(c *Config, val string) { c.Salesforce.Password = val },
			IsSet:      func(c *Config) bool { return c.Salesforce.Password != "" },
		},
		{
			KeyringKey: "security_token",
			Setter:     func(c *Config, val string) { c.Salesforce.SecurityToken = val },
			IsSet:      func(c *Config) bool { return c.Salesforce.SecurityToken != "" },
		},
	}
}

// loadSecretsFromKeyring fills secrets not already set by flags, env or file.
func loadSecretsFromKeyring(config *Config) error {
	var errs []error
	for _, mapping := range GetSecretMappings() {
		if mapping.IsSet(config) {
			continue
		}
		val, err := keyring.Get(ServiceName, mapping.KeyringKey)
		if err != nil {
			if !errors.Is(err, keyring.ErrNotFound) {
				errs = append(errs, fmt.Errorf("keyring %s: %w", mapping.KeyringKey, err))
			}
			continue
		}
		mapping.Setter(config, val)
	}
	return errors.Join(errs...)
}

// ListAvailableSecretKeys returns the keyring key names.
func ListAvailableSecretKeys() []string {
	mappings := GetSecretMappings()
	keys := make([]string, len(mappings))
	for i, m := range mappings {
		keys[i] = m.KeyringKey
	}
	return keys
}

// watchLogLevel applies logging.level changes from the config file while
// running. Other settings are read once at startup.
func watchLogLevel(v *viper.Viper, level zap.AtomicLevel, logger *zap.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		applyLogLevel(v, level, logger, e)
	})
	v.WatchConfig()
	logger.Debug("Watching config file", zap.String("file", v.ConfigFileUsed()))
}

func applyLogLevel(v *viper.Viper, level zap.AtomicLevel, logger *zap.Logger, e fsnotify.Event) {
	next := parseLogLevel(v.GetString("logging.level"))
	if next == level.Level() {
		return
	}
	level.SetLevel(next)
	logger.Info("Log level changed by config reload",
		zap.String("file", e.Name),
		zap.Stringer("level", next))
}
