/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
// Package config loads the settings shared by the hubtables commands from
// flags, HUBTABLES_* environment variables and an optional .env file.
package config

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "HUBTABLES"

// Config holds the settings of every command.
type Config struct {
	// HubURL is the base URL of the Hub the dashboard fetches from.
	HubURL string `mapstructure:"hub-url"`
	// Listen is the dashboard server address.
	Listen string `mapstructure:"listen"`
	// HubListen is the demo Hub address.
	HubListen string `mapstructure:"hub-listen"`
	// StateDB is the SQLite file backing the local store. Empty keeps
	// local state in memory.
	StateDB string `mapstructure:"state-db"`
	// Fixtures is a directory holding a sources.yaml. Empty uses the
	// bundled fixtures.
	Fixtures      string        `mapstructure:"fixtures"`
	PersistPrefix string        `mapstructure:"persist-prefix"`
	ItemsPerPage  int           `mapstructure:"items-per-page"`
	HTTPTimeout   time.Duration `mapstructure:"http-timeout"`
	LogLevel      string        `mapstructure:"log-level"`
	LogFormat     string        `mapstructure:"log-format"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("hub-url", "http://127.0.0.1:8081")
	v.SetDefault("listen", "127.0.0.1:8080")
	v.SetDefault("hub-listen", "127.0.0.1:8081")
	v.SetDefault("state-db", "")
	v.SetDefault("fixtures", "")
	v.SetDefault("persist-prefix", "")
	v.SetDefault("items-per-page", 10)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
}

// Load reads envFile into the process environment when it exists, then
// decodes and validates v.
func Load(v *viper.Viper, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "failed to read %s", envFile)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result error
	if u, err := url.Parse(c.HubURL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, errors.Newf("hub-url %q is not an absolute URL", c.HubURL))
	}
	if c.ItemsPerPage < 1 {
		result = multierror.Append(result, errors.Newf("items-per-page must be positive, got %d", c.ItemsPerPage))
	}
	if c.HTTPTimeout <= 0 {
		result = multierror.Append(result, errors.New("http-timeout must be positive"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "log-level"))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		result = multierror.Append(result, errors.Newf("log-format must be console or json, got %q", c.LogFormat))
	}
	return result
}

// Logger builds the root logger writing to w.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if c.LogFormat != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
