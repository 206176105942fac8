// Copyright 2026 The Botvisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the botvisord configuration: an optional manifest
// file, then overrides from the environment.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/botvisor/botvisor"
	"gopkg.in/yaml.v3"
)

const (
	DefaultName = "bot"
	DefaultPort = 3000

	// EnvPort sets the listener port.
	EnvPort = "PORT"
	// EnvHost restricts the listener to one interface.
	EnvHost = "BOTVISOR_HOST"
)

// DefaultCommand is what runs when the manifest names no command.
var DefaultCommand = []string{"python", "bot.py"}

// Duration is a time.Duration written as a Go duration string ("10s") in
// every manifest format.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, e := time.ParseDuration(string(b))
	if e != nil {
		return e
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Config struct {
	Name      string   `yaml:"name" toml:"name" json:"name"`
	Command   []string `yaml:"command" toml:"command" json:"command"`
	Directory string   `yaml:"directory" toml:"directory" json:"directory"`
	Env       []string `yaml:"env" toml:"env" json:"env"`
	StopTime  Duration `yaml:"stopTime" toml:"stopTime" json:"stopTime"`
	Detach    bool     `yaml:"detach" toml:"detach" json:"detach"`

	Host     string `yaml:"host" toml:"host" json:"host"`
	Port     int    `yaml:"port" toml:"port" json:"port"`
	Message  string `yaml:"message" toml:"message" json:"message"`
	MaxConns int    `yaml:"maxConns" toml:"maxConns" json:"maxConns"`
	Status   bool   `yaml:"status" toml:"status" json:"status"`
	Metrics  bool   `yaml:"metrics" toml:"metrics" json:"metrics"`
}

// Default returns the configuration used when there is no manifest.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if len(c.Command) == 0 {
		c.Command = append([]string(nil), DefaultCommand...)
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
}

// Load reads a manifest.  The format is chosen by extension: .yaml and
// .yml are YAML, .toml is TOML, and .json is JSON.  Missing values get
// their defaults.
func Load(path string) (*Config, error) {
	data, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}
	cfg, e := Parse(data, filepath.Ext(path))
	if e != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, e)
	}
	return cfg, nil
}

// Parse decodes a manifest in the format named by ext (with or without
// the leading dot).
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if e := dec.Decode(cfg); e != nil && !errors.Is(e, io.EOF) {
			return nil, e
		}
	case "toml":
		md, e := toml.Decode(string(data), cfg)
		if e != nil {
			return nil, e
		}
		if undec := md.Undecoded(); len(undec) != 0 {
			return nil, fmt.Errorf("unknown key %q", undec[0].String())
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if e := dec.Decode(cfg); e != nil {
			return nil, e
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", ext)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides the configuration from the environment, using getenv
// to look values up (os.Getenv, normally).  The environment wins over the
// manifest.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvPort); v != "" {
		port, e := strconv.Atoi(v)
		if e != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, e)
		}
		c.Port = port
	}
	if v := getenv(EnvHost); v != "" {
		c.Host = v
	}
	return nil
}

func (c *Config) Validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return botvisor.ErrNoCommand
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("maxConns %d is negative", c.MaxConns)
	}
	for _, kv := range c.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("env entry %q is not KEY=VALUE", kv)
		}
	}
	return nil
}

// Addr is the listen address for the liveness endpoint.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ProcessCommand converts the manifest's command into a botvisor.Command.
func (c *Config) ProcessCommand() botvisor.Command {
	cmd := botvisor.Command{
		Dir:      c.Directory,
		Env:      c.Env,
		StopTime: time.Duration(c.StopTime),
	}
	if len(c.Command) != 0 {
		cmd.Path = c.Command[0]
		cmd.Args = c.Command[1:]
	}
	return cmd
}
