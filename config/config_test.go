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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/botvisor/botvisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultName, cfg.Name)
	assert.Equal(t, []string{"python", "bot.py"}, cfg.Command)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.NoError(t, cfg.Validate())

	cmd := cfg.ProcessCommand()
	assert.Equal(t, "python", cmd.Path)
	assert.Equal(t, []string{"bot.py"}, cmd.Args)
}

func TestDefaultCommandNotShared(t *testing.T) {
	cfg := Default()
	cfg.Command[0] = "python3"
	assert.Equal(t, "python", DefaultCommand[0])
}

const yamlManifest = `
name: mybot
command: [python3, -u, bot.py]
directory: /srv/bot
env:
  - TOKEN=abc
stopTime: 3s
port: 8080
message: Alive
maxConns: 16
status: true
metrics: true
`

const tomlManifest = `
name = "mybot"
command = ["python3", "-u", "bot.py"]
directory = "/srv/bot"
env = ["TOKEN=abc"]
stopTime = "3s"
port = 8080
message = "Alive"
maxConns = 16
status = true
metrics = true
`

const jsonManifest = `{
	"name": "mybot",
	"command": ["python3", "-u", "bot.py"],
	"directory": "/srv/bot",
	"env": ["TOKEN=abc"],
	"stopTime": "3s",
	"port": 8080,
	"message": "Alive",
	"maxConns": 16,
	"status": true,
	"metrics": true
}`

func TestParseFormats(t *testing.T) {
	for ext, data := range map[string]string{
		".yaml": yamlManifest,
		"yml":   yamlManifest,
		".toml": tomlManifest,
		".json": jsonManifest,
	} {
		t.Run(ext, func(t *testing.T) {
			cfg, err := Parse([]byte(data), ext)
			require.NoError(t, err)
			assert.Equal(t, "mybot", cfg.Name)
			assert.Equal(t, []string{"python3", "-u", "bot.py"}, cfg.Command)
			assert.Equal(t, "/srv/bot", cfg.Directory)
			assert.Equal(t, []string{"TOKEN=abc"}, cfg.Env)
			assert.Equal(t, 3*time.Second, time.Duration(cfg.StopTime))
			assert.Equal(t, 8080, cfg.Port)
			assert.Equal(t, "Alive", cfg.Message)
			assert.Equal(t, 16, cfg.MaxConns)
			assert.True(t, cfg.Status)
			assert.True(t, cfg.Metrics)
			assert.False(t, cfg.Detach)
			assert.NoError(t, cfg.Validate())

			cmd := cfg.ProcessCommand()
			assert.Equal(t, "python3", cmd.Path)
			assert.Equal(t, []string{"-u", "bot.py"}, cmd.Args)
			assert.Equal(t, "/srv/bot", cmd.Dir)
			assert.Equal(t, 3*time.Second, cmd.StopTime)
		})
	}
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`bogus: true`), ".yaml")
	assert.Error(t, err)

	_, err = Parse([]byte(`bogus = true`), ".toml")
	assert.Error(t, err)

	_, err = Parse([]byte(`{"bogus": true}`), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte(`stopTime: forever`), ".yaml")
	assert.Error(t, err)

	_, err = Parse([]byte(`name: x`), ".ini")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "botvisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlManifest), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mybot", cfg.Name)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Parse([]byte(yamlManifest), ".yaml")
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyEnv(env(nil)))
	assert.Equal(t, 8080, cfg.Port)

	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		EnvPort: "9090",
		EnvHost: "127.0.0.1",
	})))
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())

	err = cfg.ApplyEnv(env(map[string]string{EnvPort: "http"}))
	assert.Error(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Command = nil
	assert.True(t, errors.Is(cfg.Validate(), botvisor.ErrNoCommand))

	cfg = Default()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxConns = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Env = []string{"NOEQUALS"}
	assert.Error(t, cfg.Validate())
}
