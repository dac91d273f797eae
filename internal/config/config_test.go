package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/domain"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logicflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
parser:
  synthesize_anchors: true
prompt:
  target: tests
  diagram: true
assistant:
  model: llama3
  timeout: 45s
store:
  backend: redis
  redis_url: redis://localhost:6379/0
  ttl: 24h
`)
	cfg, err := load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Parser.SynthesizeAnchors)
	assert.False(t, cfg.Parser.FallbackLineAsProcess)
	assert.Equal(t, domain.TargetTests, cfg.Prompt.Target)
	assert.Equal(t, domain.StrictnessHigh, cfg.Prompt.Strictness, "unset keys keep defaults")
	assert.True(t, cfg.Prompt.Diagram)
	assert.Equal(t, "llama3", cfg.Assistant.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Assistant.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.Assistant.Timeout)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "store:\n  backend: file\n")
	cfg, err := load(path, []string{
		"LOGICFLOW_STORE_BACKEND=postgres",
		"LOGICFLOW_STORE_POSTGRES_DSN=postgres://localhost/logicflow",
		"LOGICFLOW_PARSER_FALLBACK_LINE_AS_PROCESS=true",
		"LOGICFLOW_ASSISTANT_TOP_P=0.5",
		"LOGICFLOW_SERVER_VALIDATE_REQUESTS=0",
		"LOGICFLOW_TEST_POSTGRES_DSN=ignored",
		"OLLAMA_API_KEY=secret",
		"HOME=/root",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "postgres://localhost/logicflow", cfg.Store.PostgresDSN)
	assert.True(t, cfg.Parser.FallbackLineAsProcess)
	assert.Equal(t, 0.5, cfg.Assistant.TopP)
	assert.False(t, cfg.Server.ValidateRequests)
	assert.Equal(t, "secret", cfg.Assistant.APIKey)
}

func TestLoad_ExplicitKeyBeatsOllamaEnv(t *testing.T) {
	cfg, err := load(writeFile(t, "assistant:\n  api_key: from-file\n"), []string{"OLLAMA_API_KEY=from-env"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Assistant.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "log: [",
		"bad backend":  "store:\n  backend: sqlite\n",
		"bad target":   "prompt:\n  target: poetry\n",
		"bad level":    "log:\n  level: loud\n",
		"bad duration": "assistant:\n  timeout: soon\n",
		"short key":    "store:\n  encryption_key: c2hvcnQ=\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(writeFile(t, content), nil)
			assert.Error(t, err)
		})
	}
}

func TestStoreConfig_Keys(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	old := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32))

	active, fallback, err := StoreConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	active, fallback, err = StoreConfig{EncryptionKey: key, FallbackKeys: []string{old}}.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	require.Len(t, fallback, 1)
	assert.Equal(t, byte(2), fallback[0][0])

	_, _, err = StoreConfig{EncryptionKey: key, FallbackKeys: []string{"%%%"}}.Keys()
	assert.ErrorContains(t, err, "fallback_keys[0]")
}
