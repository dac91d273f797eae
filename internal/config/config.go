// Package config loads logicflow settings from a YAML file and the environment.
//
// Precedence, lowest first: defaults, the YAML file, LOGICFLOW_<SECTION>_<KEY>
// environment variables, then CLI flags (applied by the caller).
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/logicflow/internal/compiler"
	"github.com/aretw0/logicflow/internal/logging"
	"github.com/aretw0/logicflow/pkg/domain"
)

// DefaultPath is read when no explicit path is given. A missing default file is not an error.
const DefaultPath = "logicflow.yaml"

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "LOGICFLOW_"

// Config is the full application configuration.
type Config struct {
	Log       LogConfig            `yaml:"log" mapstructure:"log"`
	Parser    compiler.Mode        `yaml:"parser" mapstructure:"parser"`
	Prompt    domain.PromptOptions `yaml:"prompt" mapstructure:"prompt"`
	Assistant AssistantConfig      `yaml:"assistant" mapstructure:"assistant"`
	Store     StoreConfig          `yaml:"store" mapstructure:"store"`
	Server    ServerConfig         `yaml:"server" mapstructure:"server"`
	Library   LibraryConfig        `yaml:"library" mapstructure:"library"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// AssistantConfig points at an Ollama-compatible chat endpoint.
type AssistantConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TopP     float64       `yaml:"top_p" mapstructure:"top_p"`
}

// StoreConfig selects where saved flows and chat sessions live.
type StoreConfig struct {
	// Backend is one of memory, file, redis, postgres.
	Backend     string        `yaml:"backend" mapstructure:"backend"`
	Path        string        `yaml:"path" mapstructure:"path"`
	RedisURL    string        `yaml:"redis_url" mapstructure:"redis_url"`
	PostgresDSN string        `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
	Prefix      string        `yaml:"prefix" mapstructure:"prefix"`
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// EncryptionKey is a base64 AES-256 key that seals chat sessions at rest.
	// FallbackKeys still decrypt sessions written before a key rotation.
	EncryptionKey string   `yaml:"encryption_key" mapstructure:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" mapstructure:"fallback_keys"`
	// Redact lists regular expressions masked in stored chat turns.
	Redact []string `yaml:"redact" mapstructure:"redact"`
}

// Keys decodes the session encryption keys. Both are nil when encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// ValidateRequests checks request bodies against the embedded OpenAPI document.
	ValidateRequests bool `yaml:"validate_requests" mapstructure:"validate_requests"`
	CORS             bool `yaml:"cors" mapstructure:"cors"`
}

// LibraryConfig points at a directory of read-only markdown flows.
type LibraryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Prompt: domain.DefaultPromptOptions(),
		Assistant: AssistantConfig{
			Endpoint: "http://localhost:11434",
			Model:    "qwen2.5:32b",
			Timeout:  2 * time.Minute,
			TopP:     0.9,
		},
		Store: StoreConfig{
			Backend: "memory",
			Path:    ".logicflow",
			Prefix:  "logicflow:",
		},
		Server: ServerConfig{
			Addr:             ":8080",
			ValidateRequests: true,
			CORS:             true,
		},
		Library: LibraryConfig{Path: "flows"},
	}
}

// Load reads path (or DefaultPath when empty) and applies environment overrides.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	overlayEnv(raw, environ)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

var sections = map[string]bool{
	"log": true, "parser": true, "prompt": true, "assistant": true,
	"store": true, "server": true, "library": true,
}

// overlayEnv maps LOGICFLOW_STORE_REDIS_URL to raw["store"]["redis_url"].
// OLLAMA_API_KEY is honoured as the assistant key when no other key is set.
func overlayEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key == "OLLAMA_API_KEY" {
			section := ensureSection(raw, "assistant")
			if _, set := section["api_key"]; !set {
				section["api_key"] = value
			}
			continue
		}
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		sectionName, field, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_")
		if !ok || field == "" || !sections[sectionName] {
			continue
		}
		ensureSection(raw, sectionName)[field] = value
	}
}

func ensureSection(raw map[string]any, name string) map[string]any {
	if section, ok := raw[name].(map[string]any); ok {
		return section
	}
	section := map[string]any{}
	raw[name] = section
	return section
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if err := c.Prompt.Validate(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file, redis or postgres)", c.Store.Backend)
	}
	if _, _, err := c.Store.Keys(); err != nil {
		return err
	}
	return nil
}
