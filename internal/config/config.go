package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dyluth/whirlpool/internal/cave"
	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/dyluth/whirlpool/internal/gateway"
	"github.com/dyluth/whirlpool/internal/source"
	"github.com/dyluth/whirlpool/internal/thinker"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "whirlpool.yml"

// Tagger backends
const (
	TaggerProse = "prose"
	TaggerNone  = "none"
)

// WhirlpoolConfig represents the top-level whirlpool.yml configuration
type WhirlpoolConfig struct {
	Version  string                   `yaml:"version"`
	Seed     string                   `yaml:"seed,omitempty"`   // First thought of the chain (default "stake")
	Tagger   string                   `yaml:"tagger,omitempty"` // "prose" (default) or "none"
	Server   *ServerConfig            `yaml:"server,omitempty"`
	Cave     *CaveConfig              `yaml:"cave,omitempty"`
	Redis    *RedisConfig             `yaml:"redis,omitempty"` // Optional mirror; omitted disables it
	Thinkers map[string]ThinkerConfig `yaml:"thinkers"`
}

// ServerConfig specifies the HTTP and websocket listener
type ServerConfig struct {
	Addr         string        `yaml:"addr,omitempty"`          // Default ":1234"
	Format       string        `yaml:"format,omitempty"`        // "text" (default) or "json"
	PollInterval time.Duration `yaml:"poll_interval,omitempty"` // Default 500ms
}

// CaveConfig specifies scheduling of thinker rounds
type CaveConfig struct {
	MinDelay  time.Duration `yaml:"min_delay,omitempty"`  // Default 1s
	MaxDelay  time.Duration `yaml:"max_delay,omitempty"`  // Default 3s
	LockScope string        `yaml:"lock_scope,omitempty"` // "hold" (default) or "commit"
}

// RedisConfig specifies the blackboard mirror
type RedisConfig struct {
	URL      string `yaml:"url"`
	Instance string `yaml:"instance,omitempty"` // Default "default"
}

// ThinkerConfig represents a single thinker. The map key is its name.
type ThinkerConfig struct {
	Provider      string        `yaml:"provider"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	APIKeyEnv     string        `yaml:"api_key_env,omitempty"`
	BaseURL       string        `yaml:"base_url,omitempty"`
	Tagger        *bool         `yaml:"tagger,omitempty"`
	OnEmptyInput  string        `yaml:"on_empty_input,omitempty"`
	OnFailure     string        `yaml:"on_failure,omitempty"`
	OnNoResult    string        `yaml:"on_no_result,omitempty"`
	OnExhausted   string        `yaml:"on_exhausted,omitempty"`
	Fallback      string        `yaml:"fallback,omitempty"`
	TitleFallback string        `yaml:"title_fallback,omitempty"`
}

// defaultAPIKeyEnv names the environment variable read for each keyed provider.
var defaultAPIKeyEnv = map[string]string{
	source.NYT:      "NYT_API_KEY",
	source.Guardian: "GUARDIAN_API_KEY",
	source.SerpAPI:  "SERPAPI_API_KEY",
}

// Default returns the configuration used when no whirlpool.yml exists:
// a Wikipedia and a Library of Congress thinker.
func Default() *WhirlpoolConfig {
	cfg := &WhirlpoolConfig{
		Version: "1.0",
		Thinkers: map[string]ThinkerConfig{
			"WikipediaThinker": {Provider: source.Wikipedia},
			"LOCThinker":       {Provider: source.LOC},
		},
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Validate performs strict validation and fills in defaults
func (c *WhirlpoolConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if len(c.Thinkers) == 0 {
		return fmt.Errorf("no thinkers defined")
	}
	for _, name := range c.ThinkerNames() {
		t := c.Thinkers[name]
		if err := t.Validate(name); err != nil {
			return err
		}
		c.Thinkers[name] = t
	}

	if c.Seed == "" {
		c.Seed = cave.DefaultSeed
	}

	switch c.Tagger {
	case "":
		c.Tagger = TaggerProse
	case TaggerProse, TaggerNone:
	default:
		return fmt.Errorf("invalid tagger: %s (must be 'prose' or 'none')", c.Tagger)
	}

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if err := c.Server.validate(); err != nil {
		return err
	}

	if c.Cave == nil {
		c.Cave = &CaveConfig{}
	}
	if err := c.Cave.validate(); err != nil {
		return err
	}

	if c.Redis != nil {
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required when redis is configured")
		}
		if c.Redis.Instance == "" {
			c.Redis.Instance = "default"
		}
	}

	return nil
}

func (s *ServerConfig) validate() error {
	if s.Addr == "" {
		s.Addr = ":1234"
	}
	if s.Format == "" {
		s.Format = string(gateway.FormatText)
	}
	if err := gateway.Format(s.Format).Validate(); err != nil {
		return fmt.Errorf("server.format: %w", err)
	}
	if s.PollInterval < 0 {
		return fmt.Errorf("server.poll_interval must be positive, got %s", s.PollInterval)
	}
	if s.PollInterval == 0 {
		s.PollInterval = gateway.DefaultPollInterval
	}
	return nil
}

func (c *CaveConfig) validate() error {
	if c.MinDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("cave delays must be positive")
	}
	if c.MinDelay == 0 {
		c.MinDelay = time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = c.MinDelay + 2*time.Second
	}
	if c.MaxDelay <= c.MinDelay {
		return fmt.Errorf("cave.max_delay (%s) must be greater than cave.min_delay (%s)", c.MaxDelay, c.MinDelay)
	}
	if c.LockScope == "" {
		c.LockScope = string(cave.LockScopeHold)
	}
	if err := cave.LockScope(c.LockScope).Validate(); err != nil {
		return fmt.Errorf("cave.lock_scope: %w", err)
	}
	return nil
}

// Validate performs validation on a single thinker configuration
func (t *ThinkerConfig) Validate(name string) error {
	if t.Provider == "" {
		return fmt.Errorf("thinker '%s': provider is required", name)
	}
	if _, err := thinker.DefaultsFor(t.Provider); err != nil {
		return fmt.Errorf("thinker '%s': %w (valid: %v)", name, err, source.Providers)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("thinker '%s': timeout must be positive", name)
	}

	outcomes := map[string]string{
		"on_empty_input": t.OnEmptyInput,
		"on_failure":     t.OnFailure,
		"on_no_result":   t.OnNoResult,
		"on_exhausted":   t.OnExhausted,
	}
	for field, value := range outcomes {
		if value == "" {
			continue
		}
		if err := thinker.Outcome(value).Validate(); err != nil {
			return fmt.Errorf("thinker '%s': %s: %w", name, field, err)
		}
	}

	if t.Fallback != "" {
		if err := extract.Fallback(t.Fallback).Validate(); err != nil {
			return fmt.Errorf("thinker '%s': fallback: %w", name, err)
		}
	}
	if t.TitleFallback != "" {
		if err := extract.TitleMode(t.TitleFallback).Validate(); err != nil {
			return fmt.Errorf("thinker '%s': title_fallback: %w", name, err)
		}
	}

	if t.APIKeyEnv == "" {
		t.APIKeyEnv = defaultAPIKeyEnv[t.Provider]
	}
	return nil
}

// APIKey reads the thinker's API key from the environment.
func (t ThinkerConfig) APIKey() string {
	if t.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(t.APIKeyEnv)
}

// Spec converts the configuration into a thinker spec named name.
func (t ThinkerConfig) Spec(name string) thinker.Spec {
	return thinker.Spec{
		Name:         name,
		Provider:     t.Provider,
		APIKey:       t.APIKey(),
		BaseURL:      t.BaseURL,
		Timeout:      t.Timeout,
		OnEmptyInput: thinker.Outcome(t.OnEmptyInput),
		OnFailure:    thinker.Outcome(t.OnFailure),
		OnNoResult:   thinker.Outcome(t.OnNoResult),
		OnExhausted:  thinker.Outcome(t.OnExhausted),
		Tagged:       t.Tagger,
		Fallback:     extract.Fallback(t.Fallback),
		Title:        extract.TitleMode(t.TitleFallback),
	}
}

// ThinkerNames returns the configured thinker names in sorted order.
func (c *WhirlpoolConfig) ThinkerNames() []string {
	names := make([]string, 0, len(c.Thinkers))
	for name := range c.Thinkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads and validates whirlpool.yml from the specified path.
// A .env file next to it is loaded into the environment first; variables
// already set are not overridden.
func Load(path string) (*WhirlpoolConfig, error) {
	if err := LoadEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config WhirlpoolConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadEnv loads environment files that exist. Missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
