package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/dyluth/whirlpool/internal/source"
	"github.com/dyluth/whirlpool/internal/thinker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "whirlpool.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0644))
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
seed: "river"
server:
  addr: ":8080"
  format: json
  poll_interval: 250ms
cave:
  min_delay: 2s
  max_delay: 5s
  lock_scope: commit
redis:
  url: "redis://localhost:6379"
thinkers:
  WikipediaThinker:
    provider: wikipedia
    timeout: 5s
  NYTThinker:
    provider: nyt
    on_failure: noun
    tagger: false
`)

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "river", config.Seed)
	assert.Equal(t, TaggerProse, config.Tagger)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, "json", config.Server.Format)
	assert.Equal(t, 250*time.Millisecond, config.Server.PollInterval)
	assert.Equal(t, 2*time.Second, config.Cave.MinDelay)
	assert.Equal(t, 5*time.Second, config.Cave.MaxDelay)
	assert.Equal(t, "commit", config.Cave.LockScope)
	assert.Equal(t, "default", config.Redis.Instance)

	assert.Equal(t, []string{"NYTThinker", "WikipediaThinker"}, config.ThinkerNames())
	assert.Equal(t, 5*time.Second, config.Thinkers["WikipediaThinker"].Timeout)

	nyt := config.Thinkers["NYTThinker"]
	assert.Equal(t, "NYT_API_KEY", nyt.APIKeyEnv)
	require.NotNil(t, nyt.Tagger)
	assert.False(t, *nyt.Tagger)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
thinkers:
  LOCThinker:
    provider: loc
`)

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "stake", config.Seed)
	assert.Equal(t, ":1234", config.Server.Addr)
	assert.Equal(t, "text", config.Server.Format)
	assert.Equal(t, 500*time.Millisecond, config.Server.PollInterval)
	assert.Equal(t, time.Second, config.Cave.MinDelay)
	assert.Equal(t, 3*time.Second, config.Cave.MaxDelay)
	assert.Equal(t, "hold", config.Cave.LockScope)
	assert.Nil(t, config.Redis)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/whirlpool.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
thinkers:
  - this is invalid
    yaml syntax
`)

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_DuplicateThinkerName(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
thinkers:
  Twin:
    provider: wikipedia
  Twin:
    provider: loc
`)

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "whirlpool.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`version: "1.0"
thinkers:
  GuardianThinker:
    provider: guardian
    api_key_env: WHIRLPOOL_TEST_GUARDIAN_KEY
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WHIRLPOOL_TEST_GUARDIAN_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("WHIRLPOOL_TEST_GUARDIAN_KEY") })

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", config.Thinkers["GuardianThinker"].APIKey())
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("WHIRLPOOL_TEST_VAR=file\n"), 0644))
	t.Setenv("WHIRLPOOL_TEST_VAR", "process")

	require.NoError(t, LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "process", os.Getenv("WHIRLPOOL_TEST_VAR"))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config WhirlpoolConfig
		errMsg string
	}{
		{
			name:   "unsupported version",
			config: WhirlpoolConfig{Version: "2.0", Thinkers: map[string]ThinkerConfig{"A": {Provider: "wikipedia"}}},
			errMsg: "unsupported version: 2.0",
		},
		{
			name:   "no thinkers",
			config: WhirlpoolConfig{Version: "1.0"},
			errMsg: "no thinkers defined",
		},
		{
			name:   "missing provider",
			config: WhirlpoolConfig{Version: "1.0", Thinkers: map[string]ThinkerConfig{"A": {}}},
			errMsg: "provider is required",
		},
		{
			name:   "unknown provider",
			config: WhirlpoolConfig{Version: "1.0", Thinkers: map[string]ThinkerConfig{"A": {Provider: "altavista"}}},
			errMsg: "unknown provider",
		},
		{
			name:   "bad outcome",
			config: WhirlpoolConfig{Version: "1.0", Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc", OnFailure: "shrug"}}},
			errMsg: "on_failure",
		},
		{
			name:   "bad exhausted outcome",
			config: WhirlpoolConfig{Version: "1.0", Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc", OnExhausted: "shrug"}}},
			errMsg: "on_exhausted",
		},
		{
			name:   "bad fallback",
			config: WhirlpoolConfig{Version: "1.0", Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc", Fallback: "verb"}}},
			errMsg: "fallback",
		},
		{
			name:   "bad title fallback",
			config: WhirlpoolConfig{Version: "1.0", Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc", TitleFallback: "last"}}},
			errMsg: "title_fallback",
		},
		{
			name:   "bad tagger",
			config: WhirlpoolConfig{Version: "1.0", Tagger: "spacy", Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc"}}},
			errMsg: "invalid tagger",
		},
		{
			name: "bad format",
			config: WhirlpoolConfig{Version: "1.0", Server: &ServerConfig{Format: "xml"},
				Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc"}}},
			errMsg: "server.format",
		},
		{
			name: "inverted delays",
			config: WhirlpoolConfig{Version: "1.0", Cave: &CaveConfig{MinDelay: 3 * time.Second, MaxDelay: time.Second},
				Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc"}}},
			errMsg: "must be greater than",
		},
		{
			name: "bad lock scope",
			config: WhirlpoolConfig{Version: "1.0", Cave: &CaveConfig{LockScope: "none"},
				Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc"}}},
			errMsg: "cave.lock_scope",
		},
		{
			name: "redis without url",
			config: WhirlpoolConfig{Version: "1.0", Redis: &RedisConfig{},
				Thinkers: map[string]ThinkerConfig{"A": {Provider: "loc"}}},
			errMsg: "redis.url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefault(t *testing.T) {
	config := Default()
	assert.Equal(t, []string{"LOCThinker", "WikipediaThinker"}, config.ThinkerNames())
	assert.Equal(t, ":1234", config.Server.Addr)
}

func TestThinkerConfig_Spec(t *testing.T) {
	t.Setenv("SERPAPI_API_KEY", "secret")

	tagged := true
	tc := ThinkerConfig{
		Provider:      source.SerpAPI,
		Timeout:       3 * time.Second,
		BaseURL:       "http://localhost:9999",
		Tagger:        &tagged,
		OnEmptyInput:  "noun",
		OnExhausted:   "noun",
		Fallback:      "noun",
		TitleFallback: "title",
	}
	require.NoError(t, tc.Validate("GoogleThinker"))

	spec := tc.Spec("GoogleThinker")
	assert.Equal(t, thinker.Spec{
		Name:         "GoogleThinker",
		Provider:     source.SerpAPI,
		APIKey:       "secret",
		BaseURL:      "http://localhost:9999",
		Timeout:      3 * time.Second,
		OnEmptyInput: thinker.OutcomeNoun,
		OnExhausted:  thinker.OutcomeNoun,
		Tagged:       &tagged,
		Fallback:     extract.FallbackNoun,
		Title:        extract.TitleFull,
	}, spec)

	_, err := thinker.Build(spec, thinker.Shared{})
	assert.NoError(t, err)
}

func TestThinkerConfig_APIKeyWithoutEnv(t *testing.T) {
	tc := ThinkerConfig{Provider: source.Reddit}
	require.NoError(t, tc.Validate("RedditThinker"))
	assert.Equal(t, "", tc.APIKey())
}
