package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varsilias/voicechat/internal/logging"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ADDR", "STATIC_DIR", "LOG_LEVEL", "LOG_JSON", "LOG_FILE",
		"VOICECHAT_PROVIDER", "VOICECHAT_MODEL", "VOICECHAT_BASE_URL",
		"VOICECHAT_PROVIDER_TIMEOUT", "OLLAMA_BASE_URL",
		"OPENAI_API_KEY", "OPENAI_API_KEY_PARAM",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
	require.Equal(t, "0.0.0.0:8000", cfg.Addr)
	require.Equal(t, "gpt-3.5-turbo", cfg.ModelName())
	require.Zero(t, cfg.ProviderTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "voicechat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
static_dir: /srv/www
provider: ollama
model: mistral
provider_timeout: 45s
log_json: true
`), 0o600))

	t.Setenv("ADDR", ":9100")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.Addr)
	require.Equal(t, "/srv/www", cfg.StaticDir)
	require.Equal(t, ProviderOllama, cfg.Provider)
	require.Equal(t, "mistral", cfg.ModelName())
	require.Equal(t, 45*time.Second, cfg.ProviderTimeout)
	require.True(t, cfg.LogJSON)
	require.Equal(t, "sk-env", cfg.APIKey)
}

func TestLoad_BadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOICECHAT_PROVIDER_TIMEOUT", "soon")

	_, err := Load("")
	require.ErrorContains(t, err, "VOICECHAT_PROVIDER_TIMEOUT")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Provider = "bard"
	require.ErrorContains(t, cfg.Validate(), "unsupported provider")

	cfg = Defaults()
	cfg.ProviderTimeout = -time.Second
	require.ErrorContains(t, cfg.Validate(), "negative")

	cfg = Defaults()
	cfg.Addr = " "
	require.Error(t, cfg.Validate())
}

func TestModelName_PerProvider(t *testing.T) {
	cfg := Defaults()
	cfg.Provider = ProviderOllama
	require.Equal(t, "llama3.2", cfg.ModelName())
	cfg.Provider = ProviderEcho
	require.Equal(t, "echo", cfg.ModelName())
}

type fakeFetcher struct {
	key   string
	err   error
	calls int
}

func (f *fakeFetcher) APIKey(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.key, f.err
}

func TestWithStoredAPIKey(t *testing.T) {
	log := logging.Discard()

	t.Run("env key wins", func(t *testing.T) {
		f := &fakeFetcher{key: "sk-ssm"}
		cfg := Config{APIKey: "sk-env", APIKeyParam: "/p"}
		got := cfg.WithStoredAPIKey(context.Background(), f, log)
		require.Equal(t, "sk-env", got.APIKey)
		require.Zero(t, f.calls)
	})

	t.Run("fetched from store", func(t *testing.T) {
		f := &fakeFetcher{key: "sk-ssm"}
		cfg := Config{APIKeyParam: "/p"}
		got := cfg.WithStoredAPIKey(context.Background(), f, log)
		require.Equal(t, "sk-ssm", got.APIKey)
		require.Empty(t, cfg.APIKey, "original value must not change")
	})

	t.Run("lookup failure keeps empty key", func(t *testing.T) {
		f := &fakeFetcher{err: errors.New("denied")}
		got := Config{APIKeyParam: "/p"}.WithStoredAPIKey(context.Background(), f, log)
		require.Empty(t, got.APIKey)
	})

	t.Run("no param configured", func(t *testing.T) {
		f := &fakeFetcher{key: "sk-ssm"}
		got := Config{}.WithStoredAPIKey(context.Background(), f, log)
		require.Empty(t, got.APIKey)
		require.Zero(t, f.calls)
	})
}
