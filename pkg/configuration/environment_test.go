package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "ORG_CONSOLE_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "crud")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("ORG_CONSOLE_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("ORG_CONSOLE_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestBackendOptions_BaseURL(t *testing.T) {
	b := BackendOptions{ServerURL: "http://backend:8081/"}
	assert.Equal(t, "http://backend:8081/api", b.BaseURL())

	b.APIURL = " http://gateway/api/ "
	assert.Equal(t, "http://gateway/api", b.BaseURL())
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "console.log"))
	t.Setenv("API_URL", "")

	conf, err := New()
	require.NoError(t, err)
	t.Cleanup(conf.Unload)

	assert.Equal(t, 10*time.Second, conf.Backend.Timeout)
	assert.Equal(t, "http://144.91.118.87:8081/api", conf.Backend.BaseURL())
	assert.Equal(t, FavoritesFile, conf.Favorites.Storage)
	assert.Equal(t, "userFavorites", conf.Favorites.Key)
	assert.Equal(t, "ar", conf.DefaultLocale)
	assert.Equal(t, "localhost:3200", conf.SocketAddress)
	require.NotNil(t, conf.Logger())
}

func TestNew_RejectsInvalidFavoritesStorage(t *testing.T) {
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "console.log"))
	t.Setenv("FAVORITES_STORAGE", "localStorage")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAVORITES_STORAGE")
}

func TestRateLimitOptions_Validate(t *testing.T) {
	cases := []struct {
		name string
		opts RateLimitOptions
		ok   bool
	}{
		{"memory", RateLimitOptions{GlobalRPS: 10, Storage: "memory"}, true},
		{"negative", RateLimitOptions{GlobalRPS: -1, Storage: "memory"}, false},
		{"unknown storage", RateLimitOptions{GlobalRPS: 1, Storage: "disk"}, false},
		{"redis without url", RateLimitOptions{GlobalRPS: 1, Storage: "redis"}, false},
		{"redis", RateLimitOptions{GlobalRPS: 1, Storage: "redis", RedisURL: "localhost:6379"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
