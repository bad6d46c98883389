package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"immich-slideshow/internal/immich"
	"immich-slideshow/internal/slideshow"
)

func TestLoadConfig(t *testing.T) {
	contents := `
[Remote]
ImmichAPIEndpoint = "https://photos.example.com/api"
ImmichAPIKey = "secret"

[InMemoryCache]
UseInMemoryCache = true
InMemoryCacheSize = "256 MB"

[Slideshow]
Days = 90
DualPortrait = true
MemoryYears = 5
MixRatio = 30
FavoritesFilter = "exclude"
Resolutions = "1920x1080, 2048x1536"
RefreshInterval = 60000000000 # nanoseconds
WriteFiles = true
BackgroundPath = "/tmp/backgrounds"

[Server]
ListenAddr = ":9090"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("IMMICH_SLIDESHOW_CONFIG", path)
	// Registers cleanup, then clears so hydration leaves the file values.
	for _, key := range []string{"IMMICH_API_ENDPOINT", "IMMICH_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	conf, err := LoadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if conf.Remote.ImmichAPIEndpoint != "https://photos.example.com/api" {
		t.Fatalf("unexpected endpoint %q", conf.Remote.ImmichAPIEndpoint)
	}
	if conf.Remote.ImmichAPIKey != "secret" {
		t.Fatalf("unexpected api key %q", conf.Remote.ImmichAPIKey)
	}
	if conf.Slideshow.Days != 90 || !conf.Slideshow.DualPortrait {
		t.Fatalf("unexpected slideshow config: %+v", conf.Slideshow)
	}
	if conf.Slideshow.FavoritesFilter != immich.FavoritesExclude {
		t.Fatalf("unexpected favorites filter %q", conf.Slideshow.FavoritesFilter)
	}
	want := slideshow.ResolutionList{{Width: 1920, Height: 1080}, {Width: 2048, Height: 1536}}
	if len(conf.Slideshow.Resolutions) != len(want) ||
		conf.Slideshow.Resolutions[0] != want[0] ||
		conf.Slideshow.Resolutions[1] != want[1] {
		t.Fatalf("unexpected resolutions %v", conf.Slideshow.Resolutions)
	}
	if conf.Slideshow.RefreshInterval != time.Minute {
		t.Fatalf("unexpected refresh interval %v", conf.Slideshow.RefreshInterval)
	}
	if !conf.InMemoryCache.UseInMemoryCache {
		t.Fatal("expected the in-memory cache to be enabled")
	}
	if conf.InMemoryCache.InMemoryCacheSize != 256_000_000 {
		t.Fatalf("unexpected cache size %d", conf.InMemoryCache.InMemoryCacheSize)
	}
	if conf.Server.ListenAddr != ":9090" {
		t.Fatalf("unexpected listen addr %q", conf.Server.ListenAddr)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("IMMICH_SLIDESHOW_CONFIG", path)
	t.Setenv("IMMICH_API_ENDPOINT", "https://env.example.com/api")
	t.Setenv("IMMICH_API_KEY", "env-secret")

	conf, err := LoadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if conf.Remote.ImmichAPIEndpoint != "https://env.example.com/api" {
		t.Fatalf("unexpected endpoint %q", conf.Remote.ImmichAPIEndpoint)
	}
	if conf.Remote.ImmichAPIKey != "env-secret" {
		t.Fatalf("unexpected api key %q", conf.Remote.ImmichAPIKey)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	t.Setenv("IMMICH_SLIDESHOW_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var conf Config
	conf.applyDefaults()

	if len(conf.Slideshow.Resolutions) != 1 ||
		conf.Slideshow.Resolutions[0] != (slideshow.Resolution{Width: 1920, Height: 1080}) {
		t.Fatalf("unexpected default resolutions %v", conf.Slideshow.Resolutions)
	}
	if conf.Slideshow.RefreshInterval != 30*time.Second {
		t.Fatalf("unexpected default interval %v", conf.Slideshow.RefreshInterval)
	}
	if conf.Slideshow.FavoritesFilter != immich.FavoritesAll {
		t.Fatalf("unexpected default favorites filter %q", conf.Slideshow.FavoritesFilter)
	}
	if conf.Slideshow.BackgroundPath != "backgrounds" {
		t.Fatalf("unexpected default background path %q", conf.Slideshow.BackgroundPath)
	}
	if conf.Server.ListenAddr != ":8080" {
		t.Fatalf("unexpected default listen addr %q", conf.Server.ListenAddr)
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Setenv("IMMICH_SLIDESHOW_LOG_LEVEL", tt.value)
		if got := LogLevelFromEnv(); got != tt.want {
			t.Fatalf("%q: expected %v, got %v", tt.value, tt.want, got)
		}
	}
}
