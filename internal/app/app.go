package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"immich-slideshow/internal/immich"
	"immich-slideshow/internal/slideshow"
)

// Config is the top-level configuration struct that is loaded via TOML
// decoding of the file specified by the IMMICH_SLIDESHOW_CONFIG environment
// variable (or "config.toml" if empty).
//
// This is the primary way to configure the application.
type Config struct {
	immich.Config
	Slideshow SlideshowConfig
	Server    ServerConfig
}

// SlideshowConfig holds the knobs for what the slideshow shows and how often.
type SlideshowConfig struct {
	// Days limits how far back the recent search looks. 0 means unlimited.
	Days int
	// DualPortrait combines two portrait photos side by side into one
	// landscape frame when possible.
	DualPortrait bool
	// MemoryYears limits how far back "on this day" memories may reach.
	// 0 means unlimited.
	MemoryYears int
	// MixRatio is the percentage (0-100) of the pool allocated to
	// memories; the rest are recent random photos.
	MixRatio int
	// FavoritesFilter is one of "all", "only", or "exclude".
	FavoritesFilter immich.FavoritesFilter
	// Resolutions lists the output sizes, e.g. "1920x1080, 2048x1536".
	// The first one is the primary resolution.
	Resolutions slideshow.ResolutionList
	// RefreshInterval is how often the slideshow advances.
	RefreshInterval time.Duration
	// WriteFiles mirrors every rendered frame to BackgroundPath for
	// consumers that read images from disk.
	WriteFiles bool
	// BackgroundPath is the directory rendered frames are written to when
	// WriteFiles is on.
	BackgroundPath string
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	ListenAddr string
}

// LogLevelFromEnv reads the IMMICH_SLIDESHOW_LOG_LEVEL environment variable
// ("debug", "info", "warn", "error"), defaulting to info. It exists so the
// logger can be built before the config file is read.
func LogLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("IMMICH_SLIDESHOW_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// slideshowApp wires the immich client, the shared session, and the HTTP
// facade together.
type slideshowApp struct {
	conf    Config
	client  *immich.Client
	session *slideshow.Session
}

func Run() error {
	conf, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Debug level since conf has sensitive values.
	slog.Debug("loaded config", "config", conf)

	app, err := InitApp(*conf)
	if err != nil {
		return fmt.Errorf("failed to init app: %w", err)
	}
	slog.Info("successfully initialized app")
	return app.run()
}

func LoadConfig() (*Config, error) {
	// Determine config file path.
	configFilePath := "config.toml"
	if envConfigFilePath := os.Getenv("IMMICH_SLIDESHOW_CONFIG"); envConfigFilePath != "" {
		configFilePath = envConfigFilePath
	}
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		return nil, errors.New("config file not found")
	} else if err != nil {
		return nil, err
	}

	// TOML-decode config file contents.
	var conf Config
	if _, err := toml.DecodeFile(configFilePath, &conf); err != nil {
		return nil, err
	}

	// Load values from environment variables.
	conf.Remote.HydrateFromEnv()

	conf.applyDefaults()
	return &conf, nil
}

// applyDefaults fills in the values a minimal config file leaves out.
func (c *Config) applyDefaults() {
	if len(c.Slideshow.Resolutions) == 0 {
		c.Slideshow.Resolutions = slideshow.ResolutionList{{Width: 1920, Height: 1080}}
	}
	if c.Slideshow.RefreshInterval <= 0 {
		c.Slideshow.RefreshInterval = 30 * time.Second
	}
	if c.Slideshow.FavoritesFilter == "" {
		c.Slideshow.FavoritesFilter = immich.FavoritesAll
	}
	if c.Slideshow.BackgroundPath == "" {
		c.Slideshow.BackgroundPath = "backgrounds"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
}

func InitApp(conf Config) (*slideshowApp, error) {
	client := immich.NewClient(
		immich.WithRemote(conf.Remote),
		immich.WithInMemoryCache(conf.InMemoryCache),
	)
	slog.Info("created immich client")

	pool := slideshow.NewPool(client, slideshow.PoolConfig{
		Days:            conf.Slideshow.Days,
		MemoryYears:     conf.Slideshow.MemoryYears,
		MixRatio:        conf.Slideshow.MixRatio,
		FavoritesFilter: conf.Slideshow.FavoritesFilter,
	})
	session := slideshow.NewSession(pool, client, client.PhotoURL, conf.Slideshow.DualPortrait)
	return &slideshowApp{
		conf:    conf,
		client:  client,
		session: session,
	}, nil
}

func (a *slideshowApp) run() error {
	ctx := context.Background()
	diag := a.client.Diagnostics(ctx)
	slog.Info("client diagnostics",
		"remote_configured", diag.RemoteConfigured,
		"cache_configured", diag.InMemoryConfigured,
		"authenticated", diag.Authenticated,
	)
	if diag.AuthError != nil {
		return fmt.Errorf("cannot reach immich: %w", diag.AuthError)
	}
	if !diag.Authenticated {
		return errors.New("immich rejected the API key")
	}
	slog.Info("authenticated with immich",
		"resolutions", a.conf.Slideshow.Resolutions,
		"days", a.conf.Slideshow.Days,
		"mix_ratio", a.conf.Slideshow.MixRatio,
		"memory_years", a.conf.Slideshow.MemoryYears,
		"favorites", a.conf.Slideshow.FavoritesFilter,
	)

	go a.refreshWorker(ctx)

	srv := newServer(a.session, a.conf.Slideshow.Resolutions)
	slog.Info("listening", "addr", a.conf.Server.ListenAddr)
	return http.ListenAndServe(a.conf.Server.ListenAddr, srv)
}

// refreshWorker is the single refresh driver: it advances the slideshow
// immediately and then on every tick. HTTP handlers only read session state,
// so there is exactly one writer.
func (a *slideshowApp) refreshWorker(ctx context.Context) {
	a.advance(ctx)
	ticker := time.NewTicker(a.conf.Slideshow.RefreshInterval)
	for range ticker.C {
		a.advance(ctx)
	}
}

func (a *slideshowApp) advance(ctx context.Context) {
	if !a.session.Refresh(ctx) {
		slog.Warn("refresh failed, waiting for next tick")
		return
	}
	if a.conf.Slideshow.WriteFiles {
		a.writeBackgrounds()
	}
}
