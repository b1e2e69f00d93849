// Package browser owns the Chrome lifecycle for a single export job: launch
// or connect, stealth page creation, viewport setup, network throttling, and
// teardown. A Session is never shared between jobs; each export gets a fresh
// browser so one crashed page cannot poison the next job.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures a Session.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Width and Height are the initial viewport. Defaults: 1200x1200.
	Width  int
	Height int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Width <= 0 {
		c.Width = 1200
	}
	if c.Height <= 0 {
		c.Height = 1200
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session is a per-job browser: one Chrome, one stealth page.
type Session struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
}

// Open launches Chrome (or connects to a remote instance), opens a stealth
// page and applies the viewport. The caller must Close the session.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	cfg.defaults()
	log := cfg.Logger

	s := &Session{cfg: cfg}

	var wsURL string
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled").
			Set("no-sandbox").
			Set("disable-dev-shm-usage")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b

	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	if err := s.SetViewport(page, cfg.Width, cfg.Height); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Page returns the session's stealth page.
func (s *Session) Page() *rod.Page { return s.page }

// SetViewport resizes the page viewport. The export pipeline stretches the
// height to the full document before full-page captures.
func (s *Session) SetViewport(page *rod.Page, width, height int) error {
	err := proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}.Call(page)
	if err != nil {
		return fmt.Errorf("browser: set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Throttle applies the named network preset to the page. Unknown names fall
// back to no throttling.
func (s *Session) Throttle(page *rod.Page, preset string) error {
	p, ok := networkPresets[preset]
	if !ok {
		s.cfg.Logger.Warn("browser: unknown network preset, not throttling", "preset", preset)
		return nil
	}
	err := proto.NetworkEmulateNetworkConditions{
		Offline:            p.offline,
		Latency:            p.latencyMs,
		DownloadThroughput: p.download,
		UploadThroughput:   p.upload,
	}.Call(page)
	if err != nil {
		return fmt.Errorf("browser: throttle %s: %w", preset, err)
	}
	return nil
}

// Close tears the session down: page, browser connection, launched process.
// Best effort; failures are logged, never returned, so a flaky teardown
// cannot mask the export result.
func (s *Session) Close() {
	log := s.cfg.Logger
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Warn("browser: close page", "error", err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Warn("browser: close browser", "error", err)
		}
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}

type netPreset struct {
	offline   bool
	latencyMs float64
	download  float64 // bytes/s
	upload    float64 // bytes/s
}

// networkPresets mirror common connection profiles. Throughput values are in
// bytes per second.
var networkPresets = map[string]netPreset{
	"wifi":      {latencyMs: 2, download: 30 * 1024 * 1024 / 8, upload: 15 * 1024 * 1024 / 8},
	"regular4g": {latencyMs: 20, download: 4 * 1024 * 1024 / 8, upload: 3 * 1024 * 1024 / 8},
	"good3g":    {latencyMs: 40, download: 1.5 * 1024 * 1024 / 8, upload: 750 * 1024 / 8},
	"regular3g": {latencyMs: 100, download: 750 * 1024 / 8, upload: 250 * 1024 / 8},
	"offline":   {offline: true},
}

// IsKnownPreset reports whether name is a supported throttle preset.
func IsKnownPreset(name string) bool {
	_, ok := networkPresets[name]
	return ok
}

// WaitSettle sleeps for the given delay honouring cancellation. Some widget
// scripts keep mutating the DOM after load; exports wait a fixed settle
// window before reading it.
func WaitSettle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
