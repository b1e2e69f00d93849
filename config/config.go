// Package config handles exporter configuration from a YAML file with
// environment overrides for deployment-specific values.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level exporter configuration.
type Config struct {
	// Host is the base URL of the platform serving the spaces.
	Host string `yaml:"host"`

	// FilesHost is the public base URL pollers are pointed at (Location
	// headers reference <files_host>/queue/<fileID>).
	FilesHost string `yaml:"files_host"`

	// StorageHost is the public base URL of the artifact store; ready polls
	// redirect to <storage_host>/<fileID>.
	StorageHost string `yaml:"storage_host"`

	// AuthTypeHost is the login-type probe endpoint base; the probe URL is
	// <auth_type_host>/<spaceID>.
	AuthTypeHost string `yaml:"auth_type_host"`

	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// TmpDir holds per-job screenshot and packaging scratch files.
	TmpDir string `yaml:"tmp_dir"`

	// CoverDefault is the fallback cover background used when a space has
	// no usable header image.
	CoverDefault string `yaml:"cover_default"`

	Browser BrowserConfig `yaml:"browser"`
	Queue   QueueConfig   `yaml:"queue"`
	Store   StoreConfig   `yaml:"store"`
}

// BrowserConfig controls the per-job Chrome session.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome per job.
	Remote string `yaml:"remote"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// NavigationTimeout bounds page loads and the sign-in navigation.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`

	// SettleDelay is waited after sign-in so asynchronous iframes and
	// widgets finish initialising before the DOM is rewritten.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// ReloadDelay is waited after iframe src rewrites so frames reload
	// before their content is captured for inlining.
	ReloadDelay time.Duration `yaml:"reload_delay"`
}

// QueueConfig names the export topic.
type QueueConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// StoreConfig locates the artifact blob store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration built from environment variables and
// defaults only, for deployments without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() {
	setIfEnv(&c.Host, "GRAASP_HOST")
	setIfEnv(&c.FilesHost, "GRAASP_FILES_HOST")
	setIfEnv(&c.StorageHost, "STORAGE_HOST")
	setIfEnv(&c.AuthTypeHost, "AUTH_TYPE_HOST")
	setIfEnv(&c.Port, "PORT")
	setIfEnv(&c.LogLevel, "LOG_LEVEL")
	setIfEnv(&c.TmpDir, "TMP_DIR")
	setIfEnv(&c.Browser.Remote, "CHROME_REMOTE_URL")
	setIfEnv(&c.Queue.URL, "NATS_URL")
	setIfEnv(&c.Queue.Subject, "EXPORT_TOPIC")
	setIfEnv(&c.Store.Path, "STORE_PATH")
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "https://graasp.eu"
	}
	if c.FilesHost == "" {
		c.FilesHost = "http://localhost:3000"
	}
	if c.AuthTypeHost == "" {
		c.AuthTypeHost = c.Host + "/login-type"
	}
	if c.Port == "" {
		c.Port = "3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TmpDir == "" {
		c.TmpDir = os.TempDir()
	}
	if c.CoverDefault == "" {
		c.CoverDefault = "assets/cover-default.png"
	}
	if c.Browser.Width <= 0 {
		c.Browser.Width = 1200
	}
	if c.Browser.Height <= 0 {
		c.Browser.Height = 1200
	}
	if c.Browser.NavigationTimeout <= 0 {
		c.Browser.NavigationTimeout = time.Minute
	}
	if c.Browser.SettleDelay <= 0 {
		c.Browser.SettleDelay = 5 * time.Second
	}
	if c.Browser.ReloadDelay <= 0 {
		c.Browser.ReloadDelay = 4 * time.Second
	}
	if c.Queue.Subject == "" {
		c.Queue.Subject = "export"
	}
	if c.Store.Path == "" {
		c.Store.Path = "db/artifacts.db"
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
