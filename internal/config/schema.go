package config

import (
	"dashcache/internal/models"
	"dashcache/internal/timerange"
	"time"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	Data       DataConfig       `yaml:"data"`
	Cache      CacheConfig      `yaml:"cache"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type ServerConfig struct {
	Port  int                `yaml:"port"`
	Debug *ServerDebugConfig `yaml:"debug"`
}

var DefaultServerConfig = ServerConfig{
	Port: 8080,
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"http://localhost:5173"},
	AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

const (
	RequestIDsCounter = "counter"
	RequestIDsUUID    = "uuid"
)

type DataConfig struct {
	PrometheusURL   string        `yaml:"prometheus_url"`
	BasicAuth       *BasicAuth    `yaml:"basic_auth"`
	Timeout         time.Duration `yaml:"timeout"`
	PageWindow      time.Duration `yaml:"page_window"`
	MaxDataPoints   int64         `yaml:"max_data_points"`
	RequestIDs      string        `yaml:"request_ids"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Panels          []PanelConfig `yaml:"panels"`
}

var defaultDataConfig = DataConfig{
	Timeout:         30 * time.Second,
	PageWindow:      time.Hour,
	MaxDataPoints:   1000,
	RequestIDs:      RequestIDsCounter,
	RefreshInterval: time.Minute,
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// PanelConfig is a request refreshed in the background and served by name.
type PanelConfig struct {
	Name          string                 `yaml:"name"`
	Disabled      bool                   `yaml:"disabled"`
	Range         timerange.RawTimeRange `yaml:"range"`
	Interval      time.Duration          `yaml:"interval"`
	MaxDataPoints int64                  `yaml:"max_data_points"`
	Queries       []models.Query         `yaml:"queries"`
}

var defaultPanelRange = timerange.RawTimeRange{From: "now-1h", To: timerange.Now}

type CacheConfig struct {
	Enabled       *bool         `yaml:"enabled"`
	RefreshWindow time.Duration `yaml:"refresh_window"`
}

// IsEnabled defaults to true when unset.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

var DefaultCacheConfig = CacheConfig{
	RefreshWindow: timerange.DefaultRefreshWindow,
}

type PaginationConfig struct {
	MaxPages int `yaml:"max_pages"`
}

var DefaultPaginationConfig = PaginationConfig{
	MaxPages: 100,
}
