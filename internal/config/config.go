package config

import (
	"dashcache/internal/models"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use --config or -c)")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, overrides and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvironmentOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var (
	EnvServerPort            = "DASHCACHE_SERVER_PORT"
	EnvLogLevel              = "DASHCACHE_LOG_LEVEL"
	EnvDataPrometheusURL     = "DASHCACHE_DATA_PROMETHEUS_URL"
	EnvDataBasicAuthUsername = "DASHCACHE_DATA_BASIC_AUTH_USERNAME"
	EnvDataBasicAuthPassword = "DASHCACHE_DATA_BASIC_AUTH_PASSWORD"
	EnvCacheEnabled          = "DASHCACHE_CACHE_ENABLED"
	EnvCacheRefreshWindow    = "DASHCACHE_CACHE_REFRESH_WINDOW"
)

func applyEnvironmentOverrides(config *Config) {
	if portStr := os.Getenv(EnvServerPort); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Server.Port = port
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}

	if prometheusURL := os.Getenv(EnvDataPrometheusURL); prometheusURL != "" {
		config.Data.PrometheusURL = prometheusURL
	}

	if username := os.Getenv(EnvDataBasicAuthUsername); username != "" {
		if config.Data.BasicAuth == nil {
			config.Data.BasicAuth = &BasicAuth{}
		}
		config.Data.BasicAuth.Username = username
	}

	if password := os.Getenv(EnvDataBasicAuthPassword); password != "" {
		if config.Data.BasicAuth == nil {
			config.Data.BasicAuth = &BasicAuth{}
		}
		config.Data.BasicAuth.Password = password
	}

	if enabledStr := os.Getenv(EnvCacheEnabled); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			config.Cache.Enabled = &enabled
		}
	}

	if windowStr := os.Getenv(EnvCacheRefreshWindow); windowStr != "" {
		if window, err := time.ParseDuration(windowStr); err == nil {
			config.Cache.RefreshWindow = window
		}
	}
}

func validateConfig(config *Config) error {
	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateDataConfig()
	if err != nil {
		return err
	}

	err = config.validateCacheConfig()
	if err != nil {
		return err
	}

	err = config.validatePaginationConfig()
	if err != nil {
		return err
	}

	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	} else {
		switch c.Log.Format {
		case "text", "json":
		default:
			return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	} else {
		switch c.Log.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
		}
	}

	return nil
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateDataConfig() error {
	if err := validateURL(c.Data.PrometheusURL, "data.prometheus_url"); err != nil {
		return err
	}

	if c.Data.BasicAuth != nil {
		if c.Data.BasicAuth.Username == "" {
			return fmt.Errorf("data.basic_auth.username is required")
		}
		if c.Data.BasicAuth.Password == "" {
			return fmt.Errorf("data.basic_auth.password is required")
		}
	}

	if c.Data.Timeout == 0 {
		c.Data.Timeout = defaultDataConfig.Timeout
	} else if c.Data.Timeout < 0 {
		return fmt.Errorf("data.timeout cannot be negative")
	}

	if c.Data.PageWindow == 0 {
		c.Data.PageWindow = defaultDataConfig.PageWindow
	} else if c.Data.PageWindow < time.Minute {
		return fmt.Errorf("data.page_window cannot be less than 1 minute")
	}

	if c.Data.MaxDataPoints == 0 {
		c.Data.MaxDataPoints = defaultDataConfig.MaxDataPoints
	} else if c.Data.MaxDataPoints < 0 {
		return fmt.Errorf("data.max_data_points cannot be negative")
	}

	switch c.Data.RequestIDs {
	case "":
		c.Data.RequestIDs = defaultDataConfig.RequestIDs
	case RequestIDsCounter, RequestIDsUUID:
	default:
		return fmt.Errorf("invalid data.request_ids: %s, must be '%s' or '%s'", c.Data.RequestIDs, RequestIDsCounter, RequestIDsUUID)
	}

	if c.Data.RefreshInterval == 0 {
		c.Data.RefreshInterval = defaultDataConfig.RefreshInterval
	} else if c.Data.RefreshInterval < 10*time.Second {
		return fmt.Errorf("data.refresh_interval cannot be less than 10 seconds")
	}

	if len(c.Data.Panels) > 0 {
		if err := c.validatePanelsConfig(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validatePanelsConfig() error {
	panels := c.Data.Panels
	seen := make(map[string]bool, len(panels))

	for i, panel := range panels {
		if panel.Name == "" {
			return fmt.Errorf("data.panels[%d].name is required", i)
		}

		if seen[panel.Name] {
			return fmt.Errorf("data.panels[%d].name %q is used more than once", i, panel.Name)
		}
		seen[panel.Name] = true

		if panel.Disabled {
			continue
		}

		if panel.Range.From == "" && panel.Range.To == "" {
			panels[i].Range = defaultPanelRange
		} else if panel.Range.From == "" || panel.Range.To == "" {
			return fmt.Errorf("data.panels[%d].range needs both from and to", i)
		}

		if panel.MaxDataPoints == 0 {
			panels[i].MaxDataPoints = c.Data.MaxDataPoints
		}

		if len(panel.Queries) == 0 {
			return fmt.Errorf("data.panels[%d].queries is required", i)
		}

		for j, q := range panel.Queries {
			if q.RefID == "" {
				return fmt.Errorf("data.panels[%d].queries[%d].ref_id is required", i, j)
			}
			if !models.IsKnownQueryType(q.QueryType) {
				return fmt.Errorf("data.panels[%d].queries[%d]: invalid query type: %q", i, j, q.QueryType)
			}
		}
	}

	return nil
}

func (c *Config) validateCacheConfig() error {
	if c.Cache.RefreshWindow == 0 {
		c.Cache.RefreshWindow = DefaultCacheConfig.RefreshWindow
	} else if c.Cache.RefreshWindow < 0 {
		return fmt.Errorf("cache.refresh_window cannot be negative")
	}

	return nil
}

func (c *Config) validatePaginationConfig() error {
	if c.Pagination.MaxPages == 0 {
		c.Pagination.MaxPages = DefaultPaginationConfig.MaxPages
	} else if c.Pagination.MaxPages < 0 {
		return fmt.Errorf("pagination.max_pages cannot be negative")
	}

	return nil
}
