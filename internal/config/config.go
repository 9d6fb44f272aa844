// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values come from
// built-in defaults, then an optional YAML file, then environment variables.
// It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"kontentsource/internal/richtext"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheValkey = "valkey"
)

// Linked item policies.
const (
	PolicyFirst  = "first"
	PolicyReject = "reject"
)

// ErrProjectIDRequired is returned by Validate when no project id is set.
var ErrProjectIDRequired = errors.New("config: kontent.projectId is required")

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"` // "debug", "info", "warn", "error"

	Kontent  Kontent  `yaml:"kontent"`
	Schema   Schema   `yaml:"schema"`
	RichText RichText `yaml:"richText"`
	Store    Store    `yaml:"store"`
	Cache    Cache    `yaml:"cache"`
}

// Kontent holds the Delivery API settings.
type Kontent struct {
	ProjectID      string        `yaml:"projectId"`
	PreviewAPIKey  string        `yaml:"previewApiKey"`
	SecuredAPIKey  string        `yaml:"securedApiKey"`
	UsePreview     bool          `yaml:"usePreview"`
	Language       string        `yaml:"language"`
	BaseURL        string        `yaml:"baseUrl"`
	PreviewBaseURL string        `yaml:"previewBaseUrl"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     uint64        `yaml:"maxRetries"`
	// Depth is the number of linked item levels fetched with each item.
	Depth int `yaml:"depth"`
}

// Schema holds node and collection naming settings.
type Schema struct {
	TypeNamePrefix     string `yaml:"typeNamePrefix"`
	AssetTypeName      string `yaml:"assetTypeName"`
	ItemLinkTypeName   string `yaml:"itemLinkTypeName"`
	TaxonomyTypePrefix string `yaml:"taxonomyTypePrefix"`
	LinkedItemPolicy   string `yaml:"linkedItemPolicy"`

	// Routes map content type codenames to route templates.
	Routes map[string]string `yaml:"routes"`
	// TaxonomyRoutes map taxonomy group codenames to route templates.
	TaxonomyRoutes map[string]string `yaml:"taxonomyRoutes"`
}

// RichText holds the rich text transformer settings. A null value disables
// the stage that depends on it.
type RichText struct {
	WrapperCSSClass       *string `yaml:"wrapperCssClass"`
	ComponentNamePrefix   *string `yaml:"componentNamePrefix"`
	ItemLinkSelector      *string `yaml:"itemLinkSelector"`
	ItemLinkComponentName *string `yaml:"itemLinkComponentName"`
	ComponentSelector     *string `yaml:"componentSelector"`
	AssetSelector         *string `yaml:"assetSelector"`
	AssetComponentName    *string `yaml:"assetComponentName"`
}

// Store holds the node store settings.
type Store struct {
	Driver string `yaml:"driver"` // "memory", "postgres", "sqlite"
	DSN    string `yaml:"dsn"`
}

// Cache holds the delivery response cache settings.
type Cache struct {
	Driver string        `yaml:"driver"` // "none", "memory", "valkey"
	TTL    time.Duration `yaml:"ttl"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `yaml:"valkeyHost"`
	ValkeyPort     string `yaml:"valkeyPort"`
	ValkeyPassword string `yaml:"valkeyPassword"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	rt := richtext.DefaultOptions()
	return &Config{
		Host:     "0.0.0.0",
		Port:     "8080",
		LogLevel: "info",
		Kontent: Kontent{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			Depth:      3,
		},
		Schema: Schema{
			AssetTypeName:      "Asset",
			ItemLinkTypeName:   "ItemLink",
			TaxonomyTypePrefix: "Taxonomy",
			LinkedItemPolicy:   PolicyFirst,
		},
		RichText: RichText{
			WrapperCSSClass:       ptr(rt.WrapperCSSClass),
			ComponentNamePrefix:   ptr(rt.ComponentNamePrefix),
			ItemLinkSelector:      ptr(rt.ItemLinkSelector),
			ItemLinkComponentName: ptr(rt.ItemLinkComponentName),
			ComponentSelector:     ptr(rt.ComponentSelector),
			AssetSelector:         ptr(rt.AssetSelector),
			AssetComponentName:    ptr(rt.AssetComponentName),
		},
		Store: Store{Driver: DriverMemory},
		Cache: Cache{
			Driver:     CacheNone,
			TTL:        5 * time.Minute,
			ValkeyHost: "localhost",
			ValkeyPort: "6379",
		},
	}
}

// Load reads configuration from the YAML file at path, if path is not empty,
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Kontent.ProjectID = envOrDefault("KONTENT_PROJECT_ID", c.Kontent.ProjectID)
	c.Kontent.PreviewAPIKey = envOrDefault("KONTENT_PREVIEW_API_KEY", c.Kontent.PreviewAPIKey)
	c.Kontent.SecuredAPIKey = envOrDefault("KONTENT_SECURED_API_KEY", c.Kontent.SecuredAPIKey)
	c.Kontent.Language = envOrDefault("KONTENT_LANGUAGE", c.Kontent.Language)
	if v := os.Getenv("KONTENT_USE_PREVIEW"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse KONTENT_USE_PREVIEW: %w", err)
		}
		c.Kontent.UsePreview = b
	}

	c.Store.Driver = envOrDefault("STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = envOrDefault("STORE_DSN", c.Store.DSN)

	c.Cache.Driver = envOrDefault("CACHE_DRIVER", c.Cache.Driver)
	c.Cache.ValkeyHost = envOrDefault("VALKEY_HOST", c.Cache.ValkeyHost)
	c.Cache.ValkeyPort = envOrDefault("VALKEY_PORT", c.Cache.ValkeyPort)
	c.Cache.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", c.Cache.ValkeyPassword)

	c.Host = envOrDefault("APP_HOST", c.Host)
	c.Port = envOrDefault("APP_PORT", c.Port)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Kontent.ProjectID == "" {
		return ErrProjectIDRequired
	}
	if c.Kontent.UsePreview && c.Kontent.PreviewAPIKey == "" {
		return fmt.Errorf("config: kontent.previewApiKey is required when usePreview is set")
	}
	if c.Kontent.Depth < 0 {
		return fmt.Errorf("config: kontent.depth must not be negative, got %d", c.Kontent.Depth)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory, CacheValkey:
	default:
		return fmt.Errorf("config: unsupported cache driver %q", c.Cache.Driver)
	}

	switch c.Schema.LinkedItemPolicy {
	case PolicyFirst, PolicyReject:
	default:
		return fmt.Errorf("config: unsupported linked item policy %q", c.Schema.LinkedItemPolicy)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unsupported log level %q", c.LogLevel)
	}
	return nil
}

// RichTextOptions returns the transformer options. Null values become empty
// strings, which disables the matching stage.
func (c *Config) RichTextOptions() richtext.Options {
	rt := c.RichText
	return richtext.Options{
		WrapperCSSClass:       deref(rt.WrapperCSSClass),
		ComponentNamePrefix:   deref(rt.ComponentNamePrefix),
		ItemLinkSelector:      deref(rt.ItemLinkSelector),
		ItemLinkComponentName: deref(rt.ItemLinkComponentName),
		ComponentSelector:     deref(rt.ComponentSelector),
		AssetSelector:         deref(rt.AssetSelector),
		AssetComponentName:    deref(rt.AssetComponentName),
	}
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.Cache.ValkeyHost, c.Cache.ValkeyPort)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
