// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"kontentsource/internal/cache"
	"kontentsource/internal/config"
	"kontentsource/internal/content"
	"kontentsource/internal/database"
	"kontentsource/internal/delivery"
	"kontentsource/internal/metrics"
	"kontentsource/internal/richtext"
	"kontentsource/internal/source"
	"kontentsource/internal/store"
	"kontentsource/internal/taxonomy"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	db       *sql.DB
	valkey   *redis.Client
	cache    *cache.ResponseCache
	store    store.Store
	loadRuns *store.LoadRunStore
	source   *source.Source
}

// setup loads configuration and connects every service the commands need.
func setup(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"project_id", cfg.Kontent.ProjectID,
		"preview", cfg.Kontent.UsePreview,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Driver,
	)

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}

	responseCache, err := a.openCache()
	if err != nil {
		a.Close()
		return nil, err
	}

	client, err := delivery.New(delivery.Options{
		ProjectID:      cfg.Kontent.ProjectID,
		BaseURL:        cfg.Kontent.BaseURL,
		PreviewBaseURL: cfg.Kontent.PreviewBaseURL,
		UsePreview:     cfg.Kontent.UsePreview,
		PreviewAPIKey:  cfg.Kontent.PreviewAPIKey,
		SecuredAPIKey:  cfg.Kontent.SecuredAPIKey,
		Language:       cfg.Kontent.Language,
		Timeout:        cfg.Kontent.Timeout,
		MaxRetries:     cfg.Kontent.MaxRetries,
		SourceVersion:  version,
		Cache:          responseCache,
		Metrics:        m,
		Logger:         logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create delivery client: %w", err)
	}

	transformer, err := richtext.New(cfg.RichTextOptions())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create rich text transformer: %w", err)
	}

	a.source = source.New(client, source.Options{
		Depth:            cfg.Kontent.Depth,
		LinkedItemPolicy: source.LinkedItemPolicy(cfg.Schema.LinkedItemPolicy),
		Content: content.NewFactory(content.Options{
			TypeNamePrefix:   cfg.Schema.TypeNamePrefix,
			AssetTypeName:    cfg.Schema.AssetTypeName,
			ItemLinkTypeName: cfg.Schema.ItemLinkTypeName,
			Routes:           cfg.Schema.Routes,
			Transformer:      transformer,
			Metrics:          m,
			Logger:           logger,
		}),
		Taxonomy: taxonomy.NewFactory(cfg.Schema.TaxonomyTypePrefix, cfg.Schema.TaxonomyRoutes),
		Metrics:  m,
		Logger:   logger,
	})

	return a, nil
}

func (a *app) openStore() error {
	if a.cfg.Store.Driver == config.DriverMemory {
		a.store = store.NewMemory()
		return nil
	}

	db, err := database.Connect(a.cfg.Store.Driver, a.cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db

	// Run pending migrations.
	if err := database.Migrate(db, a.cfg.Store.Driver); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	a.store = store.NewSQL(db, a.cfg.Store.Driver)
	a.loadRuns = store.NewLoadRunStore(db, a.cfg.Store.Driver)
	return nil
}

func (a *app) openCache() (delivery.ResponseCache, error) {
	switch a.cfg.Cache.Driver {
	case config.CacheMemory:
		return cache.NewMemoryCache(a.cfg.Cache.TTL), nil
	case config.CacheValkey:
		client, err := cache.ConnectValkey(context.Background(), a.cfg.ValkeyAddr(), a.cfg.Cache.ValkeyPassword, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to valkey: %w", err)
		}
		a.valkey = client
		a.cache = cache.NewResponseCache(client, a.cfg.Kontent.ProjectID, a.cfg.Cache.TTL, a.logger)
		return a.cache, nil
	default:
		return nil, nil
	}
}

// InvalidateCache drops the shared response cache so the next load sees
// the latest published content. The in-process cache starts empty anyway.
func (a *app) InvalidateCache(ctx context.Context) {
	if a.cache != nil {
		a.cache.InvalidateAll(ctx)
	}
}

// Load runs the ingestion pipeline and records the run when the store is
// backed by a database.
func (a *app) Load(ctx context.Context) error {
	if a.loadRuns == nil {
		if err := a.source.Load(ctx, a.store); err != nil {
			return fmt.Errorf("load content: %w", err)
		}
		return nil
	}

	id, err := a.loadRuns.Start(ctx)
	if err != nil {
		return err
	}
	loadErr := a.source.Load(ctx, a.store)
	a.loadRuns.Finish(context.WithoutCancel(ctx), id, a.source.Inserted(), loadErr)
	if loadErr != nil {
		return fmt.Errorf("load content: %w", loadErr)
	}
	return nil
}

// LogSummary logs the node count of every collection.
func (a *app) LogSummary(ctx context.Context) error {
	names, err := a.store.Collections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range names {
		c, err := a.store.Collection(ctx, name)
		if err != nil {
			return fmt.Errorf("find collection %s: %w", name, err)
		}
		n, err := c.Count(ctx)
		if err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		a.logger.Info("collection loaded", "type_name", name, "nodes", n)
	}
	a.logger.Info("load finished", "inserted", a.source.Inserted())
	return nil
}

// Close releases the database and Valkey connections.
func (a *app) Close() {
	if a.valkey != nil {
		a.valkey.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
