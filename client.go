// Package madsearch embeds the MadPlan search service as a library: the same
// indexing and query pipeline the HTTP server runs, wired against a Redis
// store the caller points it at.
package madsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/db"
	dbRedis "github.com/madplan/madsearch/internal/db/redis"
	catalogrepo "github.com/madplan/madsearch/internal/repository/catalog"
	recordrepo "github.com/madplan/madsearch/internal/repository/record"
	searchrepo "github.com/madplan/madsearch/internal/repository/search"
	indexeruc "github.com/madplan/madsearch/internal/usecase/indexer"
	searchuc "github.com/madplan/madsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultGraceHours       = 24
)

// Client is the madsearch SDK entry point.
type Client struct {
	store      db.Store
	searchSvc  *searchuc.Service
	indexerSvc *indexeruc.Service
}

// New creates a madsearch Client, connects to the store, and ensures the
// search index exists.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{graceHours: defaultGraceHours}
	for _, o := range opts {
		o(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("madsearch: database address required (use WithRedis)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("madsearch: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("madsearch: database not ready: %w", err)
	}

	recordRepo := recordrepo.New(store)
	catalogRepo := catalogrepo.New(store, cfg.entityPrefix)
	searchRepo := searchrepo.New(store)

	indexerSvc := indexeruc.NewService(recordRepo, catalogRepo, cfg.logger, cfg.graceHours)
	if err := indexerSvc.Setup(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("madsearch: create index: %w", err)
	}

	return &Client{
		store:      store,
		searchSvc:  searchuc.NewService(searchRepo, cfg.logger),
		indexerSvc: indexerSvc,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Indexer returns the index-maintenance hooks.
func (c *Client) Indexer() *IndexerService {
	return &IndexerService{svc: c.indexerSvc}
}
