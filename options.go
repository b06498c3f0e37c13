package madsearch

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs        []string
	password     string
	db           int
	entityPrefix string
	graceHours   int
	logger       *zap.Logger
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) {
		c.password = password
	}
}

// WithDB selects a logical database number.
func WithDB(db int) Option {
	return func(c *clientConfig) {
		c.db = db
	}
}

// WithKeyPrefix sets the namespace the board service writes entity snapshots
// under. Defaults to "madplan:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.entityPrefix = prefix
	}
}

// WithOrphanGrace sets how many hours soft-deleted records survive before the
// orphan sweep purges them. Defaults to 24.
func WithOrphanGrace(hours int) Option {
	return func(c *clientConfig) {
		c.graceHours = hours
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
