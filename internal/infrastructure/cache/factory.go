package cache

import (
	"context"
	"fmt"

	"github.com/bizdocs/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SequenceReserver hands out candidate sequence numbers per year prefix
type SequenceReserver interface {
	Reserve(ctx context.Context, yearPrefix string, floor int) (int, error)
	Close() error
}

// SequenceReserverFactory creates reservers based on the numbering configuration
type SequenceReserverFactory struct {
	numbering             config.NumberingConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SequenceReserverFactoryOption is a functional option for configuring the factory
type SequenceReserverFactoryOption func(*SequenceReserverFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SequenceReserverFactoryOption {
	return func(f *SequenceReserverFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory reserver
// when Redis is unavailable. Default is false.
func WithInMemoryFallback(allow bool) SequenceReserverFactoryOption {
	return func(f *SequenceReserverFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSequenceReserverFactory creates a new factory
func NewSequenceReserverFactory(numbering config.NumberingConfig, redisCfg config.RedisConfig, opts ...SequenceReserverFactoryOption) *SequenceReserverFactory {
	f := &SequenceReserverFactory{
		numbering:   numbering,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateReserver returns the reserver for the configured backend. The
// database backend needs none and yields (nil, nil): numbers are then derived
// from persisted rows alone.
func (f *SequenceReserverFactory) CreateReserver(ctx context.Context) (SequenceReserver, error) {
	if f.numbering.Backend != config.NumberingRedis {
		f.logger.Info("document numbering uses database lookups only")
		return nil, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("document numbering reserves candidates in Redis",
			zap.String("addr", f.redisConfig.Addr()))
		return NewRedisSequenceReserver(client, ""), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for numbering but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory sequence reservation. "+
		"Concurrent instances may compute the same candidate and rely on unique indexes.",
		zap.Error(err),
	)
	return NewInMemorySequenceReserver(), nil
}
