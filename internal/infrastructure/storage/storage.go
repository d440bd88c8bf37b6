package storage

import (
	"context"
	"fmt"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewScanStorage builds the configured scan storage. With CreateBucket set
// the S3 bucket is created on first start.
func NewScanStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (billingapp.ScanStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case config.StorageMemory, "":
		logger.Warn("Stamped scans are kept in memory and lost on restart")
		m := NewMemoryScanStorage()
		if cfg.PresignExpiration > 0 {
			m.Expiration = cfg.PresignExpiration
		}
		return m, nil
	case config.StorageS3:
		s, err := NewS3ScanStorage(cfg, WithLogger(logger.Named("scan_storage")))
		if err != nil {
			return nil, err
		}
		if cfg.CreateBucket {
			if err := s.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		logger.Info("Scan storage ready", zap.String("bucket", s.Bucket()))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
