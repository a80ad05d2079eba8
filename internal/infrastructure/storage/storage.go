package storage

import (
	"context"
	"fmt"

	profileapp "github.com/invoicer/backend/internal/application/profile"
	infraconfig "github.com/invoicer/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the object storage selected by cfg.Provider. For s3 the bucket
// is created when missing.
func New(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (profileapp.ObjectStorage, error) {
	switch cfg.Provider {
	case "s3":
		s, err := NewS3ObjectStorage(&cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "", "stub":
		logger.Warn("Using in-memory stub object storage; uploaded logos are not persisted")
		return NewStubObjectStorage(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
