// Package profile manages the sender details printed on invoices and mails.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/profile"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ObjectStorage stores uploaded files and returns their public URL
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service handles business profile operations
type Service struct {
	repo    profile.Repository
	storage ObjectStorage
	logger  *zap.Logger
}

// NewService creates a new profile Service
func NewService(repo profile.Repository, storage ObjectStorage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, storage: storage, logger: logger}
}

// Load returns the profile of the tenant, or an empty one when nothing was
// saved yet. Other services use it to fill in sender details.
func (s *Service) Load(ctx context.Context, tenantID uuid.UUID) (*profile.Profile, error) {
	p, err := s.repo.FindByTenant(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		return profile.New(tenantID), nil
	}
	return p, err
}

// Get returns the business profile of the tenant
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (*ProfileResponse, error) {
	p, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := ToProfileResponse(p)
	return &resp, nil
}

// Update replaces the business details, keeping the logo
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	p, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.BusinessName, req.Email, req.Address, req.TaxID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToProfileResponse(p)
	return &resp, nil
}

// UploadLogo stores an image under logos/{tenant}/ and points the profile at
// it. size is the declared length; at most profile.MaxLogoSize bytes are read.
func (s *Service) UploadLogo(ctx context.Context, tenantID uuid.UUID, filename, contentType string, r io.Reader, size int64) (*ProfileResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "profile", "upload_logo",
		telemetry.SpanAttrTenantID, tenantID, "logo.size", size)
	defer span.End()

	if size > profile.MaxLogoSize {
		return nil, profile.ErrLogoTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(r, profile.MaxLogoSize+1))
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	contentType = detectContentType(filename, contentType, data)

	key, err := profile.LogoObjectKey(tenantID, contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}

	p, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Put(ctx, key, contentType, data)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store logo: %w", err)
	}
	p.SetLogo(url)
	if err := s.repo.Save(ctx, p); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned logo", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Logo uploaded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	resp := ToProfileResponse(p)
	return &resp, nil
}

// detectContentType trusts a specific declared type, then the file
// extension, then the leading bytes
func detectContentType(filename, declared string, data []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return http.DetectContentType(data)
}
