// Package identity derives a stable player identifier from request attributes.
package identity

import (
	"context"
	"log/slog"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
)

// Service resolves the player behind a request
type Service struct {
	storage storage.Storage
	hasher  *Hasher
	cache   Cache
	logger  *slog.Logger
}

// New creates a new identity Service. cache may be nil.
func New(storage storage.Storage, hasher *Hasher, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
		cache:   cache,
		logger:  logger,
	}
}

// Fingerprint hashes attributes with the configured hasher
func (s *Service) Fingerprint(attrs Attributes) string {
	return s.hasher.Fingerprint(attrs)
}

// Resolve returns existingID if storage already knows it, otherwise the fingerprint of attrs.
// Resolution never writes; a fingerprint only becomes known once a tracker stores data under it.
func (s *Service) Resolve(ctx context.Context, attrs Attributes, existingID model.PlayerID) (model.PlayerID, error) {
	fingerprint := model.PlayerID(s.hasher.Fingerprint(attrs))
	if existingID == "" || existingID == fingerprint {
		return fingerprint, nil
	}

	cacheKey := string(fingerprint) + "|" + string(existingID)
	if s.cache != nil {
		id, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("identity cache read failed", slog.Any("error", err))
		} else if ok {
			return id, nil
		}
	}

	exists, err := s.storage.PlayerExists(ctx, existingID)
	if err != nil {
		return "", err
	}
	if !exists {
		return fingerprint, nil
	}

	// Only positive lookups are cached; an unknown ID may become known later
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, existingID); err != nil {
			s.logger.Warn("identity cache write failed", slog.Any("error", err))
		}
	}
	return existingID, nil
}
