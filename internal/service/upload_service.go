package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/mapper"
	"github.com/straye-as/progress-api/internal/repository"
	"github.com/straye-as/progress-api/internal/storage"
)

// UploadService issues upload slots, verifies that referenced objects reached
// storage and resolves download URLs
type UploadService struct {
	slots    *repository.UploadSlotRepository
	store    storage.Storage
	resolver *storage.Resolver
	cfg      *config.StorageConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewUploadService(
	slots *repository.UploadSlotRepository,
	store storage.Storage,
	resolver *storage.Resolver,
	cfg *config.StorageConfig,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		slots:    slots,
		store:    store,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestUploadSlot reserves a storage key and returns a time-limited, single-use upload URL
func (s *UploadService) RequestUploadSlot(ctx context.Context, req *domain.UploadSlotRequest) (*domain.UploadSlotDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	key := storage.NewObjectKey(string(req.Folder), req.FileName)
	expiresAt := s.now().Add(s.cfg.UploadSlotTTLDuration())

	signed, err := s.store.UploadURL(ctx, key, req.ContentType, expiresAt)
	if err != nil {
		s.logger.Error("failed to sign upload url", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	slot := &domain.UploadSlot{
		StorageKey:    key,
		FileName:      req.FileName,
		ContentType:   req.ContentType,
		Folder:        req.Folder,
		RequestedByID: user.UserID,
		ExpiresAt:     expiresAt,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, mapper.FormatError("upload slot", "create", err)
	}

	s.logger.Debug("upload slot issued",
		zap.String("key", key),
		zap.String("folder", string(req.Folder)),
		zap.String("userId", user.UserID.String()))

	return &domain.UploadSlotDTO{
		UploadKey: key,
		UploadURL: signed.URL,
		Method:    signed.Method,
		Headers:   signed.Headers,
		ExpiresAt: mapper.FormatTime(expiresAt),
	}, nil
}

func (s *UploadService) verifier() (storage.TokenVerifier, error) {
	v, ok := s.store.(storage.TokenVerifier)
	if !ok {
		return nil, ErrUploadNotSupported
	}
	return v, nil
}

// AcceptLocalUpload stores the body of a direct upload. Each slot accepts exactly one upload.
func (s *UploadService) AcceptLocalUpload(ctx context.Context, token string, body io.Reader) error {
	v, err := s.verifier()
	if err != nil {
		return err
	}
	key, err := v.VerifyUploadToken(token)
	if err != nil {
		return ErrUnauthorized
	}

	slot, err := s.slots.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return mapper.FormatError("upload slot", "load", err)
	}
	now := s.now()
	if slot.UploadedAt != nil || !slot.ExpiresAt.After(now) {
		return fmt.Errorf("%w: upload slot already used or expired", ErrConflict)
	}

	limit := s.cfg.MaxUploadSizeMB * 1024 * 1024
	size, err := s.store.Put(ctx, key, slot.ContentType, io.LimitReader(body, limit+1))
	if err != nil {
		s.logger.Error("failed to store upload", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if size > limit {
		_ = s.store.Delete(ctx, key)
		return ErrUploadTooLarge
	}

	if err := s.slots.MarkUploaded(ctx, key, size, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: upload slot already used or expired", ErrConflict)
		}
		return mapper.FormatError("upload slot", "update", err)
	}

	s.logger.Info("upload received", zap.String("key", key), zap.Int64("size", size))
	return nil
}

// OpenLocalDownload opens the object a signed download token grants access to
func (s *UploadService) OpenLocalDownload(ctx context.Context, token string) (io.ReadCloser, string, error) {
	v, err := s.verifier()
	if err != nil {
		return nil, "", err
	}
	key, err := v.VerifyDownloadToken(token)
	if err != nil {
		return nil, "", ErrUnauthorized
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if slot, err := s.slots.GetByKey(ctx, key); err == nil {
		contentType = slot.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rc, err := s.store.Download(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return rc, contentType, nil
}

// VerifyUploaded checks that every key was issued as an upload slot and that
// its object is present in storage. Storage is checked concurrently.
func (s *UploadService) VerifyUploaded(ctx context.Context, keys []string) error {
	keys = uniqueKeys(keys)
	if len(keys) == 0 {
		return nil
	}

	slots, err := s.slots.ListByKeys(ctx, keys)
	if err != nil {
		return mapper.FormatError("upload slots", "load", err)
	}
	byKey := make(map[string]domain.UploadSlot, len(slots))
	for _, slot := range slots {
		byKey[slot.StorageKey] = slot
	}

	var pending []domain.UploadSlot
	for _, key := range keys {
		slot, ok := byKey[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownUpload, key)
		}
		// consumed slots belong to objects already referenced by a stored version
		if slot.ConsumedAt == nil {
			pending = append(pending, slot)
		}
	}

	concurrency := s.cfg.VerifyConcurrent
	if concurrency <= 0 {
		concurrency = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	now := s.now()
	for _, slot := range pending {
		g.Go(func() error {
			info, err := s.store.Stat(gctx, slot.StorageKey)
			if err != nil {
				if storage.IsNotFound(err) {
					return fmt.Errorf("%w: %s", ErrUploadIncomplete, slot.StorageKey)
				}
				return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
			}
			if slot.UploadedAt == nil {
				// direct-to-cloud uploads bypass the API; record them on first sight
				if err := s.slots.RecordUpload(gctx, slot.StorageKey, info.Size, now); err != nil {
					return mapper.FormatError("upload slot", "update", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("upload verification failed", zap.Error(err))
		return err
	}
	return nil
}

// ConsumeHook returns a transaction hook marking the keys' slots as referenced
func (s *UploadService) ConsumeHook(keys []string) func(tx *gorm.DB) error {
	keys = uniqueKeys(keys)
	at := s.now()
	return func(tx *gorm.DB) error {
		err := s.slots.Consume(tx, keys, at)
		if errors.Is(err, repository.ErrSlotMissing) {
			return fmt.Errorf("%w: upload expired before the report was saved", ErrUnknownUpload)
		}
		return err
	}
}

// ResolveURLs returns fresh download URLs keyed by storage key
func (s *UploadService) ResolveURLs(ctx context.Context, keys []string) (map[string]string, error) {
	urls, err := s.resolver.URLs(ctx, keys)
	if err != nil {
		s.logger.Error("failed to resolve download urls", zap.Int("keys", len(keys)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return urls, nil
}

// ResolveURLList resolves keys into an ordered list for the API
func (s *UploadService) ResolveURLList(ctx context.Context, keys []string) ([]domain.DownloadURLDTO, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	urls, err := s.ResolveURLs(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DownloadURLDTO, 0, len(urls))
	for _, key := range uniqueKeys(keys) {
		out = append(out, domain.DownloadURLDTO{Key: key, URL: urls[key]})
	}
	return out, nil
}

// SweepExpired deletes slots and objects no version will reference: slots
// never uploaded once they expire, and uploads left unreferenced for longer
// than the retention window. It returns the number of slots removed.
func (s *UploadService) SweepExpired(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	now := s.now()
	candidates, err := s.slots.ListSweepable(ctx, now, now.Add(-s.cfg.UploadRetentionDuration()), batchSize)
	if err != nil {
		return 0, mapper.FormatError("upload slots", "list expired", err)
	}

	removed := 0
	for i := range candidates {
		slot := &candidates[i]
		log := s.logger.With(zap.String("key", slot.StorageKey))

		if slot.UploadedAt == nil {
			info, err := s.store.Stat(ctx, slot.StorageKey)
			switch {
			case err == nil:
				// uploaded straight to storage; keep it for the retention window
				if err := s.slots.RecordUpload(ctx, slot.StorageKey, info.Size, now); err != nil {
					return removed, mapper.FormatError("upload slot", "update", err)
				}
				continue
			case !storage.IsNotFound(err):
				log.Warn("failed to check expired upload", zap.Error(err))
				continue
			}
		}

		// the row goes first so a concurrent submission either consumes it or fails
		deleted, err := s.slots.DeleteUnconsumed(ctx, slot)
		if err != nil {
			return removed, mapper.FormatError("upload slot", "delete", err)
		}
		if !deleted {
			continue
		}
		if err := s.store.Delete(ctx, slot.StorageKey); err != nil {
			log.Warn("failed to delete expired upload", zap.Error(err))
		}
		if err := s.resolver.Forget(ctx, slot.StorageKey); err != nil {
			log.Warn("failed to drop cached download url", zap.Error(err))
		}
		removed++
	}
	return removed, nil
}

func uniqueKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
