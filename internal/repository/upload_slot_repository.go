package repository

import (
	"context"
	"errors"
	"time"

	"github.com/straye-as/progress-api/internal/domain"
	"gorm.io/gorm"
)

// ErrSlotMissing is returned when a referenced upload slot no longer exists
var ErrSlotMissing = errors.New("upload slot no longer exists")

type UploadSlotRepository struct {
	db *gorm.DB
}

func NewUploadSlotRepository(db *gorm.DB) *UploadSlotRepository {
	return &UploadSlotRepository{db: db}
}

func (r *UploadSlotRepository) Create(ctx context.Context, slot *domain.UploadSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *UploadSlotRepository) GetByKey(ctx context.Context, key string) (*domain.UploadSlot, error) {
	var slot domain.UploadSlot
	err := r.db.WithContext(ctx).First(&slot, "storage_key = ?", key).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByKeys returns the slots for the given keys; unknown keys are omitted
func (r *UploadSlotRepository) ListByKeys(ctx context.Context, keys []string) ([]domain.UploadSlot, error) {
	var slots []domain.UploadSlot
	if len(keys) == 0 {
		return slots, nil
	}
	err := r.db.WithContext(ctx).Where("storage_key IN ?", keys).Find(&slots).Error
	return slots, err
}

// MarkUploaded records that the object behind an unused slot has been written.
// It returns gorm.ErrRecordNotFound when the slot was already used or has expired.
func (r *UploadSlotRepository) MarkUploaded(ctx context.Context, key string, size int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.UploadSlot{}).
		Where("storage_key = ? AND uploaded_at IS NULL AND expires_at > ?", key, at).
		Updates(map[string]interface{}{"uploaded_at": at, "size": size})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordUpload notes an object found in storage for a slot that never passed
// through the API. Slots already marked are left alone.
func (r *UploadSlotRepository) RecordUpload(ctx context.Context, key string, size int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.UploadSlot{}).
		Where("storage_key = ? AND uploaded_at IS NULL", key).
		Updates(map[string]interface{}{"uploaded_at": at, "size": size}).Error
}

// Consume marks slots as referenced by a persisted version. Runs inside the
// caller's transaction so a failed append leaves the slots unconsumed. It
// returns ErrSlotMissing when a slot was swept after verification; keys must
// be unique.
func (r *UploadSlotRepository) Consume(tx *gorm.DB, keys []string, at time.Time) error {
	if len(keys) == 0 {
		return nil
	}
	err := tx.Model(&domain.UploadSlot{}).
		Where("storage_key IN ? AND consumed_at IS NULL", keys).
		Update("consumed_at", at).Error
	if err != nil {
		return err
	}

	var count int64
	if err := tx.Model(&domain.UploadSlot{}).Where("storage_key IN ?", keys).Count(&count).Error; err != nil {
		return err
	}
	if count < int64(len(keys)) {
		return ErrSlotMissing
	}
	return nil
}

// ListSweepable returns unconsumed slots that may be removed: slots never
// uploaded that are past their expiry, and uploads older than uploadedBefore
// that no version references
func (r *UploadSlotRepository) ListSweepable(ctx context.Context, now, uploadedBefore time.Time, limit int) ([]domain.UploadSlot, error) {
	var slots []domain.UploadSlot
	err := r.db.WithContext(ctx).
		Where("consumed_at IS NULL").
		Where(r.db.Where("uploaded_at IS NULL AND expires_at < ?", now).
			Or("uploaded_at IS NOT NULL AND uploaded_at < ?", uploadedBefore)).
		Order("expires_at ASC").
		Limit(limit).
		Find(&slots).Error
	return slots, err
}

// DeleteUnconsumed removes a slot unless a version consumed it in the
// meantime. It reports whether the slot was removed.
func (r *UploadSlotRepository) DeleteUnconsumed(ctx context.Context, slot *domain.UploadSlot) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND consumed_at IS NULL", slot.ID).Delete(&domain.UploadSlot{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
