package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/progress-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleVersion is returned when a version is appended on top of a base
// that is no longer the latest version of its project
var ErrStaleVersion = errors.New("base version is no longer the latest")

// VersionFilter narrows latest-version listings
type VersionFilter struct {
	ManagerID    *uuid.UUID
	Status       *domain.ProjectStatus
	ReportStatus *domain.ReportStatus
}

// VersionRepository stores the append-only project version history
type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) GetByID(ctx context.Context, id uint) (*domain.ProjectVersion, error) {
	var v domain.ProjectVersion
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetLatest returns the newest version of a project
func (r *VersionRepository) GetLatest(ctx context.Context, projectID uuid.UUID) (*domain.ProjectVersion, error) {
	var v domain.ProjectVersion
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version_number DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// AppendNext inserts next as the version following baseID. The append fails
// with ErrStaleVersion when another version was appended after baseID, either
// before the check or concurrently (caught by the unique version number).
// Hooks run in the same transaction after the insert.
func (r *VersionRepository) AppendNext(ctx context.Context, baseID uint, next *domain.ProjectVersion, hooks ...func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest domain.ProjectVersion
		q := tx.Where("project_id = ?", next.ProjectID).Order("version_number DESC")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&latest).Error; err != nil {
			return err
		}
		if latest.ID != baseID {
			return ErrStaleVersion
		}

		next.ID = 0
		next.VersionNumber = latest.VersionNumber + 1
		if err := tx.Create(next).Error; err != nil {
			return err
		}

		for _, hook := range hooks {
			if err := hook(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrStaleVersion
	}
	return err
}

// ListLatest returns the latest version of every project matching the filter,
// restricted to the projects visible to the acting user
func (r *VersionRepository) ListLatest(ctx context.Context, filter VersionFilter, page, pageSize int) ([]domain.ProjectVersion, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := r.latestQuery(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var versions []domain.ProjectVersion
	err := query.
		Order("project_versions.project_name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&versions).Error
	return versions, total, err
}

// ListAllLatest returns every visible latest version without paging, for dashboards
func (r *VersionRepository) ListAllLatest(ctx context.Context, filter VersionFilter) ([]domain.ProjectVersion, error) {
	var versions []domain.ProjectVersion
	err := r.latestQuery(ctx, filter).
		Order("project_versions.project_name ASC").
		Find(&versions).Error
	return versions, err
}

// ListEndingBetween returns visible latest versions whose estimated end date falls in [from, to)
func (r *VersionRepository) ListEndingBetween(ctx context.Context, from, to time.Time) ([]domain.ProjectVersion, error) {
	var versions []domain.ProjectVersion
	err := r.latestQuery(ctx, VersionFilter{}).
		Where("project_versions.estimated_end_date >= ? AND project_versions.estimated_end_date < ?", from, to).
		Order("project_versions.estimated_end_date ASC").
		Find(&versions).Error
	return versions, err
}

// ListHistory returns a project's versions created within the optional range, oldest first
func (r *VersionRepository) ListHistory(ctx context.Context, projectID uuid.UUID, from, to *time.Time) ([]domain.ProjectVersion, error) {
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var versions []domain.ProjectVersion
	err := query.Order("version_number ASC").Find(&versions).Error
	return versions, err
}

func (r *VersionRepository) latestQuery(ctx context.Context, filter VersionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.ProjectVersion{}).
		Where("project_versions.id IN (?)", latestVersionIDs(r.db.WithContext(ctx)))
	query = ApplyManagerFilter(ctx, query)

	if filter.ManagerID != nil {
		query = query.Where("project_versions.project_manager_id = ?", *filter.ManagerID)
	}
	if filter.Status != nil {
		query = query.Where("project_versions.status = ?", *filter.Status)
	}
	if filter.ReportStatus != nil {
		query = query.Where("project_versions.yesterday_report_status = ?", *filter.ReportStatus)
	}
	return query
}
