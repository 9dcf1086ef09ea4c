package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/progress-api/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateWithVersion inserts a project and its first version atomically
func (r *ProjectRepository) CreateWithVersion(ctx context.Context, project *domain.Project, version *domain.ProjectVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		version.ProjectID = project.ID
		version.VersionNumber = 1
		return tx.Create(version).Error
	})
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SyncHeader keeps the identity row in step with the latest version's name and manager
func (r *ProjectRepository) SyncHeader(tx *gorm.DB, version *domain.ProjectVersion) error {
	return tx.Model(&domain.Project{}).
		Where("id = ?", version.ProjectID).
		Updates(map[string]interface{}{
			"name":               version.ProjectName,
			"project_manager_id": version.ProjectManagerID,
		}).Error
}
