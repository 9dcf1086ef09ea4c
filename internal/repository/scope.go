package repository

import (
	"context"

	"github.com/straye-as/progress-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// NormalizePage clamps page and page size to sane bounds
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ApplyManagerFilter restricts a project version query to the projects the
// acting user may see. Project managers only see projects assigned to them;
// reviewers and requests without a user are left unfiltered.
func ApplyManagerFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return query
	}
	if managerID := user.ManagerFilter(); managerID != nil {
		return query.Where("project_versions.project_manager_id = ?", *managerID)
	}
	return query
}

// latestVersionIDs selects the newest version id of every project
func latestVersionIDs(db *gorm.DB) *gorm.DB {
	return db.Table("project_versions").Select("MAX(id)").Group("project_id")
}
