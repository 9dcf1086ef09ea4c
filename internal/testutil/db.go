package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/straye-as/progress-api/internal/database"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
)

// SetupTestDB opens a private in-memory SQLite database with the schema migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// GlassPanelsSheet returns a one-line sheet with a single connected sub-item
func GlassPanelsSheet() []domain.LineItem {
	sheet := []domain.LineItem{{
		ID:             "glass-panels",
		ItemName:       "Glass Panels",
		Unit:           "pcs",
		TotalQuantity:  500,
		TotalSupplied:  450,
		TotalInstalled: 400,
		SubItems: []domain.SubItem{{
			ID:                    "north-face",
			SubItemName:           "North Face",
			Unit:                  "pcs",
			TotalQuantity:         250,
			TotalSupplied:         225,
			TotalInstalled:        200,
			ConnectWithSheet1Item: true,
		}},
	}}
	ledger.Recompute(sheet)
	return sheet
}

// CreateTestProject inserts a project with its first version and returns both
func CreateTestProject(t *testing.T, db *gorm.DB, managerID uuid.UUID, sheet []domain.LineItem) (*domain.Project, *domain.ProjectVersion) {
	t.Helper()
	creator := uuid.New()
	end := time.Now().UTC().Add(72 * time.Hour)

	project := &domain.Project{Name: "Harbour Tower", CreatorID: creator, ProjectManagerID: managerID}
	require.NoError(t, db.Create(project).Error)

	version := &domain.ProjectVersion{
		ProjectID:             project.ID,
		VersionNumber:         1,
		ProjectName:           project.Name,
		ProjectManagerID:      managerID,
		ProjectManagerName:    "Test Manager",
		ClientName:            "Fjord Bygg AS",
		ClientEmails:          []string{"client@example.com"},
		Status:                domain.ProjectStatusActive,
		Priority:              domain.ProjectPriorityMedium,
		EstimatedEndDate:      &end,
		YesterdayReportStatus: domain.ReportStatusNotCreated,
		Sheet1:                sheet,
		CreatedByID:           creator,
	}
	require.NoError(t, db.Create(version).Error)
	return project, version
}
