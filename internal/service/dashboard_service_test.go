package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/service"
	"github.com/straye-as/progress-api/internal/testutil"
)

func TestDashboardService_Overview(t *testing.T) {
	env := newTestEnv(t)
	_, _ = testutil.CreateTestProject(t, env.db, uuid.New(), testutil.GlassPanelsSheet())

	mine, err := env.dashboard.Overview(env.managerCtx())
	require.NoError(t, err)
	require.Len(t, mine, 1, "managers only see their own projects")
	assert.Equal(t, env.project.ID, mine[0].ProjectID)
	// (45% + 40%) / 2 rounded
	assert.Equal(t, 43, mine[0].OverallProgress)

	all, err := env.dashboard.Overview(reviewerCtx())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDashboardService_Managers(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.dashboard.Managers(env.managerCtx())
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 5, 5))
	require.NoError(t, err)

	rollups, err := env.dashboard.Managers(reviewerCtx())
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.Equal(t, env.managerID, rollups[0].ProjectManagerID)
	assert.Equal(t, "Test Manager", rollups[0].ProjectManagerName)
	assert.Equal(t, 1, rollups[0].ProjectCount)
	assert.Equal(t, 1, rollups[0].ReportsWithDailyData)
	assert.Equal(t, 40, rollups[0].AverageInstallPercent)
}

func TestDashboardService_Deadlines(t *testing.T) {
	env := newTestEnv(t)

	alerts, err := env.dashboard.Deadlines(env.managerCtx(), 7)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Harbour Tower", alerts[0].ProjectName)
	assert.Equal(t, 3, alerts[0].DaysRemaining)
	assert.Equal(t, domain.ReportStatusNotCreated, alerts[0].ReportStatus)

	alerts, err = env.dashboard.Deadlines(env.managerCtx(), 2)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDashboardService_DeadlinesIncludeProjectsDueToday(t *testing.T) {
	env := newTestEnv(t)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	require.NoError(t, env.db.Model(&domain.ProjectVersion{}).
		Where("id = ?", env.v1.ID).
		Update("estimated_end_date", today).Error)

	alerts, err := env.dashboard.Deadlines(env.managerCtx(), 1)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 0, alerts[0].DaysRemaining)

	require.NoError(t, env.db.Model(&domain.ProjectVersion{}).
		Where("id = ?", env.v1.ID).
		Update("estimated_end_date", today.Add(-time.Second)).Error)

	alerts, err = env.dashboard.Deadlines(env.managerCtx(), 1)
	require.NoError(t, err)
	assert.Empty(t, alerts, "projects due yesterday are overdue, not upcoming")
}

func TestDashboardService_Activity(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.managerCtx()

	photo := env.uploadPhoto(t, ctx, domain.UploadFolderPhotos)
	req := northFaceReport(env.v1.ID, 0, 0)
	req.Entries[0].PhotoReports = []domain.PhotoReportInput{{Description: "Panels delivered", Photos: []domain.PhotoInput{photo}}}
	_, err := env.reports.Submit(ctx, env.project.ID, req)
	require.NoError(t, err)

	latest, err := env.versions.GetLatest(ctx, env.project.ID)
	require.NoError(t, err)
	req = northFaceReport(latest.ID, 0, 0)
	req.Entries[0].Blockages = []domain.BlockageInput{blockageInput()}
	time.Sleep(10 * time.Millisecond)
	_, err = env.reports.Submit(ctx, env.project.ID, req)
	require.NoError(t, err)

	feed, err := env.dashboard.Activity(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, domain.ActivityKindBlockage, feed[0].Kind, "newest first")
	require.NotNil(t, feed[0].Severity)
	assert.Equal(t, domain.BlockageSeverityHigh, *feed[0].Severity)
	assert.Equal(t, domain.ActivityKindPhotoReport, feed[1].Kind)
	assert.Equal(t, 1, feed[1].PhotoCount)

	capped, err := env.dashboard.Activity(ctx, 7, 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)

	others, err := env.dashboard.Activity(otherManagerCtx(), 7, 10)
	require.NoError(t, err)
	assert.Empty(t, others)
}
