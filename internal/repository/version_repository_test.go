package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/repository"
	"github.com/straye-as/progress-api/internal/testutil"
)

func TestVersionRepository_AppendNext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVersionRepository(db)
	ctx := context.Background()

	_, v1 := testutil.CreateTestProject(t, db, uuid.New(), testutil.GlassPanelsSheet())

	next := v1.Clone()
	next.YesterdayReportStatus = domain.ReportStatusPending
	require.NoError(t, repo.AppendNext(ctx, v1.ID, next))
	assert.Equal(t, 2, next.VersionNumber)
	assert.NotZero(t, next.ID)

	latest, err := repo.GetLatest(ctx, v1.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, latest.ID)
	assert.Equal(t, domain.ReportStatusPending, latest.YesterdayReportStatus)
	assert.Equal(t, 250.0, latest.Sheet1[0].SubItems[0].TotalQuantity)

	stale := v1.Clone()
	err = repo.AppendNext(ctx, v1.ID, stale)
	assert.ErrorIs(t, err, repository.ErrStaleVersion)

	original, err := repo.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusNotCreated, original.YesterdayReportStatus, "superseded versions are never modified")
}

func TestVersionRepository_AppendNextConcurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVersionRepository(db)
	_, v1 := testutil.CreateTestProject(t, db, uuid.New(), testutil.GlassPanelsSheet())

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.AppendNext(context.Background(), v1.ID, v1.Clone())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrStaleVersion)
	}
	assert.Equal(t, 1, succeeded)

	history, err := repo.ListHistory(context.Background(), v1.ProjectID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestVersionRepository_AppendNextRunsHooksInTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVersionRepository(db)
	_, v1 := testutil.CreateTestProject(t, db, uuid.New(), testutil.GlassPanelsSheet())

	err := repo.AppendNext(context.Background(), v1.ID, v1.Clone(), func(tx *gorm.DB) error {
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	latest, err := repo.GetLatest(context.Background(), v1.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, latest.ID, "failed hook rolls the append back")
}

func TestVersionRepository_ListLatestVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVersionRepository(db)

	pm := uuid.New()
	_, mine := testutil.CreateTestProject(t, db, pm, testutil.GlassPanelsSheet())
	testutil.CreateTestProject(t, db, uuid.New(), testutil.GlassPanelsSheet())

	next := mine.Clone()
	next.YesterdayReportStatus = domain.ReportStatusPending
	require.NoError(t, repo.AppendNext(context.Background(), mine.ID, next))

	reviewerCtx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: uuid.New(), Role: domain.RoleHeadOfPlanning})
	all, total, err := repo.ListLatest(reviewerCtx, repository.VersionFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	pmCtx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: pm, Role: domain.RoleProjectManager})
	own, total, err := repo.ListLatest(pmCtx, repository.VersionFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, next.ID, own[0].ID, "only the latest version is listed")

	pending := domain.ReportStatusPending
	filtered, err := repo.ListAllLatest(reviewerCtx, repository.VersionFilter{ReportStatus: &pending})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, next.ID, filtered[0].ID)
}

func TestVersionRepository_ListHistoryRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVersionRepository(db)
	_, v1 := testutil.CreateTestProject(t, db, uuid.New(), testutil.GlassPanelsSheet())

	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&domain.ProjectVersion{}).Where("id = ?", v1.ID).Update("created_at", past).Error)

	v2 := v1.Clone()
	require.NoError(t, repo.AppendNext(context.Background(), v1.ID, v2))

	from := time.Now().UTC().Add(-time.Hour)
	recent, err := repo.ListHistory(context.Background(), v1.ProjectID, &from, nil)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, v2.ID, recent[0].ID)

	to := time.Now().UTC().Add(-24 * time.Hour)
	old, err := repo.ListHistory(context.Background(), v1.ProjectID, nil, &to)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, v1.ID, old[0].ID)
}
