package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/jobs"
	"github.com/straye-as/progress-api/internal/report"
	"github.com/straye-as/progress-api/internal/repository"
	"github.com/straye-as/progress-api/internal/service"
	"github.com/straye-as/progress-api/internal/storage"
	"github.com/straye-as/progress-api/internal/testutil"
)

type fakeQueue struct {
	mu       sync.Mutex
	payloads []jobs.ReportEmailPayload
	err      error
}

func (q *fakeQueue) EnqueueReportEmail(_ context.Context, p jobs.ReportEmailPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, p)
	return nil
}

type testEnv struct {
	db           *gorm.DB
	store        *storage.LocalStorage
	slots        *repository.UploadSlotRepository
	versions     *repository.VersionRepository
	queue        *fakeQueue
	uploads      *service.UploadService
	projects     *service.ProjectService
	reports      *service.ReportService
	blockages    *service.BlockageService
	dashboard    *service.DashboardService
	distribution *service.DistributionService

	managerID uuid.UUID
	project   *domain.Project
	v1        *domain.ProjectVersion
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	db := testutil.SetupTestDB(t)

	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080", storage.NewSigner("test-secret"))
	require.NoError(t, err)

	storageCfg := &config.StorageConfig{
		UploadSlotTTL:    900,
		DownloadURLTTL:   3600,
		MaxUploadSizeMB:  1,
		VerifyConcurrent: 2,
	}
	resolver := storage.NewResolver(store, nil, storageCfg.DownloadURLTTLDuration(), log)

	slots := repository.NewUploadSlotRepository(db)
	versions := repository.NewVersionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	queue := &fakeQueue{}

	uploads := service.NewUploadService(slots, store, resolver, storageCfg, log)
	distribution := service.NewDistributionService(report.NewRenderer("Straye"), store, resolver, queue,
		&config.DistributionConfig{InternalRecipients: []string{"planning@straye.no"}}, log)

	env := &testEnv{
		db:           db,
		store:        store,
		slots:        slots,
		versions:     versions,
		queue:        queue,
		uploads:      uploads,
		projects:     service.NewProjectService(projectRepo, versions, uploads, log),
		reports:      service.NewReportService(versions, uploads, distribution, log),
		blockages:    service.NewBlockageService(versions, uploads, log),
		dashboard:    service.NewDashboardService(versions, &config.DashboardConfig{DeadlineLookaheadDays: 7, ActivityLookbackDays: 7, ActivityLimit: 10}, log),
		distribution: distribution,
		managerID:    uuid.New(),
	}
	env.project, env.v1 = testutil.CreateTestProject(t, db, env.managerID, testutil.GlassPanelsSheet())
	return env
}

func (e *testEnv) managerCtx() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      e.managerID,
		DisplayName: "Test Manager",
		Role:        domain.RoleProjectManager,
	})
}

func reviewerCtx() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Head of Planning",
		Role:        domain.RoleHeadOfPlanning,
	})
}

func otherManagerCtx() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Other Manager",
		Role:        domain.RoleProjectManager,
	})
}

// uploadPhoto issues a slot and stores content under its key
func (e *testEnv) uploadPhoto(t *testing.T, ctx context.Context, folder domain.UploadFolder) domain.PhotoInput {
	t.Helper()
	slot, err := e.uploads.RequestUploadSlot(ctx, &domain.UploadSlotRequest{
		FileName:    "site.jpg",
		ContentType: "image/jpeg",
		Folder:      folder,
	})
	require.NoError(t, err)
	_, err = e.store.Put(ctx, slot.UploadKey, "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	return domain.PhotoInput{StorageKey: slot.UploadKey, FileName: "site.jpg", FileType: "image/jpeg"}
}

func northFaceReport(baseID uint, supplied, installed float64) *domain.DailyReportRequest {
	return &domain.DailyReportRequest{
		BaseVersionID: baseID,
		Entries: []domain.LineItemEntryInput{{
			LineItemID: "glass-panels",
			SubItems: []domain.SubItemDeltaInput{{
				SubItemID:          "north-face",
				YesterdaySupplied:  supplied,
				YesterdayInstalled: installed,
			}},
		}},
	}
}

func blockageInput(photos ...domain.PhotoInput) domain.BlockageInput {
	return domain.BlockageInput{
		Type:          domain.BlockageTypeClient,
		Category:      "Access",
		Severity:      domain.BlockageSeverityHigh,
		Description:   "Crane access blocked by client deliveries",
		WeatherReport: "Rain, 8C",
		OpenDate:      time.Now().UTC().Add(-2 * time.Hour),
		Photos:        photos,
	}
}
