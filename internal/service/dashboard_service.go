package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
	"github.com/straye-as/progress-api/internal/mapper"
	"github.com/straye-as/progress-api/internal/repository"
)

const maxWindowDays = 365

// DashboardService computes read-only projections over the latest versions.
// Nothing is cached; every call recomputes from the stored snapshots.
type DashboardService struct {
	versions *repository.VersionRepository
	cfg      *config.DashboardConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewDashboardService(versions *repository.VersionRepository, cfg *config.DashboardConfig, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		versions: versions,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Overview returns the overall progress of every visible project
func (s *DashboardService) Overview(ctx context.Context) ([]domain.ProjectProgressDTO, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	versions, err := s.versions.ListAllLatest(ctx, repository.VersionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load project overview: %w", err)
	}

	out := make([]domain.ProjectProgressDTO, len(versions))
	for i := range versions {
		out[i] = mapper.ToProjectProgressDTO(&versions[i])
	}
	return out, nil
}

// Managers rolls the latest versions up per project manager. Reviewers only.
func (s *DashboardService) Managers(ctx context.Context) ([]domain.ManagerRollupDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsSystem() && !user.IsReviewer() {
		denied(s.logger, user, "view manager dashboard", uuid.Nil)
		return nil, ErrPermissionDenied
	}

	versions, err := s.versions.ListAllLatest(ctx, repository.VersionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load manager rollup: %w", err)
	}

	type acc struct {
		dto       domain.ManagerRollupDTO
		installed float64
	}
	byManager := make(map[uuid.UUID]*acc)
	var order []uuid.UUID
	for i := range versions {
		v := &versions[i]
		a, ok := byManager[v.ProjectManagerID]
		if !ok {
			a = &acc{dto: domain.ManagerRollupDTO{ProjectManagerID: v.ProjectManagerID}}
			byManager[v.ProjectManagerID] = a
			order = append(order, v.ProjectManagerID)
		}
		if a.dto.ProjectManagerName == "" {
			a.dto.ProjectManagerName = v.ProjectManagerName
		}
		a.dto.ProjectCount++
		a.installed += ledger.AverageInstalled(v.Sheet1)
		if ledger.HasDailyData(v.Sheet1) {
			a.dto.ReportsWithDailyData++
		}
	}

	out := make([]domain.ManagerRollupDTO, 0, len(order))
	for _, id := range order {
		a := byManager[id]
		a.dto.AverageInstallPercent = ledger.ClampPercent(int(math.Round(a.installed / float64(a.dto.ProjectCount))))
		out = append(out, a.dto)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProjectManagerName < out[j].ProjectManagerName
	})
	return out, nil
}

// Deadlines lists visible projects whose estimated end date falls between
// today and days days ahead, whole days included, regardless of report status
func (s *DashboardService) Deadlines(ctx context.Context, days int) ([]domain.DeadlineAlertDTO, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	days = window(days, s.cfg.DeadlineLookaheadDays)

	today := s.now().Truncate(24 * time.Hour)
	versions, err := s.versions.ListEndingBetween(ctx, today, today.AddDate(0, 0, days+1))
	if err != nil {
		return nil, fmt.Errorf("failed to load deadlines: %w", err)
	}

	out := make([]domain.DeadlineAlertDTO, 0, len(versions))
	for i := range versions {
		v := &versions[i]
		end := v.EstimatedEndDate.UTC()
		out = append(out, domain.DeadlineAlertDTO{
			ProjectID:        v.ProjectID,
			ProjectName:      v.ProjectName,
			EstimatedEndDate: mapper.FormatTime(end),
			DaysRemaining:    int(end.Truncate(24*time.Hour).Sub(today) / (24 * time.Hour)),
			ReportStatus:     v.YesterdayReportStatus,
		})
	}
	return out, nil
}

// Activity returns the most recent photo reports and blockages across visible
// projects, newest first
func (s *DashboardService) Activity(ctx context.Context, days, limit int) ([]domain.ActivityDTO, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	days = window(days, s.cfg.ActivityLookbackDays)
	if limit <= 0 {
		limit = s.cfg.ActivityLimit
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	versions, err := s.versions.ListAllLatest(ctx, repository.VersionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -days)
	type entry struct {
		at  time.Time
		dto domain.ActivityDTO
	}
	var feed []entry
	for i := range versions {
		v := &versions[i]
		for j := range v.Sheet1 {
			item := &v.Sheet1[j]
			for _, pr := range item.ProgressReports {
				if pr.CreatedAt.Before(cutoff) {
					continue
				}
				feed = append(feed, entry{at: pr.CreatedAt, dto: domain.ActivityDTO{
					Kind:         domain.ActivityKindPhotoReport,
					ID:           pr.ID,
					ProjectID:    v.ProjectID,
					ProjectName:  v.ProjectName,
					LineItemID:   item.ID,
					LineItemName: item.ItemName,
					Description:  pr.Description,
					PhotoCount:   len(pr.Photos),
					CreatedAt:    mapper.FormatTime(pr.CreatedAt),
				}})
			}
			for _, b := range item.Blockages {
				if b.CreatedAt.Before(cutoff) {
					continue
				}
				severity, typ := b.Severity, b.Type
				feed = append(feed, entry{at: b.CreatedAt, dto: domain.ActivityDTO{
					Kind:         domain.ActivityKindBlockage,
					ID:           b.ID,
					ProjectID:    v.ProjectID,
					ProjectName:  v.ProjectName,
					LineItemID:   item.ID,
					LineItemName: item.ItemName,
					Description:  b.Description,
					Severity:     &severity,
					Type:         &typ,
					PhotoCount:   len(b.Photos),
					CreatedAt:    mapper.FormatTime(b.CreatedAt),
				}})
			}
		}
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].at.After(feed[j].at) })
	if len(feed) > limit {
		feed = feed[:limit]
	}
	out := make([]domain.ActivityDTO, len(feed))
	for i, e := range feed {
		out[i] = e.dto
	}
	return out, nil
}

// window bounds a day count to [1, 365], falling back to def
func window(days, def int) int {
	if days <= 0 {
		days = def
	}
	if days <= 0 {
		days = 7
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}
	return days
}
