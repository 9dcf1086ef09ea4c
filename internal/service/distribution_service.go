package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/jobs"
	"github.com/straye-as/progress-api/internal/report"
	"github.com/straye-as/progress-api/internal/storage"
)

// ReportEnqueuer queues report emails for delivery
type ReportEnqueuer interface {
	EnqueueReportEmail(ctx context.Context, payload jobs.ReportEmailPayload) error
}

// DistributionService renders approved versions into report documents,
// stores them and queues them for email delivery. It never fails an
// approval: every problem comes back as a warning.
type DistributionService struct {
	renderer *report.Renderer
	store    storage.Storage
	resolver *storage.Resolver
	queue    ReportEnqueuer
	cfg      *config.DistributionConfig
	logger   *zap.Logger
}

// NewDistributionService creates a DistributionService. queue may be nil when
// the distribution queue is disabled.
func NewDistributionService(
	renderer *report.Renderer,
	store storage.Storage,
	resolver *storage.Resolver,
	queue ReportEnqueuer,
	cfg *config.DistributionConfig,
	logger *zap.Logger,
) *DistributionService {
	return &DistributionService{
		renderer: renderer,
		store:    store,
		resolver: resolver,
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
	}
}

// ReportKey is the storage key of a rendered report document
func ReportKey(v *domain.ProjectVersion, variant report.Variant) string {
	return fmt.Sprintf("%s/%s/%d-%s.pdf", domain.UploadFolderReports, v.ProjectID, v.ID, variant)
}

// Distribute renders and dispatches both report variants of an approved version
func (s *DistributionService) Distribute(ctx context.Context, v *domain.ProjectVersion) []string {
	log := s.logger.With(
		zap.String("projectId", v.ProjectID.String()),
		zap.Uint("versionId", v.ID))

	var warnings []string
	urls, err := s.resolver.URLs(ctx, v.StorageKeys())
	if err != nil {
		log.Warn("photo links unavailable for report", zap.Error(err))
		warnings = append(warnings, "Report photos could not be linked")
		urls = nil
	}

	targets := []struct {
		variant    report.Variant
		recipients []string
	}{
		{report.VariantInternal, s.cfg.InternalRecipients},
		{report.VariantClient, v.ClientEmails},
	}
	for _, t := range targets {
		if w := s.dispatch(ctx, log, v, t.variant, t.recipients, urls); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

func (s *DistributionService) dispatch(ctx context.Context, log *zap.Logger, v *domain.ProjectVersion, variant report.Variant, recipients []string, urls map[string]string) string {
	log = log.With(zap.String("variant", string(variant)))
	start := time.Now()

	doc, err := s.renderer.Render(v, variant, urls)
	if err != nil {
		log.Error("failed to render report", zap.Error(err))
		return fmt.Sprintf("The %s report could not be generated", variant)
	}

	key := ReportKey(v, variant)
	if _, err := s.store.Put(ctx, key, "application/pdf", bytes.NewReader(doc)); err != nil {
		log.Error("failed to store report", zap.String("key", key), zap.Error(err))
		return fmt.Sprintf("The %s report could not be stored", variant)
	}

	if len(recipients) == 0 {
		log.Warn("report has no recipients")
		return fmt.Sprintf("The %s report has no recipients and was not sent", variant)
	}
	if s.queue == nil {
		log.Warn("distribution queue disabled, report not sent", zap.String("key", key))
		return fmt.Sprintf("The %s report was stored but email delivery is disabled", variant)
	}

	err = s.queue.EnqueueReportEmail(ctx, jobs.ReportEmailPayload{
		ProjectID:   v.ProjectID.String(),
		ProjectName: v.ProjectName,
		VersionID:   v.ID,
		Variant:     string(variant),
		Recipients:  recipients,
		StorageKey:  key,
		FileName:    report.FileName(v, variant),
	})
	if err != nil {
		log.Error("failed to queue report email", zap.Error(err))
		return fmt.Sprintf("The %s report could not be queued for delivery", variant)
	}

	log.Info("report queued",
		zap.String("key", key),
		zap.Int("recipients", len(recipients)),
		zap.Duration("duration", time.Since(start)))
	return ""
}
