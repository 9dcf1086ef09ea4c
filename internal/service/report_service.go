package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
	"github.com/straye-as/progress-api/internal/mapper"
	"github.com/straye-as/progress-api/internal/policy"
	"github.com/straye-as/progress-api/internal/repository"
)

// ReportService runs the daily report lifecycle: submission by the assigned
// project manager, then approval or rejection by a reviewer
type ReportService struct {
	versionWriter
	uploads      *UploadService
	distribution *DistributionService
}

// NewReportService creates a ReportService. distribution may be nil, in which
// case approvals are committed without producing report documents.
func NewReportService(
	versionRepo *repository.VersionRepository,
	uploads *UploadService,
	distribution *DistributionService,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		versionWriter: newVersionWriter(versionRepo, logger),
		uploads:       uploads,
		distribution:  distribution,
	}
}

// Validate runs the daily report through the recorder without persisting anything
func (s *ReportService) Validate(ctx context.Context, projectID uuid.UUID, req *domain.DailyReportRequest) (*domain.ValidationResultDTO, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubmitter(user, latest); err != nil {
		return nil, err
	}

	rec := ledger.NewRecorder(latest.Sheet1, user.UserID, s.now())
	if err := rec.Record(toEntries(req.Entries)); err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			return &domain.ValidationResultDTO{Valid: false, Errors: map[string]string{verr.Field: verr.Error()}}, nil
		}
		return nil, err
	}
	result := &domain.ValidationResultDTO{Valid: true, Complete: rec.Done()}
	if next, ok := rec.Current(); ok {
		result.NextLineItemID = next.ID
	}
	return result, nil
}

// Submit stages the manager's daily deltas, photo reports and blockages in a
// new PENDING version. Cumulative totals are untouched until approval.
func (s *ReportService) Submit(ctx context.Context, projectID uuid.UUID, req *domain.DailyReportRequest) (*domain.TransitionResult, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubmitter(user, latest); err != nil {
		return nil, err
	}

	now := s.now()
	rec := ledger.NewRecorder(latest.Sheet1, user.UserID, now)
	if err := rec.Record(toEntries(req.Entries)); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rec.Photos()))
	for _, p := range rec.Photos() {
		keys = append(keys, p.StorageKey)
	}
	if err := s.uploads.VerifyUploaded(ctx, keys); err != nil {
		return nil, err
	}

	next := s.next(latest, user)
	next.Sheet1 = rec.Sheet()
	next.YesterdayReportStatus = domain.ReportStatusPending
	next.YesterdayReportCreatedAt = &now
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionSubmitted,
		fmt.Sprintf("Daily report submitted with %d sub-item updates", rec.StagedCount()), now))

	if err := s.append(ctx, latest, next, s.uploads.ConsumeHook(keys)); err != nil {
		return nil, err
	}
	s.logTransition(user, latest, next)

	return s.result(ctx, next, "Daily report submitted for review", nil), nil
}

// checkSubmitter allows only the assigned project manager to submit
func (s *ReportService) checkSubmitter(user *auth.UserContext, latest *domain.ProjectVersion) error {
	if user.Role != domain.RoleProjectManager {
		denied(s.logger, user, "submit daily report", latest.ProjectID)
		return fmt.Errorf("%w: only the assigned project manager submits daily reports", ErrPermissionDenied)
	}
	if !policy.IsAssignedManager(user.Role, user.UserID, latest) {
		denied(s.logger, user, "submit daily report", latest.ProjectID)
		return ErrNotAssignedManager
	}
	if !policy.CanTransition(user.Role, latest.YesterdayReportStatus, domain.ReportStatusPending) {
		return fmt.Errorf("%w: cannot submit a report in status %s", ErrInvalidTransition, latest.YesterdayReportStatus)
	}
	return nil
}

// Approve commits the staged deltas into the cumulative totals and triggers
// report distribution. Distribution problems are returned as warnings.
func (s *ReportService) Approve(ctx context.Context, projectID uuid.UUID, req *domain.ReviewRequest) (*domain.TransitionResult, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReviewer(user, latest, domain.ReportStatusApproved); err != nil {
		return nil, err
	}

	now := s.now()
	next := s.next(latest, user)
	committed := ledger.Commit(next.Sheet1, now)
	next.YesterdayReportStatus = domain.ReportStatusApproved
	text := strings.TrimSpace(req.Comment)
	if text == "" {
		text = "Daily report approved"
	}
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionApproved, text, now))

	if err := s.append(ctx, latest, next); err != nil {
		return nil, err
	}
	s.logTransition(user, latest, next, zap.Int("committedDeltas", committed))

	var warnings []string
	if s.distribution != nil {
		warnings = s.distribution.Distribute(ctx, next)
	}
	return s.result(ctx, next, "Daily report approved", warnings), nil
}

// Reject sends the report back to the manager. A comment is required and
// cumulative totals are left unchanged.
func (s *ReportService) Reject(ctx context.Context, projectID uuid.UUID, req *domain.ReviewRequest) (*domain.TransitionResult, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReviewer(user, latest, domain.ReportStatusRejected); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Comment)
	if text == "" {
		return nil, ErrCommentRequired
	}

	next := s.next(latest, user)
	next.YesterdayReportStatus = domain.ReportStatusRejected
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionRejected, text, s.now()))

	if err := s.append(ctx, latest, next); err != nil {
		return nil, err
	}
	s.logTransition(user, latest, next)

	return s.result(ctx, next, "Daily report rejected", nil), nil
}

func (s *ReportService) checkReviewer(user *auth.UserContext, latest *domain.ProjectVersion, to domain.ReportStatus) error {
	if !policy.IsReviewer(user.Role) {
		denied(s.logger, user, "review daily report", latest.ProjectID)
		return ErrPermissionDenied
	}
	if !policy.CanTransition(user.Role, latest.YesterdayReportStatus, to) {
		return fmt.Errorf("%w: cannot move a report from %s to %s", ErrInvalidTransition, latest.YesterdayReportStatus, to)
	}
	return nil
}

func (s *ReportService) logTransition(user *auth.UserContext, from, to *domain.ProjectVersion, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("projectId", to.ProjectID.String()),
		zap.Uint("versionId", to.ID),
		zap.String("from", string(from.YesterdayReportStatus)),
		zap.String("to", string(to.YesterdayReportStatus)),
		zap.String("actorId", user.UserID.String()),
		zap.String("actorRole", string(user.Role)),
	}, fields...)
	s.logger.Info("report status changed", fields...)
}

// result builds the transition response. The version is already stored, so a
// URL resolution failure only adds a warning.
func (s *ReportService) result(ctx context.Context, v *domain.ProjectVersion, message string, warnings []string) *domain.TransitionResult {
	urls, err := s.uploads.ResolveURLs(ctx, v.StorageKeys())
	if err != nil {
		warnings = append(warnings, "Photo links are temporarily unavailable")
		urls = nil
	}
	dto := mapper.ToProjectVersionDTO(v, urls)
	return &domain.TransitionResult{
		Success:  true,
		Message:  message,
		Warnings: warnings,
		Version:  &dto,
	}
}

func toEntries(in []domain.LineItemEntryInput) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(in))
	for _, e := range in {
		entry := ledger.Entry{LineItemID: e.LineItemID}
		for _, d := range e.SubItems {
			entry.Deltas = append(entry.Deltas, ledger.SubItemDelta{
				SubItemID: d.SubItemID,
				Supplied:  d.YesterdaySupplied,
				Installed: d.YesterdayInstalled,
			})
		}
		for _, pr := range e.PhotoReports {
			entry.PhotoReports = append(entry.PhotoReports, ledger.PhotoReportEntry{
				Description: pr.Description,
				Photos:      toPhotos(pr.Photos),
			})
		}
		for _, b := range e.Blockages {
			entry.Blockages = append(entry.Blockages, ledger.BlockageEntry{
				Type:          b.Type,
				Category:      b.Category,
				Severity:      b.Severity,
				Description:   b.Description,
				WeatherReport: b.WeatherReport,
				OpenDate:      b.OpenDate,
				Photos:        toPhotos(b.Photos),
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

func toPhotos(in []domain.PhotoInput) []domain.Photo {
	photos := make([]domain.Photo, 0, len(in))
	for _, p := range in {
		photos = append(photos, domain.Photo{StorageKey: p.StorageKey, FileName: p.FileName, FileType: p.FileType})
	}
	return photos
}
