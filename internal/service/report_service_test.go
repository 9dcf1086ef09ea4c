package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
	"github.com/straye-as/progress-api/internal/report"
	"github.com/straye-as/progress-api/internal/service"
)

func TestReportService_GlassPanelsEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	submitted, err := env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 25, 30))
	require.NoError(t, err)
	require.True(t, submitted.Success)
	pending := submitted.Version
	assert.Equal(t, domain.ReportStatusPending, pending.YesterdayReportStatus)
	assert.Equal(t, 2, pending.VersionNumber)
	assert.NotNil(t, pending.YesterdayReportCreatedAt)

	sub := pending.Sheet1[0].SubItems[0]
	assert.Equal(t, 225.0, sub.TotalSupplied, "staging does not touch the cumulative totals")
	assert.Equal(t, 200.0, sub.TotalInstalled)
	require.NotNil(t, sub.YesterdayProgressReport)
	assert.Equal(t, 25.0, sub.YesterdayProgressReport.YesterdaySupplied)
	assert.False(t, sub.YesterdayProgressReport.Committed)

	approved, err := env.reports.Approve(reviewerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: pending.ID})
	require.NoError(t, err)
	assert.Empty(t, approved.Warnings)

	v := approved.Version
	assert.Equal(t, domain.ReportStatusApproved, v.YesterdayReportStatus)
	sub = v.Sheet1[0].SubItems[0]
	assert.Equal(t, 250.0, sub.TotalSupplied)
	assert.Equal(t, 230.0, sub.TotalInstalled)
	assert.True(t, sub.YesterdayProgressReport.Committed)

	parent := v.Sheet1[0]
	assert.Equal(t, 250.0, parent.TotalSupplied)
	assert.Equal(t, 230.0, parent.TotalInstalled)
	assert.Equal(t, 50, parent.PercentSupplied)
	assert.Equal(t, 46, parent.PercentInstalled)
	assert.Equal(t, 250.0, parent.YetToSupply)

	actions := make([]domain.CommentAction, 0, len(v.Comments))
	for _, c := range v.Comments {
		actions = append(actions, c.Action)
	}
	assert.Equal(t, []domain.CommentAction{domain.CommentActionSubmitted, domain.CommentActionApproved}, actions)

	history, err := env.versions.ListHistory(context.Background(), env.project.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, 225.0, history[1].Sheet1[0].SubItems[0].TotalSupplied, "the pending version is never rewritten")

	require.Len(t, env.queue.payloads, 2)
	byVariant := map[string][]string{}
	for _, p := range env.queue.payloads {
		byVariant[p.Variant] = p.Recipients
		_, err := env.store.Stat(context.Background(), p.StorageKey)
		assert.NoError(t, err, "report document %s is stored", p.StorageKey)
	}
	assert.Equal(t, []string{"planning@straye.no"}, byVariant[string(report.VariantInternal)])
	assert.Equal(t, []string{"client@example.com"}, byVariant[string(report.VariantClient)])
}

func TestReportService_RejectLeavesTotalsUnchanged(t *testing.T) {
	env := newTestEnv(t)

	submitted, err := env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 10, 10))
	require.NoError(t, err)

	_, err = env.reports.Reject(reviewerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: submitted.Version.ID, Comment: "   "})
	assert.ErrorIs(t, err, service.ErrCommentRequired)

	rejected, err := env.reports.Reject(reviewerCtx(), env.project.ID, &domain.ReviewRequest{
		BaseVersionID: submitted.Version.ID,
		Comment:       "Installed count does not match the site log",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusRejected, rejected.Version.YesterdayReportStatus)
	assert.Equal(t, 225.0, rejected.Version.Sheet1[0].SubItems[0].TotalSupplied)
	assert.Equal(t, 200.0, rejected.Version.Sheet1[0].SubItems[0].TotalInstalled)
	assert.Empty(t, env.queue.payloads)

	// the manager corrects and resubmits; the earlier staged delta is replaced
	resubmitted, err := env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(rejected.Version.ID, 5, 8))
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusPending, resubmitted.Version.YesterdayReportStatus)
	assert.Equal(t, 5.0, resubmitted.Version.Sheet1[0].SubItems[0].YesterdayProgressReport.YesterdaySupplied)

	approved, err := env.reports.Approve(reviewerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: resubmitted.Version.ID})
	require.NoError(t, err)
	assert.Equal(t, 230.0, approved.Version.Sheet1[0].SubItems[0].TotalSupplied)
	assert.Equal(t, 208.0, approved.Version.Sheet1[0].SubItems[0].TotalInstalled)
}

func TestReportService_StaleBaseIsRetryableConflict(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 1, 1))
	require.NoError(t, err)

	_, err = env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 2, 2))
	assert.ErrorIs(t, err, service.ErrVersionConflict)

	_, err = env.reports.Approve(reviewerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: env.v1.ID})
	assert.ErrorIs(t, err, service.ErrVersionConflict)
}

func TestReportService_Authorization(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reports.Submit(otherManagerCtx(), env.project.ID, northFaceReport(env.v1.ID, 1, 1))
	assert.ErrorIs(t, err, service.ErrNotFound, "other managers cannot see the project")

	_, err = env.reports.Submit(reviewerCtx(), env.project.ID, northFaceReport(env.v1.ID, 1, 1))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = env.reports.Submit(context.Background(), env.project.ID, northFaceReport(env.v1.ID, 1, 1))
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = env.reports.Approve(reviewerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: env.v1.ID})
	assert.ErrorIs(t, err, service.ErrInvalidTransition, "nothing is pending yet")

	submitted, err := env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 1, 1))
	require.NoError(t, err)
	_, err = env.reports.Approve(env.managerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: submitted.Version.ID})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	history, err := env.versions.ListHistory(context.Background(), env.project.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, history, 2, "denied attempts create no versions")
}

func TestReportService_DeltaBounds(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.reports.Validate(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 26, 0))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "sheet1[glass-panels].sheet2[north-face].yesterdaySupplied")

	_, err = env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 26, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrDeltaExceedsRemaining)
	var verr *ledger.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 25.0, verr.Limit)

	result, err = env.reports.Validate(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 25, 50))
	require.NoError(t, err)
	assert.True(t, result.Valid, "the remaining balance itself is accepted")
	assert.True(t, result.Complete)
	assert.Empty(t, result.NextLineItemID)

	result, err = env.reports.Validate(env.managerCtx(), env.project.ID, &domain.DailyReportRequest{BaseVersionID: env.v1.ID})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.Complete)
	assert.Equal(t, "glass-panels", result.NextLineItemID)

	latest, err := env.versions.GetLatest(context.Background(), env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, env.v1.ID, latest.ID, "validation never persists")
}

func TestReportService_PhotosMustBeUploaded(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.managerCtx()

	slot, err := env.uploads.RequestUploadSlot(ctx, &domain.UploadSlotRequest{FileName: "a.jpg", ContentType: "image/jpeg", Folder: domain.UploadFolderPhotos})
	require.NoError(t, err)

	req := northFaceReport(env.v1.ID, 1, 1)
	req.Entries[0].PhotoReports = []domain.PhotoReportInput{{
		Description: "North face glazing",
		Photos:      []domain.PhotoInput{{StorageKey: slot.UploadKey, FileName: "a.jpg", FileType: "image/jpeg"}},
	}}
	_, err = env.reports.Submit(ctx, env.project.ID, req)
	assert.ErrorIs(t, err, service.ErrUploadIncomplete)

	req.Entries[0].PhotoReports[0].Photos[0].StorageKey = "photos/xx/never-issued.jpg"
	_, err = env.reports.Submit(ctx, env.project.ID, req)
	assert.ErrorIs(t, err, service.ErrUnknownUpload)

	latest, err := env.versions.GetLatest(context.Background(), env.project.ID)
	require.NoError(t, err)
	assert.Equal(t, env.v1.ID, latest.ID, "no version is created with dangling photo references")

	photo := env.uploadPhoto(t, ctx, domain.UploadFolderPhotos)
	req.Entries[0].PhotoReports[0].Photos[0] = photo
	result, err := env.reports.Submit(ctx, env.project.ID, req)
	require.NoError(t, err)

	reports := result.Version.Sheet1[0].ProgressReports
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Photos, 1)
	assert.Contains(t, reports[0].Photos[0].URL, "/api/v1/files?token=")

	stored, err := env.slots.GetByKey(context.Background(), photo.StorageKey)
	require.NoError(t, err)
	assert.NotNil(t, stored.ConsumedAt)
	assert.NotNil(t, stored.UploadedAt)
}

func TestReportService_DistributionFailureIsWarning(t *testing.T) {
	env := newTestEnv(t)
	env.queue.err = errors.New("redis unavailable")

	submitted, err := env.reports.Submit(env.managerCtx(), env.project.ID, northFaceReport(env.v1.ID, 25, 30))
	require.NoError(t, err)

	approved, err := env.reports.Approve(reviewerCtx(), env.project.ID, &domain.ReviewRequest{BaseVersionID: submitted.Version.ID})
	require.NoError(t, err)
	assert.True(t, approved.Success)
	assert.Len(t, approved.Warnings, 2)
	assert.Equal(t, 250.0, approved.Version.Sheet1[0].SubItems[0].TotalSupplied, "the commit stands")
}
