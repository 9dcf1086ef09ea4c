package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/logger"
	"github.com/straye-as/progress-api/internal/policy"
	"github.com/straye-as/progress-api/internal/repository"
)

// versionWriter holds the load-check-append cycle shared by every operation
// that produces a new project version
type versionWriter struct {
	versions *repository.VersionRepository
	logger   *zap.Logger
	now      func() time.Time
}

func newVersionWriter(versions *repository.VersionRepository, log *zap.Logger) versionWriter {
	return versionWriter{versions: versions, logger: log, now: func() time.Time { return time.Now().UTC() }}
}

func currentUser(ctx context.Context) (*auth.UserContext, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// loadVisible returns the latest version of a project the acting user may see.
// Projects outside the user's visibility are reported as not found.
func (w versionWriter) loadVisible(ctx context.Context, projectID uuid.UUID) (*auth.UserContext, *domain.ProjectVersion, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	latest, err := w.versions.GetLatest(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}

	if !user.IsSystem() && !policy.CanView(user.Role, user.UserID, latest.ProjectManagerID) {
		return nil, nil, ErrNotFound
	}
	return user, latest, nil
}

// loadForWrite loads the latest version and checks it is the one the client edited
func (w versionWriter) loadForWrite(ctx context.Context, projectID uuid.UUID, baseVersionID uint) (*auth.UserContext, *domain.ProjectVersion, error) {
	user, latest, err := w.loadVisible(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if latest.ID != baseVersionID {
		return nil, nil, fmt.Errorf("%w: base version %d, latest version %d", ErrVersionConflict, baseVersionID, latest.ID)
	}
	return user, latest, nil
}

// next clones base into an unsaved version authored by user
func (w versionWriter) next(base *domain.ProjectVersion, user *auth.UserContext) *domain.ProjectVersion {
	next := base.Clone()
	next.CreatedByID = user.UserID
	return next
}

func (w versionWriter) append(ctx context.Context, base, next *domain.ProjectVersion, hooks ...func(tx *gorm.DB) error) error {
	err := w.versions.AppendNext(ctx, base.ID, next, hooks...)
	if errors.Is(err, repository.ErrStaleVersion) {
		return fmt.Errorf("%w: version %d was superseded", ErrVersionConflict, base.ID)
	}
	if err != nil {
		return err
	}

	logger.WithVersion(w.logger, next.ProjectID.String(), next.ID, next.VersionNumber).Debug("project version appended",
		zap.Uint("baseVersionId", base.ID))
	return nil
}

func newComment(user *auth.UserContext, action domain.CommentAction, text string, at time.Time) domain.Comment {
	return domain.Comment{
		AuthorID:   user.UserID,
		AuthorName: user.DisplayName,
		AuthorRole: user.Role,
		Action:     action,
		Text:       text,
		CreatedAt:  at,
	}
}

func denied(log *zap.Logger, user *auth.UserContext, action string, projectID uuid.UUID) {
	logger.WithUser(log, user.UserID.String(), user.DisplayName, string(user.Role)).Warn("action denied",
		zap.String("action", action),
		zap.String("projectId", projectID.String()))
}
