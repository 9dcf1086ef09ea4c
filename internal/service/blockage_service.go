package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/mapper"
	"github.com/straye-as/progress-api/internal/policy"
	"github.com/straye-as/progress-api/internal/repository"
)

// BlockageService lists and closes blockages on the latest project version
type BlockageService struct {
	versionWriter
	uploads *UploadService
}

func NewBlockageService(versionRepo *repository.VersionRepository, uploads *UploadService, logger *zap.Logger) *BlockageService {
	return &BlockageService{
		versionWriter: newVersionWriter(versionRepo, logger),
		uploads:       uploads,
	}
}

// BlockageFilter selects blockages by status and type. Nil fields match everything.
type BlockageFilter struct {
	Status *domain.BlockageStatus
	Type   *domain.BlockageType
}

func (f BlockageFilter) matches(b *domain.Blockage) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.Type != nil && b.Type != *f.Type {
		return false
	}
	return true
}

// List returns the blockages of the latest version in sheet order
func (s *BlockageService) List(ctx context.Context, projectID uuid.UUID, filter BlockageFilter) ([]domain.BlockageDTO, error) {
	_, latest, err := s.loadVisible(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var keys []string
	for i := range latest.Sheet1 {
		for _, b := range latest.Sheet1[i].Blockages {
			if filter.matches(&b) {
				for _, p := range b.Photos {
					keys = append(keys, p.StorageKey)
				}
			}
		}
	}
	urls, err := s.uploads.ResolveURLs(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := []domain.BlockageDTO{}
	for i := range latest.Sheet1 {
		item := &latest.Sheet1[i]
		for j := range item.Blockages {
			if filter.matches(&item.Blockages[j]) {
				out = append(out, mapper.ToBlockageDTO(item, &item.Blockages[j], urls))
			}
		}
	}
	return out, nil
}

// Close marks an open blockage as closed in a new version. Ledger totals and
// the report status are not affected.
func (s *BlockageService) Close(ctx context.Context, projectID uuid.UUID, blockageID string, req *domain.CloseBlockageRequest) (*domain.ProjectVersionDTO, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if !user.IsSystem() && !policy.CanEdit(user.Role, policy.FieldBlockageStatus) {
		denied(s.logger, user, "close blockage", projectID)
		return nil, ErrPermissionDenied
	}

	now := s.now()
	next := s.next(latest, user)
	target, item := findBlockage(next.Sheet1, blockageID)
	if target == nil {
		return nil, fmt.Errorf("%w: blockage %s", ErrNotFound, blockageID)
	}
	if target.Status == domain.BlockageStatusClosed {
		return nil, fmt.Errorf("%w: blockage %s", ErrBlockageClosed, blockageID)
	}

	end := now
	if req.EndTime != nil {
		end = req.EndTime.UTC()
	}
	if end.Before(target.OpenDate) {
		return nil, fmt.Errorf("%w: end time is before the open date", ErrInvalidInput)
	}
	target.Status = domain.BlockageStatusClosed
	target.BlockageEndTime = &end
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionBlockageClosed,
		fmt.Sprintf("Closed %s blockage on %s: %s", target.Category, item.ItemName, target.Description), now))

	if err := s.append(ctx, latest, next); err != nil {
		return nil, err
	}

	s.logger.Info("blockage closed",
		zap.String("projectId", projectID.String()),
		zap.Uint("versionId", next.ID),
		zap.String("blockageId", blockageID),
		zap.String("closedBy", user.UserID.String()))

	urls, err := s.uploads.ResolveURLs(ctx, next.StorageKeys())
	if err != nil {
		s.logger.Warn("blockage closed without photo links",
			zap.Uint("versionId", next.ID),
			zap.Error(err))
		urls = nil
	}
	dto := mapper.ToProjectVersionDTO(next, urls)
	return &dto, nil
}

func findBlockage(sheet []domain.LineItem, id string) (*domain.Blockage, *domain.LineItem) {
	for i := range sheet {
		for j := range sheet[i].Blockages {
			if sheet[i].Blockages[j].ID == id {
				return &sheet[i].Blockages[j], &sheet[i]
			}
		}
	}
	return nil, nil
}
