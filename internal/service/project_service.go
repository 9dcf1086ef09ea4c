package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
	"github.com/straye-as/progress-api/internal/mapper"
	"github.com/straye-as/progress-api/internal/policy"
	"github.com/straye-as/progress-api/internal/repository"
)

// ProjectService handles project creation, header and quantity edits,
// comments, documents and version history
type ProjectService struct {
	versionWriter
	projectRepo *repository.ProjectRepository
	uploads     *UploadService
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	versionRepo *repository.VersionRepository,
	uploads *UploadService,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		versionWriter: newVersionWriter(versionRepo, logger),
		projectRepo:   projectRepo,
		uploads:       uploads,
	}
}

// Create creates a project and its first version
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectVersionDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !policy.CanCreateProject(user.Role) {
		denied(s.logger, user, "create project", uuid.Nil)
		return nil, ErrPermissionDenied
	}

	sheet, err := buildSheet(req.Sheet1)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &domain.Project{
		Name:             req.Name,
		CreatorID:        user.UserID,
		ProjectManagerID: req.ProjectManagerID,
	}
	version := &domain.ProjectVersion{
		ProjectName:           req.Name,
		ProjectManagerID:      req.ProjectManagerID,
		ProjectManagerName:    req.ProjectManagerName,
		ClientName:            req.ClientName,
		ClientContactPerson:   req.ClientContactPerson,
		ClientEmails:          req.ClientEmails,
		SiteLocation:          req.SiteLocation,
		Status:                req.Status,
		Priority:              req.Priority,
		EstimatedStartDate:    req.EstimatedStartDate,
		EstimatedEndDate:      req.EstimatedEndDate,
		YesterdayReportStatus: domain.ReportStatusNotCreated,
		Comments:              []domain.Comment{newComment(user, domain.CommentActionCreated, "Project created", now)},
		Sheet1:                sheet,
		CreatedByID:           user.UserID,
	}

	if err := s.projectRepo.CreateWithVersion(ctx, project, version); err != nil {
		return nil, mapper.FormatError("project", "create", err)
	}

	s.logger.Info("project created",
		zap.String("projectId", project.ID.String()),
		zap.String("name", project.Name),
		zap.String("projectManagerId", project.ProjectManagerID.String()),
		zap.String("createdBy", user.UserID.String()))

	dto := mapper.ToProjectVersionDTO(version, nil)
	return &dto, nil
}

// buildSheet converts line item inputs into a validated sheet with fresh
// derived fields. Items without an id get one.
func buildSheet(inputs []domain.LineItemInput) ([]domain.LineItem, error) {
	sheet := make([]domain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		sheet = append(sheet, buildLineItem(in))
	}
	if err := ledger.Validate(sheet); err != nil {
		return nil, err
	}
	if err := checkUniqueIDs(sheet); err != nil {
		return nil, err
	}
	ledger.Recompute(sheet)
	return sheet, nil
}

func buildLineItem(in domain.LineItemInput) domain.LineItem {
	item := domain.LineItem{
		ID:                     idOrNew(in.ID),
		ItemName:               strings.TrimSpace(in.ItemName),
		Unit:                   in.Unit,
		TotalQuantity:          in.TotalQuantity,
		TotalSupplied:          in.TotalSupplied,
		TotalInstalled:         in.TotalInstalled,
		SupplyTargetDate:       in.SupplyTargetDate,
		InstallationTargetDate: in.InstallationTargetDate,
		SubItems:               make([]domain.SubItem, 0, len(in.SubItems)),
		Blockages:              []domain.Blockage{},
		ProgressReports:        []domain.PhotoReport{},
	}
	for _, s := range in.SubItems {
		item.SubItems = append(item.SubItems, buildSubItem(s))
	}
	return item
}

func buildSubItem(in domain.SubItemInput) domain.SubItem {
	return domain.SubItem{
		ID:                    idOrNew(in.ID),
		SubItemName:           strings.TrimSpace(in.SubItemName),
		Unit:                  in.Unit,
		TotalQuantity:         in.TotalQuantity,
		TotalSupplied:         in.TotalSupplied,
		TotalInstalled:        in.TotalInstalled,
		ConnectWithSheet1Item: in.ConnectWithSheet1Item,
	}
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func checkUniqueIDs(sheet []domain.LineItem) error {
	seen := make(map[string]bool)
	for _, item := range sheet {
		if seen[item.ID] {
			return &ledger.ValidationError{Field: fmt.Sprintf("sheet1[%s].id", item.ID), Err: ledger.ErrInvalidValue}
		}
		seen[item.ID] = true
		for _, sub := range item.SubItems {
			if seen[sub.ID] {
				return &ledger.ValidationError{Field: fmt.Sprintf("sheet1[%s].sheet2[%s].id", item.ID, sub.ID), Err: ledger.ErrInvalidValue}
			}
			seen[sub.ID] = true
		}
	}
	return nil
}

// Get returns the latest version with freshly resolved photo and document URLs
func (s *ProjectService) Get(ctx context.Context, projectID uuid.UUID) (*domain.ProjectVersionDTO, error) {
	_, latest, err := s.loadVisible(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.resolved(ctx, latest)
}

func (s *ProjectService) resolved(ctx context.Context, v *domain.ProjectVersion) (*domain.ProjectVersionDTO, error) {
	urls, err := s.uploads.ResolveURLs(ctx, v.StorageKeys())
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProjectVersionDTO(v, urls)
	return &dto, nil
}

// List returns the latest version of every visible project
func (s *ProjectService) List(ctx context.Context, filter repository.VersionFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	page, pageSize = repository.NormalizePage(page, pageSize)

	versions, total, err := s.versions.ListLatest(ctx, filter, page, pageSize)
	if err != nil {
		return nil, mapper.FormatError("projects", "list", err)
	}

	items := make([]domain.ProjectProgressDTO, len(versions))
	for i := range versions {
		items[i] = mapper.ToProjectProgressDTO(&versions[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &domain.PaginatedResponse{
		Data:       items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListVersions returns the version history of a project within the optional date range
func (s *ProjectService) ListVersions(ctx context.Context, projectID uuid.UUID, from, to *time.Time) ([]domain.ProjectVersionSummaryDTO, error) {
	if _, _, err := s.loadVisible(ctx, projectID); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}

	versions, err := s.versions.ListHistory(ctx, projectID, from, to)
	if err != nil {
		return nil, mapper.FormatError("project versions", "list", err)
	}
	out := make([]domain.ProjectVersionSummaryDTO, len(versions))
	for i := range versions {
		out[i] = mapper.ToVersionSummaryDTO(&versions[i])
	}
	return out, nil
}

// GetVersion returns one historical version of a project
func (s *ProjectService) GetVersion(ctx context.Context, projectID uuid.UUID, versionID uint) (*domain.ProjectVersionDTO, error) {
	if _, _, err := s.loadVisible(ctx, projectID); err != nil {
		return nil, err
	}
	v, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, mapper.FormatError("project version", "load", err)
	}
	if v.ProjectID != projectID {
		return nil, ErrNotFound
	}
	return s.resolved(ctx, v)
}

// Update applies header, manager and quantity edits as a new version
func (s *ProjectService) Update(ctx context.Context, projectID uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectVersionDTO, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}

	next := s.next(latest, user)
	touched, err := applyProjectEdits(next, req)
	if err != nil {
		return nil, err
	}
	if len(touched) == 0 {
		return nil, ErrNoChanges
	}
	for _, f := range touched {
		if !policy.CanEdit(user.Role, f) {
			denied(s.logger, user, "edit "+string(f), projectID)
			return nil, fmt.Errorf("%w: cannot edit %s", ErrPermissionDenied, f)
		}
	}

	names := make([]string, len(touched))
	for i, f := range touched {
		names[i] = string(f)
	}
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionUpdated, "Updated "+strings.Join(names, ", "), s.now()))

	var hooks []func(tx *gorm.DB) error
	if next.ProjectName != latest.ProjectName || next.ProjectManagerID != latest.ProjectManagerID {
		hooks = append(hooks, func(tx *gorm.DB) error { return s.projectRepo.SyncHeader(tx, next) })
	}
	if err := s.append(ctx, latest, next, hooks...); err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		zap.String("projectId", projectID.String()),
		zap.Uint("versionId", next.ID),
		zap.Strings("fields", names),
		zap.String("updatedBy", user.UserID.String()))

	return s.resolved(ctx, next)
}

// applyProjectEdits mutates v with the requested edits and returns the policy
// fields the request touched, in a stable order
func applyProjectEdits(v *domain.ProjectVersion, req *domain.UpdateProjectRequest) ([]policy.Field, error) {
	touched := map[policy.Field]bool{}

	if req.Name != nil {
		v.ProjectName = strings.TrimSpace(*req.Name)
		touched[policy.FieldHeader] = true
	}
	if req.ClientName != nil {
		v.ClientName = *req.ClientName
		touched[policy.FieldHeader] = true
	}
	if req.ClientContactPerson != nil {
		v.ClientContactPerson = *req.ClientContactPerson
		touched[policy.FieldHeader] = true
	}
	if req.ClientEmails != nil {
		v.ClientEmails = append([]string(nil), req.ClientEmails...)
		touched[policy.FieldHeader] = true
	}
	if req.SiteLocation != nil {
		v.SiteLocation = *req.SiteLocation
		touched[policy.FieldHeader] = true
	}
	if req.Status != nil {
		v.Status = *req.Status
		touched[policy.FieldHeader] = true
	}
	if req.Priority != nil {
		v.Priority = *req.Priority
		touched[policy.FieldHeader] = true
	}
	if req.EstimatedStartDate != nil {
		v.EstimatedStartDate = req.EstimatedStartDate
		touched[policy.FieldHeader] = true
	}
	if req.EstimatedEndDate != nil {
		v.EstimatedEndDate = req.EstimatedEndDate
		touched[policy.FieldHeader] = true
	}
	if v.EstimatedStartDate != nil && v.EstimatedEndDate != nil && v.EstimatedEndDate.Before(*v.EstimatedStartDate) {
		return nil, &ledger.ValidationError{Field: "estimatedEndDate", Err: ledger.ErrInvalidValue}
	}

	if req.ProjectManagerID != nil {
		v.ProjectManagerID = *req.ProjectManagerID
		touched[policy.FieldManager] = true
	}
	if req.ProjectManagerName != nil {
		v.ProjectManagerName = *req.ProjectManagerName
		touched[policy.FieldManager] = true
	}

	for _, edit := range req.LineItems {
		idx, err := ledger.FindLineItem(v.Sheet1, edit.LineItemID)
		if err != nil {
			return nil, &ledger.ValidationError{Field: fmt.Sprintf("sheet1[%s]", edit.LineItemID), Err: err}
		}
		item := &v.Sheet1[idx]

		if edit.SupplyTargetDate != nil {
			item.SupplyTargetDate = edit.SupplyTargetDate
			touched[policy.FieldTargetDates] = true
		}
		if edit.InstallationTargetDate != nil {
			item.InstallationTargetDate = edit.InstallationTargetDate
			touched[policy.FieldTargetDates] = true
		}

		for _, sub := range edit.SubItems {
			err := ledger.EditSubItem(item, sub.SubItemID, ledger.SubItemChange{
				TotalQuantity:         sub.TotalQuantity,
				TotalSupplied:         sub.TotalSupplied,
				TotalInstalled:        sub.TotalInstalled,
				ConnectWithSheet1Item: sub.ConnectWithSheet1Item,
			})
			if err != nil {
				if errors.Is(err, ledger.ErrSubItemNotFound) {
					return nil, &ledger.ValidationError{Field: fmt.Sprintf("sheet1[%s].sheet2[%s]", item.ID, sub.SubItemID), Err: err}
				}
				return nil, err
			}
			touched[policy.FieldQuantities] = true
		}
		for _, in := range edit.NewSubItems {
			item.SubItems = append(item.SubItems, buildSubItem(in))
			touched[policy.FieldQuantities] = true
		}

		if edit.TotalQuantity != nil || edit.TotalSupplied != nil || edit.TotalInstalled != nil {
			err := ledger.EditLineItem(item, ledger.LineItemChange{
				TotalQuantity:  edit.TotalQuantity,
				TotalSupplied:  edit.TotalSupplied,
				TotalInstalled: edit.TotalInstalled,
			})
			if err != nil {
				return nil, err
			}
			touched[policy.FieldQuantities] = true
		}
	}

	for _, in := range req.NewLineItems {
		v.Sheet1 = append(v.Sheet1, buildLineItem(in))
		touched[policy.FieldQuantities] = true
	}

	if touched[policy.FieldQuantities] {
		if err := ledger.Validate(v.Sheet1); err != nil {
			return nil, err
		}
		if err := checkUniqueIDs(v.Sheet1); err != nil {
			return nil, err
		}
		ledger.Recompute(v.Sheet1)
	}

	order := []policy.Field{policy.FieldHeader, policy.FieldManager, policy.FieldQuantities, policy.FieldTargetDates}
	var out []policy.Field
	for _, f := range order {
		if touched[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

// AddComment appends a free-form comment as a new version
func (s *ProjectService) AddComment(ctx context.Context, projectID uuid.UUID, req *domain.AddCommentRequest) (*domain.ProjectVersionDTO, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if !user.IsSystem() && !policy.CanEdit(user.Role, policy.FieldComment) {
		denied(s.logger, user, "comment", projectID)
		return nil, ErrPermissionDenied
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &ledger.ValidationError{Field: "text", Err: ledger.ErrMissingField}
	}

	next := s.next(latest, user)
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionComment, text, s.now()))
	if err := s.append(ctx, latest, next); err != nil {
		return nil, err
	}
	return s.resolved(ctx, next)
}

// AddDocument attaches an uploaded document as a new version
func (s *ProjectService) AddDocument(ctx context.Context, projectID uuid.UUID, req *domain.AddDocumentRequest) (*domain.ProjectVersionDTO, error) {
	user, latest, err := s.loadForWrite(ctx, projectID, req.BaseVersionID)
	if err != nil {
		return nil, err
	}
	if !user.IsSystem() && !policy.CanEdit(user.Role, policy.FieldDocument) {
		denied(s.logger, user, "add document", projectID)
		return nil, ErrPermissionDenied
	}

	if err := s.uploads.VerifyUploaded(ctx, []string{req.StorageKey}); err != nil {
		return nil, err
	}

	now := s.now()
	next := s.next(latest, user)
	next.Documents = append(next.Documents, domain.ProjectDocument{
		ID:         uuid.NewString(),
		StorageKey: req.StorageKey,
		FileName:   req.FileName,
		FileType:   req.FileType,
		UploadedAt: now,
	})
	next.Comments = append(next.Comments, newComment(user, domain.CommentActionDocumentAdded, req.FileName, now))

	if err := s.append(ctx, latest, next, s.uploads.ConsumeHook([]string{req.StorageKey})); err != nil {
		return nil, err
	}

	s.logger.Info("document added",
		zap.String("projectId", projectID.String()),
		zap.String("key", req.StorageKey),
		zap.String("addedBy", user.UserID.String()))

	return s.resolved(ctx, next)
}
