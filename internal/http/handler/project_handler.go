package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/repository"
	"github.com/straye-as/progress-api/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Latest version of every project visible to the caller. Project managers only see their own projects.
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by project status" Enums(PLANNED, ACTIVE, ON_HOLD, COMPLETED)
// @Param reportStatus query string false "Filter by report status" Enums(NOT_CREATED, PENDING, APPROVED, REJECTED)
// @Param managerId query string false "Filter by project manager" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectProgressDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.VersionFilter{}

	if s := q.Get("status"); s != "" {
		status := domain.ProjectStatus(s)
		filter.Status = &status
	}
	if s := q.Get("reportStatus"); s != "" {
		status := domain.ReportStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid reportStatus")
			return
		}
		filter.ReportStatus = &status
	}
	if mid := q.Get("managerId"); mid != "" {
		id, err := uuid.Parse(mid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid managerId: must be a valid UUID")
			return
		}
		filter.ManagerID = &id
	}

	result, err := h.projectService.List(r.Context(), filter, queryInt(r, "page"), queryInt(r, "pageSize"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create project
// @Description Create a project and its first version. Reviewers only.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectVersionDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ProjectID.String())
	respondJSON(w, http.StatusCreated, project)
}

// GetByID godoc
// @Summary Get project
// @Description Latest version with freshly resolved photo and document URLs
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectVersionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	project, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Update godoc
// @Summary Update project
// @Description Header, manager and quantity edits. Produces a new version.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateProjectRequest true "Edits"
// @Success 200 {object} domain.ProjectVersionDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Stale base version"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// ListVersions godoc
// @Summary Project version history
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param from query string false "Created at or after (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Created at or before (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {array} domain.ProjectVersionSummaryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/versions [get]
func (h *ProjectHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	from, err := queryTime(r, "from")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	versions, err := h.projectService.ListVersions(r.Context(), id, from, to)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, versions)
}

// GetVersion godoc
// @Summary Get one historical version
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param versionId path int true "Version ID"
// @Success 200 {object} domain.ProjectVersionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/versions/{versionId} [get]
func (h *ProjectHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	versionID, err := strconv.ParseUint(chi.URLParam(r, "versionId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid version ID")
		return
	}

	version, err := h.projectService.GetVersion(r.Context(), id, uint(versionID))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, version)
}

// AddComment godoc
// @Summary Add comment
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.AddCommentRequest true "Comment"
// @Success 201 {object} domain.ProjectVersionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/comments [post]
func (h *ProjectHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.AddCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	version, err := h.projectService.AddComment(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, version)
}

// AddDocument godoc
// @Summary Attach document
// @Description Attach an uploaded document. The storage key must come from an upload slot.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.AddDocumentRequest true "Document"
// @Success 201 {object} domain.ProjectVersionDTO
// @Failure 502 {object} domain.APIError "Upload not found in storage"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents [post]
func (h *ProjectHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.AddDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	version, err := h.projectService.AddDocument(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, version)
}
