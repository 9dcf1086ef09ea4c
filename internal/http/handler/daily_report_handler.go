package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/service"
)

// DailyReportHandler exposes the daily report lifecycle
type DailyReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewDailyReportHandler(reportService *service.ReportService, logger *zap.Logger) *DailyReportHandler {
	return &DailyReportHandler{reportService: reportService, logger: logger}
}

// Validate godoc
// @Summary Dry-run a daily report
// @Description Runs the report through the recorder without persisting anything
// @Tags DailyReports
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.DailyReportRequest true "Daily report"
// @Success 200 {object} domain.ValidationResultDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/daily-report/validate [post]
func (h *DailyReportHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.DailyReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.reportService.Validate(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Submit godoc
// @Summary Submit a daily report
// @Description Assigned project manager only. Creates a PENDING version carrying the staged deltas.
// @Tags DailyReports
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.DailyReportRequest true "Daily report"
// @Success 201 {object} domain.TransitionResult
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Referenced upload missing from storage"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/daily-report [post]
func (h *DailyReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.DailyReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.reportService.Submit(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// Approve godoc
// @Summary Approve the pending daily report
// @Description Reviewers only. Commits the staged deltas and distributes the report documents.
// @Tags DailyReports
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.ReviewRequest true "Review"
// @Success 200 {object} domain.TransitionResult
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/daily-report/approve [post]
func (h *DailyReportHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.reportService.Approve)
}

// Reject godoc
// @Summary Reject the pending daily report
// @Description Reviewers only. A comment is required.
// @Tags DailyReports
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.ReviewRequest true "Review"
// @Success 200 {object} domain.TransitionResult
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/daily-report/reject [post]
func (h *DailyReportHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.reportService.Reject)
}

func (h *DailyReportHandler) review(w http.ResponseWriter, r *http.Request, fn reviewFunc) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := fn(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type reviewFunc func(ctx context.Context, projectID uuid.UUID, req *domain.ReviewRequest) (*domain.TransitionResult, error)
