package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Overview godoc
// @Summary Progress overview
// @Description Progress percentages of every visible project, taken from its latest version.
// @Description
// @Description - `overallProgress`: mean installed percentage over line items, 0-100
// @Description - `openBlockages`: blockages not yet closed
// @Tags Dashboard
// @Produce json
// @Success 200 {array} domain.ProjectProgressDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.Overview(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// Managers godoc
// @Summary Per-manager rollup
// @Description Project counts and average installation progress per project manager. Reviewers only.
// @Tags Dashboard
// @Produce json
// @Success 200 {array} domain.ManagerRollupDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/managers [get]
func (h *DashboardHandler) Managers(w http.ResponseWriter, r *http.Request) {
	rollup, err := h.dashboardService.Managers(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, rollup)
}

// Deadlines godoc
// @Summary Upcoming deadlines
// @Tags Dashboard
// @Produce json
// @Param days query int false "Lookahead window in days (1-365)"
// @Success 200 {array} domain.DeadlineAlertDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/deadlines [get]
func (h *DashboardHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.dashboardService.Deadlines(r.Context(), queryInt(r, "days"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// Activity godoc
// @Summary Recent site activity
// @Description Photo reports and blockages across visible projects, newest first
// @Tags Dashboard
// @Produce json
// @Param days query int false "Lookback window in days (1-365)"
// @Param limit query int false "Maximum entries (1-100)"
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/activity [get]
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.dashboardService.Activity(r.Context(), queryInt(r, "days"), queryInt(r, "limit"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, activity)
}
