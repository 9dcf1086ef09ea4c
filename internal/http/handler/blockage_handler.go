package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/service"
)

type BlockageHandler struct {
	blockageService *service.BlockageService
	logger          *zap.Logger
}

func NewBlockageHandler(blockageService *service.BlockageService, logger *zap.Logger) *BlockageHandler {
	return &BlockageHandler{
		blockageService: blockageService,
		logger:          logger,
	}
}

// List godoc
// @Summary List blockages
// @Description Blockages recorded on the latest version of a project
// @Tags Blockages
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param status query string false "Filter by status" Enums(OPEN, CLOSED)
// @Param type query string false "Filter by type" Enums(CLIENT, INTERNAL)
// @Success 200 {array} domain.BlockageDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/blockages [get]
func (h *BlockageHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var filter service.BlockageFilter
	switch s := domain.BlockageStatus(r.URL.Query().Get("status")); s {
	case "":
	case domain.BlockageStatusOpen, domain.BlockageStatusClosed:
		filter.Status = &s
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid status: must be OPEN or CLOSED")
		return
	}
	if t := domain.BlockageType(r.URL.Query().Get("type")); t != "" {
		if !t.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid type: must be CLIENT or INTERNAL")
			return
		}
		filter.Type = &t
	}

	blockages, err := h.blockageService.List(r.Context(), id, filter)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, blockages)
}

// Close godoc
// @Summary Close blockage
// @Description Mark a blockage as resolved. Produces a new version.
// @Tags Blockages
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param blockageId path string true "Blockage ID"
// @Param request body domain.CloseBlockageRequest true "Close request"
// @Success 200 {object} domain.ProjectVersionDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Already closed or stale base version"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/blockages/{blockageId}/close [post]
func (h *BlockageHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req domain.CloseBlockageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	version, err := h.blockageService.Close(r.Context(), id, chi.URLParam(r, "blockageId"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, version)
}
