package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/service"
)

// UploadHandler issues upload slots and serves the local storage backend
type UploadHandler struct {
	uploadService *service.UploadService
	maxUploadMB   int64
	logger        *zap.Logger
}

func NewUploadHandler(uploadService *service.UploadService, maxUploadMB int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxUploadMB:   maxUploadMB,
		logger:        logger,
	}
}

// RequestSlot godoc
// @Summary Request an upload slot
// @Description Returns a short-lived signed URL the client uploads the file to with a single PUT.
// @Description The returned uploadKey is what photo, blockage and document references carry.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body domain.UploadSlotRequest true "File description"
// @Success 201 {object} domain.UploadSlotDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /uploads [post]
func (h *UploadHandler) RequestSlot(w http.ResponseWriter, r *http.Request) {
	var req domain.UploadSlotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	slot, err := h.uploadService.RequestUploadSlot(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

// Upload godoc
// @Summary Upload file body
// @Description Target of the signed upload URL when the local storage backend is active. The token authorizes the request.
// @Tags Uploads
// @Accept application/octet-stream
// @Param token path string true "Signed upload token"
// @Success 204
// @Failure 401 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Slot already used or expired"
// @Failure 413 {object} domain.APIError
// @Router /uploads/{token} [put]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024+1)

	err := h.uploadService.AcceptLocalUpload(r.Context(), chi.URLParam(r, "token"), r.Body)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrUploadTooLarge), errors.As(err, &maxErr):
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
	default:
		handleServiceError(w, h.logger, err)
	}
}

// Download godoc
// @Summary Download file
// @Description Target of resolved download URLs when the local storage backend is active
// @Tags Uploads
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /files [get]
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.uploadService.OpenLocalDownload(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream file", zap.Error(err))
	}
}

// Resolve godoc
// @Summary Resolve download URLs
// @Description Exchange storage keys for fresh short-lived download URLs. Blank and duplicate keys are ignored.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body domain.ResolveURLsRequest true "Storage keys"
// @Success 200 {array} domain.DownloadURLDTO
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/resolve [post]
func (h *UploadHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req domain.ResolveURLsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	urls, err := h.uploadService.ResolveURLList(r.Context(), req.Keys)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, urls)
}
