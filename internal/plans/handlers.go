package plans

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fdg312/fitplan/internal/storage"
	"github.com/fdg312/fitplan/internal/userctx"
)

const maxPlanBodyBytes = 1 << 20

type Handlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandlers(service *Service, logger zerolog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// HandleSave handles POST /v1/plans
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SavePlanRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxPlanBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid JSON body")
		return
	}

	plan, err := h.service.Save(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toDTO(r, plan))
}

// HandleSaveScreenshot handles POST /v1/plans/screenshot
func (h *Handlers) HandleSaveScreenshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	// base64 inflates by 4/3; leave room for the JSON around it.
	limit := h.service.opts.MaxUploadBytes*4/3 + 64<<10
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	var req SaveScreenshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image_too_large", ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid JSON body")
		return
	}

	plan, err := h.service.SaveScreenshot(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toDTO(r, plan))
}

// HandleList handles GET /v1/plans?limit=&offset=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "offset must be a non-negative integer")
		return
	}

	items, limit, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// Presigning is a network call per screenshot in s3 mode.
	dtos := make([]PlanDTO, len(items))
	var g errgroup.Group
	g.SetLimit(8)
	for i := range items {
		g.Go(func() error {
			dtos[i] = h.toDTO(r, &items[i])
			return nil
		})
	}
	_ = g.Wait()
	writeJSON(w, http.StatusOK, PlansResponse{Plans: dtos, Limit: limit, Offset: offset})
}

// HandleGet handles GET /v1/plans/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := pathPlan(w, r)
	if !ok {
		return
	}
	plan, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toDTO(r, plan))
}

// HandleDelete handles DELETE /v1/plans/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := pathPlan(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImage handles GET /v1/plans/{id}/image. Local mode streams the
// bytes, S3 mode redirects to the object URL.
func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := pathPlan(w, r)
	if !ok {
		return
	}

	if !h.service.localMode() {
		plan, err := h.service.Get(r.Context(), userID, id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		url, err := h.service.ImageURL(r.Context(), plan, baseURL(r))
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	data, contentType, err := h.service.ImageData(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(data)
}

// HandleExportPDF handles GET /v1/plans/{id}/export.pdf
func (h *Handlers) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := pathPlan(w, r)
	if !ok {
		return
	}
	doc, filename, err := h.service.ExportPDF(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	_, _ = w.Write(doc)
}

func (h *Handlers) toDTO(r *http.Request, p *storage.Plan) PlanDTO {
	dto := PlanDTO{
		ID:        p.ID,
		PlanType:  p.PlanType,
		Format:    p.Format,
		Title:     p.Title,
		SizeBytes: p.SizeBytes,
		CreatedAt: p.CreatedAt,
	}
	if p.Format != storage.FormatScreenshot {
		dto.Plan = p.Content
		return dto
	}
	if p.ContentType != nil {
		dto.ContentType = *p.ContentType
	}
	url, err := h.service.ImageURL(r.Context(), p, baseURL(r))
	if err != nil {
		h.logger.Warn().Err(err).Str("plan_id", p.ID.String()).Msg("resolve image url")
	}
	dto.ImageURL = url
	return dto
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "plan_not_found", "Plan not found")
	case errors.Is(err, ErrNoImage):
		writeError(w, http.StatusNotFound, "image_not_found", "Plan has no image")
	case errors.Is(err, ErrImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "image_too_large", err.Error())
	case errors.Is(err, ErrUnsupportedImage):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_image", err.Error())
	case errors.Is(err, ErrInvalidPlanType),
		errors.Is(err, ErrInvalidTitle),
		errors.Is(err, ErrInvalidPlan),
		errors.Is(err, ErrInvalidImageData):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		h.logger.Error().Err(err).Msg("plans request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Sign in to use this endpoint")
		return "", false
	}
	return userID, true
}

func pathPlan(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid plan ID")
		return "", uuid.Nil, false
	}
	return userID, id, true
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}
