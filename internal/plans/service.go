// Package plans stores generated plans and plan screenshots per user.
package plans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/blob"
	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/observability"
	"github.com/fdg312/fitplan/internal/planner"
	"github.com/fdg312/fitplan/internal/storage"
)

type Options struct {
	// BlobMode is the effective blob mode: local serves images through the
	// API, s3 hands out public or presigned URLs.
	BlobMode          string
	PresignTTLSeconds int
	PublicBaseURL     string
	PreferPublicURL   bool
	MaxUploadBytes    int64
	AllowedMime       []string
	PageLimit         int
}

func OptionsFromConfig(cfg *config.Config, blobMode string) Options {
	var allowed []string
	for _, m := range strings.Split(cfg.UploadAllowedMime, ",") {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			allowed = append(allowed, m)
		}
	}
	return Options{
		BlobMode:          blobMode,
		PresignTTLSeconds: cfg.Blob.S3.PresignTTLSeconds,
		PublicBaseURL:     cfg.Blob.S3.PublicBaseURL,
		PreferPublicURL:   cfg.Blob.S3.PreferPublicURL,
		MaxUploadBytes:    int64(cfg.UploadMaxMB) << 20,
		AllowedMime:       allowed,
		PageLimit:         cfg.PlansPageLimit,
	}
}

type Service struct {
	storage storage.PlansStorage
	blobs   blob.Store
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(store storage.PlansStorage, blobs blob.Store, opts Options, logger zerolog.Logger) *Service {
	if opts.PageLimit <= 0 {
		opts.PageLimit = 50
	}
	return &Service{
		storage: store,
		blobs:   blobs,
		opts:    opts,
		logger:  logger.With().Str("component", "plans").Logger(),
		now:     time.Now,
	}
}

func (s *Service) localMode() bool {
	return s.opts.BlobMode != config.BlobModeS3
}

// Save stores a structured plan (JSON object) or raw plan text (JSON string).
// Structured plans must have the shape expected for their type.
func (s *Service) Save(ctx context.Context, userID string, req SavePlanRequest) (*storage.Plan, error) {
	kind, err := parsePlanType(req.PlanType)
	if err != nil {
		return nil, err
	}
	if len(req.Title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	plan := &storage.Plan{
		ID:        uuid.New(),
		UserID:    userID,
		PlanType:  string(kind),
		Title:     titleOrDefault(req.Title, kind),
		CreatedAt: s.now().UTC(),
	}

	body := bytes.TrimSpace(req.Plan)
	switch {
	case len(body) > 0 && body[0] == '{':
		parsed, err := planner.ParsePlanResponse(kind, string(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
		}
		content, err := planner.Encode(parsed)
		if err != nil {
			return nil, fmt.Errorf("encode plan: %w", err)
		}
		plan.Format = storage.FormatStructured
		plan.Content = content
	case len(body) > 0 && body[0] == '"':
		var text string
		if err := json.Unmarshal(body, &text); err != nil || strings.TrimSpace(text) == "" {
			return nil, ErrInvalidPlan
		}
		content, _ := json.Marshal(text)
		plan.Format = storage.FormatRaw
		plan.Content = content
	default:
		return nil, ErrInvalidPlan
	}
	plan.SizeBytes = int64(len(plan.Content))

	if err := s.storage.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	observability.RecordPlanSaved(plan.PlanType, plan.Format)
	s.logger.Info().Str("user_id", userID).Str("plan_id", plan.ID.String()).Str("format", plan.Format).Msg("plan saved")
	return plan, nil
}

// SaveScreenshot stores a plan image in the blob store and records its key.
func (s *Service) SaveScreenshot(ctx context.Context, userID string, req SaveScreenshotRequest) (*storage.Plan, error) {
	kind, err := parsePlanType(req.PlanType)
	if err != nil {
		return nil, err
	}
	if len(req.Title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	mime, data, err := s.decodeImage(req.ImageData)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := uuid.New()
	// The id prefix keeps same-millisecond uploads from sharing an object.
	key := fmt.Sprintf("screenshots/%s/%d-%s.%s", userID, now.UnixMilli(), id.String()[:8], extensionFor(mime))
	size, err := s.blobs.PutObject(ctx, key, data, mime)
	if err != nil {
		return nil, fmt.Errorf("upload screenshot: %w", err)
	}

	plan := &storage.Plan{
		ID:          id,
		UserID:      userID,
		PlanType:    string(kind),
		Format:      storage.FormatScreenshot,
		Title:       titleOrDefault(req.Title, kind),
		ObjectKey:   &key,
		ContentType: &mime,
		SizeBytes:   size,
		CreatedAt:   now,
	}
	if err := s.storage.CreatePlan(ctx, plan); err != nil {
		if delErr := s.blobs.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", key).Msg("remove orphaned screenshot")
		}
		return nil, fmt.Errorf("create plan: %w", err)
	}

	observability.RecordPlanSaved(plan.PlanType, plan.Format)
	s.logger.Info().Str("user_id", userID).Str("plan_id", plan.ID.String()).Str("key", key).Int64("size", size).Msg("screenshot saved")
	return plan, nil
}

// List returns the user's plans newest first. limit is clamped to the page
// limit.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]storage.Plan, int, error) {
	if limit <= 0 || limit > s.opts.PageLimit {
		limit = s.opts.PageLimit
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.storage.ListPlans(ctx, userID, limit, offset)
	if err != nil {
		return nil, limit, fmt.Errorf("list plans: %w", err)
	}
	return items, limit, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*storage.Plan, error) {
	return s.storage.GetPlan(ctx, userID, id)
}

// Delete removes the plan and its screenshot, if any. A blob that fails to
// delete is logged and left behind.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	plan, err := s.storage.GetPlan(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeletePlan(ctx, userID, id); err != nil {
		return err
	}
	if plan.ObjectKey != nil {
		if err := s.blobs.DeleteObject(ctx, *plan.ObjectKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", *plan.ObjectKey).Msg("delete screenshot blob")
		}
	}
	return nil
}

// ImageURL returns where a client can fetch the plan image: the API download
// path in local mode, otherwise a public or presigned object URL.
func (s *Service) ImageURL(ctx context.Context, plan *storage.Plan, baseURL string) (string, error) {
	if plan.ObjectKey == nil {
		return "", ErrNoImage
	}
	if s.localMode() {
		return fmt.Sprintf("%s/v1/plans/%s/image", strings.TrimSuffix(baseURL, "/"), plan.ID), nil
	}
	if s.opts.PreferPublicURL && s.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + *plan.ObjectKey, nil
	}
	url, err := s.blobs.PresignGet(ctx, *plan.ObjectKey, s.opts.PresignTTLSeconds)
	if err != nil {
		return "", fmt.Errorf("presign screenshot: %w", err)
	}
	return url, nil
}

// ImageData returns the image bytes and content type.
func (s *Service) ImageData(ctx context.Context, userID string, id uuid.UUID) ([]byte, string, error) {
	plan, err := s.storage.GetPlan(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	return s.imageBytes(ctx, plan)
}

func (s *Service) imageBytes(ctx context.Context, plan *storage.Plan) ([]byte, string, error) {
	if plan.ObjectKey == nil {
		return nil, "", ErrNoImage
	}
	data, err := s.blobs.GetObject(ctx, *plan.ObjectKey)
	if err != nil {
		return nil, "", fmt.Errorf("fetch screenshot: %w", err)
	}
	contentType := "application/octet-stream"
	if plan.ContentType != nil {
		contentType = *plan.ContentType
	}
	return data, contentType, nil
}

// ExportPDF renders a saved plan as a PDF document.
func (s *Service) ExportPDF(ctx context.Context, userID string, id uuid.UUID) ([]byte, string, error) {
	plan, err := s.storage.GetPlan(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}

	var image []byte
	if plan.Format == storage.FormatScreenshot {
		if image, _, err = s.imageBytes(ctx, plan); err != nil {
			return nil, "", err
		}
	}

	doc, err := renderPDF(plan, image)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s-plan-%s.pdf", plan.PlanType, plan.CreatedAt.Format("2006-01-02"))
	return doc, filename, nil
}

func (s *Service) decodeImage(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return "", nil, ErrInvalidImageData
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidImageData
	}
	mime, ok := strings.CutSuffix(strings.ToLower(meta), ";base64")
	if !ok {
		return "", nil, ErrInvalidImageData
	}
	if !slices.Contains(s.opts.AllowedMime, mime) {
		return "", nil, ErrUnsupportedImage
	}

	if s.opts.MaxUploadBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > s.opts.MaxUploadBytes+2 {
		return "", nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, ErrInvalidImageData
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return "", nil, ErrImageTooLarge
	}
	if sniffed := http.DetectContentType(data); sniffed != mime {
		return "", nil, ErrUnsupportedImage
	}
	return mime, data, nil
}

func parsePlanType(s string) (planner.Kind, error) {
	kind, ok := planner.ParseKind(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return "", ErrInvalidPlanType
	}
	return kind, nil
}

func titleOrDefault(title string, kind planner.Kind) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if kind == planner.KindWorkout {
		return "Workout plan"
	}
	return "Meal plan"
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}
