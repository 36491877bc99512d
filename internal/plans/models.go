package plans

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/fitplan/internal/storage"
)

// SavePlanRequest saves a generated plan. Plan is a JSON object for a
// structured plan or a JSON string for raw text.
type SavePlanRequest struct {
	PlanType string          `json:"planType"`
	Title    string          `json:"title,omitempty"`
	Plan     json.RawMessage `json:"plan"`
}

// SaveScreenshotRequest saves a rendered plan image sent as a data URL,
// e.g. "data:image/png;base64,iVBOR...".
type SaveScreenshotRequest struct {
	PlanType  string `json:"planType"`
	Title     string `json:"title,omitempty"`
	ImageData string `json:"imageData"`
}

type PlanDTO struct {
	ID          uuid.UUID       `json:"id"`
	PlanType    string          `json:"planType"`
	Format      string          `json:"format"`
	Title       string          `json:"title"`
	Plan        json.RawMessage `json:"plan,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	ContentType string          `json:"contentType,omitempty"`
	SizeBytes   int64           `json:"sizeBytes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type PlansResponse struct {
	Plans  []PlanDTO `json:"plans"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

const maxTitleLength = 200

var (
	ErrPlanNotFound     = storage.ErrPlanNotFound
	ErrInvalidPlanType  = errors.New("planType must be workout or meal")
	ErrInvalidTitle     = errors.New("title is too long")
	ErrInvalidPlan      = errors.New("plan must be a plan object or non-empty text")
	ErrInvalidImageData = errors.New("imageData must be a base64 data URL")
	ErrUnsupportedImage = errors.New("image type is not allowed")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrNoImage          = errors.New("plan has no image")
)
