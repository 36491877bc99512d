package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPlanNotFound = errors.New("plan not found")

const (
	PlanTypeWorkout = "workout"
	PlanTypeMeal    = "meal"
)

// Plan payload formats.
const (
	FormatStructured = "structured"
	FormatRaw        = "raw"
	FormatScreenshot = "screenshot"
)

// Plan is a saved plan document. Structured plans keep their JSON in
// Content, raw plans keep a JSON string, screenshots keep an object key.
type Plan struct {
	ID          uuid.UUID
	UserID      string
	PlanType    string // workout | meal
	Format      string // structured | raw | screenshot
	Title       string
	Content     json.RawMessage
	ObjectKey   *string
	ContentType *string
	SizeBytes   int64
	CreatedAt   time.Time
}

// PlansStorage persists plans per user. Lookups are always scoped to the
// user; another user's plan reads as ErrPlanNotFound.
type PlansStorage interface {
	CreatePlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, userID string, id uuid.UUID) (*Plan, error)
	// ListPlans returns plans newest first.
	ListPlans(ctx context.Context, userID string, limit, offset int) ([]Plan, error)
	DeletePlan(ctx context.Context, userID string, id uuid.UUID) error
}

// Storage is the full persistence backend.
type Storage interface {
	PlansStorage
	Ping(ctx context.Context) error
	Close() error
}
