package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/fitplan/internal/storage"
)

// MemoryStorage keeps plans in process memory. Used when DATABASE_URL is
// empty.
type MemoryStorage struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]storage.Plan
	now   func() time.Time
}

func New() *MemoryStorage {
	return &MemoryStorage{
		plans: make(map[uuid.UUID]storage.Plan),
		now:   time.Now,
	}
}

func (m *MemoryStorage) CreatePlan(ctx context.Context, plan *storage.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = m.now().UTC()
	}

	stored := *plan
	stored.Content = append([]byte(nil), plan.Content...)
	m.plans[plan.ID] = stored
	return nil
}

func (m *MemoryStorage) GetPlan(ctx context.Context, userID string, id uuid.UUID) (*storage.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok || p.UserID != userID {
		return nil, storage.ErrPlanNotFound
	}
	return &p, nil
}

func (m *MemoryStorage) ListPlans(ctx context.Context, userID string, limit, offset int) ([]storage.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filtered := []storage.Plan{}
	for _, p := range m.plans {
		if p.UserID == userID {
			filtered = append(filtered, p)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID.String() > filtered[j].ID.String()
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	if offset >= len(filtered) {
		return []storage.Plan{}, nil
	}
	end := len(filtered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return filtered[offset:end], nil
}

func (m *MemoryStorage) DeletePlan(ctx context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[id]
	if !ok || p.UserID != userID {
		return storage.ErrPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
