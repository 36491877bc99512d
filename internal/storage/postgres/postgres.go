package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/fitplan/internal/storage"
)

// PostgresStorage stores plans in the plans table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{pool: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const planColumns = `id, user_id, plan_type, format, title, content, object_key, content_type, size_bytes, created_at`

func (p *PostgresStorage) CreatePlan(ctx context.Context, plan *storage.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	query := `
		INSERT INTO plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		RETURNING created_at
	`

	var createdAt any
	if !plan.CreatedAt.IsZero() {
		createdAt = plan.CreatedAt
	}

	var content []byte
	if len(plan.Content) > 0 {
		content = plan.Content
	}

	return p.pool.QueryRow(ctx, query,
		plan.ID,
		plan.UserID,
		plan.PlanType,
		plan.Format,
		plan.Title,
		content,
		plan.ObjectKey,
		plan.ContentType,
		plan.SizeBytes,
		createdAt,
	).Scan(&plan.CreatedAt)
}

func (p *PostgresStorage) GetPlan(ctx context.Context, userID string, id uuid.UUID) (*storage.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 AND user_id = $2`

	plan, err := scanPlan(p.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (p *PostgresStorage) ListPlans(ctx context.Context, userID string, limit, offset int) ([]storage.Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []storage.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (p *PostgresStorage) DeletePlan(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return storage.ErrPlanNotFound
	}
	return nil
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func scanPlan(row pgx.Row) (storage.Plan, error) {
	var plan storage.Plan
	var content []byte
	err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.PlanType,
		&plan.Format,
		&plan.Title,
		&content,
		&plan.ObjectKey,
		&plan.ContentType,
		&plan.SizeBytes,
		&plan.CreatedAt,
	)
	if err != nil {
		return storage.Plan{}, err
	}
	if len(content) > 0 {
		plan.Content = content
	}
	return plan, nil
}
