package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solenne/studio-booking/internal/domain"
)

type CatalogRepo interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, svc *domain.Service) (*domain.Service, error)
	Update(ctx context.Context, svc *domain.Service) (*domain.Service, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type catalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) CatalogRepo {
	return &catalogRepo{pool: pool}
}

const serviceCols = `id, name, description, price_cents, duration_minutes, session_count, max_participants, active, created_at, updated_at`

func (r *catalogRepo) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	q := `SELECT ` + serviceCols + ` FROM services`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY name`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMinutes,
			&s.SessionCount, &s.MaxParticipants, &s.Active, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *catalogRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Service
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMinutes,
		&s.SessionCount, &s.MaxParticipants, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

func (r *catalogRepo) Create(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	const q = `
		INSERT INTO services (name, description, price_cents, duration_minutes, session_count, max_participants, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var created domain.Service
	err := r.pool.QueryRow(ctx, q,
		svc.Name, svc.Description, svc.PriceCents, svc.DurationMinutes,
		svc.SessionCount, svc.MaxParticipants, svc.Active,
	).Scan(
		&created.ID, &created.Name, &created.Description, &created.PriceCents,
		&created.DurationMinutes, &created.SessionCount, &created.MaxParticipants,
		&created.Active, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *catalogRepo) Update(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	const q = `
		UPDATE services
		SET name = $2, description = $3, price_cents = $4, duration_minutes = $5,
		    session_count = $6, max_participants = $7, active = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var updated domain.Service
	err := r.pool.QueryRow(ctx, q, svc.ID,
		svc.Name, svc.Description, svc.PriceCents, svc.DurationMinutes,
		svc.SessionCount, svc.MaxParticipants, svc.Active,
	).Scan(
		&updated.ID, &updated.Name, &updated.Description, &updated.PriceCents,
		&updated.DurationMinutes, &updated.SessionCount, &updated.MaxParticipants,
		&updated.Active, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &updated, err
}

func (r *catalogRepo) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM services WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
