package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solenne/studio-booking/internal/domain"
)

type RulesRepo interface {
	GetSingleton(ctx context.Context) (*domain.BookingRules, error)
	UpdateFields(ctx context.Context, rules *domain.BookingRules) (*domain.BookingRules, error)
	UpdateOpeningHour(ctx context.Context, hour *domain.OpeningHour) (bool, error)

	GetBlockedPeriod(ctx context.Context, id int64) (*domain.BlockedPeriod, error)
	CreateBlockedPeriod(ctx context.Context, p *domain.BlockedPeriod) (*domain.BlockedPeriod, error)
	UpdateBlockedPeriod(ctx context.Context, p *domain.BlockedPeriod) (*domain.BlockedPeriod, error)
	DeleteBlockedPeriod(ctx context.Context, id int64) (bool, error)
	HasOverlap(ctx context.Context, rulesID int64, start, end time.Time, excludeID int64) (bool, error)
}

type rulesRepo struct {
	pool *pgxpool.Pool
}

func NewRulesRepo(pool *pgxpool.Pool) RulesRepo {
	return &rulesRepo{pool: pool}
}

const rulesCols = `id, min_advance_hours, max_advance_days, buffer_minutes, slot_duration_minutes, time_zone, created_at, updated_at`

const periodCols = `id, rules_id, start_time, end_time, description, created_at, updated_at`

// GetSingleton loads the one rules row together with its opening hours
// (weekday order) and blocked periods (start order). Returns nil when the
// row has not been seeded.
func (r *rulesRepo) GetSingleton(ctx context.Context) (*domain.BookingRules, error) {
	const q = `SELECT ` + rulesCols + ` FROM booking_rules WHERE singleton_key = 'default'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rules domain.BookingRules
	err := r.pool.QueryRow(ctx, q).Scan(
		&rules.ID, &rules.MinAdvanceHours, &rules.MaxAdvanceDays,
		&rules.BufferMinutes, &rules.SlotDurationMinutes, &rules.TimeZone,
		&rules.CreatedAt, &rules.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hours, err := r.listOpeningHours(ctx, rules.ID)
	if err != nil {
		return nil, err
	}
	rules.OpeningHours = hours

	periods, err := r.listBlockedPeriods(ctx, rules.ID)
	if err != nil {
		return nil, err
	}
	rules.BlockedPeriods = periods

	return &rules, nil
}

func (r *rulesRepo) listOpeningHours(ctx context.Context, rulesID int64) ([]domain.OpeningHour, error) {
	const q = `
		SELECT id, rules_id, weekday, open_time, close_time, closed
		FROM opening_hours
		WHERE rules_id = $1
		ORDER BY weekday`

	rows, err := r.pool.Query(ctx, q, rulesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []domain.OpeningHour
	for rows.Next() {
		var h domain.OpeningHour
		var weekday int
		if err := rows.Scan(&h.ID, &h.RulesID, &weekday, &h.OpenTime, &h.CloseTime, &h.Closed); err != nil {
			return nil, err
		}
		h.Weekday = time.Weekday(weekday)
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

func (r *rulesRepo) listBlockedPeriods(ctx context.Context, rulesID int64) ([]domain.BlockedPeriod, error) {
	const q = `SELECT ` + periodCols + ` FROM blocked_periods WHERE rules_id = $1 ORDER BY start_time`

	rows, err := r.pool.Query(ctx, q, rulesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []domain.BlockedPeriod
	for rows.Next() {
		var p domain.BlockedPeriod
		if err := rows.Scan(
			&p.ID, &p.RulesID, &p.StartTime, &p.EndTime, &p.Description,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *rulesRepo) UpdateFields(ctx context.Context, rules *domain.BookingRules) (*domain.BookingRules, error) {
	const q = `
		UPDATE booking_rules
		SET
			min_advance_hours = $2,
			max_advance_days = $3,
			buffer_minutes = $4,
			slot_duration_minutes = $5,
			time_zone = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + rulesCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var updated domain.BookingRules
	err := r.pool.QueryRow(ctx, q, rules.ID,
		rules.MinAdvanceHours, rules.MaxAdvanceDays, rules.BufferMinutes,
		rules.SlotDurationMinutes, rules.TimeZone,
	).Scan(
		&updated.ID, &updated.MinAdvanceHours, &updated.MaxAdvanceDays,
		&updated.BufferMinutes, &updated.SlotDurationMinutes, &updated.TimeZone,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &updated, err
}

// UpdateOpeningHour writes all mutable fields of a row scoped to its rules
// id; the false return means the id does not belong to the rule set.
func (r *rulesRepo) UpdateOpeningHour(ctx context.Context, hour *domain.OpeningHour) (bool, error) {
	const q = `
		UPDATE opening_hours
		SET open_time = $3, close_time = $4, closed = $5
		WHERE id = $1 AND rules_id = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, hour.ID, hour.RulesID, hour.OpenTime, hour.CloseTime, hour.Closed)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *rulesRepo) GetBlockedPeriod(ctx context.Context, id int64) (*domain.BlockedPeriod, error) {
	const q = `SELECT ` + periodCols + ` FROM blocked_periods WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.BlockedPeriod
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.RulesID, &p.StartTime, &p.EndTime, &p.Description,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &p, err
}

func (r *rulesRepo) CreateBlockedPeriod(ctx context.Context, p *domain.BlockedPeriod) (*domain.BlockedPeriod, error) {
	const q = `
		INSERT INTO blocked_periods (rules_id, start_time, end_time, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + periodCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var created domain.BlockedPeriod
	err := r.pool.QueryRow(ctx, q, p.RulesID, p.StartTime, p.EndTime, p.Description).Scan(
		&created.ID, &created.RulesID, &created.StartTime, &created.EndTime,
		&created.Description, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *rulesRepo) UpdateBlockedPeriod(ctx context.Context, p *domain.BlockedPeriod) (*domain.BlockedPeriod, error) {
	const q = `
		UPDATE blocked_periods
		SET start_time = $2, end_time = $3, description = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + periodCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var updated domain.BlockedPeriod
	err := r.pool.QueryRow(ctx, q, p.ID, p.StartTime, p.EndTime, p.Description).Scan(
		&updated.ID, &updated.RulesID, &updated.StartTime, &updated.EndTime,
		&updated.Description, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &updated, err
}

func (r *rulesRepo) DeleteBlockedPeriod(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM blocked_periods WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// HasOverlap runs the half-open interval test in SQL: [s1,e1) and [s2,e2)
// overlap iff s1 < e2 AND s2 < e1. Touching boundaries do not match.
func (r *rulesRepo) HasOverlap(ctx context.Context, rulesID int64, start, end time.Time, excludeID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM blocked_periods
			WHERE rules_id = $1 AND id <> $4
			  AND start_time < $3 AND $2 < end_time
		)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, rulesID, start, end, excludeID).Scan(&exists)
	return exists, err
}
