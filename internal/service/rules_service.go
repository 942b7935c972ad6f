package service

import (
	"context"
	"fmt"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/internal/repo/postgres"
	"github.com/solenne/studio-booking/pkg/events"
	"github.com/solenne/studio-booking/pkg/logger"
)

type RulesService interface {
	Get(ctx context.Context) (*domain.BookingRules, error)
	Update(ctx context.Context, req *domain.UpdateRulesRequest) (*domain.BookingRules, error)
	CreateBlockedPeriod(ctx context.Context, req *domain.CreateBlockedPeriodRequest) (*domain.BlockedPeriod, error)
	UpdateBlockedPeriod(ctx context.Context, id int64, req *domain.UpdateBlockedPeriodRequest) (*domain.BlockedPeriod, error)
	DeleteBlockedPeriod(ctx context.Context, id int64) error
}

type rulesService struct {
	repo postgres.RulesRepo
	bus  events.Publisher
}

func NewRulesService(repo postgres.RulesRepo, bus events.Publisher) RulesService {
	return &rulesService{repo: repo, bus: bus}
}

func (s *rulesService) Get(ctx context.Context) (*domain.BookingRules, error) {
	rules, err := s.repo.GetSingleton(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking rules: %w", err)
	}
	if rules == nil {
		return nil, fmt.Errorf("%w: booking rules not seeded", domain.ErrNotFound)
	}
	return rules, nil
}

// Update applies a partial update: absent fields keep their stored value,
// present fields overwrite it. Opening-hour sub-updates are matched by id
// against the current rule set; an unknown id fails the whole request.
func (s *rulesService) Update(ctx context.Context, req *domain.UpdateRulesRequest) (*domain.BookingRules, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	rules, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	rules.MinAdvanceHours = req.MinAdvanceHours.Or(rules.MinAdvanceHours)
	rules.MaxAdvanceDays = req.MaxAdvanceDays.Or(rules.MaxAdvanceDays)
	rules.BufferMinutes = req.BufferMinutes.Or(rules.BufferMinutes)
	rules.SlotDurationMinutes = req.SlotDurationMinutes.Or(rules.SlotDurationMinutes)
	rules.TimeZone = req.TimeZone.Or(rules.TimeZone)

	merged := make([]domain.OpeningHour, 0, len(req.OpeningHours))
	for _, upd := range req.OpeningHours {
		current := findOpeningHour(rules.OpeningHours, upd.ID)
		if current == nil {
			return nil, fmt.Errorf("%w: opening hour %d does not belong to this rule set", domain.ErrNotFound, upd.ID)
		}

		hour := *current
		hour.OpenTime = upd.OpenTime.Or(hour.OpenTime)
		hour.CloseTime = upd.CloseTime.Or(hour.CloseTime)
		hour.Closed = upd.Closed.Or(hour.Closed)

		if !hour.Closed && !domain.IsOrdered(hour.OpenTime, hour.CloseTime) {
			return nil, fmt.Errorf("%w: open_time must be before close_time for weekday %d", domain.ErrInvalidInput, hour.Weekday)
		}
		merged = append(merged, hour)
	}

	if _, err := s.repo.UpdateFields(ctx, rules); err != nil {
		return nil, fmt.Errorf("failed to update booking rules: %w", err)
	}
	for i := range merged {
		ok, err := s.repo.UpdateOpeningHour(ctx, &merged[i])
		if err != nil {
			return nil, fmt.Errorf("failed to update opening hour %d: %w", merged[i].ID, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: opening hour %d does not belong to this rule set", domain.ErrNotFound, merged[i].ID)
		}
	}

	updated, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.RulesUpdated, events.RulesUpdatedEvent{
		RulesID:   updated.ID,
		UpdatedAt: updated.UpdatedAt,
	})
	return updated, nil
}

func (s *rulesService) CreateBlockedPeriod(ctx context.Context, req *domain.CreateBlockedPeriodRequest) (*domain.BlockedPeriod, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	rules, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	overlap, err := s.repo.HasOverlap(ctx, rules.ID, req.StartTime, req.EndTime, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked period overlap: %w", err)
	}
	if overlap {
		return nil, domain.ErrOverlap
	}

	period := &domain.BlockedPeriod{
		RulesID:     rules.ID,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Description: domain.NormalizeDescription(req.Description),
	}
	created, err := s.repo.CreateBlockedPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to create blocked period: %w", err)
	}

	s.publish(ctx, events.BlockedPeriodCreated, events.BlockedPeriodEvent{
		PeriodID:  created.ID,
		RulesID:   created.RulesID,
		StartTime: created.StartTime,
		EndTime:   created.EndTime,
	})
	return created, nil
}

// UpdateBlockedPeriod re-runs ordering and overlap checks against the
// proposed interval (provided fields, stored values otherwise), excluding
// the period itself. The overlap check runs even for description-only
// updates, so the stored interval is re-validated on every write.
func (s *rulesService) UpdateBlockedPeriod(ctx context.Context, id int64, req *domain.UpdateBlockedPeriodRequest) (*domain.BlockedPeriod, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	period, err := s.repo.GetBlockedPeriod(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked period: %w", err)
	}
	if period == nil {
		return nil, fmt.Errorf("%w: blocked period %d", domain.ErrNotFound, id)
	}

	start := req.StartTime.Or(period.StartTime).UTC()
	end := req.EndTime.Or(period.EndTime).UTC()
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start_time must be before end_time", domain.ErrInvalidInput)
	}

	overlap, err := s.repo.HasOverlap(ctx, period.RulesID, start, end, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked period overlap: %w", err)
	}
	if overlap {
		return nil, domain.ErrOverlap
	}

	period.StartTime = start
	period.EndTime = end
	if req.Description.Set {
		if req.Description.Valid {
			period.Description = domain.NormalizeDescription(req.Description.Value)
		} else {
			period.Description = nil
		}
	}

	updated, err := s.repo.UpdateBlockedPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to update blocked period: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: blocked period %d", domain.ErrNotFound, id)
	}

	s.publish(ctx, events.BlockedPeriodUpdated, events.BlockedPeriodEvent{
		PeriodID:  updated.ID,
		RulesID:   updated.RulesID,
		StartTime: updated.StartTime,
		EndTime:   updated.EndTime,
	})
	return updated, nil
}

func (s *rulesService) DeleteBlockedPeriod(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: blocked period %d", domain.ErrNotFound, id)
	}

	deleted, err := s.repo.DeleteBlockedPeriod(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete blocked period: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: blocked period %d", domain.ErrNotFound, id)
	}

	s.publish(ctx, events.BlockedPeriodDeleted, events.BlockedPeriodEvent{PeriodID: id})
	return nil
}

// publish is best-effort: a dead event bus must not fail the write that
// already committed.
func (s *rulesService) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

func findOpeningHour(hours []domain.OpeningHour, id int64) *domain.OpeningHour {
	for i := range hours {
		if hours[i].ID == id {
			return &hours[i]
		}
	}
	return nil
}
