package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/internal/repo/postgres"
	"github.com/solenne/studio-booking/pkg/events"
	"github.com/solenne/studio-booking/pkg/logger"
)

type CatalogService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	Get(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error)
	Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error)
	Delete(ctx context.Context, id int64) error
}

type catalogService struct {
	repo postgres.CatalogRepo
	bus  events.Publisher
}

func NewCatalogService(repo postgres.CatalogRepo, bus events.Publisher) CatalogService {
	return &catalogService{repo: repo, bus: bus}
}

func (s *catalogService) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	services, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: service %d", domain.ErrNotFound, id)
	}
	return svc, nil
}

func (s *catalogService) Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	svc := &domain.Service{
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		SessionCount:    req.SessionCount,
		MaxParticipants: req.MaxParticipants,
		Active:          active,
	}
	created, err := s.repo.Create(ctx, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.publish(ctx, events.ServiceCreated, events.ServiceEvent{ServiceID: created.ID, Name: created.Name})
	return created, nil
}

func (s *catalogService) Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name.Set {
		svc.Name = strings.TrimSpace(req.Name.Value)
	}
	if req.Description.Set {
		if req.Description.Valid {
			svc.Description = strings.TrimSpace(req.Description.Value)
		} else {
			svc.Description = ""
		}
	}
	svc.PriceCents = req.PriceCents.Or(svc.PriceCents)
	svc.DurationMinutes = req.DurationMinutes.Or(svc.DurationMinutes)
	if req.SessionCount.Set {
		if req.SessionCount.Valid {
			v := req.SessionCount.Value
			svc.SessionCount = &v
		} else {
			svc.SessionCount = nil
		}
	}
	if req.MaxParticipants.Set {
		if req.MaxParticipants.Valid {
			v := req.MaxParticipants.Value
			svc.MaxParticipants = &v
		} else {
			svc.MaxParticipants = nil
		}
	}
	svc.Active = req.Active.Or(svc.Active)

	updated, err := s.repo.Update(ctx, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: service %d", domain.ErrNotFound, id)
	}

	s.publish(ctx, events.ServiceUpdated, events.ServiceEvent{ServiceID: updated.ID, Name: updated.Name})
	return updated, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: service %d", domain.ErrNotFound, id)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: service %d", domain.ErrNotFound, id)
	}

	s.publish(ctx, events.ServiceDeleted, events.ServiceEvent{ServiceID: id})
	return nil
}

func (s *catalogService) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
