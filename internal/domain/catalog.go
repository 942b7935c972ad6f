package domain

import (
	"fmt"
	"strings"
	"time"
)

// Service is a bookable offering. Single-session services leave
// SessionCount and MaxParticipants unset; packages and group sessions
// fill them in.
type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	SessionCount    *int      `json:"session_count,omitempty"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	MaxServiceNameLength        = 120
	MaxServiceDescriptionLength = 2000
)

type CreateServiceRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	SessionCount    *int   `json:"session_count,omitempty"`
	MaxParticipants *int   `json:"max_participants,omitempty"`
	Active          *bool  `json:"active,omitempty"`
}

type UpdateServiceRequest struct {
	Name            Optional[string] `json:"name"`
	Description     Optional[string] `json:"description"`
	PriceCents      Optional[int64]  `json:"price_cents"`
	DurationMinutes Optional[int]    `json:"duration_minutes"`
	SessionCount    Optional[int]    `json:"session_count"`
	MaxParticipants Optional[int]    `json:"max_participants"`
	Active          Optional[bool]   `json:"active"`
}

func (r *CreateServiceRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *CreateServiceRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Name) > MaxServiceNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxServiceNameLength)
	}
	if len(r.Description) > MaxServiceDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxServiceDescriptionLength)
	}
	if r.PriceCents < 0 {
		return fmt.Errorf("price_cents must be non-negative")
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if r.SessionCount != nil && *r.SessionCount < 1 {
		return fmt.Errorf("session_count must be at least 1")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 1 {
		return fmt.Errorf("max_participants must be at least 1")
	}
	return nil
}

func (r *UpdateServiceRequest) Validate() error {
	if r.Name.Set {
		if !r.Name.Valid {
			return fmt.Errorf("name cannot be null")
		}
		name := strings.TrimSpace(r.Name.Value)
		if name == "" {
			return fmt.Errorf("name is required")
		}
		if len(name) > MaxServiceNameLength {
			return fmt.Errorf("name must be at most %d characters", MaxServiceNameLength)
		}
	}
	if r.Description.Set && r.Description.Valid &&
		len(strings.TrimSpace(r.Description.Value)) > MaxServiceDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxServiceDescriptionLength)
	}
	if r.PriceCents.Set {
		if !r.PriceCents.Valid || r.PriceCents.Value < 0 {
			return fmt.Errorf("price_cents must be non-negative")
		}
	}
	if r.DurationMinutes.Set {
		if !r.DurationMinutes.Valid || r.DurationMinutes.Value <= 0 {
			return fmt.Errorf("duration_minutes must be positive")
		}
	}
	if r.SessionCount.Set && r.SessionCount.Valid && r.SessionCount.Value < 1 {
		return fmt.Errorf("session_count must be at least 1")
	}
	if r.MaxParticipants.Set && r.MaxParticipants.Valid && r.MaxParticipants.Value < 1 {
		return fmt.Errorf("max_participants must be at least 1")
	}
	if r.Active.Set && !r.Active.Valid {
		return fmt.Errorf("active cannot be null")
	}
	return nil
}
