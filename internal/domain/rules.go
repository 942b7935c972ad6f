package domain

import (
	"fmt"
	"strings"
	"time"
)

// BookingRules is a singleton row: exactly one exists, seeded out-of-band.
type BookingRules struct {
	ID                  int64           `json:"id"`
	MinAdvanceHours     int             `json:"min_advance_hours"`
	MaxAdvanceDays      int             `json:"max_advance_days"`
	BufferMinutes       int             `json:"buffer_minutes"`
	SlotDurationMinutes int             `json:"slot_duration_minutes"`
	TimeZone            string          `json:"time_zone"`
	OpeningHours        []OpeningHour   `json:"opening_hours"`
	BlockedPeriods      []BlockedPeriod `json:"blocked_periods"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OpeningHour holds a time-of-day range ("15:04" wall clock, no date) for
// one weekday. At most one row per (weekday, rules).
type OpeningHour struct {
	ID        int64        `json:"id"`
	RulesID   int64        `json:"-"`
	Weekday   time.Weekday `json:"weekday"`
	OpenTime  string       `json:"open_time"`
	CloseTime string       `json:"close_time"`
	Closed    bool         `json:"closed"`
}

// BlockedPeriod is a half-open UTC interval [StartTime, EndTime) during
// which no bookings are accepted.
type BlockedPeriod struct {
	ID          int64     `json:"id"`
	RulesID     int64     `json:"-"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overlaps reports whether [start, end) intersects this period. Touching
// boundaries (end == other start) count as adjacent, not overlapping, so
// "closed 2-4 then again from 4" is representable.
func (b *BlockedPeriod) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

const MaxBlockedPeriodDescription = 500

type UpdateRulesRequest struct {
	MinAdvanceHours     Optional[int]       `json:"min_advance_hours"`
	MaxAdvanceDays      Optional[int]       `json:"max_advance_days"`
	BufferMinutes       Optional[int]       `json:"buffer_minutes"`
	SlotDurationMinutes Optional[int]       `json:"slot_duration_minutes"`
	TimeZone            Optional[string]    `json:"time_zone"`
	OpeningHours        []OpeningHourUpdate `json:"opening_hours,omitempty"`
}

// OpeningHourUpdate is matched to a stored row by ID; an ID outside the
// current rule set is rejected rather than upserted.
type OpeningHourUpdate struct {
	ID        int64            `json:"id"`
	OpenTime  Optional[string] `json:"open_time"`
	CloseTime Optional[string] `json:"close_time"`
	Closed    Optional[bool]   `json:"closed"`
}

type CreateBlockedPeriodRequest struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
}

type UpdateBlockedPeriodRequest struct {
	StartTime   Optional[time.Time] `json:"start_time"`
	EndTime     Optional[time.Time] `json:"end_time"`
	Description Optional[string]    `json:"description"`
}

func (r *UpdateRulesRequest) Validate() error {
	if r.MinAdvanceHours.Set {
		if !r.MinAdvanceHours.Valid || r.MinAdvanceHours.Value < 0 {
			return fmt.Errorf("min_advance_hours must be a non-negative integer")
		}
	}
	if r.MaxAdvanceDays.Set {
		if !r.MaxAdvanceDays.Valid || r.MaxAdvanceDays.Value < 0 {
			return fmt.Errorf("max_advance_days must be a non-negative integer")
		}
	}
	if r.BufferMinutes.Set {
		if !r.BufferMinutes.Valid || r.BufferMinutes.Value < 0 {
			return fmt.Errorf("buffer_minutes must be a non-negative integer")
		}
	}
	if r.SlotDurationMinutes.Set {
		if !r.SlotDurationMinutes.Valid || r.SlotDurationMinutes.Value <= 0 {
			return fmt.Errorf("slot_duration_minutes must be a positive integer")
		}
	}
	if r.TimeZone.Set {
		if !r.TimeZone.Valid {
			return fmt.Errorf("time_zone cannot be null")
		}
		if _, err := time.LoadLocation(r.TimeZone.Value); err != nil {
			return fmt.Errorf("invalid time_zone: %s", r.TimeZone.Value)
		}
	}
	for i := range r.OpeningHours {
		if err := r.OpeningHours[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (u *OpeningHourUpdate) Validate() error {
	if u.ID == 0 {
		return fmt.Errorf("opening hour id is required")
	}
	if u.OpenTime.Set {
		if !u.OpenTime.Valid {
			return fmt.Errorf("open_time cannot be null")
		}
		if !isValidTimeOfDay(u.OpenTime.Value) {
			return fmt.Errorf("invalid open_time: %s", u.OpenTime.Value)
		}
	}
	if u.CloseTime.Set {
		if !u.CloseTime.Valid {
			return fmt.Errorf("close_time cannot be null")
		}
		if !isValidTimeOfDay(u.CloseTime.Value) {
			return fmt.Errorf("invalid close_time: %s", u.CloseTime.Value)
		}
	}
	return nil
}

func (r *CreateBlockedPeriodRequest) Validate() error {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !r.StartTime.Before(r.EndTime) {
		return fmt.Errorf("start_time must be before end_time")
	}
	if len(strings.TrimSpace(r.Description)) > MaxBlockedPeriodDescription {
		return fmt.Errorf("description must be at most %d characters", MaxBlockedPeriodDescription)
	}
	return nil
}

func (r *UpdateBlockedPeriodRequest) Validate() error {
	if r.StartTime.Set && !r.StartTime.Valid {
		return fmt.Errorf("start_time cannot be null")
	}
	if r.EndTime.Set && !r.EndTime.Valid {
		return fmt.Errorf("end_time cannot be null")
	}
	if r.Description.Set && r.Description.Valid &&
		len(strings.TrimSpace(r.Description.Value)) > MaxBlockedPeriodDescription {
		return fmt.Errorf("description must be at most %d characters", MaxBlockedPeriodDescription)
	}
	return nil
}

// NormalizeDescription trims the input and collapses all-whitespace to nil,
// so "no description" is stored as NULL rather than an empty string.
func NormalizeDescription(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// IsOrdered reports open < close lexically, which holds for zero-padded
// "15:04" strings.
func IsOrdered(open, close string) bool {
	return open < close
}

func isValidTimeOfDay(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
