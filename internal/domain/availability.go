package domain

import "time"

// AvailabilityRule is a recurring weekly window. StartTime and EndTime are
// local times of day stored as "H:MM:SS" strings. An EndTime of exactly
// "00:00:00" is a sentinel for midnight at the end of the day, not the start.
type AvailabilityRule struct {
	ID        string    `json:"id"`
	DayOfWeek int       `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	IsVisible bool      `json:"is_visible"` // UI hint only, never affects slot generation
	CreatedAt time.Time `json:"created_at"`
}

const MidnightSentinel = "00:00:00"

// Slot is a bookable window derived from a rule. Never persisted.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type NewRule struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
