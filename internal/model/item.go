package model

import "time"

// Item is a reported lost or found object.
type Item struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Location     string    `json:"location"`
	DateReported time.Time `json:"date_reported"`
	ContactInfo  string    `json:"contact_info,omitempty"`
	Image        string    `json:"image,omitempty"`
	Status       string    `json:"status"`
}

// Item categories.
const (
	CategoryLost  = "lost"
	CategoryFound = "found"
)

// Item statuses.
const (
	StatusPending = "Pending"
	StatusClaimed = "Claimed"
)

// Field length limits.
const (
	MaxTitleLength       = 200
	MaxLocationLength    = 200
	MaxContactInfoLength = 200
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	return c == CategoryLost || c == CategoryFound
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusClaimed
}

// ToggleStatus returns the status an item moves to when toggled.
// Unknown statuses are treated as Pending.
func ToggleStatus(s string) string {
	if s == StatusPending {
		return StatusClaimed
	}
	return StatusPending
}

// ItemFilter narrows an item listing. Zero value matches everything.
type ItemFilter struct {
	Category string
}
