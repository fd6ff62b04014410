package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt" db:"last_updated_at"`
}

// DateWindow restricts a report or listing to expenses created in [From, To).
// A nil bound is open.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && !t.Before(*w.To) {
		return false
	}
	return true
}

// IsOpen reports whether the window has no bounds at all.
func (w DateWindow) IsOpen() bool {
	return w.From == nil && w.To == nil
}
