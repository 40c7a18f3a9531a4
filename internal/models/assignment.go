package models

import "time"

// Assignment represents a gradable task definition.
type Assignment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	DueDate         time.Time  `gorm:"not null" json:"due_date"`
	AllowedAttempts *int       `json:"allowed_attempts"`
	Locked          bool       `gorm:"not null;default:false" json:"locked"`
	UnlockAt        *time.Time `json:"unlock_at"`
	LockAt          *time.Time `json:"lock_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Submissions     []Submission
}

// IsLocked reports whether students are locked out at the reference time,
// either manually or because the reference falls outside the unlock window.
func (a Assignment) IsLocked(reference time.Time) bool {
	if a.Locked {
		return true
	}
	if a.UnlockAt != nil && reference.Before(*a.UnlockAt) {
		return true
	}
	if a.LockAt != nil && reference.After(*a.LockAt) {
		return true
	}
	return false
}

// NextLockTransition returns the earliest moment after reference at which
// IsLocked may change because of the unlock window.
func (a Assignment) NextLockTransition(reference time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	if a.UnlockAt != nil && reference.Before(*a.UnlockAt) {
		next, found = *a.UnlockAt, true
	}
	if a.LockAt != nil && !reference.After(*a.LockAt) && (!found || a.LockAt.Before(next)) {
		next, found = *a.LockAt, true
	}
	return next, found
}
