package model

import "time"

const (
	JournalPending = "pending"
	JournalSent    = "sent"
)

// ProgressLogEntry journals a progress write against the upstream API.
// Entries stay pending until the PUT succeeds so a failed log is
// retried instead of silently dropped.
type ProgressLogEntry struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;index"`
	ActivityID  string    `json:"activity_id" gorm:"not null;index"`
	TimeSpent   int       `json:"time_spent" gorm:"not null"`
	IsCompleted bool      `json:"is_completed" gorm:"not null"`
	Status      string    `json:"status" gorm:"not null;index;default:pending"`
	Attempts    int       `json:"attempts" gorm:"default:0"`
	LastError   string    `json:"last_error"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
