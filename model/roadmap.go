// model/roadmap.go
package model

import "time"

// Roadmap is a named learning path composed of ordered days.
// Content-author owned; the client never mutates it.
type Roadmap struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	Overview string `json:"overview"`
	Days     []Day  `json:"days,omitempty"`
}

// Day is one unit of a roadmap. DayNumber is 1-based and defines the
// global order within the roadmap.
type Day struct {
	ID          string `json:"id"`
	RoadmapID   string `json:"roadmapId"`
	DayNumber   int    `json:"dayNumber"`
	Description string `json:"description"`
	// Status is the per-day progress tag reported by the paginated
	// day listing: completed, in_progress or empty.
	Status string `json:"status,omitempty"`
}

// Activity is one learning task within a day, ordered by array position.
type Activity struct {
	ID    string `json:"id"`
	DayID string `json:"dayId"`
	Title string `json:"title"`
	Skill string `json:"skill"`
}

// MiniGame is one interactive exercise belonging to an activity.
// Resource is a type-specific payload the renderer interprets; the
// engine only carries it through.
type MiniGame struct {
	ID         string      `json:"id"`
	ActivityID string      `json:"activityId"`
	Type       string      `json:"type"`
	Prompt     string      `json:"prompt"`
	Resource   interface{} `json:"resource,omitempty"`
}

// ActivityProgress is the server-side progress record for one
// (user, activity) pair. Created on first interaction, mutated after.
type ActivityProgress struct {
	UserID      string     `json:"userId"`
	ActivityID  string     `json:"activityId"`
	IsCompleted bool       `json:"isCompleted"`
	TimeSpent   int        `json:"timeSpent"`
	CompletedAt *time.Time `json:"completedAt"`
}

// ProgressSummary is an opaque summary attached to an enrollment check.
// HasProgress drives the continue-vs-restart prompt; its derivation is
// owned by the server.
type ProgressSummary struct {
	HasProgress      bool `json:"hasProgress"`
	LastCompletedDay int  `json:"lastCompletedDay"`
}

// Enrollment records that a user is pursuing a roadmap. At most one
// enrollment per user is active at any time.
type Enrollment struct {
	UserID          string           `json:"userId"`
	RoadmapID       string           `json:"roadmapId"`
	Status          string           `json:"status"`
	ProgressSummary *ProgressSummary `json:"progressSummary,omitempty"`
}

// EnrollmentCheck is the enrollment endpoint's response shape.
type EnrollmentCheck struct {
	Enrolled   bool        `json:"enrolled"`
	Enrollment *Enrollment `json:"enrollment,omitempty"`
	Roadmap    *Roadmap    `json:"roadmap,omitempty"`
}

// DayPage is one page of the paginated day listing.
type DayPage struct {
	Days  []Day `json:"days"`
	Total int   `json:"total"`
}
