package dto

import "time"

// Roadmap DTOs
type RoadmapResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	Overview string `json:"overview"`
}

type DayResponse struct {
	ID          string `json:"id"`
	DayNumber   int    `json:"day_number"`
	Description string `json:"description"`
	Status      string `json:"status"`
	IsCompleted bool   `json:"is_completed"`
	IsUnlocked  bool   `json:"is_unlocked"`
}

type DayPageResponse struct {
	Days        []DayResponse `json:"days"`
	CurrentPage int           `json:"current_page"`
	TotalCount  int           `json:"total_count"`
	HasMore     bool          `json:"has_more"`
	Notice      string        `json:"notice,omitempty"`
}

// DecoratedActivity is an activity annotated with derived lock and
// completion state. Never persisted; rebuilt from progress records on
// every fetch.
type DecoratedActivity struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Skill        string     `json:"skill"`
	IsCompleted  bool       `json:"is_completed"`
	IsInProgress bool       `json:"is_in_progress"`
	IsUnlocked   bool       `json:"is_unlocked"`
	Status       string     `json:"status"`
	TimeSpent    int        `json:"time_spent"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type DecoratedDay struct {
	Activities      []DecoratedActivity `json:"activities"`
	CompletedCount  int                 `json:"completed_count"`
	ProgressPercent int                 `json:"progress_percent"`
	InitialIndex    int                 `json:"initial_index"`
}

// Bootstrap DTOs
type ProgressSummaryResponse struct {
	HasProgress      bool `json:"has_progress"`
	LastCompletedDay int  `json:"last_completed_day"`
}

type RoadmapBootstrapResponse struct {
	Roadmap          RoadmapResponse          `json:"roadmap"`
	Enrolled         bool                     `json:"enrolled"`
	EnrollmentStatus string                   `json:"enrollment_status,omitempty"`
	ProgressSummary  *ProgressSummaryResponse `json:"progress_summary,omitempty"`
	PreviewMode      bool                     `json:"preview_mode"`
	Notice           string                   `json:"notice,omitempty"`
}

// Switch DTOs
type SwitchRequest struct {
	CurrentRoadmapID string `json:"current_roadmap_id"`
}

type ConfirmSwitchRequest struct {
	Restart *bool `json:"restart" validate:"required"`
}

func (r SwitchRequest) Validate() error {
	return GetValidator().Struct(r)
}

func (r ConfirmSwitchRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SwitchOutcome struct {
	Action          string                   `json:"action"`
	RedirectTo      string                   `json:"redirect_to,omitempty"`
	ProgressSummary *ProgressSummaryResponse `json:"progress_summary,omitempty"`
}
