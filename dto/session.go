package dto

// MiniGameResponse carries one exercise of the current activity's chain.
type MiniGameResponse struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Prompt   string      `json:"prompt"`
	Resource interface{} `json:"resource,omitempty"`
}

// SessionStateResponse is the full derived state of a learner session,
// returned after every event so the UI can re-render from scratch.
type SessionStateResponse struct {
	State           string              `json:"state"`
	RoadmapID       string              `json:"roadmap_id,omitempty"`
	DayID           string              `json:"day_id,omitempty"`
	Activities      []DecoratedActivity `json:"activities,omitempty"`
	CompletedCount  int                 `json:"completed_count"`
	ProgressPercent int                 `json:"progress_percent"`
	ActivityIndex   int                 `json:"activity_index"`
	Phase           string              `json:"phase,omitempty"`
	MiniGames       []MiniGameResponse  `json:"mini_games,omitempty"`
	MiniGameIndex   int                 `json:"mini_game_index"`
	Notice          string              `json:"notice,omitempty"`
}

type SelectDayRequest struct {
	RoadmapID string `json:"roadmap_id" validate:"required"`
}

func (r SelectDayRequest) Validate() error {
	return GetValidator().Struct(r)
}
