package shared

const (
	UserID      = "user_id"
	PreviewMode = "preview_mode"

	// DayPageSize is shared between page requests and hasMore computation.
	// Changing one without the other breaks pagination, so it lives here.
	DayPageSize = 15

	// MinLoggedSeconds floors recorded completion time so very fast
	// mini-game chains or clock skew never log a zero-second completion.
	MinLoggedSeconds = 5

	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusAvailable  = "available"
	StatusLocked     = "locked"

	EnrollmentActive   = "active"
	EnrollmentInactive = "inactive"

	SessionIdle       = "idle"
	SessionLoadingDay = "loadingDay"
	SessionSequencing = "sequencing"
	SessionInMiniGame = "inMiniGame"
	SessionCompleted  = "completed"

	PhaseContent  = "content"
	PhaseMiniGame = "minigame"

	SwitchNavigate         = "navigate"
	SwitchNoop             = "noop"
	SwitchDecisionRequired = "decision_required"
)
