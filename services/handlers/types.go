package handlers

import (
	"context"

	"github.com/fluentpath/roadmap_client/dto"
)

type EnrollmentServiceInterface interface {
	Bootstrap(ctx context.Context, userID, roadmapID string) (*dto.RoadmapBootstrapResponse, error)
	TrySwitch(ctx context.Context, userID, candidateID, currentID string) (*dto.SwitchOutcome, error)
	ConfirmSwitch(ctx context.Context, userID, roadmapID string, restart bool) (*dto.SwitchOutcome, error)
}

type SessionServiceInterface interface {
	Days(ctx context.Context, userID, roadmapID string, page int) (*dto.DayPageResponse, error)
	SelectDay(ctx context.Context, userID, roadmapID, dayID string) (*dto.SessionStateResponse, error)
	State(userID string) (*dto.SessionStateResponse, error)
	Advance(ctx context.Context, userID string) (*dto.SessionStateResponse, error)
	SelectActivity(userID string, index int) (*dto.SessionStateResponse, error)
	SelectMiniGame(userID string, index int) (*dto.SessionStateResponse, error)
	Close(ctx context.Context, userID string) (*dto.SessionStateResponse, error)
}
