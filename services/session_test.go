package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// directLogger bypasses the journal and writes straight upstream.
type directLogger struct {
	api UpstreamClient
}

func (l directLogger) Log(ctx context.Context, userID, activityID string, timeSpent int, isCompleted bool) error {
	return l.api.LogActivityProgress(ctx, userID, activityID, timeSpent, isCompleted)
}

func newSessionService(upstream UpstreamClient, clock *fakeClock) *SessionService {
	svc := &SessionService{
		api:      upstream,
		logger:   directLogger{api: upstream},
		sessions: map[string]*LearnerSession{},
	}
	if clock != nil {
		svc.now = clock.now
	} else {
		svc.now = time.Now
	}
	return svc
}

func seedDay(upstream *fakeUpstream, dayID string, activityCount int) []model.Activity {
	activities := make([]model.Activity, 0, activityCount)
	for i := 0; i < activityCount; i++ {
		activities = append(activities, model.Activity{
			ID:    fmt.Sprintf("%s-act-%d", dayID, i),
			DayID: dayID,
			Title: fmt.Sprintf("Activity %d", i+1),
			Skill: "listening",
		})
	}
	upstream.activities[dayID] = activities
	return activities
}

func waitForState(t *testing.T, svc *SessionService, userID, state string) *dto.SessionStateResponse {
	t.Helper()
	var resp *dto.SessionStateResponse
	require.Eventually(t, func() bool {
		resp, _ = svc.State(userID)
		return resp.State == state
	}, time.Second, 5*time.Millisecond)
	return resp
}

func TestSessionSelectDayEntersSequencing(t *testing.T) {
	upstream := newFakeUpstream()
	seedDay(upstream, "day-1", 3)

	svc := newSessionService(upstream, newFakeClock())
	resp, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionLoadingDay, resp.State)

	resp = waitForState(t, svc, "user-1", shared.SessionSequencing)
	assert.Equal(t, "day-1", resp.DayID)
	assert.Len(t, resp.Activities, 3)
	assert.Equal(t, 0, resp.ActivityIndex)
	assert.Equal(t, shared.PhaseContent, resp.Phase)
}

func TestSessionStaleFetchIsDiscarded(t *testing.T) {
	upstream := newFakeUpstream()
	seedDay(upstream, "day-1", 2)
	seedDay(upstream, "day-2", 4)

	gate := make(chan struct{})
	upstream.activitiesGate = gate

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)

	// Re-select before the first fetch resolves.
	_, err = svc.SelectDay(context.Background(), "user-1", "rm-1", "day-2")
	require.NoError(t, err)

	close(gate)

	resp := waitForState(t, svc, "user-1", shared.SessionSequencing)
	assert.Equal(t, "day-2", resp.DayID)
	assert.Len(t, resp.Activities, 4, "the superseded day-1 fetch must not install")
}

func TestSessionDayFetchFailureReturnsToIdle(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.activitiesErr = errors.New("upstream down")

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)

	var resp *dto.SessionStateResponse
	require.Eventually(t, func() bool {
		resp, _ = svc.State("user-1")
		return resp.State == shared.SessionIdle && resp.Notice != ""
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Could not load the selected day", resp.Notice)
}

func TestSessionAdvanceThroughMiniGameChain(t *testing.T) {
	upstream := newFakeUpstream()
	activities := seedDay(upstream, "day-1", 2)
	upstream.miniGames[activities[0].ID] = []model.MiniGame{
		{ID: "g1", ActivityID: activities[0].ID, Type: "flashcard"},
		{ID: "g2", ActivityID: activities[0].ID, Type: "quiz"},
	}

	clock := newFakeClock()
	svc := newSessionService(upstream, clock)
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	// Content → first mini-game.
	resp, err := svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionInMiniGame, resp.State)
	require.Len(t, resp.MiniGames, 2)
	assert.Equal(t, 0, resp.MiniGameIndex)

	// Next mini-game.
	resp, err = svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.MiniGameIndex)

	// Exhausting the chain completes the activity.
	clock.advance(80 * time.Second)
	resp, err = svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionSequencing, resp.State)
	assert.Equal(t, 1, resp.ActivityIndex)
	assert.Equal(t, 1, resp.CompletedCount)
	assert.Equal(t, 50, resp.ProgressPercent)

	writes := upstream.logged()
	require.Len(t, writes, 1)
	assert.Equal(t, activities[0].ID, writes[0].ActivityID)
	assert.True(t, writes[0].IsCompleted)
	assert.Equal(t, 80, writes[0].TimeSpent)
}

func TestSessionContentOnlyActivityCompletesOnAdvance(t *testing.T) {
	upstream := newFakeUpstream()
	activities := seedDay(upstream, "day-1", 2)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	resp, err := svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, shared.SessionSequencing, resp.State)
	assert.Empty(t, resp.MiniGames, "content-only activity never enters a chain")
	assert.Equal(t, 1, resp.ActivityIndex)

	writes := upstream.logged()
	require.Len(t, writes, 1)
	assert.Equal(t, activities[0].ID, writes[0].ActivityID)
	assert.Equal(t, shared.MinLoggedSeconds, writes[0].TimeSpent)
}

func TestSessionLastActivityCompletesDay(t *testing.T) {
	upstream := newFakeUpstream()
	seedDay(upstream, "day-1", 1)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	resp, err := svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionCompleted, resp.State)
	assert.Equal(t, 100, resp.ProgressPercent)

	// No further advancing once the visit is complete.
	_, err = svc.Advance(context.Background(), "user-1")
	require.Error(t, err)
}

func TestSessionProgressLogFailureIsNonFatal(t *testing.T) {
	upstream := newFakeUpstream()
	seedDay(upstream, "day-1", 2)
	upstream.logErr = errors.New("write rejected")

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	resp, err := svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)

	// Derived state advances regardless; the learner just sees a notice.
	assert.Equal(t, 1, resp.ActivityIndex)
	assert.Equal(t, 1, resp.CompletedCount)
	assert.NotEmpty(t, resp.Notice)
}

func TestSessionSilentRefreshAdoptsServerView(t *testing.T) {
	upstream := newFakeUpstream()
	activities := seedDay(upstream, "day-1", 2)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	upstream.mu.Lock()
	upstream.progress[enrollmentKey("user-1", "day-1")] = []model.ActivityProgress{
		{ActivityID: activities[0].ID, IsCompleted: true, TimeSpent: 300},
	}
	upstream.mu.Unlock()

	_, err = svc.Advance(context.Background(), "user-1")
	require.NoError(t, err)

	var resp *dto.SessionStateResponse
	require.Eventually(t, func() bool {
		resp, _ = svc.State("user-1")
		return len(resp.Activities) > 0 && resp.Activities[0].TimeSpent == 300
	}, time.Second, 5*time.Millisecond, "the refreshed server view replaces the optimistic one")
	assert.Equal(t, 1, resp.CompletedCount)
}

func TestSessionCloseLogsAbandonedAttempt(t *testing.T) {
	upstream := newFakeUpstream()
	activities := seedDay(upstream, "day-1", 2)

	clock := newFakeClock()
	svc := newSessionService(upstream, clock)
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	clock.advance(42 * time.Second)
	resp, err := svc.Close(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionIdle, resp.State)

	writes := upstream.logged()
	require.Len(t, writes, 1)
	assert.Equal(t, activities[0].ID, writes[0].ActivityID)
	assert.False(t, writes[0].IsCompleted)
	assert.Equal(t, 42, writes[0].TimeSpent)
}

func TestSessionPreviewNeverLogsProgress(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.roadmaps["rm-1"] = &model.Roadmap{ID: "rm-1", Days: []model.Day{{ID: "day-1", DayNumber: 1}}}
	seedDay(upstream, "day-1", 2)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "", shared.SessionSequencing)

	_, err = svc.Advance(context.Background(), "")
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), "")
	require.NoError(t, err)

	assert.Empty(t, upstream.logged())
}

func TestSessionSelectLockedDayRejected(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.days = []model.Day{
		{ID: "day-1", DayNumber: 1, Status: shared.StatusInProgress},
		{ID: "day-2", DayNumber: 2},
	}
	seedDay(upstream, "day-2", 2)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.Days(context.Background(), "user-1", "rm-1", 1)
	require.NoError(t, err)

	_, err = svc.SelectDay(context.Background(), "user-1", "rm-1", "day-2")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
}

func TestSessionPreviewSelectLockedDayRejected(t *testing.T) {
	upstream := newFakeUpstream()
	roadmap := &model.Roadmap{ID: "rm-1", Name: "Beginner English"}
	for i := 1; i <= 3; i++ {
		roadmap.Days = append(roadmap.Days, model.Day{ID: fmt.Sprintf("day-%d", i), DayNumber: i})
	}
	upstream.roadmaps["rm-1"] = roadmap
	seedDay(upstream, "day-3", 2)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "", "rm-1", "day-3")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)

	resp, err := svc.State("")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionIdle, resp.State, "a locked day must never start loading")
	assert.Equal(t, 0, upstream.activitiesCalls)
}

func TestSessionSelectLockedDayRejectedBeforeListing(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.days = []model.Day{
		{ID: "day-1", DayNumber: 1, Status: shared.StatusInProgress},
		{ID: "day-2", DayNumber: 2},
	}
	seedDay(upstream, "day-2", 2)

	svc := newSessionService(upstream, newFakeClock())

	// Deep link straight to a later day before any listing was loaded.
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-2")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, 1, upstream.daysCalls, "the gate loads page 1 on demand")
}

func TestSessionReselectionServedFromSnapshot(t *testing.T) {
	upstream := newFakeUpstream()
	seedDay(upstream, "day-1", 2)

	clock := newFakeClock()
	svc := newSessionService(upstream, clock)
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	_, err = svc.Close(context.Background(), "user-1")
	require.NoError(t, err)

	// Reopening the same day is served from the held snapshot.
	resp, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionSequencing, resp.State)
	assert.Len(t, resp.Activities, 2)
	assert.Equal(t, 1, upstream.activitiesCalls, "a fresh snapshot spares the refetch")

	// Once the snapshot outlives its TTL the day is fetched again.
	clock.advance(6 * time.Minute)
	resp, err = svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionLoadingDay, resp.State)

	waitForState(t, svc, "user-1", shared.SessionSequencing)
	assert.Equal(t, 2, upstream.activitiesCalls, "an expired snapshot is refetched")
}

func TestSessionDaysFailureKeepsLoadedPages(t *testing.T) {
	upstream := newFakeUpstream()
	for i := 1; i <= 20; i++ {
		upstream.days = append(upstream.days, model.Day{ID: fmt.Sprintf("day-%d", i), DayNumber: i})
	}

	svc := newSessionService(upstream, newFakeClock())
	resp, err := svc.Days(context.Background(), "user-1", "rm-1", 1)
	require.NoError(t, err)
	require.Len(t, resp.Days, shared.DayPageSize)

	upstream.daysErr = errors.New("upstream down")
	resp, err = svc.Days(context.Background(), "user-1", "rm-1", 2)
	require.NoError(t, err)

	assert.Len(t, resp.Days, shared.DayPageSize, "held pages survive a failed load")
	assert.NotEmpty(t, resp.Notice)
	assert.True(t, resp.HasMore)
}

func TestSessionPreviewDaysComeFromRoadmap(t *testing.T) {
	upstream := newFakeUpstream()
	roadmap := &model.Roadmap{ID: "rm-1", Name: "Beginner English"}
	for i := 1; i <= 4; i++ {
		roadmap.Days = append(roadmap.Days, model.Day{ID: fmt.Sprintf("day-%d", i), DayNumber: i})
	}
	upstream.roadmaps["rm-1"] = roadmap

	svc := newSessionService(upstream, nil)
	resp, err := svc.Days(context.Background(), "", "rm-1", 1)
	require.NoError(t, err)

	require.Len(t, resp.Days, 4)
	assert.False(t, resp.HasMore)
	assert.True(t, resp.Days[0].IsUnlocked)
	assert.False(t, resp.Days[1].IsUnlocked, "no progress in preview, only the first day unlocks")
}

func TestSessionRoadmapChangeResetsSession(t *testing.T) {
	upstream := newFakeUpstream()
	seedDay(upstream, "day-1", 2)

	svc := newSessionService(upstream, newFakeClock())
	_, err := svc.SelectDay(context.Background(), "user-1", "rm-1", "day-1")
	require.NoError(t, err)
	waitForState(t, svc, "user-1", shared.SessionSequencing)

	// Moving to another roadmap drops the old session state.
	_, err = svc.Days(context.Background(), "user-1", "rm-2", 1)
	require.NoError(t, err)

	resp, err := svc.State("user-1")
	require.NoError(t, err)
	assert.Equal(t, shared.SessionIdle, resp.State)
	assert.Equal(t, "rm-2", resp.RoadmapID)
}
