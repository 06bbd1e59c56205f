package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/fluentpath/roadmap_client/model"
)

type loggedProgress struct {
	UserID      string
	ActivityID  string
	TimeSpent   int
	IsCompleted bool
}

type selectCall struct {
	UserID    string
	RoadmapID string
	Restart   bool
}

// fakeUpstream is an in-memory UpstreamClient for service tests.
type fakeUpstream struct {
	mu sync.Mutex

	roadmaps    map[string]*model.Roadmap
	enrollments map[string]*model.EnrollmentCheck
	legacy      map[string]*model.EnrollmentCheck
	days        []model.Day
	activities  map[string][]model.Activity
	progress    map[string][]model.ActivityProgress
	miniGames   map[string][]model.MiniGame

	enrollmentErr error
	daysErr       error
	activitiesErr error
	progressErr   error
	selectErr     error
	logErr        error

	daysCalls       int
	activitiesCalls int
	selectCalls     []selectCall
	loggedWrites    []loggedProgress

	// activitiesGate, when set, blocks GetDayActivities until released.
	// Used to emulate a slow fetch racing a re-selection.
	activitiesGate chan struct{}
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		roadmaps:    map[string]*model.Roadmap{},
		enrollments: map[string]*model.EnrollmentCheck{},
		legacy:      map[string]*model.EnrollmentCheck{},
		activities:  map[string][]model.Activity{},
		progress:    map[string][]model.ActivityProgress{},
		miniGames:   map[string][]model.MiniGame{},
	}
}

func enrollmentKey(userID, roadmapID string) string {
	return fmt.Sprintf("%s|%s", userID, roadmapID)
}

func (f *fakeUpstream) GetRoadmap(_ context.Context, roadmapID string) (*model.Roadmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roadmap, ok := f.roadmaps[roadmapID]
	if !ok {
		return nil, fmt.Errorf("roadmap %s not found", roadmapID)
	}
	return roadmap, nil
}

func (f *fakeUpstream) GetEnrollment(_ context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enrollmentErr != nil {
		return nil, f.enrollmentErr
	}
	check, ok := f.enrollments[enrollmentKey(userID, roadmapID)]
	if !ok {
		return &model.EnrollmentCheck{Enrolled: false}, nil
	}
	return check, nil
}

func (f *fakeUpstream) GetEnrollmentLegacy(_ context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	check, ok := f.legacy[enrollmentKey(userID, roadmapID)]
	if !ok {
		return &model.EnrollmentCheck{Enrolled: false}, nil
	}
	return check, nil
}

func (f *fakeUpstream) SelectRoadmap(_ context.Context, userID, roadmapID string, restart bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return f.selectErr
	}
	f.selectCalls = append(f.selectCalls, selectCall{UserID: userID, RoadmapID: roadmapID, Restart: restart})
	return nil
}

func (f *fakeUpstream) GetDays(_ context.Context, _, _ string, page, limit int) (*model.DayPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.daysErr != nil {
		return nil, f.daysErr
	}
	f.daysCalls++

	start := (page - 1) * limit
	if start > len(f.days) {
		start = len(f.days)
	}
	end := start + limit
	if end > len(f.days) {
		end = len(f.days)
	}

	slice := make([]model.Day, end-start)
	copy(slice, f.days[start:end])
	return &model.DayPage{Days: slice, Total: len(f.days)}, nil
}

func (f *fakeUpstream) GetDayActivities(ctx context.Context, dayID string) ([]model.Activity, error) {
	f.mu.Lock()
	f.activitiesCalls++
	gate := f.activitiesGate
	err := f.activitiesErr
	activities := append([]model.Activity(nil), f.activities[dayID]...)
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return activities, nil
}

func (f *fakeUpstream) GetDayProgress(_ context.Context, userID, dayID string) ([]model.ActivityProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	return append([]model.ActivityProgress(nil), f.progress[enrollmentKey(userID, dayID)]...), nil
}

func (f *fakeUpstream) GetMiniGames(_ context.Context, activityID string) ([]model.MiniGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.MiniGame(nil), f.miniGames[activityID]...), nil
}

func (f *fakeUpstream) LogActivityProgress(_ context.Context, userID, activityID string, timeSpent int, isCompleted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.loggedWrites = append(f.loggedWrites, loggedProgress{
		UserID:      userID,
		ActivityID:  activityID,
		TimeSpent:   timeSpent,
		IsCompleted: isCompleted,
	})
	return nil
}

func (f *fakeUpstream) logged() []loggedProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]loggedProgress(nil), f.loggedWrites...)
}

func (f *fakeUpstream) selected() []selectCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]selectCall(nil), f.selectCalls...)
}
