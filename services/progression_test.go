package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

func activityFixtures(n int) []model.Activity {
	activities := make([]model.Activity, 0, n)
	for i := 0; i < n; i++ {
		activities = append(activities, model.Activity{
			ID:    string(rune('a' + i)),
			DayID: "day-1",
			Title: "Activity",
			Skill: "listening",
		})
	}
	return activities
}

func completedRecord(activityID string) model.ActivityProgress {
	now := time.Now()
	return model.ActivityProgress{
		UserID:      "user-1",
		ActivityID:  activityID,
		IsCompleted: true,
		TimeSpent:   120,
		CompletedAt: &now,
	}
}

func TestDecorateActivitiesSequentialUnlock(t *testing.T) {
	activities := activityFixtures(4)
	records := []model.ActivityProgress{
		completedRecord("a"),
		{UserID: "user-1", ActivityID: "b", TimeSpent: 30},
	}

	day := DecorateActivities(activities, records)
	require.Len(t, day.Activities, 4)

	assert.Equal(t, shared.StatusCompleted, day.Activities[0].Status)
	assert.Equal(t, shared.StatusInProgress, day.Activities[1].Status)
	assert.Equal(t, shared.StatusLocked, day.Activities[2].Status)
	assert.Equal(t, shared.StatusLocked, day.Activities[3].Status)

	assert.True(t, day.Activities[1].IsUnlocked)
	assert.False(t, day.Activities[2].IsUnlocked)
	assert.Equal(t, 1, day.InitialIndex)
}

// A completed activity stays unlocked even when an earlier one was reset
// or never completed.
func TestDecorateActivitiesCompletedAlwaysUnlocked(t *testing.T) {
	activities := activityFixtures(3)
	records := []model.ActivityProgress{completedRecord("c")}

	day := DecorateActivities(activities, records)

	assert.True(t, day.Activities[0].IsUnlocked)
	assert.False(t, day.Activities[1].IsUnlocked)
	assert.True(t, day.Activities[2].IsUnlocked)
	assert.Equal(t, shared.StatusCompleted, day.Activities[2].Status)
	assert.Equal(t, 0, day.InitialIndex)
}

func TestDecorateActivitiesUnlockMonotonicity(t *testing.T) {
	activities := activityFixtures(6)
	records := []model.ActivityProgress{
		completedRecord("a"),
		completedRecord("b"),
	}

	day := DecorateActivities(activities, records)

	firstIncomplete := -1
	for i, item := range day.Activities {
		if !item.IsCompleted {
			firstIncomplete = i
			break
		}
	}
	require.Equal(t, 2, firstIncomplete)

	for i, item := range day.Activities {
		if i <= firstIncomplete {
			assert.True(t, item.IsUnlocked, "index %d should be unlocked", i)
		} else {
			assert.False(t, item.IsUnlocked, "index %d should be locked", i)
		}
	}
}

func TestDecorateActivitiesIdempotent(t *testing.T) {
	activities := activityFixtures(5)
	records := []model.ActivityProgress{
		completedRecord("a"),
		{UserID: "user-1", ActivityID: "b", TimeSpent: 45},
	}

	first := DecorateActivities(activities, records)
	second := DecorateActivities(activities, records)

	assert.Equal(t, first, second)
}

func TestDecorateActivitiesCounts(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		completed   []string
		wantCount   int
		wantPercent int
	}{
		{"empty", 0, nil, 0, 0},
		{"none completed", 4, nil, 0, 0},
		{"one of three", 3, []string{"a"}, 1, 33},
		{"two of three", 3, []string{"a", "b"}, 2, 67},
		{"all completed", 3, []string{"a", "b", "c"}, 3, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]model.ActivityProgress, 0, len(tt.completed))
			for _, id := range tt.completed {
				records = append(records, completedRecord(id))
			}

			day := DecorateActivities(activityFixtures(tt.total), records)

			assert.Equal(t, tt.wantCount, day.CompletedCount)
			assert.Equal(t, tt.wantPercent, day.ProgressPercent)
		})
	}
}

// All activities completed: resume at the last one, not the first.
func TestInitialIndexAllCompleted(t *testing.T) {
	activities := activityFixtures(3)
	records := []model.ActivityProgress{
		completedRecord("a"),
		completedRecord("b"),
		completedRecord("c"),
	}

	day := DecorateActivities(activities, records)

	assert.Equal(t, 2, day.InitialIndex)
	assert.Equal(t, 100, day.ProgressPercent)
}

func TestDecorateActivitiesZeroTimeRecordNotInProgress(t *testing.T) {
	activities := activityFixtures(2)
	records := []model.ActivityProgress{
		{UserID: "user-1", ActivityID: "a", TimeSpent: 0},
	}

	day := DecorateActivities(activities, records)

	assert.False(t, day.Activities[0].IsInProgress)
	assert.Equal(t, shared.StatusAvailable, day.Activities[0].Status)
}

func TestDecorateDaysMirrorsUnlockRule(t *testing.T) {
	days := []model.Day{
		{ID: "d1", DayNumber: 1, Status: shared.StatusCompleted},
		{ID: "d2", DayNumber: 2, Status: shared.StatusInProgress},
		{ID: "d3", DayNumber: 3},
		{ID: "d4", DayNumber: 4},
	}

	decorated := DecorateDays(days)
	require.Len(t, decorated, 4)

	assert.True(t, decorated[0].IsUnlocked)
	assert.True(t, decorated[1].IsUnlocked)
	assert.False(t, decorated[2].IsUnlocked)
	assert.False(t, decorated[3].IsUnlocked)
}
