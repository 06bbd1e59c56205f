package services

import (
	"math"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// DecorateActivities merges a day's ordered activities with the user's
// progress records and derives lock, completion and resume state.
//
// The unlock rule is a fold over array order: an activity is unlocked iff
// it is completed or every activity before it is completed. The function
// is pure; it is re-run on every fetch and must never accumulate drift.
func DecorateActivities(activities []model.Activity, records []model.ActivityProgress) dto.DecoratedDay {
	byActivity := make(map[string]model.ActivityProgress, len(records))
	for _, record := range records {
		byActivity[record.ActivityID] = record
	}

	decorated := make([]dto.DecoratedActivity, 0, len(activities))
	completedCount := 0
	allPreviousCompleted := true

	for _, activity := range activities {
		record, hasRecord := byActivity[activity.ID]

		isCompleted := hasRecord && record.IsCompleted
		isInProgress := hasRecord && !isCompleted && record.TimeSpent > 0
		isUnlocked := isCompleted || allPreviousCompleted

		item := dto.DecoratedActivity{
			ID:           activity.ID,
			Title:        activity.Title,
			Skill:        activity.Skill,
			IsCompleted:  isCompleted,
			IsInProgress: isInProgress,
			IsUnlocked:   isUnlocked,
			Status:       activityStatus(isCompleted, isInProgress, isUnlocked),
		}
		if hasRecord {
			item.TimeSpent = record.TimeSpent
			item.CompletedAt = record.CompletedAt
		}

		decorated = append(decorated, item)

		if isCompleted {
			completedCount++
		} else {
			allPreviousCompleted = false
		}
	}

	return dto.DecoratedDay{
		Activities:      decorated,
		CompletedCount:  completedCount,
		ProgressPercent: progressPercent(completedCount, len(decorated)),
		InitialIndex:    initialIndex(decorated),
	}
}

func activityStatus(isCompleted, isInProgress, isUnlocked bool) string {
	switch {
	case isCompleted:
		return shared.StatusCompleted
	case isInProgress && isUnlocked:
		return shared.StatusInProgress
	case isUnlocked:
		return shared.StatusAvailable
	default:
		return shared.StatusLocked
	}
}

func progressPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// initialIndex is the resume point: the first unlocked, not yet completed
// activity. A learner who finished everything reopens at the end rather
// than the start.
func initialIndex(decorated []dto.DecoratedActivity) int {
	for i, item := range decorated {
		if item.IsUnlocked && !item.IsCompleted {
			return i
		}
	}
	if len(decorated) == 0 {
		return 0
	}
	return len(decorated) - 1
}

// DecorateDays applies the same sequential unlock rule over a roadmap's
// day sequence, using the per-day status tags from the paginated listing.
// Days must already be ordered by dayNumber.
func DecorateDays(days []model.Day) []dto.DayResponse {
	decorated := make([]dto.DayResponse, 0, len(days))
	allPreviousCompleted := true

	for _, day := range days {
		isCompleted := day.Status == shared.StatusCompleted
		isUnlocked := isCompleted || allPreviousCompleted

		decorated = append(decorated, dto.DayResponse{
			ID:          day.ID,
			DayNumber:   day.DayNumber,
			Description: day.Description,
			Status:      day.Status,
			IsCompleted: isCompleted,
			IsUnlocked:  isUnlocked,
		})

		if !isCompleted {
			allPreviousCompleted = false
		}
	}

	return decorated
}
