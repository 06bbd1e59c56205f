package services

import (
	"math"
	"time"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// ActivitySequencer walks a learner through one day's activities. Each
// activity runs a content phase and then its mini-game chain; finishing
// the chain (or advancing out of a content-only activity) completes the
// activity and moves to the next one.
//
// The sequencer only derives state; logging the resulting progress is
// the caller's job, fed by CompleteCurrent/Abandon return values.
type ActivitySequencer struct {
	dayID string
	day   dto.DecoratedDay

	index      int
	phase      string
	hub        *MiniGameHub
	timerStart time.Time
	done       bool

	now func() time.Time
}

func NewActivitySequencer(dayID string, day dto.DecoratedDay, now func() time.Time) *ActivitySequencer {
	if now == nil {
		now = time.Now
	}
	seq := &ActivitySequencer{
		dayID: dayID,
		day:   day,
		now:   now,
	}
	if len(day.Activities) == 0 {
		seq.done = true
		return seq
	}
	seq.enterContent(day.InitialIndex)
	return seq
}

func (s *ActivitySequencer) enterContent(index int) {
	s.index = index
	s.phase = shared.PhaseContent
	s.hub = nil
	s.timerStart = s.now()
}

func (s *ActivitySequencer) DayID() string { return s.dayID }

func (s *ActivitySequencer) Index() int { return s.index }

func (s *ActivitySequencer) Phase() string { return s.phase }

func (s *ActivitySequencer) Done() bool { return s.done }

func (s *ActivitySequencer) Day() dto.DecoratedDay { return s.day }

func (s *ActivitySequencer) Hub() *MiniGameHub { return s.hub }

func (s *ActivitySequencer) Current() (dto.DecoratedActivity, bool) {
	if s.index < 0 || s.index >= len(s.day.Activities) {
		return dto.DecoratedActivity{}, false
	}
	return s.day.Activities[s.index], true
}

// SelectActivity reopens any unlocked activity at its content phase with
// a fresh timer. Reopening a completed activity never alters the stored
// completion.
func (s *ActivitySequencer) SelectActivity(index int) error {
	if index < 0 || index >= len(s.day.Activities) {
		return shared.NewBadRequestError(nil, "Activity index out of range")
	}
	if !s.day.Activities[index].IsUnlocked {
		return shared.NewForbiddenError(nil, "Activity is locked")
	}
	s.done = false
	s.enterContent(index)
	return nil
}

// BeginMiniGames transitions content → minigame. An empty chain means the
// activity is content-only: it completes immediately and no hub state is
// entered; the caller must then log via CompleteCurrent.
func (s *ActivitySequencer) BeginMiniGames(miniGames []model.MiniGame) (contentOnly bool) {
	if len(miniGames) == 0 {
		return true
	}
	s.hub = NewMiniGameHub(miniGames)
	s.phase = shared.PhaseMiniGame
	return false
}

// AdvanceMiniGame returns true when the chain is exhausted.
func (s *ActivitySequencer) AdvanceMiniGame() bool {
	if s.hub == nil {
		return true
	}
	return s.hub.Advance()
}

func (s *ActivitySequencer) SelectMiniGame(index int) error {
	if s.hub == nil {
		return shared.NewBadRequestError(nil, "No mini-game chain active")
	}
	if err := s.hub.Select(index); err != nil {
		return shared.NewBadRequestError(err, "Invalid mini-game index")
	}
	return nil
}

func (s *ActivitySequencer) elapsedSeconds() int {
	elapsed := s.now().Sub(s.timerStart)
	seconds := int(math.Round(elapsed.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	return seconds
}

// CompleteCurrent records the current activity as completed and advances.
// Recorded time is floored at MinLoggedSeconds. Advancing past the last
// activity finishes the day-visit.
func (s *ActivitySequencer) CompleteCurrent() (activityID string, timeSpent int) {
	current, ok := s.Current()
	if !ok {
		return "", 0
	}

	timeSpent = s.elapsedSeconds()
	if timeSpent < shared.MinLoggedSeconds {
		timeSpent = shared.MinLoggedSeconds
	}

	s.markCompleted(s.index)

	next := s.index + 1
	if next >= len(s.day.Activities) {
		s.done = true
		s.hub = nil
		s.phase = shared.PhaseContent
	} else {
		s.enterContent(next)
	}

	return current.ID, timeSpent
}

// Abandon closes the sequencer mid-activity. The attempt is reported with
// whatever partial time elapsed so it can be logged as not completed;
// already-completed activities being reviewed report ok=false.
func (s *ActivitySequencer) Abandon() (activityID string, timeSpent int, ok bool) {
	current, exists := s.Current()
	if !exists || s.done {
		return "", 0, false
	}
	if current.IsCompleted {
		return "", 0, false
	}
	return current.ID, s.elapsedSeconds(), true
}

// ReplaceDay installs a freshly decorated snapshot after a silent
// progress refresh, keeping the learner's position.
func (s *ActivitySequencer) ReplaceDay(day dto.DecoratedDay) {
	if len(day.Activities) != len(s.day.Activities) {
		// Authored content changed under us; restart from the resume point.
		s.day = day
		if len(day.Activities) == 0 {
			s.done = true
			return
		}
		s.done = false
		s.enterContent(day.InitialIndex)
		return
	}
	s.day = day
}

// markCompleted applies the optimistic local completion and re-derives
// lock state and counters without waiting for the server refresh.
func (s *ActivitySequencer) markCompleted(index int) {
	s.day.Activities[index].IsCompleted = true
	s.day.Activities[index].IsInProgress = false

	completedCount := 0
	allPreviousCompleted := true
	for i := range s.day.Activities {
		item := &s.day.Activities[i]
		item.IsUnlocked = item.IsCompleted || allPreviousCompleted
		item.Status = activityStatus(item.IsCompleted, item.IsInProgress, item.IsUnlocked)
		if item.IsCompleted {
			completedCount++
		} else {
			allPreviousCompleted = false
		}
	}
	s.day.CompletedCount = completedCount
	s.day.ProgressPercent = progressPercent(completedCount, len(s.day.Activities))
}
