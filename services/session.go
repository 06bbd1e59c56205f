package services

import (
	"context"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// progressLogger records a progress write. The journal implementation
// retries failed writes; tests swap in a capture.
type progressLogger interface {
	Log(ctx context.Context, userID, activityID string, timeSpent int, isCompleted bool) error
}

// daySnapshot is one entry of the session's day arena: the decorated
// view of one day, last-write-wins per day id.
type daySnapshot struct {
	dayID     string
	day       dto.DecoratedDay
	fetchedAt time.Time
}

// LearnerSession is the derived state of one learner's roadmap visit:
// an explicit state machine (idle → loadingDay → sequencing/inMiniGame →
// completed) fed by UI events, a pager over the day sequence, and a flat
// arena of day snapshots with an id→index lookup.
type LearnerSession struct {
	mu sync.Mutex

	userID    string
	roadmapID string
	state     string
	pager     *DayPager

	snapshots []daySnapshot
	dayIndex  map[string]int

	currentDayID string
	// fetchSeq tags the in-flight day fetch; a resolution whose tag no
	// longer matches the latest selection is stale and discarded.
	fetchSeq    uint64
	cancelFetch context.CancelFunc

	seq    *ActivitySequencer
	notice string
}

func newLearnerSession(userID, roadmapID string, pager *DayPager) *LearnerSession {
	return &LearnerSession{
		userID:    userID,
		roadmapID: roadmapID,
		state:     shared.SessionIdle,
		pager:     pager,
		dayIndex:  map[string]int{},
	}
}

func (s *LearnerSession) storeSnapshot(dayID string, day dto.DecoratedDay, fetchedAt time.Time) {
	snapshot := daySnapshot{dayID: dayID, day: day, fetchedAt: fetchedAt}
	if i, ok := s.dayIndex[dayID]; ok {
		s.snapshots[i] = snapshot
		return
	}
	s.dayIndex[dayID] = len(s.snapshots)
	s.snapshots = append(s.snapshots, snapshot)
}

// SessionService owns the learner sessions and orchestrates fetches
// against the upstream API on behalf of the state machine.
type SessionService struct {
	appContext.DefaultService

	api    UpstreamClient
	logger progressLogger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*LearnerSession
}

const SESSION_SVC = "session_svc"

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Configure(ctx *appContext.Context) error {
	svc.sessions = map[string]*LearnerSession{}
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *SessionService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.logger = svc.Service(JOURNAL_SVC).(*ProgressJournalService)
	return nil
}

// session returns the learner's session for a roadmap, resetting it when
// the learner moved to a different roadmap.
func (svc *SessionService) session(userID, roadmapID string) *LearnerSession {
	key := userID
	if key == "" {
		key = "preview"
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	sess, ok := svc.sessions[key]
	if !ok || (roadmapID != "" && sess.roadmapID != roadmapID) {
		sess = newLearnerSession(userID, roadmapID, NewDayPager(svc.api, userID, roadmapID))
		svc.sessions[key] = sess
	}
	return sess
}

func (svc *SessionService) existingSession(userID string) (*LearnerSession, bool) {
	key := userID
	if key == "" {
		key = "preview"
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	sess, ok := svc.sessions[key]
	return sess, ok
}

// Days loads one page of the roadmap's day sequence and returns the
// decorated pager state. A failed load keeps the held pages and reports
// a transient notice instead.
func (svc *SessionService) Days(ctx context.Context, userID, roadmapID string, page int) (*dto.DayPageResponse, error) {
	if page < 1 {
		page = 1
	}

	if userID == "" {
		return svc.previewDays(ctx, roadmapID, page)
	}

	sess := svc.session(userID, roadmapID)

	notice := ""
	if _, err := sess.pager.LoadPage(ctx, page); err != nil {
		notice = "Could not load more days"
	}

	days, currentPage, totalCount, hasMore := sess.pager.Snapshot()
	return &dto.DayPageResponse{
		Days:        DecorateDays(days),
		CurrentPage: currentPage,
		TotalCount:  totalCount,
		HasMore:     hasMore,
		Notice:      notice,
	}, nil
}

// previewDays serves the unauthenticated fallback: the day list comes
// from the public roadmap endpoint and carries no progress, so only the
// first day unlocks.
func (svc *SessionService) previewDays(ctx context.Context, roadmapID string, page int) (*dto.DayPageResponse, error) {
	roadmap, err := svc.api.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Roadmap not found")
	}

	end := page * shared.DayPageSize
	if end > len(roadmap.Days) {
		end = len(roadmap.Days)
	}

	return &dto.DayPageResponse{
		Days:        DecorateDays(roadmap.Days[:end]),
		CurrentPage: page,
		TotalCount:  len(roadmap.Days),
		HasMore:     end < len(roadmap.Days),
	}, nil
}

// snapshotTTL bounds how long a held day snapshot may serve a
// re-selection before the day is refetched.
const snapshotTTL = 5 * time.Minute

// SelectDay opens a day. The unlock gate runs first; a fresh arena
// snapshot then serves the selection immediately, otherwise the
// activities+progress fetch starts and the session moves to loadingDay.
// Re-selecting while a fetch is in flight cancels it; its late
// resolution is discarded by the fetch tag check.
func (svc *SessionService) SelectDay(ctx context.Context, userID, roadmapID, dayID string) (*dto.SessionStateResponse, error) {
	sess := svc.session(userID, roadmapID)

	if err := svc.checkDayUnlocked(ctx, sess, userID, roadmapID, dayID); err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.cancelFetch != nil {
		sess.cancelFetch()
		sess.cancelFetch = nil
	}
	sess.fetchSeq++

	// A fresh snapshot from an earlier visit serves the day without a
	// refetch; the silent refresh after each completion keeps it current.
	if i, ok := sess.dayIndex[dayID]; ok && svc.now().Sub(sess.snapshots[i].fetchedAt) < snapshotTTL {
		sess.currentDayID = dayID
		sess.seq = NewActivitySequencer(dayID, sess.snapshots[i].day, svc.now)
		if sess.seq.Done() {
			sess.state = shared.SessionCompleted
		} else {
			sess.state = shared.SessionSequencing
		}
		resp := sess.stateResponseLocked()
		sess.mu.Unlock()
		return resp, nil
	}

	sess.state = shared.SessionLoadingDay
	sess.currentDayID = dayID
	sess.seq = nil
	token := sess.fetchSeq

	fetchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	sess.cancelFetch = cancel
	resp := sess.stateResponseLocked()
	sess.mu.Unlock()

	go svc.resolveDay(fetchCtx, sess, token, userID, dayID)

	return resp, nil
}

// checkDayUnlocked enforces sequential day access before any fetch
// starts. Preview visitors carry no progress, so only the roadmap's
// first day passes; authenticated learners are checked against the
// decorated day listing, loading page 1 when nothing is held yet.
func (svc *SessionService) checkDayUnlocked(ctx context.Context, sess *LearnerSession, userID, roadmapID, dayID string) error {
	if userID == "" {
		roadmap, err := svc.api.GetRoadmap(ctx, roadmapID)
		if err != nil {
			return shared.NewNotFoundError(err, "Roadmap not found")
		}
		for _, day := range DecorateDays(roadmap.Days) {
			if day.ID == dayID {
				if !day.IsUnlocked {
					return shared.NewForbiddenError(nil, "Day is locked")
				}
				return nil
			}
		}
		return shared.NewNotFoundError(nil, "Day not found")
	}

	days, _, _, _ := sess.pager.Snapshot()
	if len(days) == 0 {
		if _, err := sess.pager.LoadPage(ctx, 1); err != nil {
			return shared.NewInternalError(err, "Could not verify day access")
		}
		days, _, _, _ = sess.pager.Snapshot()
	}

	for _, day := range DecorateDays(days) {
		if day.ID == dayID && !day.IsUnlocked {
			return shared.NewForbiddenError(nil, "Day is locked")
		}
	}
	return nil
}

// resolveDay completes a day selection: both fetches, decoration, and
// sequencer start. Anything arriving after a newer selection is dropped.
func (svc *SessionService) resolveDay(ctx context.Context, sess *LearnerSession, token uint64, userID, dayID string) {
	activities, err := svc.api.GetDayActivities(ctx, dayID)

	var records []model.ActivityProgress
	if err == nil && userID != "" {
		records, err = svc.api.GetDayProgress(ctx, userID, dayID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if token != sess.fetchSeq || sess.currentDayID != dayID {
		log.WithField("day_id", dayID).Debug("Discarding stale day fetch")
		staleFetchesDiscardedTotal.Inc()
		return
	}

	if err != nil {
		log.WithError(err).WithField("day_id", dayID).Warn("Day fetch failed")
		sess.state = shared.SessionIdle
		sess.notice = "Could not load the selected day"
		return
	}

	day := DecorateActivities(activities, records)
	sess.storeSnapshot(dayID, day, svc.now())
	sess.seq = NewActivitySequencer(dayID, day, svc.now)
	if sess.seq.Done() {
		sess.state = shared.SessionCompleted
	} else {
		sess.state = shared.SessionSequencing
	}
}

// State reports the current derived session state. The transient notice
// auto-dismisses: it is cleared once read.
func (svc *SessionService) State(userID string) (*dto.SessionStateResponse, error) {
	sess, ok := svc.existingSession(userID)
	if !ok {
		return &dto.SessionStateResponse{State: shared.SessionIdle}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.stateResponseLocked(), nil
}

// Advance drives the learner forward: out of the content phase into the
// activity's mini-game chain, or to the next mini-game; exhausting the
// chain completes the activity.
func (svc *SessionService) Advance(ctx context.Context, userID string) (*dto.SessionStateResponse, error) {
	sess, ok := svc.existingSession(userID)
	if !ok {
		return nil, shared.NewBadRequestError(nil, "No active session")
	}

	sess.mu.Lock()
	if sess.seq == nil || sess.state == shared.SessionLoadingDay {
		sess.mu.Unlock()
		return nil, shared.NewConflictError(nil, "No day is active")
	}
	if sess.seq.Done() {
		sess.mu.Unlock()
		return nil, shared.NewConflictError(nil, "Day already completed")
	}

	if sess.state == shared.SessionInMiniGame {
		defer sess.mu.Unlock()
		if sess.seq.AdvanceMiniGame() {
			svc.completeCurrentLocked(ctx, sess)
		}
		return sess.stateResponseLocked(), nil
	}

	current, exists := sess.seq.Current()
	dayID := sess.seq.DayID()
	index := sess.seq.Index()
	sess.mu.Unlock()

	if !exists {
		return nil, shared.NewConflictError(nil, "No activity is active")
	}

	// Content → mini-game transition; the chain fetch happens outside the
	// session lock and is revalidated after.
	miniGames, err := svc.api.GetMiniGames(ctx, current.ID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.seq == nil || sess.seq.DayID() != dayID || sess.seq.Index() != index {
		return sess.stateResponseLocked(), nil
	}

	if err != nil {
		log.WithError(err).WithField("activity_id", current.ID).Warn("Mini-game fetch failed")
		sess.notice = "Could not load exercises"
		return sess.stateResponseLocked(), nil
	}

	if sess.seq.BeginMiniGames(miniGames) {
		// Content-only activity: completes at once, no hub state.
		svc.completeCurrentLocked(ctx, sess)
	} else {
		sess.state = shared.SessionInMiniGame
	}

	return sess.stateResponseLocked(), nil
}

// SelectActivity reopens an unlocked activity from the decorated list.
func (svc *SessionService) SelectActivity(userID string, index int) (*dto.SessionStateResponse, error) {
	sess, ok := svc.existingSession(userID)
	if !ok {
		return nil, shared.NewBadRequestError(nil, "No active session")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.seq == nil {
		return nil, shared.NewConflictError(nil, "No day is active")
	}
	if err := sess.seq.SelectActivity(index); err != nil {
		return nil, err
	}
	sess.state = shared.SessionSequencing
	return sess.stateResponseLocked(), nil
}

// SelectMiniGame jumps freely inside the current chain.
func (svc *SessionService) SelectMiniGame(userID string, index int) (*dto.SessionStateResponse, error) {
	sess, ok := svc.existingSession(userID)
	if !ok {
		return nil, shared.NewBadRequestError(nil, "No active session")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.seq == nil || sess.state != shared.SessionInMiniGame {
		return nil, shared.NewConflictError(nil, "No mini-game chain active")
	}
	if err := sess.seq.SelectMiniGame(index); err != nil {
		return nil, err
	}
	return sess.stateResponseLocked(), nil
}

// Close abandons the current activity. The attempt is logged as not
// completed with the partial time; it must never be dropped silently.
func (svc *SessionService) Close(ctx context.Context, userID string) (*dto.SessionStateResponse, error) {
	sess, ok := svc.existingSession(userID)
	if !ok {
		return &dto.SessionStateResponse{State: shared.SessionIdle}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.cancelFetch != nil {
		sess.cancelFetch()
		sess.cancelFetch = nil
	}

	if sess.seq != nil {
		if activityID, timeSpent, logIt := sess.seq.Abandon(); logIt {
			svc.logProgress(ctx, sess, activityID, timeSpent, false)
		}
	}

	sess.seq = nil
	sess.currentDayID = ""
	sess.state = shared.SessionIdle
	return sess.stateResponseLocked(), nil
}

// completeCurrentLocked logs the completed activity and advances the
// machine. Callers hold the session lock.
func (svc *SessionService) completeCurrentLocked(ctx context.Context, sess *LearnerSession) {
	activityID, timeSpent := sess.seq.CompleteCurrent()
	if activityID == "" {
		return
	}

	svc.logProgress(ctx, sess, activityID, timeSpent, true)

	if sess.seq.Done() {
		sess.state = shared.SessionCompleted
	} else {
		sess.state = shared.SessionSequencing
	}

	// Silent refresh: bring the arena snapshot up to date in the
	// background; the live sequencer keeps its optimistic view.
	go svc.refreshDay(sess, sess.userID, sess.seq.DayID())
}

// logProgress is optimistic: a failed write surfaces a notice and is
// retried by the journal, the derived state is never rolled back.
func (svc *SessionService) logProgress(ctx context.Context, sess *LearnerSession, activityID string, timeSpent int, isCompleted bool) {
	if sess.userID == "" {
		return
	}
	if err := svc.logger.Log(ctx, sess.userID, activityID, timeSpent, isCompleted); err != nil {
		log.WithError(err).WithField("activity_id", activityID).Warn("Progress log failed")
		sess.notice = "Progress could not be saved, will retry"
	}
}

func (svc *SessionService) refreshDay(sess *LearnerSession, userID, dayID string) {
	if userID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	activities, err := svc.api.GetDayActivities(ctx, dayID)
	if err != nil {
		return
	}
	records, err := svc.api.GetDayProgress(ctx, userID, dayID)
	if err != nil {
		return
	}

	day := DecorateActivities(activities, records)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.storeSnapshot(dayID, day, svc.now())

	// The live sequencer adopts the server view only once it has caught
	// up with the optimistic completions; a lagging read must not roll
	// the learner back.
	if sess.seq != nil && sess.seq.DayID() == dayID && day.CompletedCount >= sess.seq.Day().CompletedCount {
		sess.seq.ReplaceDay(day)
	}
}

func (s *LearnerSession) stateResponseLocked() *dto.SessionStateResponse {
	resp := &dto.SessionStateResponse{
		State:     s.state,
		RoadmapID: s.roadmapID,
		DayID:     s.currentDayID,
		Notice:    s.notice,
	}
	s.notice = ""

	if s.seq == nil {
		return resp
	}

	day := s.seq.Day()
	resp.Activities = day.Activities
	resp.CompletedCount = day.CompletedCount
	resp.ProgressPercent = day.ProgressPercent
	resp.ActivityIndex = s.seq.Index()
	resp.Phase = s.seq.Phase()

	if hub := s.seq.Hub(); hub != nil {
		resp.MiniGameIndex = hub.SelectedIndex()
		for _, game := range hub.Games() {
			resp.MiniGames = append(resp.MiniGames, dto.MiniGameResponse{
				ID:       game.ID,
				Type:     game.Type,
				Prompt:   game.Prompt,
				Resource: game.Resource,
			})
		}
	}

	return resp
}
