package services

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// DayPager incrementally loads one roadmap's day sequence for one user.
// Page 1 replaces the held list, later pages append. A load while one is
// already in flight, or past the last page, is a no-op so scroll-triggered
// loaders firing twice cannot duplicate a fetch.
type DayPager struct {
	api       UpstreamClient
	userID    string
	roadmapID string

	mu          sync.Mutex
	days        []model.Day
	currentPage int
	totalCount  int
	inFlight    bool
}

func NewDayPager(api UpstreamClient, userID, roadmapID string) *DayPager {
	return &DayPager{
		api:       api,
		userID:    userID,
		roadmapID: roadmapID,
	}
}

// LoadPage fetches one page. Returns true when a fetch actually ran.
// A failed fetch leaves the held pages and hasMore untouched.
func (p *DayPager) LoadPage(ctx context.Context, page int) (bool, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return false, nil
	}
	if page > 1 && !p.hasMoreLocked() {
		p.mu.Unlock()
		return false, nil
	}
	p.inFlight = true
	p.mu.Unlock()

	dayPage, err := p.api.GetDays(ctx, p.userID, p.roadmapID, page, shared.DayPageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	if err != nil {
		log.WithError(err).WithField("page", page).Warn("Day page load failed")
		return true, err
	}

	if page == 1 {
		p.days = dayPage.Days
	} else {
		p.days = append(p.days, dayPage.Days...)
	}
	p.currentPage = page
	p.totalCount = dayPage.Total

	return true, nil
}

func (p *DayPager) hasMoreLocked() bool {
	return p.currentPage*shared.DayPageSize < p.totalCount
}

func (p *DayPager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMoreLocked()
}

// Snapshot returns the held days plus pager counters.
func (p *DayPager) Snapshot() ([]model.Day, int, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	days := make([]model.Day, len(p.days))
	copy(days, p.days)
	return days, p.currentPage, p.totalCount, p.hasMoreLocked()
}
