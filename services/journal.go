package services

import (
	"context"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fluentpath/roadmap_client/model"
)

// ProgressJournalService writes activity progress to the upstream API
// through a local journal. Every write is journaled first; entries that
// fail the upstream PUT stay pending and are retried in the background.
type ProgressJournalService struct {
	appContext.DefaultService

	api    UpstreamClient
	sqlSvc *SqliteService
	db     *gorm.DB

	retryInterval time.Duration
	stop          chan struct{}
}

const JOURNAL_SVC = "journal_svc"

func (svc ProgressJournalService) Id() string {
	return JOURNAL_SVC
}

func (svc *ProgressJournalService) Configure(ctx *appContext.Context) error {
	svc.retryInterval = 30 * time.Second
	if raw := os.Getenv("PROGRESS_RETRY_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			svc.retryInterval = d
		}
	}
	svc.stop = make(chan struct{})
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressJournalService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.db = svc.sqlSvc.Db()

	go svc.retryLoop()
	return nil
}

func (svc *ProgressJournalService) Shutdown() {
	close(svc.stop)
}

// Log journals the write and attempts the upstream PUT. The entry is
// persisted before the attempt, so returning an error means "will
// retry", never "lost".
func (svc *ProgressJournalService) Log(ctx context.Context, userID, activityID string, timeSpent int, isCompleted bool) error {
	entry := &model.ProgressLogEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		ActivityID:  activityID,
		TimeSpent:   timeSpent,
		IsCompleted: isCompleted,
		Status:      model.JournalPending,
	}

	if err := svc.dbError(svc.db.Create(entry).Error); err != nil {
		log.WithError(err).Error("Failed to journal progress entry")
		// Journal down; still try the write directly.
		return svc.api.LogActivityProgress(ctx, userID, activityID, timeSpent, isCompleted)
	}

	return svc.send(ctx, entry)
}

func (svc *ProgressJournalService) send(ctx context.Context, entry *model.ProgressLogEntry) error {
	err := svc.api.LogActivityProgress(ctx, entry.UserID, entry.ActivityID, entry.TimeSpent, entry.IsCompleted)

	updates := map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
	}
	if err != nil {
		updates["last_error"] = err.Error()
	} else {
		updates["status"] = model.JournalSent
		updates["last_error"] = ""
	}

	if dbErr := svc.db.Model(&model.ProgressLogEntry{}).Where("id = ?", entry.ID).Updates(updates).Error; dbErr != nil {
		log.WithError(dbErr).WithField("entry_id", entry.ID).Error("Failed to update journal entry")
	}

	return err
}

// FlushPending retries the oldest pending entries once. Returns how many
// were delivered.
func (svc *ProgressJournalService) FlushPending(ctx context.Context, limit int) (int, error) {
	var pending []model.ProgressLogEntry
	err := svc.db.Where("status = ?", model.JournalPending).
		Order("created_at asc").
		Limit(limit).
		Find(&pending).Error
	if err != nil {
		return 0, svc.dbError(err)
	}

	delivered := 0
	for i := range pending {
		if err := svc.send(ctx, &pending[i]); err != nil {
			log.WithError(err).WithField("entry_id", pending[i].ID).Debug("Journal retry failed")
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (svc *ProgressJournalService) dbError(err error) error {
	if err == nil || svc.sqlSvc == nil {
		return err
	}
	return svc.sqlSvc.HandleError(err)
}

func (svc *ProgressJournalService) retryLoop() {
	ticker := time.NewTicker(svc.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-svc.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := svc.FlushPending(ctx, 25); err != nil {
				log.WithError(err).Warn("Journal flush failed")
			} else if n > 0 {
				log.WithField("delivered", n).Info("Flushed pending progress entries")
			}
			cancel()

			var pending int64
			if err := svc.db.Model(&model.ProgressLogEntry{}).Where("status = ?", model.JournalPending).Count(&pending).Error; err == nil {
				progressJournalPending.Set(float64(pending))
			}
		}
	}
}
