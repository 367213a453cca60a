package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one activity event.
type Entry struct {
	TraceID     string
	Type        model.ActivityType
	CharID      int64
	Description string
	Metadata    map[string]interface{}
}

// Sink accepts activity events. Implementations must not block the caller.
type Sink interface {
	Log(entry Entry)
}

// Discard is a Sink that drops every entry.
var Discard Sink = discard{}

type discard struct{}

func (discard) Log(Entry) {}

const (
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Service writes activity entries asynchronously in batches.
type Service struct {
	db     *gorm.DB
	ch     chan *model.ActivityLog
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.ActivityLog, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry. When the queue is full the entry is dropped and a
// warning is logged.
func (svc *Service) Log(entry Entry) {
	var meta datatypes.JSON
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			svc.logger.Warn("activity metadata not serializable",
				zap.String("type", string(entry.Type)), zap.Error(err))
		} else {
			meta = datatypes.JSON(raw)
		}
	}
	record := &model.ActivityLog{
		TraceID:     entry.TraceID,
		Type:        entry.Type,
		CharID:      entry.CharID,
		Description: entry.Description,
		Metadata:    meta,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("activity channel full, dropping entry",
			zap.String("type", string(entry.Type)),
			zap.Int64("char_id", entry.CharID))
	}
}

// Recent returns the newest activity entries for a character.
func (svc *Service) Recent(ctx context.Context, charID int64, limit int) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	err := svc.db.WithContext(ctx).
		Where("char_id = ?", charID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.ActivityLog, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("activity batch write failed",
				zap.Int("size", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
