// Package audit records staff actions in the RAP log and ban-class actions
// in the ban log. RAP log writes are batched off the request path; audit
// failures never undo the action being audited.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry is one staff action to be logged.
type Entry struct {
	ActorID int64
	Text    string
	// Meta is stored as JSON next to the text. Optional.
	Meta interface{}
}

// BanEntry is one ban-class action.
type BanEntry struct {
	ActorID  int64
	TargetID int64
	Summary  string
	Detail   string
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	store  *store.Store
	via    string
	now    func() time.Time
	ch     chan *model.RAPLog
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates an audit Service and starts its background worker. via is
// written to every RAP log row as the source of the action.
func New(s *store.Store, via string, logger *zap.Logger) *Service {
	svc := &Service{
		store:  s,
		via:    via,
		now:    time.Now,
		ch:     make(chan *model.RAPLog, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry for async DB write.
func (svc *Service) Log(entry Entry) {
	record := &model.RAPLog{
		UserID:   entry.ActorID,
		Text:     entry.Text,
		Datetime: svc.now().Unix(),
		Through:  svc.via,
	}
	if entry.Meta != nil {
		meta, err := json.Marshal(entry.Meta)
		if err != nil {
			svc.logger.Error("audit meta marshal failed", zap.Error(err))
		} else {
			record.Meta = datatypes.JSON(meta)
		}
	}
	select {
	case <-svc.stopCh:
		svc.logger.Error("audit entry after stop, dropping",
			zap.Int64("actor_id", entry.ActorID), zap.String("text", entry.Text))
		return
	default:
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Error("audit queue full, dropping entry",
			zap.Int64("actor_id", entry.ActorID), zap.String("text", entry.Text))
	}
}

// LogBan writes a ban log entry synchronously.
func (svc *Service) LogBan(ctx context.Context, entry BanEntry) {
	err := svc.store.AppendBanLog(ctx, &model.BanLog{
		FromID:  entry.ActorID,
		ToID:    entry.TargetID,
		TS:      svc.now().Unix(),
		Summary: entry.Summary,
		Detail:  entry.Detail,
	})
	if err != nil {
		svc.logger.Error("ban log write failed",
			zap.Int64("target_id", entry.TargetID), zap.String("summary", entry.Summary), zap.Error(err))
	}
}

// List returns one page of the RAP log, newest first.
func (svc *Service) List(ctx context.Context, page store.Page) ([]model.RAPLog, int64, error) {
	return svc.store.ListRAPLogs(ctx, page)
}

// BansFor returns the ban log of one target, newest first.
func (svc *Service) BansFor(ctx context.Context, userID int64) ([]model.BanLog, error) {
	return svc.store.BanLogsFor(ctx, userID)
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.RAPLog, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.store.AppendRAPLogs(context.Background(), batch); err != nil {
			svc.logger.Error("audit batch write failed", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = make([]*model.RAPLog, 0, batchSize)
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
