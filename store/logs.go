package store

import (
	"context"

	"github.com/kasuganosora/osupanel/model"
)

// AppendRAPLogs inserts a batch of audit entries.
func (s *Store) AppendRAPLogs(ctx context.Context, entries []*model.RAPLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.conn(ctx).CreateInBatches(entries, 100).Error
}

// ListRAPLogs lists audit entries, newest first.
func (s *Store) ListRAPLogs(ctx context.Context, page Page) ([]model.RAPLog, int64, error) {
	q := s.conn(ctx).Model(&model.RAPLog{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []model.RAPLog
	if err := page.apply(q.Order("datetime DESC, id DESC")).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// AppendBanLog inserts one ban log entry.
func (s *Store) AppendBanLog(ctx context.Context, entry *model.BanLog) error {
	return s.conn(ctx).Create(entry).Error
}

// BanLogsFor lists ban log entries targeting userID, newest first.
func (s *Store) BanLogsFor(ctx context.Context, userID int64) ([]model.BanLog, error) {
	var logs []model.BanLog
	err := s.conn(ctx).Where("to_id = ?", userID).Order("ts DESC, id DESC").Find(&logs).Error
	return logs, err
}
