package store

import (
	"context"

	"github.com/kasuganosora/osupanel/model"
)

// GetBeatmap fetches a beatmap by id.
func (s *Store) GetBeatmap(ctx context.Context, id int64) (*model.Beatmap, error) {
	var bm model.Beatmap
	if err := s.conn(ctx).First(&bm, "beatmap_id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &bm, nil
}

// BeatmapsInSet lists the difficulties of a set. An unknown set is ErrNotFound.
func (s *Store) BeatmapsInSet(ctx context.Context, setID int64) ([]model.Beatmap, error) {
	var bms []model.Beatmap
	if err := s.conn(ctx).Where("beatmapset_id = ?", setID).
		Order("beatmap_id ASC").Find(&bms).Error; err != nil {
		return nil, err
	}
	if len(bms) == 0 {
		return nil, ErrNotFound
	}
	return bms, nil
}

// SetBeatmapStatus sets the ranked status of the given beatmaps and freezes
// it against the automated updater.
func (s *Store) SetBeatmapStatus(ctx context.Context, ids []int64, status model.RankedStatus, rankedBy, now int64) error {
	if len(ids) == 0 {
		return nil
	}
	res := s.conn(ctx).Model(&model.Beatmap{}).
		Where("beatmap_id IN ?", ids).
		Updates(map[string]interface{}{
			"ranked":                status,
			"ranked_status_freezed": true,
			"rankedby":              rankedBy,
			"latest_update":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Same MySQL unchanged-row case as updateUser.
		var n int64
		if err := s.conn(ctx).Model(&model.Beatmap{}).Where("beatmap_id IN ?", ids).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// ListRankRequests lists pending, non-blacklisted rank requests, newest first.
func (s *Store) ListRankRequests(ctx context.Context, page Page) ([]model.RankRequest, int64, error) {
	q := s.conn(ctx).Model(&model.RankRequest{}).Where("blacklisted = ?", false)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reqs []model.RankRequest
	if err := page.apply(q.Order("time DESC")).Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// DeleteRankRequest removes one rank request.
func (s *Store) DeleteRankRequest(ctx context.Context, id int64) error {
	res := s.conn(ctx).Delete(&model.RankRequest{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
