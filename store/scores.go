package store

import (
	"context"
	"errors"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"gorm.io/gorm"
)

// WipeStats zeroes every cumulative statistic of the user for the given
// variants and hard-deletes their scores and beatmap playcounts.
func (s *Store) WipeStats(ctx context.Context, userID int64, variants []model.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.UserStats{}).
			Where("user_id = ? AND variant IN ?", userID, variants).
			Updates(map[string]interface{}{
				"ranked_score":    0,
				"total_score":     0,
				"playcount":       0,
				"replays_watched": 0,
				"level":           0,
				"accuracy":        0,
				"pp":              0,
				"playtime":        0,
				"total_hits":      0,
			}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("userid = ? AND variant IN ?", userID, variants).
			Delete(&model.Score{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND variant IN ?", userID, variants).
			Delete(&model.BeatmapPlaycount{}).Error
	})
}

// UserStats lists the stats rows of a user ordered by variant then mode.
func (s *Store) UserStats(ctx context.Context, userID int64) ([]model.UserStats, error) {
	var rows []model.UserStats
	err := s.conn(ctx).Where("user_id = ?", userID).
		Order("variant ASC, mode ASC").Find(&rows).Error
	return rows, err
}

// FirstPlacesHeldBy lists every first place currently held by the user.
func (s *Store) FirstPlacesHeldBy(ctx context.Context, userID int64) ([]model.FirstPlace, error) {
	var fps []model.FirstPlace
	err := s.conn(ctx).Where("user_id = ?", userID).Find(&fps).Error
	return fps, err
}

// BestEligibleScore finds the top completed score on a beatmap whose owner
// is publicly visible. Vanilla ranks by score, the assist variants by pp.
func (s *Store) BestEligibleScore(ctx context.Context, md5 string, mode model.GameMode, variant model.Variant) (*model.Score, error) {
	order := "scores.score DESC, scores.time ASC"
	if variant != model.VariantVanilla {
		order = "scores.pp DESC, scores.time ASC"
	}
	var sc model.Score
	err := s.conn(ctx).
		Select("scores.*").
		Joins("JOIN users ON users.id = scores.userid").
		Where("scores.beatmap_md5 = ? AND scores.play_mode = ? AND scores.variant = ? AND scores.completed = ?",
			md5, mode, variant, model.ScoreCompletedBest).
		Where("(users.privileges & ?) = ?", privilege.UserPublic, privilege.UserPublic).
		Order(order).
		Take(&sc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sc, nil
}

// RecalculateFirstPlace replaces the cached first place of one
// (beatmap, mode, variant) key with the current best eligible score. It
// returns nil when no eligible score remains.
func (s *Store) RecalculateFirstPlace(ctx context.Context, md5 string, mode model.GameMode, variant model.Variant) (*model.FirstPlace, error) {
	var out *model.FirstPlace
	err := s.Tx(ctx, func(tx *Store) error {
		if err := tx.conn(ctx).
			Where("beatmap_md5 = ? AND mode = ? AND variant = ?", md5, mode, variant).
			Delete(&model.FirstPlace{}).Error; err != nil {
			return err
		}
		best, err := tx.BestEligibleScore(ctx, md5, mode, variant)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		fp := &model.FirstPlace{
			BeatmapMD5: md5,
			Mode:       mode,
			Variant:    variant,
			UserID:     best.UserID,
			ScoreID:    best.ID,
			Score:      best.Score,
			PP:         best.PP,
			Timestamp:  best.Time,
		}
		if err := tx.conn(ctx).Create(fp).Error; err != nil {
			return err
		}
		out = fp
		return nil
	})
	return out, err
}
