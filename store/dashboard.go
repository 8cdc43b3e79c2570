package store

import (
	"context"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"gorm.io/gorm"
)

// Counts are the totals shown on the dashboard.
type Counts struct {
	Users          int64 `json:"users"`
	Restricted     int64 `json:"restricted"`
	Banned         int64 `json:"banned"`
	Supporters     int64 `json:"supporters"`
	Scores         int64 `json:"scores"`
	RankedBeatmaps int64 `json:"ranked_beatmaps"`
	RankRequests   int64 `json:"rank_requests"`
}

// DashboardCounts gathers every dashboard total.
func (s *Store) DashboardCounts(ctx context.Context) (Counts, error) {
	var c Counts
	users := func() *gorm.DB { return s.conn(ctx).Model(&model.User{}) }
	queries := []struct {
		q   *gorm.DB
		dst *int64
	}{
		{users(), &c.Users},
		{users().Where("(privileges & ?) = 0 AND privileges <> 0", privilege.UserPublic), &c.Restricted},
		{users().Where("privileges = 0"), &c.Banned},
		{users().Where("(privileges & ?) = ?", privilege.UserDonor, privilege.UserDonor), &c.Supporters},
		{s.conn(ctx).Model(&model.Score{}), &c.Scores},
		{s.conn(ctx).Model(&model.Beatmap{}).Where("ranked = ?", model.StatusRanked), &c.RankedBeatmaps},
		{s.conn(ctx).Model(&model.RankRequest{}).Where("blacklisted = ?", false), &c.RankRequests},
	}
	for _, q := range queries {
		if err := q.q.Count(q.dst).Error; err != nil {
			return c, err
		}
	}
	return c, nil
}
