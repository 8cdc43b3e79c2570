package model

// RankedStatus is the ranked state stored on a beatmap.
type RankedStatus int

const (
	StatusUnranked RankedStatus = 0
	StatusRanked   RankedStatus = 2
	StatusLoved    RankedStatus = 5
)

// Title returns the announcement word for s, or "" for unsupported values.
func (s RankedStatus) Title() string {
	switch s {
	case StatusUnranked:
		return "unranked"
	case StatusRanked:
		return "ranked"
	case StatusLoved:
		return "loved"
	}
	return ""
}

// Beatmap is a single difficulty. Once RankedStatusFrozen is set the
// automated status updater leaves Ranked alone.
type Beatmap struct {
	BeatmapID          int64        `gorm:"column:beatmap_id;primaryKey;autoIncrement:false" json:"beatmap_id"`
	BeatmapsetID       int64        `gorm:"column:beatmapset_id;index;not null" json:"beatmapset_id"`
	BeatmapMD5         string       `gorm:"column:beatmap_md5;size:32;index;not null" json:"beatmap_md5"`
	SongName           string       `gorm:"size:255;not null" json:"song_name"`
	Ranked             RankedStatus `gorm:"not null;default:0" json:"ranked"`
	RankedStatusFrozen bool         `gorm:"column:ranked_status_freezed;not null;default:false" json:"ranked_status_frozen"`
	RankedBy           int64        `gorm:"column:rankedby;not null;default:0" json:"ranked_by"`
	LatestUpdate       int64        `gorm:"not null;default:0" json:"latest_update"`
}

func (Beatmap) TableName() string { return "beatmaps" }

// RankRequestTypeSet marks a request whose BID is a beatmap set id.
const RankRequestTypeSet = "s"

// RankRequest is a player's request to get a map ranked.
type RankRequest struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"column:userid;not null" json:"user_id"`
	BID         int64  `gorm:"column:bid;not null" json:"bid"`
	Type        string `gorm:"size:8;not null" json:"type"`
	Time        int64  `gorm:"not null" json:"time"`
	Blacklisted bool   `gorm:"not null;default:false" json:"blacklisted"`
}

func (RankRequest) TableName() string { return "rank_requests" }

// IsSet reports whether BID refers to a beatmap set.
func (r RankRequest) IsSet() bool { return r.Type == RankRequestTypeSet }
