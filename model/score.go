package model

// Variant is a scoring variant tracked with fully parallel statistics.
type Variant int8

const (
	VariantVanilla   Variant = 0
	VariantRelax     Variant = 1
	VariantAutopilot Variant = 2
)

// Variants lists every supported scoring variant.
var Variants = []Variant{VariantVanilla, VariantRelax, VariantAutopilot}

func (v Variant) String() string {
	switch v {
	case VariantVanilla:
		return "vanilla"
	case VariantRelax:
		return "relax"
	case VariantAutopilot:
		return "autopilot"
	}
	return "unknown"
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v >= VariantVanilla && v <= VariantAutopilot
}

// GameMode is an osu! game mode.
type GameMode int8

const (
	ModeStd   GameMode = 0
	ModeTaiko GameMode = 1
	ModeCatch GameMode = 2
	ModeMania GameMode = 3
)

// GameModes lists every game mode.
var GameModes = []GameMode{ModeStd, ModeTaiko, ModeCatch, ModeMania}

func (m GameMode) String() string {
	switch m {
	case ModeStd:
		return "std"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "ctb"
	case ModeMania:
		return "mania"
	}
	return "unknown"
}

// ScoreCompletedBest marks the user's best submitted score on a beatmap.
const ScoreCompletedBest = 3

// UserStats holds the cumulative statistics of one user for one
// (variant, mode) pair. Username is a denormalized copy of users.username.
type UserStats struct {
	ID             int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64    `gorm:"uniqueIndex:idx_stats_user_variant_mode;not null" json:"user_id"`
	Variant        Variant  `gorm:"uniqueIndex:idx_stats_user_variant_mode;not null" json:"variant"`
	Mode           GameMode `gorm:"uniqueIndex:idx_stats_user_variant_mode;not null" json:"mode"`
	Username       string   `gorm:"size:32;not null" json:"username"`
	RankedScore    int64    `gorm:"not null;default:0" json:"ranked_score"`
	TotalScore     int64    `gorm:"not null;default:0" json:"total_score"`
	Playcount      int      `gorm:"not null;default:0" json:"playcount"`
	ReplaysWatched int      `gorm:"not null;default:0" json:"replays_watched"`
	Level          int      `gorm:"not null;default:0" json:"level"`
	Accuracy       float64  `gorm:"not null;default:0" json:"accuracy"`
	PP             int      `gorm:"column:pp;not null;default:0" json:"pp"`
	Playtime       int64    `gorm:"not null;default:0" json:"playtime"`
	TotalHits      int64    `gorm:"not null;default:0" json:"total_hits"`
}

func (UserStats) TableName() string { return "user_stats" }

// Score is a submitted play.
type Score struct {
	ID         int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BeatmapMD5 string   `gorm:"column:beatmap_md5;size:32;index;not null" json:"beatmap_md5"`
	UserID     int64    `gorm:"column:userid;index;not null" json:"user_id"`
	Variant    Variant  `gorm:"not null;default:0" json:"variant"`
	Mode       GameMode `gorm:"column:play_mode;not null;default:0" json:"mode"`
	Score      int64    `gorm:"not null;default:0" json:"score"`
	PP         float64  `gorm:"column:pp;not null;default:0" json:"pp"`
	Completed  int      `gorm:"not null;default:0" json:"completed"`
	Time       int64    `gorm:"not null;default:0" json:"time"`
	Accuracy   float64  `gorm:"not null;default:0" json:"accuracy"`
	MaxCombo   int      `gorm:"not null;default:0" json:"max_combo"`
	Mods       int      `gorm:"not null;default:0" json:"mods"`
}

func (Score) TableName() string { return "scores" }

// BeatmapPlaycount counts a user's plays of a single beatmap.
type BeatmapPlaycount struct {
	ID        int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64    `gorm:"column:user_id;index;not null" json:"user_id"`
	BeatmapID int64    `gorm:"not null" json:"beatmap_id"`
	Variant   Variant  `gorm:"not null;default:0" json:"variant"`
	Mode      GameMode `gorm:"column:game_mode;not null;default:0" json:"mode"`
	Count     int      `gorm:"column:playcount;not null;default:0" json:"count"`
}

func (BeatmapPlaycount) TableName() string { return "users_beatmap_playcount" }

// FirstPlace caches the best eligible score for (beatmap, mode, variant).
type FirstPlace struct {
	ID         int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BeatmapMD5 string   `gorm:"column:beatmap_md5;size:32;uniqueIndex:idx_first_place;not null" json:"beatmap_md5"`
	Mode       GameMode `gorm:"uniqueIndex:idx_first_place;not null" json:"mode"`
	Variant    Variant  `gorm:"uniqueIndex:idx_first_place;not null" json:"variant"`
	UserID     int64    `gorm:"index;not null" json:"user_id"`
	ScoreID    int64    `gorm:"not null" json:"score_id"`
	Score      int64    `gorm:"not null;default:0" json:"score"`
	PP         float64  `gorm:"column:pp;not null;default:0" json:"pp"`
	Timestamp  int64    `gorm:"not null;default:0" json:"timestamp"`
}

func (FirstPlace) TableName() string { return "first_places" }
