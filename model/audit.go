package model

import "gorm.io/datatypes"

// RAPLog is one staff action in the admin audit trail. Append-only.
type RAPLog struct {
	ID       int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64          `gorm:"column:userid;index;not null" json:"user_id"`
	Text     string         `gorm:"type:text;not null" json:"text"`
	Datetime int64          `gorm:"index;not null" json:"datetime"`
	Through  string         `gorm:"size:32;not null" json:"through"`
	Meta     datatypes.JSON `json:"meta,omitempty"`
}

func (RAPLog) TableName() string { return "rap_logs" }

// BanLog records a ban-class action against a single target.
type BanLog struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FromID  int64  `gorm:"column:from_id;not null" json:"from_id"`
	ToID    int64  `gorm:"column:to_id;index;not null" json:"to_id"`
	TS      int64  `gorm:"column:ts;not null" json:"ts"`
	Summary string `gorm:"size:64;not null" json:"summary"`
	Detail  string `gorm:"type:text" json:"detail"`
}

func (BanLog) TableName() string { return "ban_logs" }
