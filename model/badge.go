package model

// BadgeSlots is the number of badge slots shown on a profile.
const BadgeSlots = 6

// Badge is a profile badge.
type Badge struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:64;not null" json:"name"`
	Icon string `gorm:"size:64;not null" json:"icon"`
}

func (Badge) TableName() string { return "badges" }

// UserBadge assigns a badge to a user at a profile slot.
type UserBadge struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64 `gorm:"column:user;index;not null" json:"user_id"`
	BadgeID int64 `gorm:"column:badge;not null" json:"badge_id"`
	Slot    int   `gorm:"not null;default:0" json:"slot"`
}

func (UserBadge) TableName() string { return "user_badges" }
