package model

// ClanPermsOwner is the membership permission value held by a clan owner.
const ClanPermsOwner = 8

// Clan is a player clan.
type Clan struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:64;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:255" json:"icon"`
	Tag         string `gorm:"size:8" json:"tag"`
	MLimit      int    `gorm:"column:mlimit;not null;default:16" json:"member_limit"`
}

func (Clan) TableName() string { return "clans" }

// ClanMember links a user to a clan.
type ClanMember struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"column:user;index;not null" json:"user_id"`
	ClanID int64 `gorm:"column:clan;index;not null" json:"clan_id"`
	Perms  int   `gorm:"not null;default:1" json:"perms"`
}

func (ClanMember) TableName() string { return "user_clans" }

// IsOwner reports whether the member owns the clan.
func (m ClanMember) IsOwner() bool { return m.Perms == ClanPermsOwner }
