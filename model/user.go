package model

import "github.com/kasuganosora/osupanel/privilege"

// User is a player or staff account on the shared game store.
// Privileges is the raw wire-compatible bitmask read by Bancho.
type User struct {
	ID                      int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	Username                string               `gorm:"size:32;not null" json:"username"`
	UsernameSafe            string               `gorm:"uniqueIndex;size:32;not null" json:"username_safe"`
	Email                   string               `gorm:"size:254" json:"email"`
	PasswordMD5             string               `gorm:"column:password_md5;size:127;not null" json:"-"`
	Privileges              privilege.Privileges `gorm:"not null" json:"privileges"`
	BanDatetime             int64                `gorm:"not null;default:0" json:"ban_datetime"`
	BanReason               string               `gorm:"size:255" json:"ban_reason"`
	DonorExpire             int64                `gorm:"not null;default:0" json:"donor_expire"`
	Frozen                  bool                 `gorm:"not null;default:false" json:"frozen"`
	FreezeExpire            int64                `gorm:"column:freezedate;not null;default:0" json:"freeze_expire"`
	FirstLoginAfterUnfreeze bool                 `gorm:"column:firstloginafterfrozen;not null;default:false" json:"first_login_after_unfreeze"`
	SilenceEnd              int64                `gorm:"not null;default:0" json:"silence_end"`
	SilenceReason           string               `gorm:"size:127" json:"silence_reason"`
	Notes                   string               `gorm:"type:text" json:"notes"`
	Country                 string               `gorm:"size:2;not null;default:XX" json:"country"`
	UserpageContent         string               `gorm:"type:text" json:"userpage_content"`
	RegisterDatetime        int64                `gorm:"not null;default:0" json:"register_datetime"`
	LatestActivity          int64                `gorm:"not null;default:0" json:"latest_activity"`
	BypassHWID              bool                 `gorm:"column:bypass_hwid;not null;default:false" json:"bypass_hwid"`
	CanCustomBadge          bool                 `gorm:"not null;default:false" json:"can_custom_badge"`
	ShowCustomBadge         bool                 `gorm:"not null;default:false" json:"show_custom_badge"`
	CustomBadgeName         string               `gorm:"size:32" json:"custom_badge_name"`
	CustomBadgeIcon         string               `gorm:"size:32" json:"custom_badge_icon"`
}

func (User) TableName() string { return "users" }

// IPUser is one row of a user's IP history.
type IPUser struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"column:userid;index;not null" json:"user_id"`
	IP          string `gorm:"size:45;not null" json:"ip"`
	Occurrences int    `gorm:"column:occurencies;not null;default:1" json:"occurrences"`
}

func (IPUser) TableName() string { return "ip_user" }

// HWIDUser is one client hardware fingerprint reported for a user.
type HWIDUser struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"column:userid;index;not null" json:"user_id"`
	MAC         string `gorm:"column:mac;size:32" json:"mac"`
	UniqueID    string `gorm:"column:unique_id;size:32" json:"unique_id"`
	DiskID      string `gorm:"column:disk_id;size:32" json:"disk_id"`
	Occurrences int    `gorm:"column:occurencies;not null;default:1" json:"occurrences"`
	Activated   bool   `gorm:"not null;default:false" json:"activated"`
}

func (HWIDUser) TableName() string { return "hw_user" }
