package model

import "github.com/kasuganosora/osupanel/privilege"

// PrivilegeGroup names a privilege mask for display. Users store the raw
// mask, not a reference to the group.
type PrivilegeGroup struct {
	ID         int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string               `gorm:"size:32;not null" json:"name"`
	Privileges privilege.Privileges `gorm:"not null;index" json:"privileges"`
	Color      string               `gorm:"size:32" json:"color"`
}

func (PrivilegeGroup) TableName() string { return "privileges_groups" }
