package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&User{},
	&IPUser{},
	&HWIDUser{},
	&UserStats{},
	&Score{},
	&BeatmapPlaycount{},
	&FirstPlace{},
	&Beatmap{},
	&RankRequest{},
	&Badge{},
	&UserBadge{},
	&Clan{},
	&ClanMember{},
	&PrivilegeGroup{},
	&RAPLog{},
	&BanLog{},
}

// AutoMigrate creates or updates all tables in the given database.
// Production runs against the schema owned by the game server; this is used
// for development databases and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
