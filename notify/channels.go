package notify

// Redis channels consumed by Bancho, the score server and the clan cache.
const (
	ChanDisconnect     = "peppy:disconnect"
	ChanBan            = "peppy:ban"
	ChanRefreshPrivs   = "peppy:refresh_privs"
	ChanChangeUsername = "peppy:change_username"
	ChanChangePassword = "peppy:change_pass"
	ChanClanCache      = "rosu:clan_cache"
	ChanBeatmapUpdate  = "lets:beatmap_updates"
)

// Channels lists every channel the publisher writes to.
func Channels() []string {
	return []string{
		ChanDisconnect, ChanBan, ChanRefreshPrivs, ChanChangeUsername,
		ChanChangePassword, ChanClanCache, ChanBeatmapUpdate,
	}
}

type disconnectMsg struct {
	UserID int64  `json:"userID"`
	Reason string `json:"reason"`
}

type userIDMsg struct {
	UserID int64 `json:"user_id"`
}

type changeUsernameMsg struct {
	UserID      int64  `json:"userID"`
	NewUsername string `json:"newUsername"`
}
