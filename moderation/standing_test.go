package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/notify"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const staffMask = privilege.DefaultUnbanned | privilege.AdminAccessRAP | privilege.AdminBanUsers

func TestRestrictScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Target", privilege.DefaultUnbanned)
	for _, key := range leaderboard.Keys("JP") {
		require.NoError(t, h.cache.ZAdd(ctx, key, 500, "42"))
	}

	restricted, err := h.svc.RestrictToggle(ctx, 1, 42, "", "cheating")
	require.NoError(t, err)
	assert.True(t, restricted)

	u := h.reload(42)
	assert.Equal(t, privilege.Privileges(2), u.Privileges)
	assert.Greater(t, u.BanDatetime, int64(0))
	assert.Equal(t, "cheating", u.BanReason)
	assert.Equal(t, privilege.Restricted, u.Privileges.Standing())

	for _, key := range leaderboard.Keys("JP") {
		members, err := h.cache.ZRevRange(ctx, key, 0, -1)
		require.NoError(t, err)
		assert.NotContains(t, members, "42", key)
	}

	msgs := h.published()
	disc := onChannel(msgs, notify.ChanDisconnect)
	require.Len(t, disc, 1)
	assert.Contains(t, disc[0], `"userID":42`)
	assert.Equal(t, []string{"42"}, onChannel(msgs, notify.ChanBan))

	chat := h.http.byPath(chatPath)
	require.Len(t, chat, 1)
	assert.Equal(t, "Target", chat[0].Query["to"])

	logs := h.rapLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, int64(1), logs[0].UserID)
	assert.Contains(t, logs[0].Text, "restricted")
	assert.Contains(t, logs[0].Text, "42")

	bans := h.banLogs(42)
	require.Len(t, bans, 1)
	assert.Equal(t, "restrict", bans[0].Summary)
}

func TestRestrictRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Target", privilege.DefaultUnbanned)
	require.NoError(t, h.store.AppendNotes(ctx, 42, "old note"))

	restricted, err := h.svc.RestrictToggle(ctx, 1, 42, "multiaccount", "")
	require.NoError(t, err)
	require.True(t, restricted)
	assert.Equal(t, "old note\nmultiaccount", h.reload(42).Notes)

	restricted, err = h.svc.RestrictToggle(ctx, 1, 42, "ignored", "ignored")
	require.NoError(t, err)
	assert.False(t, restricted)

	u := h.reload(42)
	assert.True(t, u.Privileges.Has(privilege.UserPublic))
	assert.Equal(t, int64(0), u.BanDatetime)
	assert.Equal(t, privilege.DefaultUnbanned, u.Privileges)
	assert.Equal(t, "old note\nmultiaccount", u.Notes)
}

func TestRestrictRecalculatesFirstPlaces(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Cheater", privilege.DefaultUnbanned)
	h.user(43, "Legit", privilege.DefaultUnbanned)
	top := &model.Score{UserID: 42, BeatmapMD5: "abc", Score: 1000, Completed: model.ScoreCompletedBest}
	next := &model.Score{UserID: 43, BeatmapMD5: "abc", Score: 900, Completed: model.ScoreCompletedBest}
	require.NoError(t, h.db.Create(top).Error)
	require.NoError(t, h.db.Create(next).Error)
	require.NoError(t, h.db.Create(&model.FirstPlace{BeatmapMD5: "abc", UserID: 42, ScoreID: top.ID}).Error)

	_, err := h.svc.RestrictToggle(ctx, 1, 42, "", "")
	require.NoError(t, err)

	var fp model.FirstPlace
	require.NoError(t, h.db.Where("beatmap_md5 = ?", "abc").First(&fp).Error)
	assert.Equal(t, int64(43), fp.UserID)
	assert.Equal(t, next.ID, fp.ScoreID)

	// Lifting the restriction does not give the first place back.
	_, err = h.svc.RestrictToggle(ctx, 1, 42, "", "")
	require.NoError(t, err)
	require.NoError(t, h.db.Where("beatmap_md5 = ?", "abc").First(&fp).Error)
	assert.Equal(t, int64(43), fp.UserID)
}

func TestRestrictBannedRejected(t *testing.T) {
	h := newHarness(t)
	h.user(42, "Banned", privilege.None)
	_, err := h.svc.RestrictToggle(context.Background(), 1, 42, "", "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestBanToggle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Mod", privilege.DefaultUnbanned|privilege.AdminSilenceUsers)

	banned, err := h.svc.BanToggle(ctx, 1, 42, "rage")
	require.NoError(t, err)
	assert.True(t, banned)
	u := h.reload(42)
	assert.Equal(t, privilege.None, u.Privileges)
	assert.Greater(t, u.BanDatetime, int64(0))
	assert.Equal(t, privilege.Banned, u.Privileges.Standing())

	banned, err = h.svc.BanToggle(ctx, 1, 42, "")
	require.NoError(t, err)
	assert.False(t, banned)
	u = h.reload(42)
	assert.Equal(t, privilege.Privileges(3), u.Privileges)
	assert.Equal(t, int64(0), u.BanDatetime)

	msgs := h.published()
	assert.Len(t, onChannel(msgs, notify.ChanDisconnect), 1)
	assert.Equal(t, []string{"42", "42"}, onChannel(msgs, notify.ChanBan))

	logs := h.rapLogs()
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0].Text, "has banned")
	assert.Contains(t, logs[1].Text, "has unbanned")
	assert.Len(t, h.banLogs(42), 2)
}

func TestBanMissingUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.BanToggle(context.Background(), 1, 404, "")
	assert.Error(t, err)
}

func TestFreezeToggle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Suspect", privilege.DefaultUnbanned)

	frozen, err := h.svc.FreezeToggle(ctx, 1, 42)
	require.NoError(t, err)
	assert.True(t, frozen)
	u := h.reload(42)
	assert.True(t, u.Frozen)
	assert.Equal(t, fixedNow.Unix()+5*86400, u.FreezeExpire)
	assert.False(t, u.FirstLoginAfterUnfreeze)

	chat := h.http.byPath(chatPath)
	require.Len(t, chat, 1)
	assert.Equal(t, "Suspect", chat[0].Query["to"])
	assert.Contains(t, chat[0].Query["msg"], "frozen")

	frozen, err = h.svc.FreezeToggle(ctx, 1, 42)
	require.NoError(t, err)
	assert.False(t, frozen)
	u = h.reload(42)
	assert.False(t, u.Frozen)
	assert.Equal(t, int64(0), u.FreezeExpire)
	assert.True(t, u.FirstLoginAfterUnfreeze)
}

func TestSilence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(42, "Loud", privilege.DefaultUnbanned)

	require.NoError(t, h.svc.Silence(ctx, 1, 42, 600, "spam"))
	u := h.reload(42)
	assert.Equal(t, fixedNow.Unix()+600, u.SilenceEnd)
	assert.Equal(t, "spam", u.SilenceReason)

	require.NoError(t, h.svc.Silence(ctx, 1, 42, 0, ""))
	assert.Equal(t, int64(0), h.reload(42).SilenceEnd)

	var verr *ValidationError
	assert.True(t, errors.As(h.svc.Silence(ctx, 1, 42, -1, "x"), &verr))
	assert.True(t, errors.As(h.svc.Silence(ctx, 1, 42, 60, ""), &verr))
	assert.Equal(t, "reason", verr.Field)
}

func TestKickUser(t *testing.T) {
	h := newHarness(t)
	h.user(42, "Afk", privilege.DefaultUnbanned)

	require.NoError(t, h.svc.KickUser(context.Background(), 1, 42, ""))
	disc := onChannel(h.published(), notify.ChanDisconnect)
	require.Len(t, disc, 1)
	assert.Contains(t, disc[0], "kicked")
}

func TestRestrictPublicOnlyMaskStaysRestricted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Target", privilege.UserPublic)

	restricted, err := h.svc.RestrictToggle(ctx, 1, 42, "", "")
	require.NoError(t, err)
	require.True(t, restricted)

	u := h.reload(42)
	assert.Equal(t, privilege.UserNormal, u.Privileges)
	assert.Equal(t, privilege.Restricted, u.Privileges.Standing())

	restricted, err = h.svc.RestrictToggle(ctx, 1, 42, "", "")
	require.NoError(t, err)
	assert.False(t, restricted)
	assert.Equal(t, privilege.Active, h.reload(42).Privileges.Standing())
}

func TestUnrestrictRestoresLeaderboards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Target", privilege.DefaultUnbanned)
	require.NoError(t, h.db.Create(&model.UserStats{
		UserID: 42, Variant: model.VariantVanilla, Mode: model.ModeStd, Username: "Target", PP: 500,
	}).Error)
	key := leaderboard.Key(model.VariantVanilla, model.ModeStd, "JP")
	require.NoError(t, h.cache.ZAdd(ctx, key, 500, "42"))

	_, err := h.svc.RestrictToggle(ctx, 1, 42, "", "")
	require.NoError(t, err)
	_, err = h.cache.ZScore(ctx, key, "42")
	require.Error(t, err)

	_, err = h.svc.RestrictToggle(ctx, 1, 42, "", "")
	require.NoError(t, err)
	score, err := h.cache.ZScore(ctx, key, "42")
	require.NoError(t, err)
	assert.Equal(t, float64(500), score)
}

func TestBanClassActionsPostAdminWebhook(t *testing.T) {
	actions := map[string]func(h *harness) error{
		"restrict": func(h *harness) error {
			_, err := h.svc.RestrictToggle(context.Background(), 1, 42, "", "cheating")
			return err
		},
		"ban": func(h *harness) error {
			_, err := h.svc.BanToggle(context.Background(), 1, 42, "cheating")
			return err
		},
		"freeze": func(h *harness) error {
			_, err := h.svc.FreezeToggle(context.Background(), 1, 42)
			return err
		},
		"wipe": func(h *harness) error {
			return h.svc.WipeAll(context.Background(), 1, 42)
		},
		"delete": func(h *harness) error {
			return h.svc.DeleteUser(context.Background(), 1, 42)
		},
	}
	for summary, act := range actions {
		t.Run(summary, func(t *testing.T) {
			h := newHarness(t)
			h.user(1, "Admin", staffMask)
			h.user(42, "Target", privilege.DefaultUnbanned)

			require.NoError(t, act(h))

			hooks := h.http.byPath(adminHookPath)
			require.Len(t, hooks, 1)
			assert.Equal(t, "POST", hooks[0].Method)
			assert.Contains(t, hooks[0].Body, `"title":"`+summary+`: Target"`)
			assert.Contains(t, hooks[0].Body, `"name":"Admin"`)
			assert.Empty(t, h.http.byPath(hookPath))
		})
	}
}

type downPubSub struct{}

var errBusDown = errors.New("redis: connection refused")

func (downPubSub) Publish(context.Context, string, string) error { return errBusDown }

func (downPubSub) Subscribe(context.Context, ...string) (<-chan *cache.Message, func(), error) {
	return nil, nil, errBusDown
}

func TestActionsSurviveSideEffectFailures(t *testing.T) {
	h := newHarnessWith(t, downPubSub{})
	ctx := context.Background()
	h.user(1, "Admin", staffMask)
	h.user(42, "Target", privilege.DefaultUnbanned)

	restricted, err := h.svc.RestrictToggle(ctx, 1, 42, "", "cheating")
	require.NoError(t, err)
	assert.True(t, restricted)
	assert.Equal(t, privilege.UserNormal, h.reload(42).Privileges)
	assert.Len(t, h.banLogs(42), 1)

	// Audit tables gone: the committed change still stands.
	require.NoError(t, h.db.Migrator().DropTable(&model.RAPLog{}, &model.BanLog{}))
	banned, err := h.svc.BanToggle(ctx, 1, 42, "cheating")
	require.NoError(t, err)
	assert.True(t, banned)
	assert.Equal(t, privilege.None, h.reload(42).Privileges)
}
