package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// RestrictToggle restricts an active account or lifts the restriction of a
// restricted one. It reports whether the account is now restricted.
func (svc *Service) RestrictToggle(ctx context.Context, actorID, userID int64, note, reason string) (bool, error) {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.Privileges.Banned() {
		return false, invalid("user", "account is banned")
	}
	now := svc.now().Unix()

	if !u.Privileges.Has(privilege.UserPublic) {
		mask := u.Privileges.Set(privilege.UserPublic)
		if err := svc.store.SetStanding(ctx, userID, mask, 0); err != nil {
			return true, err
		}
		svc.restoreBoards(ctx, u)
		svc.notify.BanStatusChanged(ctx, userID)
		svc.record(actorID, fmt.Sprintf("has unrestricted %s", describe(u)),
			map[string]interface{}{"target_id": userID})
		svc.recordBan(ctx, actorID, u, "unrestrict", "")
		return false, nil
	}

	// Snapshot before the mask changes: recalculation skips restricted users.
	held := svc.heldFirstPlaces(ctx, userID)
	mask := u.Privileges.Clear(privilege.UserPublic)
	if mask == privilege.None {
		// A zero mask reads as banned; keep the account restricted instead.
		mask = privilege.UserNormal
	}
	err = svc.store.Tx(ctx, func(tx *store.Store) error {
		if err := tx.SetStanding(ctx, userID, mask, now); err != nil {
			return err
		}
		if reason != "" {
			if err := tx.SetBanReason(ctx, userID, reason); err != nil {
				return err
			}
		}
		return tx.AppendNotes(ctx, userID, note)
	})
	if err != nil {
		return false, err
	}

	svc.board.RemoveUser(ctx, userID, u.Country)
	svc.recalculateFirstPlaces(ctx, held)
	svc.notify.BanStatusChanged(ctx, userID)
	svc.notify.DisconnectUser(ctx, userID, "Your account has been restricted. Check your email for more information.")
	svc.notify.SendChat(ctx, u.Username, "Your account is currently in restricted mode.")
	svc.record(actorID, fmt.Sprintf("has restricted %s", describe(u)),
		map[string]interface{}{"target_id": userID, "reason": reason})
	svc.recordBan(ctx, actorID, u, "restrict", reason)
	return true, nil
}

// restoreBoards puts a reinstated account back on the leaderboards.
func (svc *Service) restoreBoards(ctx context.Context, u *model.User) {
	stats, err := svc.store.UserStats(ctx, u.ID)
	if err != nil {
		svc.logger.Warn("leaderboard restore skipped", zap.Int64("user_id", u.ID), zap.Error(err))
		return
	}
	svc.board.Restore(ctx, u.ID, u.Country, stats)
}

// BanToggle bans an account or unbans a banned one. Unbanning always
// resets the mask to privilege.DefaultUnbanned; earlier privileges are not
// restored. It reports whether the account is now banned.
func (svc *Service) BanToggle(ctx context.Context, actorID, userID int64, reason string) (bool, error) {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if u.Privileges.Banned() {
		if err := svc.store.SetStanding(ctx, userID, privilege.DefaultUnbanned, 0); err != nil {
			return true, err
		}
		svc.restoreBoards(ctx, u)
		svc.notify.BanStatusChanged(ctx, userID)
		svc.record(actorID, fmt.Sprintf("has unbanned %s", describe(u)),
			map[string]interface{}{"target_id": userID})
		svc.recordBan(ctx, actorID, u, "unban", "")
		return false, nil
	}

	held := svc.heldFirstPlaces(ctx, userID)
	err = svc.store.Tx(ctx, func(tx *store.Store) error {
		if err := tx.SetStanding(ctx, userID, privilege.None, svc.now().Unix()); err != nil {
			return err
		}
		if reason == "" {
			return nil
		}
		return tx.SetBanReason(ctx, userID, reason)
	})
	if err != nil {
		return false, err
	}

	svc.board.RemoveUser(ctx, userID, u.Country)
	svc.recalculateFirstPlaces(ctx, held)
	svc.notify.BanStatusChanged(ctx, userID)
	svc.notify.DisconnectUser(ctx, userID, "You have been banned.")
	svc.record(actorID, fmt.Sprintf("has banned %s", describe(u)),
		map[string]interface{}{"target_id": userID, "reason": reason})
	svc.recordBan(ctx, actorID, u, "ban", reason)
	return true, nil
}

// FreezeToggle freezes an account for the configured number of days or
// unfreezes it. It reports whether the account is now frozen.
func (svc *Service) FreezeToggle(ctx context.Context, actorID, userID int64) (bool, error) {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if u.Frozen {
		if err := svc.store.SetFrozen(ctx, userID, false, 0, true); err != nil {
			return true, err
		}
		svc.record(actorID, fmt.Sprintf("has unfrozen %s", describe(u)),
			map[string]interface{}{"target_id": userID})
		svc.recordBan(ctx, actorID, u, "unfreeze", "")
		return false, nil
	}

	if u.Privileges.Banned() {
		return false, invalid("user", "account is banned")
	}
	expire := svc.now().Add(time.Duration(svc.cfg.FreezeDays) * 24 * time.Hour)
	if err := svc.store.SetFrozen(ctx, userID, true, expire.Unix(), false); err != nil {
		return false, err
	}
	svc.notify.SendChat(ctx, u.Username, fmt.Sprintf(
		"Your account has been frozen. Submit a liveplay to staff before %s or your account will be restricted.",
		expire.UTC().Format("2006-01-02 15:04 MST")))
	svc.record(actorID, fmt.Sprintf("has frozen %s", describe(u)),
		map[string]interface{}{"target_id": userID, "expire": expire.Unix()})
	svc.recordBan(ctx, actorID, u, "freeze", "")
	return true, nil
}

// Silence mutes an account in chat for seconds. Zero seconds lifts an
// active silence.
func (svc *Service) Silence(ctx context.Context, actorID, userID, seconds int64, reason string) error {
	if seconds < 0 {
		return invalid("seconds", "must not be negative")
	}
	if seconds > 0 && reason == "" {
		return invalid("reason", "required")
	}
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	var end int64
	if seconds > 0 {
		end = svc.now().Unix() + seconds
	}
	if err := svc.store.SetSilence(ctx, userID, end, reason); err != nil {
		return err
	}

	if seconds == 0 {
		svc.notify.SendChat(ctx, u.Username, "Your silence has been removed.")
		svc.record(actorID, fmt.Sprintf("has removed the silence of %s", describe(u)),
			map[string]interface{}{"target_id": userID})
		return nil
	}
	svc.notify.SendChat(ctx, u.Username, fmt.Sprintf("You have been silenced for %d seconds: %s", seconds, reason))
	svc.record(actorID, fmt.Sprintf("has silenced %s for %d seconds", describe(u), seconds),
		map[string]interface{}{"target_id": userID, "reason": reason})
	svc.recordBan(ctx, actorID, u, "silence", reason)
	return nil
}

// KickUser disconnects an online account from Bancho.
func (svc *Service) KickUser(ctx context.Context, actorID, userID int64, reason string) error {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "You have been kicked from the server. Please login again."
	}
	svc.notify.DisconnectUser(ctx, userID, reason)
	svc.record(actorID, fmt.Sprintf("has kicked %s", describe(u)),
		map[string]interface{}{"target_id": userID})
	return nil
}
