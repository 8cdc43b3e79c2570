package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kasuganosora/osupanel/auth"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// EditAccountInput is the full set of editable account fields. Every field
// replaces the stored value.
type EditAccountInput struct {
	UserID          int64                `json:"-"`
	Username        string               `json:"username"`
	Email           string               `json:"email"`
	Notes           string               `json:"notes"`
	Country         string               `json:"country"`
	UserpageContent string               `json:"userpage_content"`
	Privileges      privilege.Privileges `json:"privileges"`
	BypassHWID      bool                 `json:"bypass_hwid"`
	Badges          []int64              `json:"badges"`
}

// Validate checks field shapes. It does not touch the database.
func (in *EditAccountInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(in.Username); n < 2 || n > 32 {
		return invalid("username", "must be 2 to 32 characters")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalid("email", "malformed address")
	}
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	if in.Country == "" {
		in.Country = "XX"
	}
	if len(in.Country) != 2 {
		return invalid("country", "must be a two-letter code")
	}
	return validateBadges(in.Badges)
}

// validateBadges rejects more than six ids or the same badge twice.
func validateBadges(ids []int64) error {
	if len(ids) > model.BadgeSlots {
		return invalid("badges", fmt.Sprintf("at most %d badges", model.BadgeSlots))
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if seen[id] {
			return invalid("badges", fmt.Sprintf("badge %d assigned twice", id))
		}
		seen[id] = true
	}
	return nil
}

// Slots pads ids to exactly six badge slots.
func Slots(ids []int64) store.Slots {
	var slots store.Slots
	copy(slots[:], ids)
	return slots
}

// EditAccount replaces the editable fields of an account. Staff editing
// themselves may not request a mask numerically greater than their
// current one; such a request returns ErrSelfEscalation and changes nothing.
func (svc *Service) EditAccount(ctx context.Context, actorID int64, in EditAccountInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if actorID == in.UserID {
		current, err := svc.store.UserPrivileges(ctx, actorID)
		if err != nil {
			return err
		}
		if in.Privileges > current {
			return ErrSelfEscalation
		}
	}
	u, err := svc.store.GetUser(ctx, in.UserID)
	if err != nil {
		return err
	}
	taken, err := svc.store.UsernameTaken(ctx, store.SafeUsername(in.Username), in.UserID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("username", "already taken")
	}

	err = svc.store.Tx(ctx, func(tx *store.Store) error {
		if err := tx.UpdateProfile(ctx, in.UserID, store.ProfileUpdate{
			Username:        in.Username,
			Email:           in.Email,
			Notes:           in.Notes,
			Country:         in.Country,
			UserpageContent: in.UserpageContent,
			Privileges:      in.Privileges,
			BypassHWID:      in.BypassHWID,
		}); err != nil {
			return err
		}
		if err := tx.SetBadgeSlots(ctx, in.UserID, Slots(in.Badges)); err != nil {
			return err
		}
		return tx.PropagateUsername(ctx, in.UserID, in.Username)
	})
	if err != nil {
		return err
	}

	svc.notify.RefreshPrivileges(ctx, in.UserID)
	svc.notify.ChangeUsername(ctx, in.UserID, in.Username)
	svc.record(actorID, fmt.Sprintf("has edited user %s", describe(u)),
		map[string]interface{}{
			"target_id":  in.UserID,
			"username":   in.Username,
			"privileges": in.Privileges,
		})
	return nil
}

// SetBadges replaces the badge slots of an account.
func (svc *Service) SetBadges(ctx context.Context, actorID, userID int64, ids []int64) error {
	if err := validateBadges(ids); err != nil {
		return err
	}
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := svc.store.SetBadgeSlots(ctx, userID, Slots(ids)); err != nil {
		return err
	}
	svc.record(actorID, fmt.Sprintf("has edited the badges of %s", describe(u)),
		map[string]interface{}{"target_id": userID, "badges": ids})
	return nil
}

// ChangePassword sets a new password in the legacy hash format.
func (svc *Service) ChangePassword(ctx context.Context, actorID, userID int64, password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return invalid("password", "must be at least 8 characters")
	}
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := svc.store.SetPassword(ctx, userID, hash); err != nil {
		return err
	}
	svc.notify.ChangePassword(ctx, userID)
	svc.record(actorID, fmt.Sprintf("has changed the password of %s", describe(u)),
		map[string]interface{}{"target_id": userID})
	return nil
}

// DeleteUser hard-deletes an account and everything referencing it except
// the audit trail.
func (svc *Service) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return invalid("user", "cannot delete your own account")
	}
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	svc.notify.DisconnectUser(ctx, userID, "Your account has been deleted.")

	held := svc.heldFirstPlaces(ctx, userID)
	membership, err := svc.store.ClanOf(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		svc.logger.Error("clan lookup failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	if err := svc.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	svc.board.RemoveUser(ctx, userID, u.Country)
	svc.recalculateFirstPlaces(ctx, held)
	if membership != nil {
		svc.notify.ClanCacheInvalidate(ctx, userID)
	}
	svc.record(actorID, fmt.Sprintf("has deleted user %s", describe(u)),
		map[string]interface{}{"target_id": userID})
	svc.recordBan(ctx, actorID, u, "delete", u.Username)
	return nil
}

// ClearHWID removes every hardware fingerprint recorded for an account.
func (svc *Service) ClearHWID(ctx context.Context, actorID, userID int64) (int64, error) {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	n, err := svc.store.ClearHWIDs(ctx, userID)
	if err != nil {
		return 0, err
	}
	svc.record(actorID, fmt.Sprintf("has cleared %d HWID matches of %s", n, describe(u)),
		map[string]interface{}{"target_id": userID, "cleared": n})
	return n, nil
}
