package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

const secondsPerDay = 86400

// GrantSupporter gives an account supporter status for days, or extends
// the current period when it already has it.
func (svc *Service) GrantSupporter(ctx context.Context, actorID, userID int64, days int) error {
	if days <= 0 {
		return invalid("days", "must be positive")
	}
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	extra := int64(days) * secondsPerDay

	if u.Privileges.Has(privilege.UserDonor) {
		err = svc.store.SetSupporter(ctx, userID, store.SupporterState{
			Privileges:      u.Privileges,
			DonorExpire:     u.DonorExpire + extra,
			CanCustomBadge:  u.CanCustomBadge,
			ShowCustomBadge: u.ShowCustomBadge,
		})
	} else {
		err = svc.store.Tx(ctx, func(tx *store.Store) error {
			err := tx.SetSupporter(ctx, userID, store.SupporterState{
				Privileges:      u.Privileges.Set(privilege.UserDonor),
				DonorExpire:     svc.now().Unix() + extra,
				CanCustomBadge:  true,
				ShowCustomBadge: u.ShowCustomBadge,
			})
			if err != nil {
				return err
			}
			err = tx.AddBadge(ctx, userID, svc.cfg.DonorBadgeID)
			if errors.Is(err, store.ErrNoFreeSlot) {
				svc.logger.Warn("no free badge slot for donor badge", zap.Int64("user_id", userID))
				return nil
			}
			return err
		})
	}
	if err != nil {
		return err
	}

	svc.notify.RefreshPrivileges(ctx, userID)
	svc.record(actorID, fmt.Sprintf("has given supporter for %d days to %s", days, describe(u)),
		map[string]interface{}{"target_id": userID, "days": days})
	return nil
}

// RevokeSupporter removes supporter status. It is a no-op for accounts
// without it.
func (svc *Service) RevokeSupporter(ctx context.Context, actorID, userID int64) error {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Privileges.Has(privilege.UserDonor) {
		return nil
	}
	err = svc.store.Tx(ctx, func(tx *store.Store) error {
		err := tx.SetSupporter(ctx, userID, store.SupporterState{
			Privileges: u.Privileges.Clear(privilege.UserDonor),
		})
		if err != nil {
			return err
		}
		return tx.RemoveOneBadge(ctx, userID, svc.cfg.DonorBadgeID)
	})
	if err != nil {
		return err
	}

	svc.notify.RefreshPrivileges(ctx, userID)
	svc.record(actorID, fmt.Sprintf("has removed supporter from %s", describe(u)),
		map[string]interface{}{"target_id": userID})
	return nil
}

// ExpireSupporters revokes every supporter whose period has ended, acting
// as the system account. It returns how many were revoked.
func (svc *Service) ExpireSupporters(ctx context.Context) (int, error) {
	ids, err := svc.store.ExpiredSupporters(ctx, svc.now().Unix())
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if err := svc.RevokeSupporter(ctx, svc.cfg.SystemID, id); err != nil {
			svc.logger.Error("supporter expiry failed", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}
