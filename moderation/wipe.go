package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasuganosora/osupanel/model"
)

// WipeAll wipes the statistics of every scoring variant.
func (svc *Service) WipeAll(ctx context.Context, actorID, userID int64) error {
	return svc.wipe(ctx, actorID, userID, model.Variants)
}

// WipeVariant wipes the statistics of a single scoring variant.
func (svc *Service) WipeVariant(ctx context.Context, actorID, userID int64, variant model.Variant) error {
	if !variant.Valid() {
		return invalid("variant", "unknown scoring variant")
	}
	return svc.wipe(ctx, actorID, userID, []model.Variant{variant})
}

func (svc *Service) wipe(ctx context.Context, actorID, userID int64, variants []model.Variant) error {
	u, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	svc.notify.DisconnectUser(ctx, userID,
		"Your account has been wiped. Please login again to refresh your statistics.")

	var held []model.FirstPlace
	for _, fp := range svc.heldFirstPlaces(ctx, userID) {
		for _, v := range variants {
			if fp.Variant == v {
				held = append(held, fp)
			}
		}
	}
	if err := svc.store.WipeStats(ctx, userID, variants); err != nil {
		return err
	}

	svc.board.RemoveUser(ctx, userID, u.Country, variants...)
	svc.recalculateFirstPlaces(ctx, held)

	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.String()
	}
	which := strings.Join(names, ", ")
	svc.record(actorID, fmt.Sprintf("has wiped %s (%s)", describe(u), which),
		map[string]interface{}{"target_id": userID, "variants": names})
	svc.recordBan(ctx, actorID, u, "wipe", which)
	return nil
}
