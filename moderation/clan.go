package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasuganosora/osupanel/model"
	"go.uber.org/zap"
)

// EditClanInput is the full set of editable clan fields.
type EditClanInput struct {
	ID          int64  `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Tag         string `json:"tag"`
	MemberLimit int    `json:"member_limit"`
}

// Validate checks field shapes.
func (in *EditClanInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Tag = strings.TrimSpace(in.Tag)
	if in.Name == "" {
		return invalid("name", "required")
	}
	if len(in.Tag) > 6 {
		return invalid("tag", "at most 6 characters")
	}
	if in.MemberLimit < 1 {
		return invalid("member_limit", "must be positive")
	}
	return nil
}

// invalidateMembers drops the clan cache of every member in members.
func (svc *Service) invalidateMembers(ctx context.Context, members []model.ClanMember) {
	for _, m := range members {
		svc.notify.ClanCacheInvalidate(ctx, m.UserID)
	}
}

// EditClan replaces the editable fields of a clan. Members are notified
// because their cached clan tag may have changed.
func (svc *Service) EditClan(ctx context.Context, actorID int64, in EditClanInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	err := svc.store.UpdateClan(ctx, &model.Clan{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		Tag:         in.Tag,
		MLimit:      in.MemberLimit,
	})
	if err != nil {
		return err
	}
	members, err := svc.store.ClanMembers(ctx, in.ID)
	if err != nil {
		svc.logger.Warn("clan member lookup failed", zap.Int64("clan_id", in.ID), zap.Error(err))
	}
	svc.invalidateMembers(ctx, members)
	svc.record(actorID, fmt.Sprintf("has edited clan %s (%d)", in.Name, in.ID),
		map[string]interface{}{"clan_id": in.ID})
	return nil
}

// DeleteClan deletes a clan and its memberships, then notifies every
// former member.
func (svc *Service) DeleteClan(ctx context.Context, actorID, clanID int64) error {
	clan, err := svc.store.GetClan(ctx, clanID)
	if err != nil {
		return err
	}
	members, err := svc.store.ClanMembers(ctx, clanID)
	if err != nil {
		return err
	}
	if err := svc.store.DeleteClan(ctx, clanID); err != nil {
		return err
	}
	svc.invalidateMembers(ctx, members)
	svc.record(actorID, fmt.Sprintf("has deleted clan %s (%d)", clan.Name, clanID),
		map[string]interface{}{"clan_id": clanID, "members": len(members)})
	return nil
}

// KickClanMember removes a non-owner member from a clan.
func (svc *Service) KickClanMember(ctx context.Context, actorID, clanID, userID int64) error {
	members, err := svc.store.ClanMembers(ctx, clanID)
	if err != nil {
		return err
	}
	var target *model.ClanMember
	for i := range members {
		if members[i].UserID == userID {
			target = &members[i]
			break
		}
	}
	if target == nil {
		return invalid("user", "not a member of this clan")
	}
	if target.IsOwner() {
		return invalid("user", "cannot kick the clan owner")
	}
	if err := svc.store.RemoveClanMember(ctx, clanID, userID); err != nil {
		return err
	}
	svc.notify.ClanCacheInvalidate(ctx, userID)
	svc.record(actorID, fmt.Sprintf("has kicked user %d from clan %d", userID, clanID),
		map[string]interface{}{"clan_id": clanID, "target_id": userID})
	return nil
}
