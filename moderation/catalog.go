package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
)

// GroupInput describes a privilege group.
type GroupInput struct {
	Name       string               `json:"name"`
	Privileges privilege.Privileges `json:"privileges"`
	Color      string               `json:"color"`
}

func (in *GroupInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "required")
	}
	return nil
}

// CreateGroup adds a privilege group.
func (svc *Service) CreateGroup(ctx context.Context, actorID int64, in GroupInput) (*model.PrivilegeGroup, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	g := &model.PrivilegeGroup{Name: in.Name, Privileges: in.Privileges, Color: in.Color}
	if err := svc.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	svc.record(actorID, fmt.Sprintf("has created privilege group %s", g.Name),
		map[string]interface{}{"group_id": g.ID, "privileges": g.Privileges})
	return g, nil
}

// EditGroup changes a privilege group. Accounts holding the old mask keep it.
func (svc *Service) EditGroup(ctx context.Context, actorID, groupID int64, in GroupInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	g := &model.PrivilegeGroup{ID: groupID, Name: in.Name, Privileges: in.Privileges, Color: in.Color}
	if err := svc.store.UpdateGroup(ctx, g); err != nil {
		return err
	}
	svc.record(actorID, fmt.Sprintf("has edited privilege group %s", g.Name),
		map[string]interface{}{"group_id": groupID, "privileges": g.Privileges})
	return nil
}

// DeleteGroup removes a privilege group.
func (svc *Service) DeleteGroup(ctx context.Context, actorID, groupID int64) error {
	g, err := svc.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := svc.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	svc.record(actorID, fmt.Sprintf("has deleted privilege group %s", g.Name),
		map[string]interface{}{"group_id": groupID})
	return nil
}

// BadgeInput describes a badge.
type BadgeInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (in *BadgeInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "required")
	}
	return nil
}

// CreateBadge adds a badge.
func (svc *Service) CreateBadge(ctx context.Context, actorID int64, in BadgeInput) (*model.Badge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b := &model.Badge{Name: in.Name, Icon: in.Icon}
	if err := svc.store.CreateBadge(ctx, b); err != nil {
		return nil, err
	}
	svc.record(actorID, fmt.Sprintf("has created badge %s", b.Name),
		map[string]interface{}{"badge_id": b.ID})
	return b, nil
}

// EditBadge changes a badge.
func (svc *Service) EditBadge(ctx context.Context, actorID, badgeID int64, in BadgeInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	if err := svc.store.UpdateBadge(ctx, &model.Badge{ID: badgeID, Name: in.Name, Icon: in.Icon}); err != nil {
		return err
	}
	svc.record(actorID, fmt.Sprintf("has edited badge %s", in.Name),
		map[string]interface{}{"badge_id": badgeID})
	return nil
}

// DeleteBadge removes a badge from the catalog and from every profile.
func (svc *Service) DeleteBadge(ctx context.Context, actorID, badgeID int64) error {
	b, err := svc.store.GetBadge(ctx, badgeID)
	if err != nil {
		return err
	}
	if err := svc.store.DeleteBadge(ctx, badgeID); err != nil {
		return err
	}
	svc.record(actorID, fmt.Sprintf("has deleted badge %s", b.Name),
		map[string]interface{}{"badge_id": badgeID})
	return nil
}
