package store

import (
	"context"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
)

// UnknownGroup is shown for masks that match no privilege group.
var UnknownGroup = model.PrivilegeGroup{Name: "Unknown", Color: "default"}

// ListGroups lists privilege groups.
func (s *Store) ListGroups(ctx context.Context) ([]model.PrivilegeGroup, error) {
	var groups []model.PrivilegeGroup
	err := s.conn(ctx).Order("id ASC").Find(&groups).Error
	return groups, err
}

// GetGroup fetches a privilege group by id.
func (s *Store) GetGroup(ctx context.Context, id int64) (*model.PrivilegeGroup, error) {
	var g model.PrivilegeGroup
	if err := s.conn(ctx).First(&g, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// GroupForMask returns the first group whose mask equals mask exactly, or
// UnknownGroup.
func (s *Store) GroupForMask(ctx context.Context, mask privilege.Privileges) (model.PrivilegeGroup, error) {
	var groups []model.PrivilegeGroup
	if err := s.conn(ctx).Where("privileges = ?", mask).Order("id ASC").Limit(1).Find(&groups).Error; err != nil {
		return UnknownGroup, err
	}
	if len(groups) == 0 {
		return UnknownGroup, nil
	}
	return groups[0], nil
}

// CreateGroup inserts g and fills in its id.
func (s *Store) CreateGroup(ctx context.Context, g *model.PrivilegeGroup) error {
	return s.conn(ctx).Create(g).Error
}

// UpdateGroup replaces name, mask and color of a group. Accounts are untouched.
func (s *Store) UpdateGroup(ctx context.Context, g *model.PrivilegeGroup) error {
	if _, err := s.GetGroup(ctx, g.ID); err != nil {
		return err
	}
	return s.conn(ctx).Model(&model.PrivilegeGroup{}).Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"name":       g.Name,
			"privileges": g.Privileges,
			"color":      g.Color,
		}).Error
}

// DeleteGroup removes a privilege group.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	res := s.conn(ctx).Delete(&model.PrivilegeGroup{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
