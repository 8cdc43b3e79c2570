package store

import (
	"context"

	"github.com/kasuganosora/osupanel/model"
	"gorm.io/gorm"
)

// ListClans lists clans by id.
func (s *Store) ListClans(ctx context.Context, page Page) ([]model.Clan, int64, error) {
	q := s.conn(ctx).Model(&model.Clan{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clans []model.Clan
	if err := page.apply(q.Order("id ASC")).Find(&clans).Error; err != nil {
		return nil, 0, err
	}
	return clans, total, nil
}

// GetClan fetches a clan by id.
func (s *Store) GetClan(ctx context.Context, id int64) (*model.Clan, error) {
	var c model.Clan
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// UpdateClan replaces the editable fields of an existing clan.
func (s *Store) UpdateClan(ctx context.Context, c *model.Clan) error {
	if _, err := s.GetClan(ctx, c.ID); err != nil {
		return err
	}
	return s.conn(ctx).Model(&model.Clan{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
			"icon":        c.Icon,
			"tag":         c.Tag,
			"mlimit":      c.MLimit,
		}).Error
}

// ClanMembers lists the memberships of a clan.
func (s *Store) ClanMembers(ctx context.Context, clanID int64) ([]model.ClanMember, error) {
	var members []model.ClanMember
	err := s.conn(ctx).Where("clan = ?", clanID).Order("id ASC").Find(&members).Error
	return members, err
}

// ClanOf returns the membership of a user, or ErrNotFound.
func (s *Store) ClanOf(ctx context.Context, userID int64) (*model.ClanMember, error) {
	var m model.ClanMember
	if err := s.conn(ctx).Where("user = ?", userID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// RemoveClanMember removes a user from a clan.
func (s *Store) RemoveClanMember(ctx context.Context, clanID, userID int64) error {
	res := s.conn(ctx).Where("clan = ? AND user = ?", clanID, userID).Delete(&model.ClanMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteClan removes a clan together with every membership.
func (s *Store) DeleteClan(ctx context.Context, id int64) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Clan{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("clan = ?", id).Delete(&model.ClanMember{}).Error
	})
}
