package store

import (
	"context"
	"errors"

	"github.com/kasuganosora/osupanel/model"
	"gorm.io/gorm"
)

// Slots holds the badge id shown in each profile slot; 0 is empty.
type Slots [model.BadgeSlots]int64

// ListBadges lists every badge.
func (s *Store) ListBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := s.conn(ctx).Order("id ASC").Find(&badges).Error
	return badges, err
}

// GetBadge fetches a badge by id.
func (s *Store) GetBadge(ctx context.Context, id int64) (*model.Badge, error) {
	var b model.Badge
	if err := s.conn(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// CreateBadge inserts b and fills in its id.
func (s *Store) CreateBadge(ctx context.Context, b *model.Badge) error {
	return s.conn(ctx).Create(b).Error
}

// UpdateBadge replaces the name and icon of an existing badge.
func (s *Store) UpdateBadge(ctx context.Context, b *model.Badge) error {
	if _, err := s.GetBadge(ctx, b.ID); err != nil {
		return err
	}
	return s.conn(ctx).Model(&model.Badge{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{"name": b.Name, "icon": b.Icon}).Error
}

// DeleteBadge removes a badge and every assignment of it.
func (s *Store) DeleteBadge(ctx context.Context, id int64) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Badge{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("badge = ?", id).Delete(&model.UserBadge{}).Error
	})
}

// BadgeSlots returns the user's six badge slots.
func (s *Store) BadgeSlots(ctx context.Context, userID int64) (Slots, error) {
	var slots Slots
	var rows []model.UserBadge
	if err := s.conn(ctx).Where("user = ?", userID).Order("slot ASC, id ASC").Find(&rows).Error; err != nil {
		return slots, err
	}
	for _, r := range rows {
		if r.Slot >= 0 && r.Slot < model.BadgeSlots && slots[r.Slot] == 0 {
			slots[r.Slot] = r.BadgeID
		}
	}
	return slots, nil
}

// SetBadgeSlots replaces every badge assignment of the user with slots.
// Empty slots are not stored.
func (s *Store) SetBadgeSlots(ctx context.Context, userID int64, slots Slots) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user = ?", userID).Delete(&model.UserBadge{}).Error; err != nil {
			return err
		}
		for i, id := range slots {
			if id == 0 {
				continue
			}
			if err := tx.Create(&model.UserBadge{UserID: userID, BadgeID: id, Slot: i}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrNoFreeSlot is returned by AddBadge when all six slots are used.
var ErrNoFreeSlot = errors.New("store: no free badge slot")

// AddBadge assigns badgeID to the first free slot of the user. It is a
// no-op when the user already holds the badge.
func (s *Store) AddBadge(ctx context.Context, userID, badgeID int64) error {
	return s.Tx(ctx, func(tx *Store) error {
		slots, err := tx.BadgeSlots(ctx, userID)
		if err != nil {
			return err
		}
		for _, id := range slots {
			if id == badgeID {
				return nil
			}
		}
		for i, id := range slots {
			if id == 0 {
				return tx.conn(ctx).Create(&model.UserBadge{UserID: userID, BadgeID: badgeID, Slot: i}).Error
			}
		}
		return ErrNoFreeSlot
	})
}

// RemoveOneBadge deletes exactly one assignment of badgeID from the user.
// It is not an error if the user does not have it.
func (s *Store) RemoveOneBadge(ctx context.Context, userID, badgeID int64) error {
	var row model.UserBadge
	err := s.conn(ctx).Where("user = ? AND badge = ?", userID, badgeID).
		Order("id ASC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.conn(ctx).Delete(&model.UserBadge{}, row.ID).Error
}
