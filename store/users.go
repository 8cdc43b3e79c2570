package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"gorm.io/gorm"
)

// SafeUsername derives the lookup key stored in users.username_safe.
func SafeUsername(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUserBySafeName fetches a user by username_safe.
func (s *Store) GetUserBySafeName(ctx context.Context, safe string) (*model.User, error) {
	var u model.User
	if err := s.conn(ctx).Where("username_safe = ?", safe).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UserPrivileges reads the current stored privilege mask.
func (s *Store) UserPrivileges(ctx context.Context, id int64) (privilege.Privileges, error) {
	var u model.User
	if err := s.conn(ctx).Select("id", "privileges").First(&u, id).Error; err != nil {
		return 0, notFound(err)
	}
	return u.Privileges, nil
}

// UsersByIDs fetches the given users keyed by id. Missing ids are absent.
func (s *Store) UsersByIDs(ctx context.Context, ids []int64) (map[int64]model.User, error) {
	out := make(map[int64]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []model.User
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// SearchUsers lists users whose name contains query, or whose id equals it.
// An empty query lists everyone.
func (s *Store) SearchUsers(ctx context.Context, query string, page Page) ([]model.User, int64, error) {
	q := s.conn(ctx).Model(&model.User{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + SafeUsername(query) + "%"
		if id, err := strconv.ParseInt(query, 10, 64); err == nil {
			q = q.Where("username_safe LIKE ? OR id = ?", like, id)
		} else {
			q = q.Where("username_safe LIKE ?", like)
		}
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.User
	if err := page.apply(q.Order("id ASC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UsernameTaken reports whether safe is used by an account other than exceptID.
func (s *Store) UsernameTaken(ctx context.Context, safe string, exceptID int64) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&model.User{}).
		Where("username_safe = ? AND id <> ?", safe, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) updateUser(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := s.conn(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Updates reports 0 rows when values are unchanged on MySQL, so
		// confirm the row exists before calling it missing.
		var n int64
		if err := s.conn(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// SetPrivileges replaces the privilege mask.
func (s *Store) SetPrivileges(ctx context.Context, id int64, mask privilege.Privileges) error {
	return s.updateUser(ctx, id, map[string]interface{}{"privileges": mask})
}

// SetStanding writes the privilege mask and ban timestamp together.
func (s *Store) SetStanding(ctx context.Context, id int64, mask privilege.Privileges, banDatetime int64) error {
	return s.updateUser(ctx, id, map[string]interface{}{
		"privileges":   mask,
		"ban_datetime": banDatetime,
	})
}

// SetBanReason records why the account was banned or restricted.
func (s *Store) SetBanReason(ctx context.Context, id int64, reason string) error {
	return s.updateUser(ctx, id, map[string]interface{}{"ban_reason": reason})
}

// AppendNotes adds note on a new line after the existing notes.
func (s *Store) AppendNotes(ctx context.Context, id int64, note string) error {
	if note == "" {
		return nil
	}
	var u model.User
	if err := s.conn(ctx).Select("id", "notes").First(&u, id).Error; err != nil {
		return notFound(err)
	}
	notes := note
	if u.Notes != "" {
		notes = u.Notes + "\n" + note
	}
	return s.updateUser(ctx, id, map[string]interface{}{"notes": notes})
}

// SetFrozen writes the freeze overlay.
func (s *Store) SetFrozen(ctx context.Context, id int64, frozen bool, expire int64, firstLoginAfter bool) error {
	return s.updateUser(ctx, id, map[string]interface{}{
		"frozen":                frozen,
		"freezedate":            expire,
		"firstloginafterfrozen": firstLoginAfter,
	})
}

// SetSilence writes the silence end timestamp and reason.
func (s *Store) SetSilence(ctx context.Context, id int64, end int64, reason string) error {
	return s.updateUser(ctx, id, map[string]interface{}{
		"silence_end":    end,
		"silence_reason": reason,
	})
}

// SupporterState is the donor-related part of an account.
type SupporterState struct {
	Privileges      privilege.Privileges
	DonorExpire     int64
	CanCustomBadge  bool
	ShowCustomBadge bool
}

// SetSupporter writes the donor-related columns.
func (s *Store) SetSupporter(ctx context.Context, id int64, st SupporterState) error {
	return s.updateUser(ctx, id, map[string]interface{}{
		"privileges":        st.Privileges,
		"donor_expire":      st.DonorExpire,
		"can_custom_badge":  st.CanCustomBadge,
		"show_custom_badge": st.ShowCustomBadge,
	})
}

// ProfileUpdate is the full set of staff-editable account fields.
type ProfileUpdate struct {
	Username        string
	Email           string
	Notes           string
	Country         string
	UserpageContent string
	Privileges      privilege.Privileges
	BypassHWID      bool
}

// UpdateProfile replaces every editable field in one statement.
func (s *Store) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) error {
	return s.updateUser(ctx, id, map[string]interface{}{
		"username":         p.Username,
		"username_safe":    SafeUsername(p.Username),
		"email":            p.Email,
		"notes":            p.Notes,
		"country":          p.Country,
		"userpage_content": p.UserpageContent,
		"privileges":       p.Privileges,
		"bypass_hwid":      p.BypassHWID,
	})
}

// SetPassword stores a legacy-format password hash.
func (s *Store) SetPassword(ctx context.Context, id int64, hash string) error {
	return s.updateUser(ctx, id, map[string]interface{}{"password_md5": hash})
}

// PropagateUsername copies the username into every per-variant stats row.
func (s *Store) PropagateUsername(ctx context.Context, id int64, username string) error {
	return s.conn(ctx).Model(&model.UserStats{}).
		Where("user_id = ?", id).
		Update("username", username).Error
}

// DeleteUser hard-deletes the account and every row that references it.
// Audit and ban logs are append-only and are kept.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		deletes := []struct {
			where string
			model interface{}
		}{
			{"user_id = ?", &model.UserStats{}},
			{"userid = ?", &model.Score{}},
			{"user_id = ?", &model.BeatmapPlaycount{}},
			{"user_id = ?", &model.FirstPlace{}},
			{"user = ?", &model.UserBadge{}},
			{"user = ?", &model.ClanMember{}},
			{"userid = ?", &model.IPUser{}},
			{"userid = ?", &model.HWIDUser{}},
			{"userid = ?", &model.RankRequest{}},
		}
		for _, d := range deletes {
			if err := tx.Where(d.where, id).Delete(d.model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UserIPs lists the IP history of a user, most used first.
func (s *Store) UserIPs(ctx context.Context, id int64) ([]model.IPUser, error) {
	var ips []model.IPUser
	err := s.conn(ctx).Where("userid = ?", id).Order("occurencies DESC").Find(&ips).Error
	return ips, err
}

// UserHWIDs lists the hardware fingerprints of a user.
func (s *Store) UserHWIDs(ctx context.Context, id int64) ([]model.HWIDUser, error) {
	var hw []model.HWIDUser
	err := s.conn(ctx).Where("userid = ?", id).Order("occurencies DESC").Find(&hw).Error
	return hw, err
}

// ClearHWIDs deletes every fingerprint of a user and returns how many went.
func (s *Store) ClearHWIDs(ctx context.Context, id int64) (int64, error) {
	res := s.conn(ctx).Where("userid = ?", id).Delete(&model.HWIDUser{})
	return res.RowsAffected, res.Error
}

// ExpiredSupporters returns ids of donors whose donor_expire is before now.
func (s *Store) ExpiredSupporters(ctx context.Context, now int64) ([]int64, error) {
	var ids []int64
	err := s.conn(ctx).Model(&model.User{}).
		Where("(privileges & ?) = ? AND donor_expire > 0 AND donor_expire < ?",
			privilege.UserDonor, privilege.UserDonor, now).
		Pluck("id", &ids).Error
	return ids, err
}
