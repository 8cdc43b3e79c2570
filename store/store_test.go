package store_test

import (
	"context"
	"testing"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"github.com/kasuganosora/osupanel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return store.New(db), db
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, store.Page{Number: 1, Size: 50}.Offset())
	assert.Equal(t, 100, store.Page{Number: 3, Size: 50}.Offset())
}

func TestSafeUsername(t *testing.T) {
	assert.Equal(t, "some_player", store.SafeUsername(" Some Player "))
}

func TestGetUser(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Alice", privilege.DefaultUnbanned)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)

	got, err = s.GetUserBySafeName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUserBySafeName(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "Alice", 3)
	bob := testutil.CreateUser(t, db, "Bob", 3)
	testutil.CreateUser(t, db, "Alicia", 3)

	users, total, err := s.SearchUsers(ctx, "ali", store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	users, _, err = s.SearchUsers(ctx, "", store.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alicia", users[0].Username)

	users, _, err = s.SearchUsers(ctx, "2", store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)
}

func TestUsersByIDs(t *testing.T) {
	s, db := setup(t)
	a := testutil.CreateUser(t, db, "A", 3)
	b := testutil.CreateUser(t, db, "B", 3)

	got, err := s.UsersByIDs(context.Background(), []int64{a.ID, b.ID, 404})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "B", got[b.ID].Username)

	got, err = s.UsersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateMissingUser(t *testing.T) {
	s, _ := setup(t)
	assert.ErrorIs(t, s.SetPrivileges(context.Background(), 77, 3), store.ErrNotFound)
}

func TestSetPrivilegesUnchangedValue(t *testing.T) {
	s, db := setup(t)
	u := testutil.CreateUser(t, db, "A", 3)
	assert.NoError(t, s.SetPrivileges(context.Background(), u.ID, 3))
}

func TestAppendNotes(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "A", 3)

	require.NoError(t, s.AppendNotes(ctx, u.ID, "first"))
	require.NoError(t, s.AppendNotes(ctx, u.ID, "second"))
	require.NoError(t, s.AppendNotes(ctx, u.ID, ""))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got.Notes)
}

func TestUpdateProfileAndPropagate(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Old Name", 3)
	other := testutil.CreateUser(t, db, "Taken", 3)
	for _, v := range model.Variants {
		require.NoError(t, db.Create(&model.UserStats{UserID: u.ID, Variant: v, Mode: model.ModeStd, Username: u.Username}).Error)
	}

	require.NoError(t, s.UpdateProfile(ctx, u.ID, store.ProfileUpdate{
		Username: "New Name", Email: "n@example.com", Country: "DE",
		Privileges: 7, BypassHWID: true,
	}))
	require.NoError(t, s.PropagateUsername(ctx, u.ID, "New Name"))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new_name", got.UsernameSafe)
	assert.Equal(t, privilege.Privileges(7), got.Privileges)
	assert.True(t, got.BypassHWID)

	rows, err := s.UserStats(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "New Name", r.Username)
	}

	taken, err := s.UsernameTaken(ctx, "taken", u.ID)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.UsernameTaken(ctx, "taken", other.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestDeleteUserCascade(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Gone", 3)
	keep := testutil.CreateUser(t, db, "Stays", 3)

	require.NoError(t, db.Create(&model.UserStats{UserID: u.ID, Username: "Gone"}).Error)
	require.NoError(t, db.Create(&model.Score{UserID: u.ID, BeatmapMD5: "a"}).Error)
	require.NoError(t, db.Create(&model.Score{UserID: keep.ID, BeatmapMD5: "a"}).Error)
	require.NoError(t, db.Create(&model.UserBadge{UserID: u.ID, BadgeID: 1}).Error)
	require.NoError(t, db.Create(&model.ClanMember{UserID: u.ID, ClanID: 1}).Error)
	require.NoError(t, db.Create(&model.HWIDUser{UserID: u.ID, MAC: "m"}).Error)
	require.NoError(t, db.Create(&model.RAPLog{UserID: u.ID, Text: "kept", Through: "RAP"}).Error)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), store.ErrNotFound)

	var n int64
	db.Model(&model.Score{}).Count(&n)
	assert.Equal(t, int64(1), n)
	db.Model(&model.UserStats{}).Count(&n)
	assert.Equal(t, int64(0), n)
	db.Model(&model.UserBadge{}).Count(&n)
	assert.Equal(t, int64(0), n)
	db.Model(&model.ClanMember{}).Count(&n)
	assert.Equal(t, int64(0), n)
	db.Model(&model.HWIDUser{}).Count(&n)
	assert.Equal(t, int64(0), n)
	db.Model(&model.RAPLog{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestIPsAndHWIDs(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "A", 3)
	require.NoError(t, db.Create(&model.IPUser{UserID: u.ID, IP: "1.1.1.1", Occurrences: 1}).Error)
	require.NoError(t, db.Create(&model.IPUser{UserID: u.ID, IP: "2.2.2.2", Occurrences: 9}).Error)
	require.NoError(t, db.Create(&model.HWIDUser{UserID: u.ID, MAC: "m1"}).Error)
	require.NoError(t, db.Create(&model.HWIDUser{UserID: u.ID, MAC: "m2"}).Error)

	ips, err := s.UserIPs(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, ips, 2)
	assert.Equal(t, "2.2.2.2", ips[0].IP)

	n, err := s.ClearHWIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	hw, err := s.UserHWIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, hw)
}

func TestExpiredSupporters(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	expired := testutil.CreateUser(t, db, "Expired", 7)
	active := testutil.CreateUser(t, db, "Active", 7)
	plain := testutil.CreateUser(t, db, "Plain", 3)
	require.NoError(t, db.Model(expired).Update("donor_expire", 100).Error)
	require.NoError(t, db.Model(active).Update("donor_expire", 5000).Error)
	require.NoError(t, db.Model(plain).Update("donor_expire", 100).Error)

	ids, err := s.ExpiredSupporters(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, []int64{expired.ID}, ids)
}

func TestTxRollsBack(t *testing.T) {
	s, db := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "A", 3)

	err := s.Tx(ctx, func(tx *store.Store) error {
		require.NoError(t, tx.SetPrivileges(ctx, u.ID, 0))
		return store.ErrNotFound
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	mask, err := s.UserPrivileges(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, privilege.Privileges(3), mask)
}
