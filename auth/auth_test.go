package auth

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/osupanel/config"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"github.com/kasuganosora/osupanel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createStaff(t *testing.T, db *gorm.DB, name, password string, mask privilege.Privileges) *model.User {
	t.Helper()
	u := testutil.CreateUser(t, db, name, mask)
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, db.Model(u).Update("password_md5", hash).Error)
	return u
}

func TestPasswordLegacyFormat(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
	// md5("hunter2")
	assert.Equal(t, "2ab96390c7dbe3439de74d0c9b0b1767", string(md5Hex("hunter2")))
}

func TestAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	staff := privilege.DefaultUnbanned | privilege.AdminAccessRAP
	admin := createStaff(t, db, "Admin", "pw", staff)
	createStaff(t, db, "Player", "pw", privilege.DefaultUnbanned)
	gate := NewGate(store.New(db), 999)

	id, err := gate.Authenticate(ctx, "ADMIN", "pw")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id.AccountID)
	assert.Equal(t, staff, id.Privileges)

	_, err = gate.Authenticate(ctx, "Admin", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = gate.Authenticate(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gate.Authenticate(ctx, "Player", "pw")
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)
}

func TestAuthenticateBotBlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	bot := createStaff(t, db, "Bot", "pw", privilege.DefaultUnbanned|privilege.AdminAccessRAP)
	gate := NewGate(store.New(db), bot.ID)

	_, err := gate.Authenticate(context.Background(), "Bot", "pw")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizeRereadsMask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Mod", privilege.DefaultUnbanned|privilege.AdminBanUsers)
	gate := NewGate(store.New(db), 999)

	ok, err := gate.Authorize(ctx, u.ID, privilege.AdminBanUsers)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.Model(u).Update("privileges", privilege.DefaultUnbanned).Error)
	ok, err = gate.Authorize(ctx, u.ID, privilege.AdminBanUsers)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gate.Authorize(ctx, u.ID, privilege.None)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Authorize(ctx, 4040, privilege.None)
	require.NoError(t, err)
	assert.False(t, ok)
}

func newSessions(t *testing.T, secret string) *Sessions {
	t.Helper()
	c, _ := testutil.SetupTestCache(t)
	return NewSessions(config.SecurityConfig{SessionSecret: secret, SessionTTL: time.Hour}, c)
}

func TestSessionRoundTrip(t *testing.T) {
	s := newSessions(t, "stable")
	token, err := s.Issue(Identity{AccountID: 7, Username: "Admin", Privileges: 11})
	require.NoError(t, err)

	claims, err := s.Parse(context.Background(), token)
	require.NoError(t, err)
	sess := claims.Session()
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, int64(7), sess.AccountID)
	assert.Equal(t, "Admin", sess.Username)
	assert.Equal(t, privilege.Privileges(11), sess.Privileges)
}

func TestSessionSurvivesRestart(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	sec := config.SecurityConfig{SessionSecret: "stable", SessionTTL: time.Hour}
	token, err := NewSessions(sec, c).Issue(Identity{AccountID: 1})
	require.NoError(t, err)

	_, err = NewSessions(sec, c).Parse(context.Background(), token)
	assert.NoError(t, err)
}

func TestSessionRejects(t *testing.T) {
	s := newSessions(t, "stable")
	other := newSessions(t, "other")
	ctx := context.Background()

	token, err := other.Issue(Identity{AccountID: 1})
	require.NoError(t, err)
	_, err = s.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.Parse(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := s.Issue(Identity{AccountID: 1})
	require.NoError(t, err)
	s.now = time.Now
	_, err = s.Parse(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRevoke(t *testing.T) {
	s := newSessions(t, "stable")
	ctx := context.Background()
	token, err := s.Issue(Identity{AccountID: 1})
	require.NoError(t, err)
	claims, err := s.Parse(ctx, token)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, claims))
	_, err = s.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
