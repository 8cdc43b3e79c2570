// Package auth authenticates staff against the shared account store and
// authorizes actions against their current privilege mask.
package auth

import (
	"context"
	"errors"

	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
)

// Authentication failures. Handlers show the same message for all three.
var (
	ErrNotFound              = errors.New("auth: account not found")
	ErrWrongPassword         = errors.New("auth: wrong password")
	ErrInsufficientPrivilege = errors.New("auth: insufficient privilege")
)

// Identity is an authenticated account.
type Identity struct {
	AccountID  int64
	Username   string
	Privileges privilege.Privileges
}

// Gate authenticates and authorizes staff accounts.
type Gate struct {
	store *store.Store
	botID int64
}

// NewGate creates a Gate. botID is the system account that may never log in.
func NewGate(s *store.Store, botID int64) *Gate {
	return &Gate{store: s, botID: botID}
}

// Authenticate checks a username and password pair.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	u, err := g.store.GetUserBySafeName(ctx, store.SafeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	if u.ID == g.botID {
		return Identity{}, ErrNotFound
	}
	if !u.Privileges.Has(privilege.AdminAccessRAP) {
		return Identity{}, ErrInsufficientPrivilege
	}
	if !CheckPassword(u.PasswordMD5, password) {
		return Identity{}, ErrWrongPassword
	}
	return Identity{AccountID: u.ID, Username: u.Username, Privileges: u.Privileges}, nil
}

// Authorize re-reads the account's stored mask and checks it against cap.
// A missing account is unauthorized, not an error.
func (g *Gate) Authorize(ctx context.Context, accountID int64, cap privilege.Privileges) (bool, error) {
	mask, err := g.store.UserPrivileges(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mask.Has(cap), nil
}
