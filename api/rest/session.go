package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/auth"
	"github.com/kasuganosora/osupanel/config"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// SessionHandler handles login, logout and the current session.
type SessionHandler struct {
	gate     *auth.Gate
	sessions *auth.Sessions
	store    *store.Store
	sec      config.SecurityConfig
	logger   *zap.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(gate *auth.Gate, sessions *auth.Sessions, s *store.Store, sec config.SecurityConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{gate: gate, sessions: sessions, store: s, sec: sec, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required,max=32"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.gate.Authenticate(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrInsufficientPrivilege):
		h.logger.Info("login rejected", zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong username or password"})
		return
	case err != nil:
		respondError(c, h.logger, err)
		return
	}

	token, err := h.sessions.Issue(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sec.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.sec.CookieSecure, true)
	c.JSON(http.StatusOK, auth.Session{
		LoggedIn:   true,
		AccountID:  id.AccountID,
		Username:   id.Username,
		Privileges: id.Privileges,
	})
}

// Logout handles POST /api/logout. The token is revoked so a copied
// cookie stops working too.
func (h *SessionHandler) Logout(c *gin.Context) {
	if claims := mw.GetClaims(c); claims != nil {
		if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
			h.logger.Warn("session revoke failed", zap.Int64("account_id", claims.AccountID), zap.Error(err))
		}
	}
	c.SetCookie(h.sec.CookieName, "", -1, "/", "", h.sec.CookieSecure, true)
	ok(c)
}

// Me handles GET /api/me. Privileges are read fresh from the store.
func (h *SessionHandler) Me(c *gin.Context) {
	sess := mw.GetSession(c)
	mask, err := h.store.UserPrivileges(c.Request.Context(), sess.AccountID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sess.Privileges = mask
	c.JSON(http.StatusOK, gin.H{
		"session":      sess,
		"capabilities": mask.Names(),
	})
}
