package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/auth"
	"github.com/kasuganosora/osupanel/privilege"
	"go.uber.org/zap"
)

const (
	SessionKey = "session"
	ClaimsKey  = "session_claims"
)

// SessionLoader reads the session cookie and stores the resulting Session
// in the context. Requests without a valid cookie continue as anonymous;
// a stale cookie is cleared.
func SessionLoader(sessions *auth.Sessions, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SessionKey, auth.Session{})
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		claims, err := sessions.Parse(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(SessionKey, claims.Session())
			c.Set(ClaimsKey, claims)
		case errors.Is(err, auth.ErrInvalidSession):
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
		default:
			log.Error("session lookup failed",
				zap.String("trace_id", GetTraceID(c)),
				zap.Error(err))
		}
		c.Next()
	}
}

// GetSession returns the session loaded by SessionLoader.
func GetSession(c *gin.Context) auth.Session {
	if v, ok := c.Get(SessionKey); ok {
		return v.(auth.Session)
	}
	return auth.Session{}
}

// GetClaims returns the raw claims of a logged-in session, or nil.
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		return v.(*auth.Claims)
	}
	return nil
}

// GetAccountID returns the logged-in account id, or 0.
func GetAccountID(c *gin.Context) int64 {
	return GetSession(c).AccountID
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// denyAnonymous sends API clients a 401 and browsers to the login page.
func denyAnonymous(c *gin.Context, loginPath string) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	c.Redirect(http.StatusFound, loginPath)
	c.Abort()
}

// RequireLogin rejects anonymous requests.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).LoggedIn {
			denyAnonymous(c, loginPath)
			return
		}
		c.Next()
	}
}

// RequirePrivilege checks the current stored mask of the logged-in account
// against cap on every request, so demotions apply immediately.
func RequirePrivilege(gate *auth.Gate, cap privilege.Privileges, loginPath string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if !sess.LoggedIn {
			denyAnonymous(c, loginPath)
			return
		}
		ok, err := gate.Authorize(c.Request.Context(), sess.AccountID, cap)
		if err != nil {
			log.Error("privilege check failed",
				zap.String("trace_id", GetTraceID(c)),
				zap.Int64("account_id", sess.AccountID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "insufficient privileges",
				"required": cap.Names(),
			})
			return
		}
		c.Next()
	}
}
