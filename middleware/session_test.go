package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/auth"
	"github.com/kasuganosora/osupanel/config"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"github.com/kasuganosora/osupanel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cookieName = "rap_session"

type sessionEnv struct {
	db       *gorm.DB
	sessions *auth.Sessions
	gate     *auth.Gate
	router   *gin.Engine
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	sessions := auth.NewSessions(config.SecurityConfig{SessionSecret: "secret", SessionTTL: time.Hour}, c)
	gate := auth.NewGate(store.New(db), 999)
	log := zap.NewNop()

	r := gin.New()
	r.Use(TraceID(), SessionLoader(sessions, cookieName, log))
	r.GET("/api/whoami", RequireLogin("/login"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetAccountID(c)})
	})
	r.GET("/panel", RequireLogin("/login"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/ban", RequirePrivilege(gate, privilege.AdminBanUsers, "/login", log), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return &sessionEnv{db: db, sessions: sessions, gate: gate, router: r}
}

func (e *sessionEnv) login(t *testing.T, u *model.User) (string, *auth.Claims) {
	t.Helper()
	token, err := e.sessions.Issue(auth.Identity{AccountID: u.ID, Username: u.Username, Privileges: u.Privileges})
	require.NoError(t, err)
	claims, err := e.sessions.Parse(context.Background(), token)
	require.NoError(t, err)
	return token, claims
}

func (e *sessionEnv) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRequireLogin_Anonymous(t *testing.T) {
	e := newSessionEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/whoami", "").Code)

	w := e.do(http.MethodGet, "/panel", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireLogin_ValidCookie(t *testing.T) {
	e := newSessionEnv(t)
	u := testutil.CreateUser(t, e.db, "Admin", privilege.DefaultUnbanned|privilege.AdminAccessRAP)
	token, _ := e.login(t, u)

	w := e.do(http.MethodGet, "/api/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+itoa(u.ID)+`}`, w.Body.String())
}

func TestSessionLoader_RevokedCookieIsCleared(t *testing.T) {
	e := newSessionEnv(t)
	u := testutil.CreateUser(t, e.db, "Admin", privilege.DefaultUnbanned|privilege.AdminAccessRAP)
	token, claims := e.login(t, u)
	require.NoError(t, e.sessions.Revoke(context.Background(), claims))

	w := e.do(http.MethodGet, "/api/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), cookieName+"=;")
}

func TestSessionLoader_GarbageCookie(t *testing.T) {
	e := newSessionEnv(t)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/whoami", "not.a.jwt").Code)
}

func TestRequirePrivilege(t *testing.T) {
	e := newSessionEnv(t)
	mod := testutil.CreateUser(t, e.db, "Mod", privilege.DefaultUnbanned|privilege.AdminAccessRAP|privilege.AdminBanUsers)
	helper := testutil.CreateUser(t, e.db, "Helper", privilege.DefaultUnbanned|privilege.AdminAccessRAP)
	modToken, _ := e.login(t, mod)
	helperToken, _ := e.login(t, helper)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/ban", "").Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/ban", modToken).Code)

	w := e.do(http.MethodPost, "/api/ban", helperToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AdminBanUsers")
}

func TestRequirePrivilege_DemotionAppliesImmediately(t *testing.T) {
	e := newSessionEnv(t)
	mod := testutil.CreateUser(t, e.db, "Mod", privilege.DefaultUnbanned|privilege.AdminAccessRAP|privilege.AdminBanUsers)
	token, _ := e.login(t, mod)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/ban", token).Code)

	require.NoError(t, e.db.Model(mod).Update("privileges", privilege.DefaultUnbanned).Error)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/ban", token).Code)

	require.NoError(t, e.db.Delete(mod).Error)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/ban", token).Code)
}

func TestGetAccountID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, int64(0), GetAccountID(c))
	assert.Nil(t, GetClaims(c))
}

func TestRecovery_CatchesPanic(t *testing.T) {
	r := gin.New()
	r.Use(TraceID(), Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "trace-1")
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogger_ServerErrorsAtErrorLevel(t *testing.T) {
	tb, err := newObservedLogger()
	require.NoError(t, err)

	r := gin.New()
	r.Use(TraceID(), Logger(tb.logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := tb.logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0].Level.String())
	assert.Equal(t, "error", entries[1].Level.String())
	assert.Equal(t, "/fail", entries[1].ContextMap()["path"])
}
