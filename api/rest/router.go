// Package rest is the panel's JSON API.
package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/api/sse"
	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/auth"
	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/config"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/logging"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/scheduler"
	"github.com/kasuganosora/osupanel/stats"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// LoginPath is where browsers without a session are sent.
const LoginPath = "/login"

// Deps are the services the API is built from.
type Deps struct {
	Config     *config.Config
	Store      *store.Store
	Gate       *auth.Gate
	Sessions   *auth.Sessions
	Moderation *moderation.Service
	Audit      *audit.Service
	Board      *leaderboard.Board
	Online     *stats.Ring
	PubSub     cache.PubSub         // optional; enables /api/events
	Scheduler  *scheduler.Scheduler // optional; lists background tasks on /health
	Traceback  *logging.Traceback
	Logger     *zap.Logger
}

// NewRouter builds the HTTP engine with the global middleware chain and
// every API route. ctx bounds background work started by middleware.
func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	sec := d.Config.Security
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))
	r.Use(mw.IPWhitelist(sec.AllowedIPs, d.Logger))
	if sec.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(ctx, sec.RateLimitRPS, sec.RateLimitBurst))
	}
	r.Use(mw.SessionLoader(d.Sessions, sec.CookieName, d.Logger))

	r.GET("/health", func(c *gin.Context) {
		tasks := []string{}
		if d.Scheduler != nil {
			tasks = d.Scheduler.Tasks()
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": tasks})
	})

	pageSize := d.Config.Panel.PageSize
	sessH := NewSessionHandler(d.Gate, d.Sessions, d.Store, sec, d.Logger)
	dashH := NewDashboardHandler(d.Store, d.Audit, d.Board, d.Online, d.Logger)
	userH := NewUserHandler(d.Store, d.Moderation, d.Audit, d.Gate, pageSize, d.Logger)
	mapH := NewBeatmapHandler(d.Store, d.Moderation, pageSize, d.Logger)
	clanH := NewClanHandler(d.Store, d.Moderation, pageSize, d.Logger)
	catH := NewCatalogHandler(d.Store, d.Moderation, d.Logger)
	logH := NewLogHandler(d.Store, d.Audit, d.Traceback, pageSize, d.Logger)
	boardH := NewLeaderboardHandler(d.Store, d.Board, d.Logger)

	need := func(cap privilege.Privileges) gin.HandlerFunc {
		return mw.RequirePrivilege(d.Gate, cap, LoginPath, d.Logger)
	}

	api := r.Group("/api")
	api.POST("/login", sessH.Login)
	api.POST("/logout", sessH.Logout)

	staff := api.Group("", need(privilege.AdminAccessRAP))
	staff.GET("/me", sessH.Me)
	staff.GET("/dashboard", dashH.Show)

	users := staff.Group("/users")
	users.GET("", need(privilege.AdminManageUsers), userH.List)
	users.GET("/:id", need(privilege.AdminManageUsers), userH.Detail)
	users.PUT("/:id", need(privilege.AdminManageUsers), userH.Edit)
	users.DELETE("/:id", need(privilege.AdminManageUsers), userH.Delete)
	users.PUT("/:id/badges", need(privilege.AdminManageUsers), userH.SetBadges)
	users.POST("/:id/password", need(privilege.AdminManageUsers), userH.ChangePassword)
	users.DELETE("/:id/hwid", need(privilege.AdminManageUsers), userH.ClearHWID)
	users.POST("/:id/supporter", need(privilege.AdminManageUsers), userH.GrantSupporter)
	users.DELETE("/:id/supporter", need(privilege.AdminManageUsers), userH.RevokeSupporter)
	users.POST("/:id/restrict", need(privilege.AdminBanUsers), userH.Restrict)
	users.POST("/:id/ban", need(privilege.AdminBanUsers), userH.Ban)
	users.POST("/:id/freeze", need(privilege.AdminBanUsers), userH.Freeze)
	users.POST("/:id/silence", need(privilege.AdminSilenceUsers), userH.Silence)
	users.POST("/:id/kick", need(privilege.AdminKickUsers), userH.Kick)
	users.POST("/:id/wipe", need(privilege.AdminWipeUsers), userH.Wipe)

	beatmaps := staff.Group("", need(privilege.AdminManageBeatmaps))
	beatmaps.POST("/beatmaps/:id/rank", mapH.RankBeatmap)
	beatmaps.POST("/beatmapsets/:id/rank", mapH.RankSet)
	beatmaps.GET("/rank-requests", mapH.ListRequests)
	beatmaps.DELETE("/rank-requests/:id", mapH.DeleteRequest)

	clans := staff.Group("/clans", need(privilege.AdminManageClans))
	clans.GET("", clanH.List)
	clans.GET("/:id", clanH.Detail)
	clans.PUT("/:id", clanH.Edit)
	clans.DELETE("/:id", clanH.Delete)
	clans.DELETE("/:id/members/:uid", clanH.KickMember)

	badges := staff.Group("/badges", need(privilege.AdminManageBadges))
	badges.GET("", catH.ListBadges)
	badges.GET("/:id", catH.GetBadge)
	badges.POST("", catH.CreateBadge)
	badges.PUT("/:id", catH.EditBadge)
	badges.DELETE("/:id", catH.DeleteBadge)

	groups := staff.Group("/groups", need(privilege.AdminManagePrivileges))
	groups.GET("", catH.ListGroups)
	groups.GET("/:id", catH.GetGroup)
	groups.POST("", catH.CreateGroup)
	groups.PUT("/:id", catH.EditGroup)
	groups.DELETE("/:id", catH.DeleteGroup)

	staff.GET("/leaderboard", need(privilege.AdminViewTopScores), boardH.Top)
	staff.GET("/logs/rap", need(privilege.AdminViewRAPLogs), logH.RAP)
	staff.GET("/logs/errors", need(privilege.AdminViewErrorLog), logH.Errors)

	if d.PubSub != nil {
		events := sse.NewHandler(d.PubSub, d.Online, d.Logger)
		staff.GET("/events", need(privilege.AdminViewRAPLogs), events.ServeEvents)
	}

	return r
}
