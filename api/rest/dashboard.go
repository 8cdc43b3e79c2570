package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/stats"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

const (
	dashboardRecentLogs = 10
	dashboardTopPlayers = 10
)

// DashboardHandler serves the landing page data.
type DashboardHandler struct {
	store  *store.Store
	audit  *audit.Service
	board  *leaderboard.Board
	ring   *stats.Ring
	logger *zap.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(s *store.Store, a *audit.Service, b *leaderboard.Board, ring *stats.Ring, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{store: s, audit: a, board: b, ring: ring, logger: logger}
}

// logView is a RAP log row with the actor's name resolved.
type logView struct {
	model.RAPLog
	Username string `json:"username"`
}

// withActors resolves actor names in one query. Deleted actors show as
// "Unknown".
func withActors(ctx context.Context, s *store.Store, logs []model.RAPLog) ([]logView, error) {
	ids := make([]int64, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.UserID)
	}
	users, err := s.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]logView, len(logs))
	for i, l := range logs {
		name := "Unknown"
		if u, ok := users[l.UserID]; ok {
			name = u.Username
		}
		out[i] = logView{RAPLog: l, Username: name}
	}
	return out, nil
}

type topView struct {
	leaderboard.Entry
	Username string `json:"username"`
}

// Show handles GET /api/dashboard.
func (h *DashboardHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	counts, err := h.store.DashboardCounts(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	logs, _, err := h.audit.List(ctx, store.Page{Number: 1, Size: dashboardRecentLogs})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	recent, err := withActors(ctx, h.store, logs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":      counts,
		"online":      h.ring.Snapshot(),
		"recent_logs": recent,
		"top":         h.top(ctx),
	})
}

// top is best effort: a cache outage only empties the widget.
func (h *DashboardHandler) top(ctx context.Context) []topView {
	entries, err := h.board.Top(ctx, model.VariantVanilla, model.ModeStd, "", dashboardTopPlayers)
	if err != nil {
		h.logger.Warn("leaderboard read failed", zap.Error(err))
		return []topView{}
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	users, err := h.store.UsersByIDs(ctx, ids)
	if err != nil {
		h.logger.Warn("leaderboard user lookup failed", zap.Error(err))
	}
	out := make([]topView, len(entries))
	for i, e := range entries {
		out[i] = topView{Entry: e, Username: users[e.UserID].Username}
	}
	return out
}
