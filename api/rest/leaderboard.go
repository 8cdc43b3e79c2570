package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

const leaderboardMax = 100

// LeaderboardHandler shows the live leaderboards kept by the score server.
type LeaderboardHandler struct {
	store  *store.Store
	board  *leaderboard.Board
	logger *zap.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(s *store.Store, b *leaderboard.Board, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{store: s, board: b, logger: logger}
}

// Top handles GET /api/leaderboard?variant=&mode=&country=&limit=.
func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= leaderboardMax {
		limit = l
	}
	variant := model.VariantVanilla
	if v, err := strconv.Atoi(c.Query("variant")); err == nil {
		variant = model.Variant(v)
	}
	mode := model.ModeStd
	if m, err := strconv.Atoi(c.Query("mode")); err == nil {
		mode = model.GameMode(m)
	}
	if !variant.Valid() || mode < model.ModeStd || mode > model.ModeMania {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid variant or mode"})
		return
	}
	country := strings.ToLower(strings.TrimSpace(c.Query("country")))

	ctx := c.Request.Context()
	entries, err := h.board.Top(ctx, variant, mode, country, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	users, err := h.store.UsersByIDs(ctx, ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows := make([]topView, len(entries))
	for i, e := range entries {
		rows[i] = topView{Entry: e, Username: users[e.UserID].Username}
	}
	c.JSON(http.StatusOK, gin.H{
		"key":   leaderboard.Key(variant, mode, country),
		"items": rows,
	})
}
