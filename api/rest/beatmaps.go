package rest

import (
	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// BeatmapHandler serves ranking actions and the rank request queue.
type BeatmapHandler struct {
	store    *store.Store
	mod      *moderation.Service
	pageSize int
	logger   *zap.Logger
}

// NewBeatmapHandler creates a BeatmapHandler.
func NewBeatmapHandler(s *store.Store, mod *moderation.Service, pageSize int, logger *zap.Logger) *BeatmapHandler {
	return &BeatmapHandler{store: s, mod: mod, pageSize: pageSize, logger: logger}
}

type rankRequest struct {
	Status *model.RankedStatus `json:"status" binding:"required"`
}

// RankBeatmap handles POST /api/beatmaps/:id/rank.
func (h *BeatmapHandler) RankBeatmap(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req rankRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mod.RankBeatmap(c.Request.Context(), mw.GetAccountID(c), id, *req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// RankSet handles POST /api/beatmapsets/:id/rank.
func (h *BeatmapHandler) RankSet(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req rankRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mod.RankBeatmapSet(c.Request.Context(), mw.GetAccountID(c), id, *req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// ListRequests handles GET /api/rank-requests?page=.
func (h *BeatmapHandler) ListRequests(c *gin.Context) {
	page := pageParam(c, h.pageSize)
	reqs, total, err := h.store.ListRankRequests(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	paged(c, reqs, total, page)
}

// DeleteRequest handles DELETE /api/rank-requests/:id.
func (h *BeatmapHandler) DeleteRequest(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.mod.RemoveRankRequest(c.Request.Context(), mw.GetAccountID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}
