package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// ClanHandler serves clan administration.
type ClanHandler struct {
	store    *store.Store
	mod      *moderation.Service
	pageSize int
	logger   *zap.Logger
}

// NewClanHandler creates a ClanHandler.
func NewClanHandler(s *store.Store, mod *moderation.Service, pageSize int, logger *zap.Logger) *ClanHandler {
	return &ClanHandler{store: s, mod: mod, pageSize: pageSize, logger: logger}
}

// List handles GET /api/clans?page=.
func (h *ClanHandler) List(c *gin.Context) {
	page := pageParam(c, h.pageSize)
	clans, total, err := h.store.ListClans(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	paged(c, clans, total, page)
}

// Detail handles GET /api/clans/:id.
func (h *ClanHandler) Detail(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	ctx := c.Request.Context()
	clan, err := h.store.GetClan(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	members, err := h.store.ClanMembers(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := h.store.UsersByIDs(ctx, ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	type memberView struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
		Owner    bool   `json:"owner"`
	}
	views := make([]memberView, len(members))
	for i, m := range members {
		views[i] = memberView{UserID: m.UserID, Username: users[m.UserID].Username, Owner: m.IsOwner()}
	}
	c.JSON(http.StatusOK, gin.H{"clan": clan, "members": views})
}

// Edit handles PUT /api/clans/:id.
func (h *ClanHandler) Edit(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var in moderation.EditClanInput
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	if err := h.mod.EditClan(c.Request.Context(), mw.GetAccountID(c), in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// Delete handles DELETE /api/clans/:id.
func (h *ClanHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.mod.DeleteClan(c.Request.Context(), mw.GetAccountID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// KickMember handles DELETE /api/clans/:id/members/:uid.
func (h *ClanHandler) KickMember(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	uid, valid := idParam(c, "uid")
	if !valid {
		return
	}
	if err := h.mod.KickClanMember(c.Request.Context(), mw.GetAccountID(c), id, uid); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}
