package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/auth"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// UserHandler serves account listing, the user page and every account
// moderation action.
type UserHandler struct {
	store    *store.Store
	mod      *moderation.Service
	audit    *audit.Service
	gate     *auth.Gate
	pageSize int
	logger   *zap.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(s *store.Store, mod *moderation.Service, a *audit.Service, gate *auth.Gate, pageSize int, logger *zap.Logger) *UserHandler {
	return &UserHandler{store: s, mod: mod, audit: a, gate: gate, pageSize: pageSize, logger: logger}
}

type userRow struct {
	model.User
	Standing string `json:"standing"`
}

// List handles GET /api/users?q=&page=.
func (h *UserHandler) List(c *gin.Context) {
	page := pageParam(c, h.pageSize)
	users, total, err := h.store.SearchUsers(c.Request.Context(), strings.TrimSpace(c.Query("q")), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userRow{User: u, Standing: u.Privileges.Standing().String()}
	}
	paged(c, rows, total, page)
}

// Detail handles GET /api/users/:id. IP history is only included for
// staff allowed to see it.
func (h *UserHandler) Detail(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	ctx := c.Request.Context()
	u, err := h.store.GetUser(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	group, err := h.store.GroupForMask(ctx, u.Privileges)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	badges, err := h.store.BadgeSlots(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	hwids, err := h.store.UserHWIDs(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	bans, err := h.audit.BansFor(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	userStats, err := h.store.UserStats(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var clanID int64
	membership, err := h.store.ClanOf(ctx, id)
	switch {
	case err == nil:
		clanID = membership.ClanID
	case !errors.Is(err, store.ErrNotFound):
		respondError(c, h.logger, err)
		return
	}

	resp := gin.H{
		"user":         u,
		"standing":     u.Privileges.Standing().String(),
		"capabilities": u.Privileges.Names(),
		"group":        group,
		"badges":       badges,
		"hwids":        hwids,
		"ban_logs":     bans,
		"stats":        userStats,
		"clan_id":      clanID,
	}
	canViewIPs, err := h.gate.Authorize(ctx, mw.GetAccountID(c), privilege.AdminViewIPs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if canViewIPs {
		ips, err := h.store.UserIPs(ctx, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		resp["ips"] = ips
	}
	c.JSON(http.StatusOK, resp)
}

type restrictRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

// Restrict handles POST /api/users/:id/restrict. It toggles.
func (h *UserHandler) Restrict(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req restrictRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	restricted, err := h.mod.RestrictToggle(c.Request.Context(), mw.GetAccountID(c), id, req.Note, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restricted": restricted})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Ban handles POST /api/users/:id/ban. It toggles.
func (h *UserHandler) Ban(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req reasonRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	banned, err := h.mod.BanToggle(c.Request.Context(), mw.GetAccountID(c), id, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": banned})
}

// Freeze handles POST /api/users/:id/freeze. It toggles.
func (h *UserHandler) Freeze(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	frozen, err := h.mod.FreezeToggle(c.Request.Context(), mw.GetAccountID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"frozen": frozen})
}

type silenceRequest struct {
	Seconds int64  `json:"seconds"`
	Reason  string `json:"reason"`
}

// Silence handles POST /api/users/:id/silence. Zero seconds lifts a silence.
func (h *UserHandler) Silence(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req silenceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mod.Silence(c.Request.Context(), mw.GetAccountID(c), id, req.Seconds, req.Reason); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// Kick handles POST /api/users/:id/kick.
func (h *UserHandler) Kick(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req reasonRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if err := h.mod.KickUser(c.Request.Context(), mw.GetAccountID(c), id, req.Reason); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

type wipeRequest struct {
	// Variant selects one scoring variant; nil wipes all of them.
	Variant *model.Variant `json:"variant"`
}

// Wipe handles POST /api/users/:id/wipe.
func (h *UserHandler) Wipe(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req wipeRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	var err error
	if req.Variant == nil {
		err = h.mod.WipeAll(c.Request.Context(), mw.GetAccountID(c), id)
	} else {
		err = h.mod.WipeVariant(c.Request.Context(), mw.GetAccountID(c), id, *req.Variant)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

type supporterRequest struct {
	Days int `json:"days"`
}

// GrantSupporter handles POST /api/users/:id/supporter.
func (h *UserHandler) GrantSupporter(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req supporterRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mod.GrantSupporter(c.Request.Context(), mw.GetAccountID(c), id, req.Days); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// RevokeSupporter handles DELETE /api/users/:id/supporter.
func (h *UserHandler) RevokeSupporter(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.mod.RevokeSupporter(c.Request.Context(), mw.GetAccountID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

type passwordRequest struct {
	Password string `json:"password"`
}

// ChangePassword handles POST /api/users/:id/password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mod.ChangePassword(c.Request.Context(), mw.GetAccountID(c), id, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// Edit handles PUT /api/users/:id. Staff without the manage-privileges
// capability cannot change the mask; their request keeps the stored one.
func (h *UserHandler) Edit(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var in moderation.EditAccountInput
	if !bindJSON(c, &in) {
		return
	}
	in.UserID = id
	ctx := c.Request.Context()
	actor := mw.GetAccountID(c)

	canManage, err := h.gate.Authorize(ctx, actor, privilege.AdminManagePrivileges)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !canManage {
		current, err := h.store.UserPrivileges(ctx, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		in.Privileges = current
	}
	if err := h.mod.EditAccount(ctx, actor, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

type badgesRequest struct {
	Badges []int64 `json:"badges"`
}

// SetBadges handles PUT /api/users/:id/badges.
func (h *UserHandler) SetBadges(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req badgesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mod.SetBadges(c.Request.Context(), mw.GetAccountID(c), id, req.Badges); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.mod.DeleteUser(c.Request.Context(), mw.GetAccountID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// ClearHWID handles DELETE /api/users/:id/hwid.
func (h *UserHandler) ClearHWID(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	n, err := h.mod.ClearHWID(c.Request.Context(), mw.GetAccountID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}
