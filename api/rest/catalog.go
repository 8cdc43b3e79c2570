package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// CatalogHandler serves badge and privilege group administration.
type CatalogHandler struct {
	store  *store.Store
	mod    *moderation.Service
	logger *zap.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(s *store.Store, mod *moderation.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{store: s, mod: mod, logger: logger}
}

// ListBadges handles GET /api/badges.
func (h *CatalogHandler) ListBadges(c *gin.Context) {
	badges, err := h.store.ListBadges(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": badges})
}

// GetBadge handles GET /api/badges/:id.
func (h *CatalogHandler) GetBadge(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	b, err := h.store.GetBadge(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CreateBadge handles POST /api/badges.
func (h *CatalogHandler) CreateBadge(c *gin.Context) {
	var in moderation.BadgeInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.mod.CreateBadge(c.Request.Context(), mw.GetAccountID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// EditBadge handles PUT /api/badges/:id.
func (h *CatalogHandler) EditBadge(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var in moderation.BadgeInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.mod.EditBadge(c.Request.Context(), mw.GetAccountID(c), id, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// DeleteBadge handles DELETE /api/badges/:id.
func (h *CatalogHandler) DeleteBadge(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.mod.DeleteBadge(c.Request.Context(), mw.GetAccountID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// ListGroups handles GET /api/groups.
func (h *CatalogHandler) ListGroups(c *gin.Context) {
	groups, err := h.store.ListGroups(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": groups})
}

// GetGroup handles GET /api/groups/:id.
func (h *CatalogHandler) GetGroup(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	g, err := h.store.GetGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": g, "capabilities": g.Privileges.Names()})
}

// CreateGroup handles POST /api/groups.
func (h *CatalogHandler) CreateGroup(c *gin.Context) {
	var in moderation.GroupInput
	if !bindJSON(c, &in) {
		return
	}
	g, err := h.mod.CreateGroup(c.Request.Context(), mw.GetAccountID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// EditGroup handles PUT /api/groups/:id.
func (h *CatalogHandler) EditGroup(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var in moderation.GroupInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.mod.EditGroup(c.Request.Context(), mw.GetAccountID(c), id, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}

// DeleteGroup handles DELETE /api/groups/:id.
func (h *CatalogHandler) DeleteGroup(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.mod.DeleteGroup(c.Request.Context(), mw.GetAccountID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c)
}
