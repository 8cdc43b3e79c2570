package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/logging"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

const (
	defaultErrorTail = 50
	maxErrorTail     = 500
)

// LogHandler serves the RAP log and the traceback log.
type LogHandler struct {
	store     *store.Store
	audit     *audit.Service
	traceback *logging.Traceback
	pageSize  int
	logger    *zap.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(s *store.Store, a *audit.Service, tb *logging.Traceback, pageSize int, logger *zap.Logger) *LogHandler {
	return &LogHandler{store: s, audit: a, traceback: tb, pageSize: pageSize, logger: logger}
}

// RAP handles GET /api/logs/rap?page=.
func (h *LogHandler) RAP(c *gin.Context) {
	page := pageParam(c, h.pageSize)
	ctx := c.Request.Context()
	logs, total, err := h.audit.List(ctx, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	views, err := withActors(ctx, h.store, logs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	paged(c, views, total, page)
}

// Errors handles GET /api/logs/errors?n=, newest first.
func (h *LogHandler) Errors(c *gin.Context) {
	n, err := strconv.Atoi(c.Query("n"))
	if err != nil || n <= 0 {
		n = defaultErrorTail
	}
	if n > maxErrorTail {
		n = maxErrorTail
	}
	entries, err := h.traceback.Tail(n)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}
