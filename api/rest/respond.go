package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/osupanel/middleware"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// respondError maps a service error onto a status code. Unexpected errors
// are logged at error level, which lands them in the traceback log.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *moderation.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, moderation.ErrSelfEscalation):
		// Silently ignored: the edit form just reloads.
		c.JSON(http.StatusOK, gin.H{"ok": true})
	default:
		log.Error("request failed",
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int64("account_id", mw.GetAccountID(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "internal server error",
			"trace_id": mw.GetTraceID(c),
		})
	}
}

// idParam parses a positive integer path parameter, answering 400 when
// it is malformed.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// pageParam reads ?page= and clamps it to at least 1.
func pageParam(c *gin.Context, size int) store.Page {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		n = 1
	}
	if size <= 0 {
		size = 50
	}
	return store.Page{Number: n, Size: size}
}

// bindJSON decodes the request body into v, answering 400 on failure.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func paged(c *gin.Context, items interface{}, total int64, page store.Page) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page.Number,
		"size":  page.Size,
	})
}
