package stats

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kasuganosora/osupanel/cache"
	"go.uber.org/zap"
)

// OnlineUsersKey is the counter Bancho keeps up to date.
const OnlineUsersKey = "ripple:online_users"

// Poller samples the online-user counter into a Ring.
type Poller struct {
	cache  cache.Cache
	ring   *Ring
	now    func() time.Time
	logger *zap.Logger
}

// NewPoller creates a Poller writing into ring.
func NewPoller(c cache.Cache, ring *Ring, logger *zap.Logger) *Poller {
	return &Poller{cache: c, ring: ring, now: time.Now, logger: logger}
}

// Ring returns the buffer the poller writes to.
func (p *Poller) Ring() *Ring { return p.ring }

// Poll takes one sample. A missing counter reads as zero users; any other
// failure is logged and no sample is recorded.
func (p *Poller) Poll(ctx context.Context) {
	online := 0
	raw, err := p.cache.Get(ctx, OnlineUsersKey)
	switch {
	case cache.IsNotFound(err):
	case err != nil:
		p.logger.Warn("online users poll failed", zap.Error(err))
		return
	default:
		online, err = strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			p.logger.Warn("online users counter is not a number", zap.String("value", raw))
			return
		}
	}
	p.ring.Push(Sample{Time: p.now(), Online: online})
}
