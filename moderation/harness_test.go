package moderation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/config"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/notify"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/kasuganosora/osupanel/store"
	"github.com/kasuganosora/osupanel/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Unix(1700000000, 0)

type httpCall struct {
	Method string
	Path   string
	Query  map[string]string
	Body   string
}

type recorder struct {
	mu    sync.Mutex
	calls []httpCall
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	q := map[string]string{}
	for k := range req.URL.Query() {
		q[k] = req.URL.Query().Get(k)
	}
	r.mu.Lock()
	r.calls = append(r.calls, httpCall{Method: req.Method, Path: req.URL.Path, Query: q, Body: string(body)})
	r.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (r *recorder) byPath(path string) []httpCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []httpCall
	for _, c := range r.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type harness struct {
	t     *testing.T
	svc   *Service
	db    *gorm.DB
	store *store.Store
	cache cache.Cache
	audit *audit.Service
	http  *recorder
	msgs  <-chan *cache.Message
}

const (
	chatPath      = "/api/v1/fokabotMessage"
	hookPath      = "/hook"
	adminHookPath = "/admin-hook"
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	_, ps := testutil.SetupTestCache(t)
	return newHarnessWith(t, ps)
}

// newHarnessWith builds the harness on ps. Published messages are only
// captured when ps accepts subscriptions.
func newHarnessWith(t *testing.T, ps cache.PubSub) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	msgs, cancel, err := ps.Subscribe(context.Background(), notify.Channels()...)
	if err == nil {
		t.Cleanup(cancel)
	}

	logger := zap.NewNop()
	s := store.New(db)
	a := audit.New(s, "RAP", logger)
	t.Cleanup(func() { a.Stop(context.Background()) })
	pub := notify.New(ps, config.BanchoConfig{BotURL: srv.URL, BotAPIKey: "k", AnnounceChannel: "#announce"}, logger)
	svc := New(s, pub, a, leaderboard.New(c, logger), Config{
		SystemID:      999,
		DonorBadgeID:  1002,
		FreezeDays:    5,
		BaseURL:       "https://panel.example",
		AvatarURL:     "https://a.example",
		RankedWebhook: srv.URL + hookPath,
		AdminWebhook:  srv.URL + adminHookPath,
		Via:           "RAP",
	}, logger)
	svc.now = func() time.Time { return fixedNow }

	return &harness{t: t, svc: svc, db: db, store: s, cache: c, audit: a, http: rec, msgs: msgs}
}

// user inserts an account with an explicit id.
func (h *harness) user(id int64, name string, mask privilege.Privileges) *model.User {
	h.t.Helper()
	u := &model.User{
		ID:           id,
		Username:     name,
		UsernameSafe: store.SafeUsername(name),
		PasswordMD5:  "x",
		Privileges:   mask,
		Country:      "JP",
	}
	require.NoError(h.t, h.db.Create(u).Error)
	return u
}

func (h *harness) reload(id int64) *model.User {
	h.t.Helper()
	u, err := h.store.GetUser(context.Background(), id)
	require.NoError(h.t, err)
	return u
}

// published drains every message published so far.
func (h *harness) published() []*cache.Message {
	var out []*cache.Message
	for {
		select {
		case m := <-h.msgs:
			out = append(out, m)
		case <-time.After(50 * time.Millisecond):
			return out
		}
	}
}

func onChannel(msgs []*cache.Message, channel string) []string {
	var out []string
	for _, m := range msgs {
		if m.Channel == channel {
			out = append(out, m.Payload)
		}
	}
	return out
}

// rapLogs flushes the audit worker and returns every RAP log row.
func (h *harness) rapLogs() []model.RAPLog {
	h.t.Helper()
	h.audit.Stop(context.Background())
	var logs []model.RAPLog
	require.NoError(h.t, h.db.Order("id ASC").Find(&logs).Error)
	return logs
}

func (h *harness) banLogs(target int64) []model.BanLog {
	h.t.Helper()
	logs, err := h.store.BanLogsFor(context.Background(), target)
	require.NoError(h.t, err)
	return logs
}
