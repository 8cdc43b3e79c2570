package audit

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/store"
	"github.com/kasuganosora/osupanel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := New(store.New(db), "RAP", nop())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc, db
}

func TestNew_StartsWorker(t *testing.T) {
	svc, _ := newService(t)
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	svc, db := newService(t)

	svc.Log(Entry{ActorID: 5, Text: "has restricted Alice (42)", Meta: map[string]int64{"target": 42}})

	// Stop flushes remaining entries
	svc.Stop(context.Background())

	var logs []model.RAPLog
	db.Find(&logs)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(5), logs[0].UserID)
	assert.Equal(t, "has restricted Alice (42)", logs[0].Text)
	assert.Equal(t, "RAP", logs[0].Through)
	assert.Equal(t, int64(1700000000), logs[0].Datetime)
	assert.JSONEq(t, `{"target":42}`, string(logs[0].Meta))
}

func TestLog_MultipleLogs(t *testing.T) {
	svc, db := newService(t)

	for i := 0; i < 250; i++ {
		svc.Log(Entry{ActorID: 1, Text: "bulk"})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.RAPLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
}

func TestLog_AfterStopDropped(t *testing.T) {
	svc, db := newService(t)
	svc.Stop(context.Background())
	svc.Stop(context.Background())

	svc.Log(Entry{ActorID: 1, Text: "late"})

	var count int64
	db.Model(&model.RAPLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestList(t *testing.T) {
	svc, _ := newService(t)
	svc.Log(Entry{ActorID: 1, Text: "a"})
	svc.Log(Entry{ActorID: 1, Text: "b"})
	svc.Stop(context.Background())

	logs, total, err := svc.List(context.Background(), store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)
}

func TestLogBan(t *testing.T) {
	svc, _ := newService(t)
	defer svc.Stop(context.Background())

	svc.LogBan(context.Background(), BanEntry{ActorID: 1, TargetID: 42, Summary: "restrict", Detail: "cheating"})

	bans, err := svc.BansFor(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "restrict", bans[0].Summary)
	assert.Equal(t, "cheating", bans[0].Detail)
	assert.Equal(t, int64(1700000000), bans[0].TS)
}
