package logging

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kasuganosora/osupanel/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTraceback(t *testing.T) *Traceback {
	t.Helper()
	tb, err := NewTraceback(config.LogConfig{
		ErrorFile: filepath.Join(t.TempDir(), "logs", "errors.log"),
		MaxSize:   1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tb.Close() })
	return tb
}

func TestTraceback_TailNewestFirst(t *testing.T) {
	tb := newTestTraceback(t)
	tb.Logger().Error("first", zap.Int("n", 1))
	tb.Logger().Error("second", zap.Int("n", 2))
	tb.Logger().Error("third", zap.Int("n", 3))

	entries, err := tb.Tail(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0]["msg"])
	assert.Equal(t, "second", entries[1]["msg"])
}

func TestTraceback_IgnoresBelowError(t *testing.T) {
	tb := newTestTraceback(t)
	tb.Logger().Info("info")
	tb.Logger().Warn("warn")

	entries, err := tb.Tail(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTraceback_Tee(t *testing.T) {
	tb := newTestTraceback(t)
	logger := tb.Tee(zap.NewNop())
	logger.Info("not recorded")
	logger.Error("boom", zap.Error(errors.New("db down")))

	entries, err := tb.Tail(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0]["msg"])
	assert.Equal(t, "db down", entries[0]["error"])
}

func TestTraceback_EmptyPath(t *testing.T) {
	_, err := NewTraceback(config.LogConfig{})
	assert.Error(t, err)
}
