package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/kasuganosora/osupanel/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Traceback is the durable error log shown to staff with the error-log
// privilege. Entries are JSON lines appended to a rotating file.
type Traceback struct {
	path   string
	mu     sync.Mutex
	writer io.WriteCloser
	logger *zap.Logger
}

// NewTraceback opens (or creates) the traceback log described by cfg.
func NewTraceback(cfg config.LogConfig) (*Traceback, error) {
	if cfg.ErrorFile == "" {
		return nil, errors.New("logging: log.error_file is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.ErrorFile), 0o755); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.ErrorFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	tb := &Traceback{path: cfg.ErrorFile, writer: lj}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(lockedWriter{tb}),
		zapcore.ErrorLevel,
	)
	tb.logger = zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
	return tb, nil
}

type lockedWriter struct{ tb *Traceback }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.tb.mu.Lock()
	defer w.tb.mu.Unlock()
	return w.tb.writer.Write(p)
}

// Logger returns a zap logger that only records error-level entries into
// the traceback file.
func (t *Traceback) Logger() *zap.Logger { return t.logger }

// Tee returns base with every error-level entry mirrored into the traceback file.
func (t *Traceback) Tee(base *zap.Logger) *zap.Logger {
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, t.logger.Core())
	}))
}

// Entry is one decoded traceback line.
type Entry map[string]interface{}

// Tail returns up to n of the most recent entries, newest first.
func (t *Traceback) Tail(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	_ = t.logger.Sync()

	t.mu.Lock()
	f, err := os.Open(t.path)
	t.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(ring))
	for i := len(ring) - 1; i >= 0; i-- {
		var e Entry
		if err := json.Unmarshal([]byte(ring[i]), &e); err != nil {
			e = Entry{"raw": ring[i]}
		}
		out = append(out, e)
	}
	return out, nil
}

// Close flushes and closes the underlying file.
func (t *Traceback) Close() error {
	_ = t.logger.Sync()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writer.Close()
}
