package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
)

type dbSink struct {
	db        *gorm.DB
	batchSize int
	mu        sync.Mutex
	buffer    []models.SystemLog
	done      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
}

// DBHandler is an slog.Handler that batches ERROR+ records into the
// system_logs table. Handlers derived with WithAttrs share one buffer.
type DBHandler struct {
	sink  *dbSink
	attrs []slog.Attr
}

type DBHandlerOption func(*dbSink, *time.Duration)

// WithBatchSize flushes as soon as n records are buffered.
func WithBatchSize(n int) DBHandlerOption {
	return func(s *dbSink, _ *time.Duration) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithFlushInterval sets how often buffered records are written.
func WithFlushInterval(d time.Duration) DBHandlerOption {
	return func(_ *dbSink, interval *time.Duration) {
		if d > 0 {
			*interval = d
		}
	}
}

func NewDBHandler(db *gorm.DB, opts ...DBHandlerOption) *DBHandler {
	s := &dbSink{
		db:        db,
		batchSize: defaultBatchSize,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	interval := defaultFlushInterval
	for _, opt := range opts {
		opt(s, &interval)
	}
	s.buffer = make([]models.SystemLog, 0, s.batchSize)

	go s.flushLoop(interval)
	return &DBHandler{sink: s}
}

func (s *dbSink) flushLoop(interval time.Duration) {
	defer close(s.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *dbSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, s.batchSize)
	s.mu.Unlock()

	if err := s.db.CreateInBatches(batch, s.batchSize).Error; err != nil {
		// stdout only; logging through slog here would feed back into this sink
		slog.Warn("failed to flush system logs to DB", "error", err.Error(), "count", len(batch))
	}
}

// Stop flushes what is buffered and waits for the flush loop to exit.
func (h *DBHandler) Stop() {
	h.sink.stopOnce.Do(func() { close(h.sink.done) })
	<-h.sink.stopped
}

// Enabled only handles ERROR and above.
func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time.UTC(),
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "role":
			entry.Role = a.Value.String()
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		default:
			extra[a.Key] = a.Value.Resolve().Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	s := h.sink
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	needFlush := len(s.buffer) >= s.batchSize
	s.mu.Unlock()

	if needFlush {
		go s.flush()
	}
	return nil
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &DBHandler{sink: h.sink, attrs: merged}
}

// WithGroup is a no-op: system_logs columns are flat.
func (h *DBHandler) WithGroup(string) slog.Handler {
	return h
}
