// Package searchlog appends subject-search events to daily log files. The
// feed is fire-and-forget: entries arrive as events, never as correlated
// calls, and a write failure is logged but acknowledged nowhere.
package searchlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trinity/internal/bus"
)

// TopicSubjectSearch carries one entry per successful subject lookup.
const TopicSubjectSearch = "logging.subjectSearch"

// Entry is the wire form of one subject search.
type Entry struct {
	ClassKrName string `json:"classKrName"`
	ClassId     string `json:"classId"`
	ClassNo     string `json:"classNo"`
}

// Writer appends entries to <dir>/YYYY-MM-DD.log, one line each. Safe for
// concurrent use; the day boundary follows local time.
type Writer struct {
	dir    string
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Writer{dir: dir, logger: logger, now: time.Now}, nil
}

func (w *Writer) Append(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	path := filepath.Join(w.dir, now.Format("2006-01-02")+".log")
	line := fmt.Sprintf("[%s]: [classKrName: %s] [classId: %s] [classNo: %s]\n",
		now.Format("2006-01-02 15:04:05"), entry.ClassKrName, entry.ClassId, entry.ClassNo)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// Worker binds the writer to the subject-search event topic.
type Worker struct {
	writer *Writer
	logger *slog.Logger
}

func NewWorker(writer *Writer, logger *slog.Logger) *Worker {
	return &Worker{writer: writer, logger: logger}
}

func (w *Worker) Register(r *bus.Responder) {
	r.Handle(TopicSubjectSearch, bus.JSONHandler(w.subjectSearch))
}

func (w *Worker) subjectSearch(ctx context.Context, in Entry) (any, error) {
	if err := w.writer.Append(in); err != nil {
		return nil, err
	}
	w.logger.InfoContext(ctx, "subject search logged",
		"class_kr_name", in.ClassKrName, "class_id", in.ClassId, "class_no", in.ClassNo)
	return nil, nil
}
