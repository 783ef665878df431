package feedback

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusbot/advisorbot"
)

var header = []string{"id", "question", "answer", "helpful", "created"}

// Adapter appends feedback rows to a CSV file. The file is created with a
// header row on first write and is safe for concurrent appends within a
// single process.
type Adapter struct {
	path   string
	mu     sync.Mutex
	logger *zap.SugaredLogger
}

type Option func(*Adapter)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(path string, options ...Option) *Adapter {
	a := &Adapter{
		path:   path,
		logger: zap.NewNop().Sugar(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

func (a *Adapter) Append(ctx context.Context, aFeedback *advisorbot.Feedback) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	writeHeader := false
	if info, err := os.Stat(a.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat feedback file: %w", err)
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if err := w.Write([]string{
		aFeedback.ID.String(),
		aFeedback.Question,
		aFeedback.Answer,
		strconv.FormatBool(aFeedback.Helpful),
		aFeedback.Created.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush feedback file: %w", err)
	}

	a.logger.With("path", a.path).Debug("Appended feedback")

	return nil
}
