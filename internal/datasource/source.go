package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"enrollscope/internal/dataset"
	"enrollscope/internal/infrastructure"
	"enrollscope/pkg/contracts/domain"
)

// ErrNotLoaded is returned when the dataset is read before the first
// successful load.
var ErrNotLoaded = errors.New("dataset not loaded")

// ReloadListener is notified after a successful reload swap.
type ReloadListener func(recordCount int)

// Source is the cached, process-lifetime view of the enrollment dataset.
type Source struct {
	path       string
	normalizer *dataset.Normalizer
	logger     *slog.Logger
	metrics    *infrastructure.Metrics

	mu        sync.RWMutex
	records   []domain.EnrollmentRecord
	loadedAt  time.Time
	listeners []ReloadListener
}

// New creates a source for the dataset at path. Metrics may be nil (the CLI
// runs without a registry).
func New(path string, normalizer *dataset.Normalizer, logger *slog.Logger, metrics *infrastructure.Metrics) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		path:       path,
		normalizer: normalizer,
		logger:     logger.With(slog.String("component", "datasource")),
		metrics:    metrics,
	}
}

// Load reads, de-duplicates and normalizes the dataset, then atomically
// swaps it into the cache. Only a genuinely unreadable or corrupt source
// fails; schema gaps are recovered by the normalizer.
func (s *Source) Load() error {
	start := time.Now()

	raw, err := ReadCSV(s.path)
	if err != nil {
		s.countReload("failure")
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	records := s.normalizer.Normalize(raw)

	s.mu.Lock()
	s.records = records
	s.loadedAt = time.Now()
	listeners := make([]ReloadListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.countReload("success")
	if s.metrics != nil {
		s.metrics.DatasetRecords.Set(float64(len(records)))
	}

	s.logger.Info("dataset loaded",
		slog.String("path", s.path),
		slog.Int("record_count", len(records)),
		slog.String("duration", time.Since(start).String()))

	for _, listener := range listeners {
		listener(len(records))
	}
	return nil
}

// Records returns the cached canonical record set. Callers must treat the
// slice as read-only; it is shared without copying.
func (s *Source) Records() ([]domain.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadedAt.IsZero() {
		return nil, ErrNotLoaded
	}
	return s.records, nil
}

// LoadedAt returns when the cached set was last swapped in.
func (s *Source) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Subscribe registers a listener called after every successful reload.
func (s *Source) Subscribe(listener ReloadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Watch reloads the dataset when the underlying file changes. Bursts of
// write events are debounced into a single reload. Blocks until ctx is done.
func (s *Source) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and atomic writers replace the file,
	// which would silently drop a watch on the file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s.logger.Info("watching dataset for changes",
		slog.String("path", s.path),
		slog.String("debounce", debounce.String()))

	base := filepath.Base(s.path)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := s.Load(); err != nil {
				// Keep serving the previous snapshot.
				s.logger.Error("dataset reload failed",
					slog.String("error", err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func (s *Source) countReload(outcome string) {
	if s.metrics != nil {
		s.metrics.DatasetReloads.WithLabelValues(outcome).Inc()
	}
}
