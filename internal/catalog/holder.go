package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotLoaded = errors.New("catalog not loaded")

// Snapshot is one built index plus where and when it came from.
type Snapshot struct {
	Index      *Index
	Generation string
	BuiltAt    time.Time
	Source     string
}

// Stats is the JSON view of a snapshot.
type Stats struct {
	Products      int       `json:"products"`
	DistinctCodes int       `json:"distinct_codes"`
	Generation    string    `json:"generation"`
	BuiltAt       time.Time `json:"built_at"`
	Source        string    `json:"source"`
}

func (s *Snapshot) Stats() Stats {
	return Stats{
		Products:      s.Index.Len(),
		DistinctCodes: s.Index.DistinctCodes(),
		Generation:    s.Generation,
		BuiltAt:       s.BuiltAt,
		Source:        s.Source,
	}
}

// Holder keeps the current snapshot for the life of the process. A reload
// builds a fresh index and swaps the whole snapshot, so a reader never sees
// structures from two different builds.
type Holder struct {
	src     Source
	log     *zap.Logger
	metrics *Metrics

	reloadMu sync.Mutex
	cur      atomic.Pointer[Snapshot]
}

func NewHolder(src Source, log *zap.Logger, metrics *Metrics) *Holder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Holder{src: src, log: log, metrics: metrics}
}

// Current returns the active snapshot, or nil before the first Reload.
func (h *Holder) Current() *Snapshot {
	return h.cur.Load()
}

func (h *Holder) Index() (*Index, error) {
	s := h.cur.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s.Index, nil
}

func (h *Holder) Ping(ctx context.Context) error {
	if h.cur.Load() == nil {
		return ErrNotLoaded
	}
	return h.src.Ping(ctx)
}

// Reload loads the source and installs a new snapshot. On failure the
// previous snapshot stays active.
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	start := time.Now()
	products, err := h.src.Load(ctx)
	if err != nil {
		h.metrics.observeBuild(err, 0)
		h.log.Error("catalog load failed", zap.String("source", h.src.Name()), zap.Error(err))
		return nil, fmt.Errorf("reload %s: %w", h.src.Name(), err)
	}

	snap := &Snapshot{
		Index:      Build(products),
		Generation: uuid.NewString(),
		BuiltAt:    time.Now().UTC(),
		Source:     h.src.Name(),
	}
	h.cur.Store(snap)
	h.metrics.observeBuild(nil, snap.Index.Len())

	h.log.Info("catalog index built",
		zap.String("source", snap.Source),
		zap.String("generation", snap.Generation),
		zap.Int("products", snap.Index.Len()),
		zap.Int("distinct_codes", snap.Index.DistinctCodes()),
		zap.Duration("took", time.Since(start)),
	)
	return snap, nil
}

// WatchFile rebuilds the index whenever path is written or recreated. It
// blocks until ctx is done.
func (h *Holder) WatchFile(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors that replace the file drop the old inode.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}
	h.log.Info("watching products file", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			_, _ = h.Reload(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			h.log.Warn("products watcher error", zap.Error(err))
		}
	}
}
