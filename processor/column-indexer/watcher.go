package columnindexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/semaeis/source/extract"
)

// WatcherConfig configures the extract watcher
type WatcherConfig struct {
	// Root is the extract root holding one directory per report year
	Root string

	// DebounceDelay is how long to wait for more changes before processing
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// WatchEvent represents an extract change
type WatchEvent struct {
	// Path is the extract path relative to the root
	Path string

	// Operation is the type of change
	Operation WatchOperation

	// File describes the changed extract (nil for delete operations)
	File *extract.File

	// Error if the extract could not be described
	Error error
}

// WatchOperation indicates the type of file operation
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// watchedExtensions are the files whose changes trigger re-indexing. A layout
// change re-indexes the extract it describes.
var watchedExtensions = map[string]bool{".dat": true, ".xls": true, ".lyt": true}

// Watcher watches an extract root for changed extracts
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	// State tracking for change detection
	hashMu sync.RWMutex
	hashes map[string]string // relative path → content hash

	events    chan WatchEvent
	started   atomic.Bool
	stopOnce  sync.Once
	closeDone chan struct{}
}

// NewWatcher creates a new extract watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	return &Watcher{
		config:    config,
		watcher:   fsw,
		logger:    logger,
		pending:   make(map[string]fsnotify.Op),
		hashes:    make(map[string]string),
		events:    make(chan WatchEvent, 100),
		closeDone: make(chan struct{}),
	}, nil
}

// Events returns the channel of watch events
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start watches the root and its year directories. Year directories created
// later are added as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.config.Root); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.config.Root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addDirectory(filepath.Join(w.config.Root, entry.Name()))
		}
	}

	w.started.Store(true)
	go w.processEvents(ctx)

	w.logger.Info("Extract watcher started",
		"root", w.config.Root,
		"debounce", w.config.DebounceDelay)
	return nil
}

// Stop stops the watcher and closes the events channel.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.watcher.Close()
		if w.started.Load() {
			<-w.closeDone
		}
	})
	return err
}

// Prime records the content hash of an extract indexed outside the watcher,
// so an unchanged rewrite does not trigger re-indexing.
func (w *Watcher) Prime(path string) {
	hash, err := hashFile(path)
	if err != nil {
		return
	}
	w.setHash(w.relPath(path), hash)
}

func (w *Watcher) setHash(relPath, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[relPath] = hash
}

func (w *Watcher) getHash(relPath string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[relPath]
	return hash, ok
}

func (w *Watcher) relPath(path string) string {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return path
	}
	return rel
}

func (w *Watcher) addDirectory(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch directory",
			"path", path,
			"error", err)
		return
	}
	w.logger.Debug("Watching directory", "path", path)
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.closeDone)
	defer close(w.events)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !watchedExtensions[strings.ToLower(filepath.Ext(path))] {
		// Year directories only sit directly below the root.
		if event.Has(fsnotify.Create) && filepath.Dir(path) == filepath.Clean(w.config.Root) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.addDirectory(path)
			}
		}
		return
	}

	// Layout changes re-index the extract next to them.
	if strings.EqualFold(filepath.Ext(path), ".lyt") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".dat"
		if _, err := os.Stat(path); err != nil {
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Extract change detected",
		"path", w.relPath(path),
		"op", event.Op.String())
}

// flushPending processes accumulated changes
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath := w.relPath(path)
		event := WatchEvent{Path: relPath}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			event.Operation = OpDelete
			w.hashMu.Lock()
			delete(w.hashes, relPath)
			w.hashMu.Unlock()
			w.sendEvent(event)
			continue
		}

		hash, err := hashFile(path)
		if err != nil {
			event.Error = err
			w.sendEvent(event)
			continue
		}

		oldHash, hadHash := w.getHash(relPath)
		if hadHash && oldHash == hash {
			continue
		}
		w.setHash(relPath, hash)

		f, err := extract.NewFile(path)
		if err != nil {
			event.Error = err
			w.sendEvent(event)
			continue
		}

		if op.Has(fsnotify.Create) || !hadHash {
			event.Operation = OpCreate
		} else {
			event.Operation = OpModify
		}
		event.File = f
		w.sendEvent(event)
	}
}

// sendEvent sends an event to the output channel
func (w *Watcher) sendEvent(event WatchEvent) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path)
	}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
