package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bastion-hq/palisade/pkg/fasttrack"
)

// debounceDelay coalesces rapid successive file events. Editors often
// produce several writes (or a write plus a rename) for a single save.
const debounceDelay = 100 * time.Millisecond

// FileSource loads the intake template from a local YAML file and can watch
// it for changes. The watch covers the parent directory rather than the file
// itself because most editors save by writing a temp file and renaming it
// over the original, which would otherwise drop the watch.
type FileSource struct {
	path      string
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewFileSource creates a file-backed template source for the given path.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("template file path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileSource{
		path:      path,
		logger:    logger,
		debouncer: NewDebouncer(debounceDelay),
		stopCh:    make(chan struct{}),
	}, nil
}

// Load reads and parses the template file.
func (s *FileSource) Load(_ context.Context) (*fasttrack.Template, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return fasttrack.ParseTemplate(data)
}

// Watch monitors the template file for changes and invokes onChange when it
// is modified. Watch blocks until the context is cancelled or Close is
// called. Reload failures are logged but do not stop the watch; the gate
// keeps serving the previously installed template.
func (s *FileSource) Watch(ctx context.Context, onChange ReloadFunc) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("watch already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher
	s.running = true
	s.mu.Unlock()

	defer func() {
		watcher.Close()
		s.mu.Lock()
		s.running = false
		s.watcher = nil
		s.mu.Unlock()
	}()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	s.logger.Info("template file watch started", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("template file watch stopped by context cancellation")
			return nil
		case <-s.stopCh:
			s.logger.Info("template file watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.shouldProcessEvent(event) {
				continue
			}
			s.logger.Debug("template file event", "event", event.Op.String(), "file", event.Name)
			s.debouncer.Trigger(func() {
				if err := onChange(); err != nil {
					s.logger.Error("template reload failed, keeping previous template",
						"path", s.path,
						"error", err)
					return
				}
				s.logger.Info("template reloaded", "path", s.path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("file watcher error", "error", err)
		}
	}
}

// Close stops the watch. It is safe to call Close before or without Watch.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopCh:
		// Already closed
	default:
		close(s.stopCh)
	}
	return nil
}

// Path returns the watched template file path.
func (s *FileSource) Path() string {
	return s.path
}

// shouldProcessEvent reports whether the event concerns the template file
// and represents a content change. Chmod events carry no content change and
// are ignored.
func (s *FileSource) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(s.path) {
		return false
	}
	if event.Op&fsnotify.Chmod == fsnotify.Chmod && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Debouncer delays function execution until a quiet period has elapsed,
// collapsing bursts of triggers into a single call.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
}

// NewDebouncer creates a debouncer with the specified delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay. If Trigger is called again
// before the delay elapses, the previous call is cancelled and the delay
// restarts.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending execution.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
