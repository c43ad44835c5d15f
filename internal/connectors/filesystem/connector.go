// Package filesystem finds PDF files on local disk and watches folders for
// new or modified PDFs to ingest.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is emitted.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem connector closed")

// Option configures a Connector.
type Option func(*Connector)

// WithDebounce sets the quiet period applied to watch events.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		c.debounce = d
	}
}

// Connector reads PDFs below a root directory.
type Connector struct {
	rootPath string
	debounce time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector rooted at rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath: rootPath,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootPath returns the watched directory.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root path is an existing directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory: %w", c.rootPath, domain.ErrInvalidInput)
	}
	return nil
}

// Scan returns every visible PDF below the root, sorted by path.
func (c *Connector) Scan(ctx context.Context) ([]domain.FileUpload, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scan %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsPDF(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	files := make([]domain.FileUpload, 0, len(paths))
	for _, path := range paths {
		file, err := ReadFile(path)
		if err != nil {
			logger.Warn("%v", err)
			continue
		}
		files = append(files, file)
	}
	logger.Debug("scan %s: %d PDFs", c.rootPath, len(files))
	return files, nil
}

// Watch emits each PDF created or modified below the root once it has been
// quiet for the debounce period. The channel closes when ctx is cancelled.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileUpload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	out := make(chan domain.FileUpload)
	go c.run(ctx, watcher, out)

	logger.Info("Watching %s for PDFs", c.rootPath)
	return out, nil
}

// Close stops watching.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func (c *Connector) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.FileUpload) {
	defer close(out)
	defer watcher.Close()

	ready := make(chan string)
	var (
		mu     sync.Mutex
		timers = map[string]*time.Timer{}
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(c.debounce)
			return
		}
		timers[path] = time.AfterFunc(c.debounce, func() {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := c.addTree(watcher, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if path, ok := c.handleFsEvent(event); ok {
				schedule(path)
			}

		case path := <-ready:
			mu.Lock()
			delete(timers, path)
			mu.Unlock()

			file, err := ReadFile(path)
			if err != nil {
				logger.Warn("%v", err)
				continue
			}
			select {
			case out <- file:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handleFsEvent returns the path to ingest for a create or write of a
// visible PDF file. Removals and renames are ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(filepath.Base(event.Name)) || !IsPDF(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// addTree watches dir and its visible subdirectories.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// ReadFile loads a file for ingestion under its base name.
func ReadFile(path string) (domain.FileUpload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.FileUpload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.FileUpload{Filename: filepath.Base(path), Content: content}, nil
}

// Collect resolves files and directories into uploads. Directories
// contribute their PDFs; files are taken as given so that unsupported
// files are reported by ingestion rather than silently skipped.
func Collect(ctx context.Context, paths []string) ([]domain.FileUpload, error) {
	var files []domain.FileUpload
	for _, arg := range paths {
		path := ResolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if info.IsDir() {
			found, err := New(path).Scan(ctx)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		file, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// IsPDF reports whether path has a .pdf extension, in any case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// isHidden reports whether a file or directory name starts with a dot.
func isHidden(name string) bool {
	return name != "." && name != ".." && strings.HasPrefix(name, ".")
}
