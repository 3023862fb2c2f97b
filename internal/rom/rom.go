// Package rom reads CHIP-8 program images from disk and watches them for
// changes.
package rom

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"

	"github.com/koushik255/chip8go/chip8"
)

// ErrEmpty is returned for a ROM file without any content.
var ErrEmpty = errors.New("ROM file is empty")

// DefaultDebounce is how long Watch waits after the last change event
// before reloading, so editors writing a file in several steps trigger one
// reload.
const DefaultDebounce = 100 * time.Millisecond

// Read loads a program image and checks that it fits in machine memory.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading ROM")
	}
	if len(data) == 0 {
		return nil, errors.Wrapf(ErrEmpty, "loading %s", path)
	}
	if len(data) > chip8.MaxProgramSize {
		return nil, errors.Wrapf(&chip8.SizeError{Size: len(data), Max: chip8.MaxProgramSize}, "loading %s", path)
	}
	return data, nil
}

// Watcher reloads a ROM when its file changes.
type Watcher struct {
	path     string
	logger   *log.Logger
	debounce time.Duration
}

// NewWatcher returns a watcher for the ROM at path.
func NewWatcher(logger *log.Logger, path string) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Run watches the ROM's directory until ctx is done, calling reload with the
// new image after each change. Images that fail to read are logged and
// skipped.
func (w *Watcher) Run(ctx context.Context, reload func([]byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer watcher.Close()

	if err := watcher.Watch(filepath.Dir(w.path)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(w.path))
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-watcher.Event:
			if ev != nil && filepath.Clean(ev.Name) == w.path && !ev.IsAttrib() {
				fire = time.After(w.debounce)
			}

		case err := <-watcher.Error:
			w.logger.Error("ROM watcher failed", log.Err(err))

		case <-fire:
			fire = nil
			data, err := Read(w.path)
			if err != nil {
				w.logger.Error("Reloading ROM failed", log.String("file", w.path), log.Err(err))
				continue
			}
			w.logger.Info("Reloading ROM", log.String("file", w.path), log.Int("size", len(data)))
			reload(data)
		}
	}
}
