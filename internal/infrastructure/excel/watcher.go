package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reload re-reads the workbook unless the file on disk is the one this
// repository wrote last. A failed read keeps the previous dataset.
func (r *DatasetRepository) Reload(ctx context.Context) (bool, error) {
	st, err := os.Stat(r.path)
	if err != nil {
		return false, err
	}
	if r.isOwnWrite(fileStamp{modTime: st.ModTime(), size: st.Size()}) {
		return false, nil
	}
	if _, err := r.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Watch reloads the dataset whenever the workbook changes on disk. It blocks
// until ctx is cancelled.
func (r *DatasetRepository) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			r.log.Warn("close watcher", zap.Error(err))
		}
	}()

	// Watch the directory: editors and our own rename replace the inode.
	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.log.Info("watching dataset", zap.String("path", r.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.isDatasetEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			reloaded, err := r.Reload(ctx)
			if err != nil {
				r.log.Warn("dataset reload failed", zap.Error(err))
				continue
			}
			if reloaded {
				r.log.Info("dataset reloaded after external change", zap.Int("rows", r.Snapshot().Len()))
			}
		}
	}
}

func (r *DatasetRepository) isDatasetEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
