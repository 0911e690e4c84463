package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"
)

const defaultDebounce = 200 * time.Millisecond

// Watch reloads the store whenever one of the content files changes, until
// ctx is done. Bursts of writes are folded into one reload. Failed reloads
// are logged and the previous content is kept.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	if s.dir == "" {
		return errors.New("content watch: no content directory")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	log := pslog.Ctx(ctx).With("dir", s.dir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("content watch %s: %w", s.dir, err)
	}
	log.Info("content watch start")

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("content watch stop")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isContentFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			log.Trace("content change", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := s.Reload(); err != nil {
				log.Warn("content reload failed", "err", err)
				continue
			}
			c, _ := s.Snapshot()
			log.Info("content reloaded", "experience", len(c.Experience), "projects", len(c.Projects))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("content watch error", "err", err)
		}
	}
}

func isContentFile(name string) bool {
	switch filepath.Base(name) {
	case ExperienceFile, ProjectsFile, LinksFile:
		return true
	}
	return false
}
