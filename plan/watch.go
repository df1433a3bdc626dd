package plan

import (
	"path/filepath"
	"time"

	"github.com/floorworks/planedit/logging"
	"github.com/fsnotify/fsnotify"
)

const reloadSettle = 250 * time.Millisecond

// DefWatcher reloads the catalog whenever def files change on disk, so
// tweaking a def in another window shows up without restarting. Changes
// are coalesced; editors save files in bursts.
type DefWatcher struct {
	catalog  *Catalog
	dir      string
	base     *fsnotify.Watcher
	done     chan struct{}
	reloaded func()
}

// WatchDefs starts watching dir. onReload runs after every successful
// reload, from the watcher's goroutine; it may be nil.
func WatchDefs(catalog *Catalog, dir string, onReload func()) (*DefWatcher, error) {
	base, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := base.Add(dir); err != nil {
		base.Close()
		return nil, err
	}
	dw := &DefWatcher{
		catalog:  catalog,
		dir:      dir,
		base:     base,
		done:     make(chan struct{}),
		reloaded: onReload,
	}
	go dw.eventLoop()
	logging.Info("watching defs", "dir", dir)
	return dw, nil
}

func (dw *DefWatcher) Close() {
	close(dw.done)
}

func (dw *DefWatcher) eventLoop() {
	defer dw.base.Close()
	var settle <-chan time.Time
	for {
		select {
		case <-dw.done:
			return
		case err, ok := <-dw.base.Errors:
			if !ok {
				return
			}
			logging.Warn("def watcher error", "error", err)
		case ev, ok := <-dw.base.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(ev.Name) != ".json" {
				continue
			}
			logging.Debug("def file changed", "name", ev.Name, "op", ev.Op)
			settle = time.After(reloadSettle)
		case <-settle:
			settle = nil
			if err := dw.catalog.LoadDir(dw.dir); err != nil {
				logging.Warn("def reload failed", "dir", dw.dir, "error", err)
				continue
			}
			if dw.reloaded != nil {
				dw.reloaded()
			}
		}
	}
}
