package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/storage"
)

// Change kinds reported to an EventCallback.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch re-indexes documents under root as they change on disk until ctx
// is cancelled. Directories created later are watched too. A rename drops
// the old path at once and schedules a reconciliation pass that picks up
// the new one.
func Watch(ctx context.Context, db DocumentIndex, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	var (
		reconcileTimer *time.Timer
		reconcileCh    <-chan time.Time
	)
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
			return
		}
		reconcileTimer.Reset(reconcileDelay)
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(w, ev.Name); err != nil {
						logger.Warn("watcher: add new dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
					}
					indexNewDir(db, store, root, ev.Name, logger, notify)
					continue
				}
			}
			if !store.IsDocument(ev.Name) {
				continue
			}
			rel, err := relPath(root, ev.Name)
			if err != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if err := reindex(db, store, rel); err != nil {
					if !errors.Is(err, errUnchanged) {
						logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
					}
					continue
				}
				kind := ChangeUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = ChangeCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if err := db.DeleteDocument(rel); err != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				notify(ChangeDeleted, rel)

			case ev.Op&fsnotify.Rename != 0:
				if err := db.DeleteDocument(rel); err != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", err.Error()))
				} else {
					notify(ChangeDeleted, rel)
				}
				scheduleReconcile()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// reindex skips files whose checksum already matches the index, so saves
// made through the service are not reported twice.
func reindex(db DocumentIndex, store storage.Provider, rel string) error {
	data, err := store.Read(rel)
	if err != nil {
		return err
	}
	if cs, _ := db.GetChecksum(rel); cs == storage.Checksum(data) {
		return errUnchanged
	}
	return IndexFile(db, rel, data)
}

var errUnchanged = errors.New("index: unchanged")

func reconcile(db DocumentIndex, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err == nil {
			notify(ChangeDeleted, p)
		}
	}
	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, err := store.Read(p)
		if err != nil {
			continue
		}
		if err := IndexFile(db, p, data); err == nil {
			logger.Debug("reconcile: indexed", slog.String("path", p))
			notify(ChangeCreated, p)
		}
	}
}

func indexNewDir(db DocumentIndex, store storage.Provider, root, dir string, logger *slog.Logger, notify EventCallback) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !store.IsDocument(p) {
			return nil
		}
		rel, err := relPath(root, p)
		if err != nil {
			return nil
		}
		if err := reindex(db, store, rel); err == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			notify(ChangeCreated, rel)
		}
		return nil
	})
}

func relPath(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// addDirsRecursive watches root and every non-hidden directory below it.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
