package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/folio/internal/storage"
)

func watcherTestEnv(t *testing.T) (string, *storage.FS, *DB) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, db *DB, store *storage.FS, root string, cb EventCallback) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, db, store, root, quietLogger(), cb)
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	var mu sync.Mutex
	var events []string
	startWatch(t, db, store, root, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.md")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == ChangeCreated+":new.md" {
				return true
			}
		}
		return false
	}, "expected created:new.md callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	startWatch(t, db, store, root, nil)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "marker.md"), []byte("# Marker"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("marker.md")
		return cs != ""
	}, "marker not indexed")
	if cs, _ := db.GetChecksum("notes.txt"); cs != "" {
		t.Error("non-document file was indexed")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	startWatch(t, db, store, root, nil)

	subDir := filepath.Join(root, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("subdir/deep.md")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(root, "del.md"), []byte("# Delete Me"), 0o644)
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	if cs, _ := db.GetChecksum("del.md"); cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	startWatch(t, db, store, root, nil)
	_ = os.Remove(filepath.Join(root, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.md")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(root, "old.md"), []byte("# Rename"), 0o644)
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	startWatch(t, db, store, root, nil)
	_ = os.Rename(filepath.Join(root, "old.md"), filepath.Join(root, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.md")
		newCS, _ := db.GetChecksum("renamed.md")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
