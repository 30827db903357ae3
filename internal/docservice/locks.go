package docservice

import "sync"

// pathLocks hands out one mutex per document path. Entries are dropped once
// nobody holds or waits for them.
type pathLocks struct {
	mu sync.Mutex
	m  map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until path is free and returns the matching unlock.
func (l *pathLocks) lock(path string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*pathLock)
	}
	pl, ok := l.m[path]
	if !ok {
		pl = &pathLock{}
		l.m[path] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.m, path)
		}
		l.mu.Unlock()
	}
}
