package bookmarks

import "sync"

// keyedMutex hands out one mutex per article id and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until id is free and returns the matching unlock func.
func (k *keyedMutex) Lock(id int) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int]*refLock)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
