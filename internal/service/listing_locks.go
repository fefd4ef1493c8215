package service

import "sync"

// listingLocks hands out one mutex per listing id. Entries are dropped when the last
// holder unlocks so the map only holds listings with writers in flight.
type listingLocks struct {
	mu    sync.Mutex
	locks map[uint]*listingLock
}

type listingLock struct {
	mu   sync.Mutex
	refs int
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[uint]*listingLock)}
}

// Lock blocks until the caller holds listingID and returns the matching unlock.
func (l *listingLocks) Lock(listingID uint) func() {
	l.mu.Lock()
	lk, ok := l.locks[listingID]
	if !ok {
		lk = &listingLock{}
		l.locks[listingID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()

	return func() {
		lk.mu.Unlock()

		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, listingID)
		}
		l.mu.Unlock()
	}
}

func (l *listingLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
