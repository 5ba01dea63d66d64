package command

import "sync"

// userLocks serializes ledger chains per user within this process. The
// record-progress chain (progress write, streak touch, points award) is not
// transactional across tables, so two concurrent calls for the same user
// could interleave read-modify-write cycles and lose updates. Holding the
// user's lock for the whole chain removes that race for a single instance;
// cross-instance races are accepted and documented.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// acquire blocks until the user's lock is held and returns the release func.
func (ul *userLocks) acquire(userID string) func() {
	ul.mu.Lock()
	l, ok := ul.locks[userID]
	if !ok {
		l = &userLock{}
		ul.locks[userID] = l
	}
	l.refs++
	ul.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		ul.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(ul.locks, userID)
		}
		ul.mu.Unlock()
	}
}
