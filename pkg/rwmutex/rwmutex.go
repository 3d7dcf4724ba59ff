// Package rwmutex implements a multi-reader/single-writer lock whose write
// side tracks the identity of its current holder, so an unlock attempted by
// the wrong caller is reported instead of silently corrupting lock state.
package rwmutex

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrIllegalLockState is returned by ReadUnlock when the lock is not
// currently held by any reader.
var ErrIllegalLockState = errors.New("rwmutex: read unlock while not held by a reader")

// ErrConcurrentModification is returned by WriteUnlock when the lock is not
// held in write mode, or is held by a Token other than the one presented.
var ErrConcurrentModification = errors.New("rwmutex: write unlock by non-holder or while not writing")

const (
	dormant = 0
	writing = -1
	// any state > 0 means Reading(state)
)

// Token identifies a write-lock holder. WriteLock returns one; the matching
// WriteUnlock must be called with it. Readers have no equivalent token
// because any number of them legitimately hold the lock at once.
type Token uint64

var tokenSeq uint64

func nextToken() Token {
	return Token(atomic.AddUint64(&tokenSeq, 1))
}

// RWMutex is the lock described in spec C1: a pair of handles sharing one
// state variable with three logical values (Dormant, Reading(n), Writing).
// Starvation is acceptable — a writer may wait indefinitely while readers
// keep churning; there is no fairness promise. All wake-ups happen inside
// the critical section. Waiting writers are not queued: after a wake-up,
// whichever goroutine reacquires the internal mutex first takes the lock,
// which may be a writer that arrived later.
type RWMutex struct {
	mu     sync.Mutex
	cond   *sync.Cond
	state  int
	holder Token
}

// New returns a ready-to-use RWMutex in the Dormant state.
func New() *RWMutex {
	m := &RWMutex{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// ReadLock blocks while a writer holds the lock, then registers the caller
// as one more reader.
func (m *RWMutex) ReadLock() {
	m.mu.Lock()
	for m.state == writing {
		m.cond.Wait()
	}
	m.state++
	m.mu.Unlock()
}

// ReadUnlock releases one reader's hold. The last reader leaving broadcasts
// so a writer waiting on Dormant is never missed.
func (m *RWMutex) ReadUnlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state <= dormant {
		return ErrIllegalLockState
	}
	m.state--
	if m.state == dormant {
		m.cond.Broadcast()
	}
	return nil
}

// WriteLock blocks until the lock is Dormant, claims it exclusively, and
// returns a Token identifying this holder for the matching WriteUnlock.
func (m *RWMutex) WriteLock() Token {
	m.mu.Lock()
	for m.state != dormant {
		m.cond.Wait()
	}
	m.state = writing
	tok := nextToken()
	m.holder = tok
	m.mu.Unlock()
	return tok
}

// WriteUnlock releases the write lock held under tok. tok must be the Token
// returned by the matching WriteLock; if it isn't, or the lock isn't
// currently held in write mode, WriteUnlock returns
// ErrConcurrentModification and leaves the lock state untouched.
func (m *RWMutex) WriteUnlock(tok Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != writing || m.holder != tok {
		return ErrConcurrentModification
	}
	m.state = dormant
	m.holder = 0
	m.cond.Broadcast()
	return nil
}
