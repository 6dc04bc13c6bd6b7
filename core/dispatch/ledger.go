package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/liftdispatch/core/model"
)

// Ledger records which car is responsible for each hall call. A call maps to
// at most one car at any instant. All operations are serialized by a single
// ledger-wide mutex.
type Ledger struct {
	mu      sync.Mutex
	entries map[model.HallCall]model.CarID
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[model.HallCall]model.CarID)}
}

// Commit records car as the owner of call. If the call is already owned and
// allowDuplicate is false the ledger is left untouched and ErrAlreadyCommitted
// is returned. With allowDuplicate the previous owner is replaced; the
// previous owner is returned when there was one.
func (l *Ledger) Commit(car model.CarID, call model.HallCall, allowDuplicate bool) (prev model.CarID, replaced bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if owner, ok := l.entries[call]; ok {
		if !allowDuplicate {
			return owner, false, fmt.Errorf("commit %s to car %d: owned by car %d: %w", call, car, owner, ErrAlreadyCommitted)
		}
		l.entries[call] = car
		return owner, true, nil
	}
	l.entries[call] = car
	return 0, false, nil
}

// Clear removes the entry for call. ErrNotCommitted is returned when no car
// owned it.
func (l *Ledger) Clear(call model.HallCall) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[call]; !ok {
		return fmt.Errorf("clear %s: %w", call, ErrNotCommitted)
	}
	delete(l.entries, call)
	return nil
}

// OwnerOf returns the car that owns call, if any.
func (l *Ledger) OwnerOf(call model.HallCall) (model.CarID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	car, ok := l.entries[call]
	return car, ok
}

// Len is the number of owned calls.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entry is one ledger row.
type Entry struct {
	Call model.HallCall `json:"call"`
	Car  model.CarID    `json:"car"`
}

// Snapshot returns the ledger rows ordered by floor then direction.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	out := make([]Entry, 0, len(l.entries))
	for call, car := range l.entries {
		out = append(out, Entry{Call: call, Car: car})
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Call.Floor != out[j].Call.Floor {
			return out[i].Call.Floor < out[j].Call.Floor
		}
		return out[i].Call.Direction < out[j].Call.Direction
	})
	return out
}
