package kagero

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// HookKind distinguishes how an interception was installed.
type HookKind string

const (
	KindInlinePatch HookKind = "inline_patch"
	KindPointerSwap HookKind = "pointer_swap"
)

// Entry is a read-only projection of one interception, kept for diagnostics.
// It never participates in control flow.
type Entry struct {
	ID          string
	Module      string
	Symbol      string
	Kind        HookKind
	Original    uintptr
	Replacement uintptr
	Trampoline  uintptr
	Active      bool
	InstalledAt time.Time
}

// Registry is an append-only, insertion-ordered list of entries. Failed
// installs are recorded inactive rather than omitted, so "never worked" and
// "installed then removed" stay distinguishable.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add records an entry and returns its generated id.
func (r *Registry) Add(e Entry) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	if e.InstalledAt.IsZero() {
		e.InstalledAt = time.Now()
	}
	r.entries = append(r.entries, e)
	return e.ID
}

// SetActive flips the active flag of the entry with the given id.
func (r *Registry) SetActive(id string, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Active = active
			return true
		}
	}
	return false
}

// Snapshot returns a copy of all entries in insertion order.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of recorded entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
