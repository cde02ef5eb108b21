package registry

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/netcfgd/netcfgd/internal/log"
)

// Path is an ordered sequence of key segments, e.g.
// {"interface", "eth0", "state"}.
type Path []string

// String renders the path with dot separators, for logging and sorting.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// key returns the lookup key for p. Segments are length-prefixed so a
// separator character inside a segment (a dotted VLAN name like
// "eth0.100") can never collide with a segment boundary.
func (p Path) key() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteString(strconv.Itoa(len(seg)))
		b.WriteByte(':')
		b.WriteString(seg)
	}
	return b.String()
}

// HasPrefix reports whether p starts with the given prefix, compared
// segment-wise. Every path has the empty prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if p[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// clone returns an independent copy so stored paths never alias caller slices.
func (p Path) clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Entry is a stored (path, value) pair.
type Entry struct {
	Path  Path
	Value interface{}
}

// Change describes a single write observed by a subscriber. Old is nil
// when the path was previously unset.
type Change struct {
	Path Path
	Old  interface{}
	New  interface{}
}

type entry struct {
	path  Path
	value interface{}
}

// Subscription receives changes for paths under a registered prefix.
// Delivery order matches write order at the store. A subscriber whose
// buffer is full loses the events written while it lags; the buffered
// backlog stays intact.
type Subscription struct {
	prefix  Path
	ch      chan Change
	dropped int
	closed  bool
}

// C returns the channel change events are delivered on. It is closed
// when the subscription is closed.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// Registry is a process-wide, concurrency-safe hierarchical key/value
// table. Each Put is atomic with respect to its own path; reads never
// block on writers beyond the internal mutex.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	subs    map[*Subscription]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		subs:    make(map[*Subscription]struct{}),
	}
}

// Put totally replaces any existing entry at path. The write is visible
// to subsequent reads immediately and is fanned out to every subscriber
// whose prefix matches.
func (r *Registry) Put(path Path, value interface{}) {
	key := path.key()

	r.mu.Lock()
	var old interface{}
	if existing, ok := r.entries[key]; ok {
		old = existing.value
	}
	stored := path.clone()
	r.entries[key] = &entry{path: stored, value: value}

	change := Change{Path: stored, Old: old, New: value}
	for sub := range r.subs {
		if !stored.HasPrefix(sub.prefix) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			// Slow subscriber: drop rather than stall every writer.
			sub.dropped++
			if sub.dropped == 1 || sub.dropped%100 == 0 {
				log.Warnf("Registry subscriber for %q dropped %d event(s)", sub.prefix.String(), sub.dropped)
			}
		}
	}
	r.mu.Unlock()
}

// Get returns the value stored at exactly path.
func (r *Registry) Get(path Path) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[path.key()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetByPrefix returns every stored entry whose path starts with prefix.
// Results are sorted by path for determinism; callers must not rely on
// any particular order beyond that.
func (r *Registry) GetByPrefix(prefix Path) []Entry {
	r.mu.RLock()
	var out []Entry
	for _, e := range r.entries {
		if e.path.HasPrefix(prefix) {
			out = append(out, Entry{Path: e.path, Value: e.value})
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path.String() < out[j].Path.String()
	})
	return out
}

// Delete removes the entry at exactly path, if present. Subscribers see
// a change with a nil new value.
func (r *Registry) Delete(path Path) {
	key := path.key()

	r.mu.Lock()
	existing, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)

	change := Change{Path: existing.path, Old: existing.value, New: nil}
	for sub := range r.subs {
		if !existing.path.HasPrefix(sub.prefix) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			sub.dropped++
		}
	}
	r.mu.Unlock()
}

// Subscribe registers interest in writes under prefix. The returned
// subscription's channel is buffered; events beyond the buffer are
// dropped for that subscriber only.
func (r *Registry) Subscribe(prefix Path, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &Subscription{
		prefix: prefix.clone(),
		ch:     make(chan Change, buffer),
	}

	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (r *Registry) Unsubscribe(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub]; !ok {
		return
	}
	delete(r.subs, sub)
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
