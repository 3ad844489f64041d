package chain

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

// DefaultMemoSize is the number of results a Memo keeps when none is given.
const DefaultMemoSize = 256

// Kinds of memoized queries.
const (
	KindPresent = "present"
	KindPath    = "path"
	KindStitch  = "stitch"
)

// MemoKey identifies one chain query. Generation must change whenever the
// underlying catalog does.
type MemoKey struct {
	Project         string
	Generation      uint64
	Kind            string
	Start           string
	End             string
	Waypoints       []string
	MinOverlapYears int
	MinFame         int
}

// String quotes every string field, so separators inside names cannot make
// two keys equal.
func (k MemoKey) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q|%d|%q|%q|%q|%d|%d|", k.Project, k.Generation, k.Kind,
		k.Start, k.End, k.MinOverlapYears, k.MinFame)
	fmt.Fprintf(&b, "%d", len(k.Waypoints))
	for _, w := range k.Waypoints {
		fmt.Fprintf(&b, "|%q", w)
	}
	return b.String()
}

type memoEntry struct {
	key   string
	value StitchResult
}

// Memo is a bounded LRU of chain results. Concurrent misses for the same key
// share a single computation.
type Memo struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List
	capacity int
	flight   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo creates a Memo holding at most capacity results.
func NewMemo(capacity int) *Memo {
	if capacity <= 0 {
		capacity = DefaultMemoSize
	}
	return &Memo{
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		capacity: capacity,
	}
}

// Do returns the cached result for key or computes it. The bool reports a
// cache hit. Errors are never cached.
func (m *Memo) Do(ctx context.Context, key MemoKey, compute func(context.Context) (StitchResult, error)) (StitchResult, bool, error) {
	k := key.String()
	if v, ok := m.get(k); ok {
		m.hits.Add(1)
		return v, true, nil
	}
	m.misses.Add(1)

	v, err, _ := m.flight.Do(k, func() (interface{}, error) {
		res, err := compute(ctx)
		if err != nil {
			return StitchResult{}, err
		}
		m.put(k, res)
		return res, nil
	})
	if err != nil {
		return StitchResult{}, false, err
	}
	return cloneResult(v.(StitchResult)), false, nil
}

// Len returns the number of cached results.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Stats returns hit and miss counts.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// Purge drops every cached result.
func (m *Memo) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*list.Element)
	m.lru.Init()
}

func (m *Memo) get(k string) (StitchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[k]
	if !ok {
		return StitchResult{}, false
	}
	m.lru.MoveToFront(el)
	return cloneResult(el.Value.(*memoEntry).value), true
}

func (m *Memo) put(k string, v StitchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[k]; ok {
		el.Value.(*memoEntry).value = v
		m.lru.MoveToFront(el)
		return
	}
	m.entries[k] = m.lru.PushFront(&memoEntry{key: k, value: v})
	for m.lru.Len() > m.capacity {
		oldest := m.lru.Back()
		m.lru.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoEntry).key)
	}
}

// cloneResult copies the slices so callers cannot corrupt cached entries.
func cloneResult(r StitchResult) StitchResult {
	out := StitchResult{Chain: make(apptype.Chain, len(r.Chain))}
	copy(out.Chain, r.Chain)
	if r.Skipped != nil {
		out.Skipped = append([]string(nil), r.Skipped...)
	}
	return out
}
