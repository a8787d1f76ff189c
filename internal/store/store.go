// Package store implements the Keyspace/Store component (spec §4.1): a
// single-tenant mapping from binary keys to typed entries with lazy and
// active expiration, maxmemory pressure accounting, and the state-digest
// contract used by WATCH. Every exported method takes nowMs explicitly —
// the store never reads the wall clock itself, matching the teacher's
// habit (internal/governance) of threading time through pure decision
// functions rather than calling time.Now() deep in business logic.
package store

import (
	"sort"

	"github.com/blueberrycongee/redikv/internal/glob"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

// Store is the process-wide keyspace. It is not safe for concurrent use
// without external synchronization — the spec's concurrency model (§5) is
// a single-threaded cooperative core, and callers (the runtime) never
// invoke it from more than one goroutine at a time.
type Store struct {
	data map[string]types.Entry

	// maxmemoryBytes is the configured budget; 0 disables enforcement.
	maxmemoryBytes int64
	// notCounted is a caller-supplied allowance subtracted from the
	// accounted total before comparing against maxmemoryBytes (spec §4.1).
	notCounted int64

	evictionPolicy string
	rng            *lcg
}

// New returns an empty store.
func New() *Store {
	return &Store{
		data:           make(map[string]types.Entry),
		evictionPolicy: "noeviction",
		rng:            newLCG(0xC0FFEE),
	}
}

// SetMaxmemory updates the configured maxmemory budget (bytes). 0 disables
// enforcement; CONFIG SET maxmemory is the only caller in the runtime.
func (s *Store) SetMaxmemory(bytes int64) { s.maxmemoryBytes = bytes }

// MaxmemoryBytes returns the configured budget.
func (s *Store) MaxmemoryBytes() int64 { return s.maxmemoryBytes }

// SetNotCounted sets the caller-supplied byte allowance excluded from the
// accounted total (spec §4.1: "excluding a caller-supplied 'not counted'
// allowance").
func (s *Store) SetNotCounted(bytes int64) { s.notCounted = bytes }

// SetEvictionPolicy selects the maxmemory-policy eviction selector by
// Redis policy name (SPEC_FULL §4.1). Unrecognized names fall back to the
// spec's mandated deterministic default.
func (s *Store) SetEvictionPolicy(name string) { s.evictionPolicy = name }

func (s *Store) EvictionPolicy() string { return s.evictionPolicy }

// lookup returns the live entry for key, applying lazy expiration. The
// second bool reports existence after expiry resolution.
func (s *Store) lookup(key string, nowMs int64) (types.Entry, bool) {
	e, ok := s.data[key]
	if !ok {
		return types.Entry{}, false
	}
	if e.Expired(nowMs) {
		delete(s.data, key)
		return types.Entry{}, false
	}
	return e, true
}

// Exists reports whether key is live at nowMs.
func (s *Store) Exists(key string, nowMs int64) bool {
	_, ok := s.lookup(key, nowMs)
	return ok
}

// ExistsCount implements variadic EXISTS: counts how many of keys are
// live, counting duplicates multiple times as Redis does.
func (s *Store) ExistsCount(keys []string, nowMs int64) int64 {
	var n int64
	for _, k := range keys {
		if s.Exists(k, nowMs) {
			n++
		}
	}
	return n
}

// Type returns the Redis type name for key, or "none" if missing.
func (s *Store) Type(key string, nowMs int64) string {
	e, ok := s.lookup(key, nowMs)
	if !ok {
		return "none"
	}
	return e.Value.Kind.String()
}

// del removes key unconditionally (internal helper; does not check
// existence first, which callers must do when they need the count).
func (s *Store) del(key string) { delete(s.data, key) }

// Del removes each of keys, returning the count actually removed.
func (s *Store) Del(keys []string, nowMs int64) int64 {
	var n int64
	for _, k := range keys {
		if _, ok := s.lookup(k, nowMs); ok {
			s.del(k)
			n++
		}
	}
	return n
}

// collapseIfEmpty deletes key if its container value has become logically
// empty (spec §3: "operations that logically empty a container ... MUST
// remove the key"). Call after every mutation that can shrink a
// container.
func (s *Store) collapseIfEmpty(key string) {
	e, ok := s.data[key]
	if ok && e.Value.IsEmpty() {
		delete(s.data, key)
	}
}

// getTyped fetches key and verifies it is either absent or of kind want,
// returning WrongType otherwise. ok reports whether the key currently
// exists.
func (s *Store) getTyped(key string, want types.Kind, nowMs int64) (types.Entry, bool, error) {
	e, ok := s.lookup(key, nowMs)
	if !ok {
		return types.Entry{}, false, nil
	}
	if e.Value.Kind != want {
		return types.Entry{}, false, rkerrors.WrongType()
	}
	return e, true, nil
}

// set stores e under key verbatim, overwriting any previous entry.
func (s *Store) set(key string, e types.Entry) {
	s.data[key] = e
}

// Keys returns all live keys matching the glob pattern, sorted ascending
// (spec §4.1: "Output of KEYS is sorted ascending").
func (s *Store) Keys(pattern string, nowMs int64) []string {
	out := make([]string, 0, len(s.data))
	for _, k := range s.allLiveKeys(nowMs) {
		if glob.Match(pattern, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// allLiveKeys returns a snapshot of every key currently live at nowMs,
// dropping lazily-expired entries as it goes. Returned as a slice (keyed
// by nothing) to give callers a stable, sortable view.
func (s *Store) allLiveKeys(nowMs int64) []string {
	out := make([]string, 0, len(s.data))
	var expired []string
	for k, e := range s.data {
		if e.Expired(nowMs) {
			expired = append(expired, k)
			continue
		}
		out = append(out, k)
	}
	for _, k := range expired {
		delete(s.data, k)
	}
	return out
}

// DBSize returns the number of live keys.
func (s *Store) DBSize(nowMs int64) int64 {
	return int64(len(s.allLiveKeys(nowMs)))
}

// FlushAll removes every key (FLUSHDB/FLUSHALL alias across the single
// in-scope DB, spec SPEC_FULL §4.2).
func (s *Store) FlushAll() {
	s.data = make(map[string]types.Entry)
}

// RandomKey returns a uniformly-selected live key, or "" if the keyspace
// is empty.
func (s *Store) RandomKey(nowMs int64) string {
	keys := s.allLiveKeys(nowMs)
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return keys[s.rng.Intn(len(keys))]
}

// Persist removes any TTL from key, reporting whether it actually had one.
func (s *Store) Persist(key string, nowMs int64) bool {
	e, ok := s.lookup(key, nowMs)
	if !ok || !e.HasTTL() {
		return false
	}
	e.ExpiresAtMs = 0
	s.data[key] = e
	return true
}

// Rename moves src's entry (value + TTL) to dst, overwriting dst (spec
// §4.1: "RENAME preserves the source's TTL on the destination and
// overwrites any existing destination").
func (s *Store) Rename(src, dst string, nowMs int64) error {
	e, ok := s.lookup(src, nowMs)
	if !ok {
		return rkerrors.NoSuchKey()
	}
	s.data[dst] = e
	s.del(src)
	return nil
}

// RenameNX is Rename but only when dst does not already exist; returns
// whether the rename happened.
func (s *Store) RenameNX(src, dst string, nowMs int64) (bool, error) {
	if _, ok := s.lookup(src, nowMs); !ok {
		return false, rkerrors.NoSuchKey()
	}
	if _, ok := s.lookup(dst, nowMs); ok {
		return false, nil
	}
	e := s.data[src]
	s.data[dst] = e
	s.del(src)
	return true, nil
}

// Copy duplicates src's entry to dst. When replace is false and dst
// exists, Copy is a no-op reporting false.
func (s *Store) Copy(src, dst string, replace bool, nowMs int64) (bool, error) {
	e, ok := s.lookup(src, nowMs)
	if !ok {
		return false, nil
	}
	if !replace {
		if _, exists := s.lookup(dst, nowMs); exists {
			return false, nil
		}
	}
	s.data[dst] = cloneEntry(e)
	return true, nil
}

// Touch is equivalent to ExistsCount but named for the TOUCH command,
// which also updates LRU in real Redis — a no-op distinction in this
// engine since no LRU clock is modeled.
func (s *Store) Touch(keys []string, nowMs int64) int64 {
	return s.ExistsCount(keys, nowMs)
}

func cloneEntry(e types.Entry) types.Entry {
	switch e.Value.Kind {
	case types.KindString:
		b := make([]byte, len(e.Value.Str))
		copy(b, e.Value.Str)
		return types.Entry{Value: types.NewString(b), ExpiresAtMs: e.ExpiresAtMs}
	case types.KindHash:
		h := make(map[string][]byte, len(e.Value.Hash))
		for f, v := range e.Value.Hash {
			cp := make([]byte, len(v))
			copy(cp, v)
			h[f] = cp
		}
		return types.Entry{Value: types.Value{Kind: types.KindHash, Hash: h}, ExpiresAtMs: e.ExpiresAtMs}
	case types.KindList:
		l := make([][]byte, len(e.Value.List))
		for i, v := range e.Value.List {
			cp := make([]byte, len(v))
			copy(cp, v)
			l[i] = cp
		}
		return types.Entry{Value: types.Value{Kind: types.KindList, List: l}, ExpiresAtMs: e.ExpiresAtMs}
	case types.KindSet:
		m := make(map[string]struct{}, len(e.Value.Set))
		for k := range e.Value.Set {
			m[k] = struct{}{}
		}
		return types.Entry{Value: types.Value{Kind: types.KindSet, Set: m}, ExpiresAtMs: e.ExpiresAtMs}
	case types.KindSortedSet:
		return types.Entry{Value: types.Value{Kind: types.KindSortedSet, ZSet: e.Value.ZSet.Clone()}, ExpiresAtMs: e.ExpiresAtMs}
	default:
		return e
	}
}

// lcg is a small deterministic linear-congruential generator used for
// RANDOMKEY/SRANDMEMBER/allkeys-random eviction so behavior is
// reproducible given identical command history (spec §9 Open Question,
// resolved in SPEC_FULL §4.1).
type lcg struct{ state uint64 }

func newLCG(seed uint64) *lcg { return &lcg{state: seed} }

func (l *lcg) next() uint64 {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	return l.state
}

// Intn returns a value in [0, n).
func (l *lcg) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(l.next() % uint64(n))
}
