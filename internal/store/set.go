package store

import (
	"sort"

	"github.com/blueberrycongee/redikv/pkg/types"
)

func (s *Store) setEntry(key string, nowMs int64) (types.Entry, bool, error) {
	return s.getTyped(key, types.KindSet, nowMs)
}

// SAdd adds members, creating the set if needed, returning the count
// newly added.
func (s *Store) SAdd(key string, members [][]byte, nowMs int64) (int64, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		e = types.Entry{Value: types.NewSet()}
	}
	var added int64
	for _, m := range members {
		ms := string(m)
		if _, exists := e.Value.Set[ms]; !exists {
			e.Value.Set[ms] = struct{}{}
			added++
		}
	}
	s.data[key] = e
	return added, nil
}

// SRem removes members, returning the count removed, collapsing the key
// if the set becomes empty.
func (s *Store) SRem(key string, members [][]byte, nowMs int64) (int64, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	for _, m := range members {
		ms := string(m)
		if _, exists := e.Value.Set[ms]; exists {
			delete(e.Value.Set, ms)
			n++
		}
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return n, nil
}

// SIsMember reports whether member is in key's set.
func (s *Store) SIsMember(key string, member []byte, nowMs int64) (bool, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return false, err
	}
	_, exists := e.Value.Set[string(member)]
	return exists, nil
}

// SMIsMember reports membership for each of members, in order.
func (s *Store) SMIsMember(key string, members [][]byte, nowMs int64) ([]bool, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(members))
	if !ok {
		return out, nil
	}
	for i, m := range members {
		_, out[i] = e.Value.Set[string(m)]
	}
	return out, nil
}

// SCard returns the member count.
func (s *Store) SCard(key string, nowMs int64) (int64, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	return int64(len(e.Value.Set)), nil
}

// SMembers returns all members, sorted ascending (spec: iteration order
// not preserved; sort for determinism).
func (s *Store) SMembers(key string, nowMs int64) ([]string, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	return sortedSetMembers(e.Value.Set), nil
}

func sortedSetMembers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// SPop removes and returns up to count random members, collapsing the key
// if it becomes empty.
func (s *Store) SPop(key string, count int64, nowMs int64) ([]string, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := sortedSetMembers(e.Value.Set)
	s.shuffle(members)
	if count > int64(len(members)) {
		count = int64(len(members))
	}
	popped := members[:count]
	for _, m := range popped {
		delete(e.Value.Set, m)
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return popped, nil
}

// SRandMember returns up to |count| members without removing them.
// Negative count allows repeats.
func (s *Store) SRandMember(key string, count int64, nowMs int64) ([]string, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := sortedSetMembers(e.Value.Set)
	if len(members) == 0 {
		return nil, nil
	}
	if count >= 0 {
		s.shuffle(members)
		if count > int64(len(members)) {
			count = int64(len(members))
		}
		return members[:count], nil
	}
	n := -count
	out := make([]string, n)
	for i := range out {
		out[i] = members[s.rng.Intn(len(members))]
	}
	return out, nil
}

// SMove atomically moves member from src to dst, returning whether it was
// present in src.
func (s *Store) SMove(src, dst string, member []byte, nowMs int64) (bool, error) {
	se, ok, err := s.setEntry(src, nowMs)
	if err != nil || !ok {
		return false, err
	}
	ms := string(member)
	if _, exists := se.Value.Set[ms]; !exists {
		return false, nil
	}
	de, ok, err := s.setEntry(dst, nowMs)
	if err != nil {
		return false, err
	}
	if !ok {
		de = types.Entry{Value: types.NewSet()}
	}
	delete(se.Value.Set, ms)
	de.Value.Set[ms] = struct{}{}
	s.data[src] = se
	s.data[dst] = de
	s.collapseIfEmpty(src)
	return true, nil
}

// setsOf resolves each key's set contents as a map, erroring on wrong
// type; a missing key contributes an empty set.
func (s *Store) setsOf(keys []string, nowMs int64) ([]map[string]struct{}, error) {
	out := make([]map[string]struct{}, len(keys))
	for i, k := range keys {
		e, ok, err := s.setEntry(k, nowMs)
		if err != nil {
			return nil, err
		}
		if ok {
			out[i] = e.Value.Set
		} else {
			out[i] = map[string]struct{}{}
		}
	}
	return out, nil
}

// SInter returns the sorted intersection of the given sets' members.
func (s *Store) SInter(keys []string, nowMs int64) ([]string, error) {
	sets, err := s.setsOf(keys, nowMs)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}
	out := []string{}
	for m := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if _, ok := set[m]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SUnion returns the sorted union.
func (s *Store) SUnion(keys []string, nowMs int64) ([]string, error) {
	sets, err := s.setsOf(keys, nowMs)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, set := range sets {
		for m := range set {
			seen[m] = struct{}{}
		}
	}
	out := sortedSetMembers(seen)
	return out, nil
}

// SDiff returns the sorted set-difference keys[0] - (keys[1] ∪ ... ).
func (s *Store) SDiff(keys []string, nowMs int64) ([]string, error) {
	sets, err := s.setsOf(keys, nowMs)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}
	out := []string{}
	for m := range sets[0] {
		excluded := false
		for _, set := range sets[1:] {
			if _, ok := set[m]; ok {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SScan implements SSCAN's cursor-based iteration over a sorted
// snapshot of key's set members.
func (s *Store) SScan(key string, cursor int, count int, match string, nowMs int64) (int, []string, error) {
	e, ok, err := s.setEntry(key, nowMs)
	if err != nil || !ok {
		return 0, nil, err
	}
	members := sortedSetMembers(e.Value.Set)
	if count <= 0 {
		count = 10
	}
	next, page := scanPage(members, cursor, count)
	out := make([]string, 0, len(page))
	for _, m := range page {
		if match != "" && !MatchGlobOrAll(match, m) {
			continue
		}
		out = append(out, m)
	}
	return next, out, nil
}

// StoreSet replaces dest with a plain Set built from members, returning
// its cardinality (used by SINTERSTORE/SUNIONSTORE/SDIFFSTORE's "STORE
// variants replace the destination ... and return its cardinality").
func (s *Store) StoreSet(dest string, members []string) int64 {
	if len(members) == 0 {
		s.del(dest)
		return 0
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	s.set(dest, types.Entry{Value: types.Value{Kind: types.KindSet, Set: set}})
	return int64(len(members))
}
