package store

import (
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

func (s *Store) listEntry(key string, nowMs int64) (types.Entry, bool, error) {
	return s.getTyped(key, types.KindList, nowMs)
}

// LPush/RPush prepend or append values, creating the list if needed, and
// return the new length. Per Redis, each value in the argv is pushed in
// order, so `LPUSH k a b c` results in [c, b, a].
func (s *Store) push(key string, values [][]byte, left bool, nowMs int64) (int64, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		e = types.Entry{Value: types.NewList()}
	}
	for _, v := range values {
		if left {
			e.Value.List = append([][]byte{v}, e.Value.List...)
		} else {
			e.Value.List = append(e.Value.List, v)
		}
	}
	s.data[key] = e
	return int64(len(e.Value.List)), nil
}

func (s *Store) LPush(key string, values [][]byte, nowMs int64) (int64, error) {
	return s.push(key, values, true, nowMs)
}

func (s *Store) RPush(key string, values [][]byte, nowMs int64) (int64, error) {
	return s.push(key, values, false, nowMs)
}

// pushx variants only push when the key already exists as a list.
func (s *Store) PushX(key string, values [][]byte, left bool, nowMs int64) (int64, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	for _, v := range values {
		if left {
			e.Value.List = append([][]byte{v}, e.Value.List...)
		} else {
			e.Value.List = append(e.Value.List, v)
		}
	}
	s.data[key] = e
	return int64(len(e.Value.List)), nil
}

// Pop removes and returns up to count elements from the left or right end,
// in pop order (a right-end pop returns the tail element first).
func (s *Store) Pop(key string, left bool, count int64, nowMs int64) ([][]byte, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	n := int64(len(e.Value.List))
	if count > n {
		count = n
	}
	var out [][]byte
	if left {
		out = e.Value.List[:count]
		e.Value.List = e.Value.List[count:]
	} else {
		out = reverseCopy(e.Value.List[n-count:])
		e.Value.List = e.Value.List[:n-count]
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return out, nil
}

func reverseCopy(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// LLen returns the list length.
func (s *Store) LLen(key string, nowMs int64) (int64, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	return int64(len(e.Value.List)), nil
}

// LRange returns elements in [start, end] inclusive, with Redis's
// negative-index semantics; out-of-range returns an empty array.
func (s *Store) LRange(key string, start, end int64, nowMs int64) ([][]byte, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return [][]byte{}, err
	}
	n := int64(len(e.Value.List))
	start, end = normalizeRange(start, end, n)
	if start > end || n == 0 {
		return [][]byte{}, nil
	}
	out := make([][]byte, end-start+1)
	copy(out, e.Value.List[start:end+1])
	return out, nil
}

// LIndex returns the element at index (negative from the end), ok=false
// if out of range.
func (s *Store) LIndex(key string, index int64, nowMs int64) ([]byte, bool, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return nil, false, err
	}
	n := int64(len(e.Value.List))
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil, false, nil
	}
	return e.Value.List[index], true, nil
}

// LSet overwrites the element at index.
func (s *Store) LSet(key string, index int64, value []byte, nowMs int64) error {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil {
		return err
	}
	if !ok {
		return rkerrors.NoSuchKey()
	}
	n := int64(len(e.Value.List))
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return rkerrors.IndexOutOfRange()
	}
	e.Value.List[index] = value
	s.data[key] = e
	return nil
}

// LInsert inserts value before or after the first occurrence of pivot;
// returns the new length, 0 if pivot not found, -1 if key missing.
func (s *Store) LInsert(key string, before bool, pivot, value []byte, nowMs int64) (int64, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		return -1, nil
	}
	idx := -1
	for i, v := range e.Value.List {
		if bytesEqual(v, pivot) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, nil
	}
	pos := idx
	if !before {
		pos = idx + 1
	}
	list := e.Value.List
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = value
	e.Value.List = list
	s.data[key] = e
	return int64(len(list)), nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LTrim keeps only the [start, end] inclusive slice, deleting the key if
// the result is empty.
func (s *Store) LTrim(key string, start, end int64, nowMs int64) error {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return err
	}
	n := int64(len(e.Value.List))
	start, end = normalizeRange(start, end, n)
	if start > end || n == 0 {
		e.Value.List = nil
	} else {
		kept := make([][]byte, end-start+1)
		copy(kept, e.Value.List[start:end+1])
		e.Value.List = kept
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return nil
}

// LRem removes occurrences of value: count>0 from head, count<0 from
// tail, count==0 all occurrences. Returns the number removed.
func (s *Store) LRem(key string, count int64, value []byte, nowMs int64) (int64, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	list := e.Value.List
	var removed int64
	var out [][]byte
	if count >= 0 {
		limit := count
		for _, v := range list {
			if (limit == 0 || removed < limit) && bytesEqual(v, value) {
				removed++
				continue
			}
			out = append(out, v)
		}
	} else {
		limit := -count
		for i := len(list) - 1; i >= 0; i-- {
			v := list[i]
			if removed < limit && bytesEqual(v, value) {
				removed++
				continue
			}
			out = append([][]byte{v}, out...)
		}
	}
	e.Value.List = out
	s.data[key] = e
	s.collapseIfEmpty(key)
	return removed, nil
}

// LPos finds the rank-th occurrence (1-based, from head; negative rank
// counts from tail) of value, honoring an optional maxlen scan limit.
func (s *Store) LPos(key string, value []byte, rank int64, maxLen int64, nowMs int64) (int64, bool, error) {
	e, ok, err := s.listEntry(key, nowMs)
	if err != nil || !ok {
		return 0, false, err
	}
	if rank == 0 {
		rank = 1
	}
	list := e.Value.List
	n := int64(len(list))
	var scanned int64
	var seen int64
	target := rank
	if target < 0 {
		target = -target
	}
	if rank > 0 {
		for i := int64(0); i < n; i++ {
			if maxLen > 0 && scanned >= maxLen {
				break
			}
			scanned++
			if bytesEqual(list[i], value) {
				seen++
				if seen == target {
					return i, true, nil
				}
			}
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			if maxLen > 0 && scanned >= maxLen {
				break
			}
			scanned++
			if bytesEqual(list[i], value) {
				seen++
				if seen == target {
					return i, true, nil
				}
			}
		}
	}
	return 0, false, nil
}

// LMove atomically pops from src (left/right) and pushes to dst
// (left/right), returning the moved element. Used directly by LMOVE and
// (with fixed ends) RPOPLPUSH.
func (s *Store) LMove(src, dst string, srcLeft, dstLeft bool, nowMs int64) ([]byte, bool, error) {
	popped, err := s.Pop(src, srcLeft, 1, nowMs)
	if err != nil || len(popped) == 0 {
		return nil, false, err
	}
	v := popped[0]
	if _, err := s.push(dst, [][]byte{v}, dstLeft, nowMs); err != nil {
		// dst type mismatch: restore src before failing, keeping the
		// no-partial-mutation contract (spec §7).
		s.push(src, [][]byte{v}, srcLeft, nowMs)
		return nil, false, err
	}
	return v, true, nil
}
