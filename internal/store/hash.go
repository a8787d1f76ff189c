package store

import (
	"sort"
	"strconv"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

func (s *Store) hashEntry(key string, nowMs int64, create bool) (types.Entry, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil {
		return types.Entry{}, err
	}
	if !ok {
		if !create {
			return types.Entry{Value: types.NewHash()}, nil
		}
		e = types.Entry{Value: types.NewHash()}
	}
	return e, nil
}

// HSet sets each field/value pair, returning the count of fields newly
// created (spec semantics mirrored from ZADD's "count of newly added").
func (s *Store) HSet(key string, pairs [][2][]byte, nowMs int64) (int64, error) {
	e, err := s.hashEntry(key, nowMs, true)
	if err != nil {
		return 0, err
	}
	var created int64
	for _, p := range pairs {
		f := string(p[0])
		if _, exists := e.Value.Hash[f]; !exists {
			created++
		}
		e.Value.Hash[f] = p[1]
	}
	s.data[key] = e
	return created, nil
}

// HSetNX sets field only if it does not already exist.
func (s *Store) HSetNX(key, field string, value []byte, nowMs int64) (bool, error) {
	e, err := s.hashEntry(key, nowMs, false)
	if err != nil {
		return false, err
	}
	if e.Value.Hash == nil {
		e = types.Entry{Value: types.NewHash()}
	}
	if _, exists := e.Value.Hash[field]; exists {
		s.data[key] = e
		return false, nil
	}
	e.Value.Hash[field] = value
	s.data[key] = e
	return true, nil
}

// HGet returns field's value.
func (s *Store) HGet(key, field string, nowMs int64) ([]byte, bool, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return nil, false, err
	}
	v, exists := e.Value.Hash[field]
	return v, exists, nil
}

// HMGet returns the values for each field, nil entries for missing ones.
func (s *Store) HMGet(key string, fields []string, nowMs int64) ([][]byte, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(fields))
	if !ok {
		return out, nil
	}
	for i, f := range fields {
		if v, exists := e.Value.Hash[f]; exists {
			out[i] = v
		}
	}
	return out, nil
}

// HDel removes each field, returning the count actually removed, and
// collapses the key if the hash becomes empty.
func (s *Store) HDel(key string, fields []string, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	for _, f := range fields {
		if _, exists := e.Value.Hash[f]; exists {
			delete(e.Value.Hash, f)
			n++
		}
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return n, nil
}

// HExists reports whether field exists within key's hash.
func (s *Store) HExists(key, field string, nowMs int64) (bool, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return false, err
	}
	_, exists := e.Value.Hash[field]
	return exists, nil
}

// HLen returns the field count.
func (s *Store) HLen(key string, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	return int64(len(e.Value.Hash)), nil
}

// HStrLen returns the byte length of field's value, 0 if absent.
func (s *Store) HStrLen(key, field string, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	return int64(len(e.Value.Hash[field])), nil
}

// sortedFields returns the hash's field names sorted ascending, since
// iteration order is not preserved (spec §3).
func sortedFields(h map[string][]byte) []string {
	out := make([]string, 0, len(h))
	for f := range h {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// HKeys returns all field names, sorted.
func (s *Store) HKeys(key string, nowMs int64) ([]string, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	return sortedFields(e.Value.Hash), nil
}

// HVals returns all values, ordered by sorted field name for determinism.
func (s *Store) HVals(key string, nowMs int64) ([][]byte, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	fields := sortedFields(e.Value.Hash)
	out := make([][]byte, len(fields))
	for i, f := range fields {
		out[i] = e.Value.Hash[f]
	}
	return out, nil
}

// HGetAll returns field/value pairs ordered by sorted field name.
func (s *Store) HGetAll(key string, nowMs int64) ([][2][]byte, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	fields := sortedFields(e.Value.Hash)
	out := make([][2][]byte, len(fields))
	for i, f := range fields {
		out[i] = [2][]byte{[]byte(f), e.Value.Hash[f]}
	}
	return out, nil
}

// HIncrBy implements HINCRBY's integer arithmetic over a hash field.
func (s *Store) HIncrBy(key, field string, delta int64, nowMs int64) (int64, error) {
	e, err := s.hashEntry(key, nowMs, true)
	if err != nil {
		return 0, err
	}
	var cur int64
	if v, exists := e.Value.Hash[field]; exists {
		cur, err = strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, rkerrors.HashValueNotInteger()
		}
	}
	sum := cur + delta
	if (delta > 0 && sum < cur) || (delta < 0 && sum > cur) {
		return 0, rkerrors.IntegerOverflow()
	}
	e.Value.Hash[field] = []byte(strconv.FormatInt(sum, 10))
	s.data[key] = e
	return sum, nil
}

// HIncrByFloat implements HINCRBYFLOAT; NaN/±Inf fails with
// ValueNotFloat (spec §4.2).
func (s *Store) HIncrByFloat(key, field string, delta float64, nowMs int64) (float64, error) {
	e, err := s.hashEntry(key, nowMs, true)
	if err != nil {
		return 0, err
	}
	var cur float64
	if v, exists := e.Value.Hash[field]; exists {
		cur, err = strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, rkerrors.ValueNotFloat()
		}
	}
	sum := cur + delta
	if isNaNOrInf(sum) {
		return 0, rkerrors.ValueNotFloat()
	}
	e.Value.Hash[field] = []byte(strconv.FormatFloat(sum, 'f', -1, 64))
	s.data[key] = e
	return sum, nil
}

// HRandField returns up to count distinct random fields (or with values
// when withValues is set); negative count allows repeats up to
// count-as-positive draws.
func (s *Store) HRandField(key string, count int64, withValues bool, nowMs int64) ([][2][]byte, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	fields := sortedFields(e.Value.Hash)
	if len(fields) == 0 {
		return nil, nil
	}
	if count == 0 {
		return nil, nil
	}
	allowRepeat := count < 0
	n := count
	if n < 0 {
		n = -n
	}
	var out [][2][]byte
	if !allowRepeat {
		if int(n) >= len(fields) {
			n = int64(len(fields))
		}
		perm := make([]string, len(fields))
		copy(perm, fields)
		s.shuffle(perm)
		for i := int64(0); i < n; i++ {
			f := perm[i]
			out = append(out, [2][]byte{[]byte(f), e.Value.Hash[f]})
		}
		return out, nil
	}
	for i := int64(0); i < n; i++ {
		f := fields[s.rng.Intn(len(fields))]
		out = append(out, [2][]byte{[]byte(f), e.Value.Hash[f]})
	}
	return out, nil
}

func (s *Store) shuffle(items []string) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// HScan implements HSCAN's cursor-based iteration over sorted field
// names, returning the next cursor and the field/value pairs emitted this
// call.
func (s *Store) HScan(key string, cursor int, count int, match string, nowMs int64) (int, [][2][]byte, error) {
	e, ok, err := s.getTyped(key, types.KindHash, nowMs)
	if err != nil || !ok {
		return 0, nil, err
	}
	fields := sortedFields(e.Value.Hash)
	if count <= 0 {
		count = 10
	}
	next, page := scanPage(fields, cursor, count)
	var out [][2][]byte
	for _, f := range page {
		if match != "" && !MatchGlobOrAll(match, f) {
			continue
		}
		out = append(out, [2][]byte{[]byte(f), e.Value.Hash[f]})
	}
	return next, out, nil
}
