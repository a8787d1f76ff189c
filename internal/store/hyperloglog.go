package store

import (
	"github.com/blueberrycongee/redikv/internal/hll"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

// hllEntry fetches key's string value and validates it as a dense HLL
// encoding. A non-string key is WrongType; a string that doesn't begin
// with HYLL is InvalidHllValue (spec §4.1).
func (s *Store) hllEntry(key string, nowMs int64) ([]byte, bool, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	if !hll.IsHLL(e.Value.Str) {
		return nil, false, rkerrors.InvalidHllValue()
	}
	return e.Value.Str, true, nil
}

// PFAdd adds elements to key's dense HLL, creating it if absent. Returns
// 1 iff any register was raised or the key was newly created (spec
// §4.1).
func (s *Store) PFAdd(key string, elements [][]byte, nowMs int64) (bool, error) {
	encoded, exists, err := s.hllEntry(key, nowMs)
	if err != nil {
		return false, err
	}
	created := !exists
	if !exists {
		encoded = hll.New()
	} else {
		cp := make([]byte, len(encoded))
		copy(cp, encoded)
		encoded = cp
	}
	var raised bool
	for _, el := range elements {
		if hll.Add(encoded, el) {
			raised = true
		}
	}
	s.set(key, types.Entry{Value: types.NewString(encoded)})
	return created || raised, nil
}

// PFCount estimates the cardinality of a single key, or the union of
// multiple keys (merged via register-wise max into a temporary union,
// spec §4.1).
func (s *Store) PFCount(keys []string, nowMs int64) (uint64, error) {
	if len(keys) == 1 {
		encoded, exists, err := s.hllEntry(keys[0], nowMs)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, nil
		}
		return hll.Count(encoded), nil
	}
	var encodings [][]byte
	for _, k := range keys {
		encoded, exists, err := s.hllEntry(k, nowMs)
		if err != nil {
			return 0, err
		}
		if exists {
			encodings = append(encodings, encoded)
		}
	}
	if len(encodings) == 0 {
		return 0, nil
	}
	return hll.Count(hll.Union(encodings)), nil
}

// PFMerge merges sources into dest (register-wise max), creating dest if
// absent.
func (s *Store) PFMerge(dest string, sources []string, nowMs int64) error {
	destEnc, exists, err := s.hllEntry(dest, nowMs)
	if err != nil {
		return err
	}
	var out []byte
	if exists {
		out = make([]byte, len(destEnc))
		copy(out, destEnc)
	} else {
		out = hll.New()
	}
	for _, src := range sources {
		encoded, exists, err := s.hllEntry(src, nowMs)
		if err != nil {
			return err
		}
		if exists {
			hll.Merge(out, encoded)
		}
	}
	s.set(dest, types.Entry{Value: types.NewString(out)})
	return nil
}
