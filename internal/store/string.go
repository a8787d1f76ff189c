package store

import (
	"math"
	"strconv"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

// Get returns the string value of key, ok=false if missing.
func (s *Store) Get(key string, nowMs int64) ([]byte, bool, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Value.Str, true, nil
}

// SetOpts controls SET's NX/XX/GET/EX/PX modifiers (spec §4.2).
type SetOpts struct {
	NX, XX bool
	Get    bool
	// ExpireAtMs, when HasExpire is true, is the absolute deadline to
	// apply iff the write happens; KeepTTL means preserve whatever TTL
	// the key already had.
	HasExpire  bool
	ExpireAtMs int64
	KeepTTL    bool
}

// Set implements SET. It returns (priorValue, priorExisted, wrote, err).
// priorValue/priorExisted are populated whenever opts.Get is set,
// regardless of whether the write happened (spec: "NX/XX failure under
// GET returns the old value").
func (s *Store) Set(key string, value []byte, opts SetOpts, nowMs int64) (prior []byte, priorExisted bool, wrote bool, err error) {
	existing, exists := s.lookup(key, nowMs)
	if opts.Get {
		if exists {
			if existing.Value.Kind != types.KindString {
				return nil, true, false, rkerrors.WrongType()
			}
			prior = existing.Value.Str
			priorExisted = true
		}
	}
	if opts.NX && exists {
		return prior, priorExisted, false, nil
	}
	if opts.XX && !exists {
		return prior, priorExisted, false, nil
	}

	e := types.Entry{Value: types.NewString(value)}
	if opts.HasExpire {
		e.ExpiresAtMs = opts.ExpireAtMs
	} else if opts.KeepTTL && exists {
		e.ExpiresAtMs = existing.ExpiresAtMs
	}
	s.set(key, e)
	return prior, priorExisted, true, nil
}

// GetSet implements GETSET: set a new string value, return the old one,
// preserving any existing TTL (spec §4.2).
func (s *Store) GetSet(key string, value []byte, nowMs int64) ([]byte, bool, error) {
	existing, exists := s.lookup(key, nowMs)
	var prior []byte
	var ttl int64
	if exists {
		if existing.Value.Kind != types.KindString {
			return nil, false, rkerrors.WrongType()
		}
		prior = existing.Value.Str
		ttl = existing.ExpiresAtMs
	}
	s.set(key, types.Entry{Value: types.NewString(value), ExpiresAtMs: ttl})
	return prior, exists, nil
}

// GetDel returns key's string value and deletes it atomically.
func (s *Store) GetDel(key string, nowMs int64) ([]byte, bool, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil || !ok {
		return nil, false, err
	}
	s.del(key)
	return e.Value.Str, true, nil
}

// SetNX is SET with NX semantics collapsed to a boolean result, kept as a
// convenience wrapper for the SETNX command.
func (s *Store) SetNX(key string, value []byte, nowMs int64) bool {
	_, _, wrote, _ := s.Set(key, value, SetOpts{NX: true}, nowMs)
	return wrote
}

// Append implements APPEND: create-or-extend a string, returning the new
// length.
func (s *Store) Append(key string, value []byte, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		s.set(key, types.Entry{Value: types.NewString(append([]byte(nil), value...))})
		return int64(len(value)), nil
	}
	e.Value.Str = append(e.Value.Str, value...)
	s.data[key] = e
	return int64(len(e.Value.Str)), nil
}

// StrLen returns the byte length of key's string value, 0 if missing.
func (s *Store) StrLen(key string, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	return int64(len(e.Value.Str)), nil
}

// GetRange implements GETRANGE with Redis's negative-index and
// start>end-is-empty semantics.
func (s *Store) GetRange(key string, start, end int64, nowMs int64) ([]byte, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil || !ok {
		return []byte{}, err
	}
	n := int64(len(e.Value.Str))
	start, end = normalizeRange(start, end, n)
	if start > end || n == 0 {
		return []byte{}, nil
	}
	out := make([]byte, end-start+1)
	copy(out, e.Value.Str[start:end+1])
	return out, nil
}

// normalizeRange converts Redis-style possibly-negative start/end indices
// into clamped, in-bounds [start, end] values over a sequence of length n.
func normalizeRange(start, end, n int64) (int64, int64) {
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if end < 0 {
		end += n
		if end < 0 {
			end = -1
		}
	}
	if end >= n {
		end = n - 1
	}
	if start >= n {
		start = n
	}
	return start, end
}

// SetRange implements SETRANGE: write value at byte offset, zero-padding
// if the string is shorter, returning the new length.
func (s *Store) SetRange(key string, offset int64, value []byte, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return 0, err
	}
	var cur []byte
	var ttl int64
	if ok {
		cur = e.Value.Str
		ttl = e.ExpiresAtMs
	}
	if len(value) == 0 {
		if !ok {
			return 0, nil
		}
		return int64(len(cur)), nil
	}
	need := offset + int64(len(value))
	if int64(len(cur)) < need {
		grown := make([]byte, need)
		copy(grown, cur)
		cur = grown
	}
	copy(cur[offset:], value)
	s.set(key, types.Entry{Value: types.NewString(cur), ExpiresAtMs: ttl})
	return int64(len(cur)), nil
}

// --- integer / float arithmetic --------------------------------------------

func parseStoredInt(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, rkerrors.ValueNotInteger()
	}
	return n, nil
}

// IncrBy implements INCR/INCRBY/DECR/DECRBY's integer arithmetic with
// i64-overflow detection (spec §4.2).
func (s *Store) IncrBy(key string, delta int64, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return 0, err
	}
	var cur int64
	if ok {
		cur, err = parseStoredInt(e.Value.Str)
		if err != nil {
			return 0, err
		}
	}
	sum := cur + delta
	if (delta > 0 && sum < cur) || (delta < 0 && sum > cur) {
		return 0, rkerrors.IntegerOverflow()
	}
	var ttl int64
	if ok {
		ttl = e.ExpiresAtMs
	}
	s.set(key, types.Entry{Value: types.NewString([]byte(strconv.FormatInt(sum, 10))), ExpiresAtMs: ttl})
	return sum, nil
}

// IncrByFloat implements INCRBYFLOAT: NaN/±Inf results fail with
// ValueNotFloat (spec §4.2).
func (s *Store) IncrByFloat(key string, delta float64, nowMs int64) (float64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return 0, err
	}
	var cur float64
	if ok {
		cur, err = strconv.ParseFloat(string(e.Value.Str), 64)
		if err != nil {
			return 0, rkerrors.ValueNotFloat()
		}
	}
	sum := cur + delta
	if isNaNOrInf(sum) {
		return 0, rkerrors.ValueNotFloat()
	}
	var ttl int64
	if ok {
		ttl = e.ExpiresAtMs
	}
	formatted := strconv.FormatFloat(sum, 'f', -1, 64)
	s.set(key, types.Entry{Value: types.NewString([]byte(formatted)), ExpiresAtMs: ttl})
	return sum, nil
}

func isNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// --- bit operations --------------------------------------------------------

// SetBit sets or clears the bit at offset (MSB-first within each byte,
// byte index offset/8, intra-byte index 7-(offset%8)), auto-extending the
// string with zero bytes, and returns the previous bit value.
func (s *Store) SetBit(key string, offset int64, bit byte, nowMs int64) (byte, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return 0, err
	}
	var cur []byte
	var ttl int64
	if ok {
		cur = e.Value.Str
		ttl = e.ExpiresAtMs
	}
	byteIdx := offset / 8
	bitIdx := uint(7 - offset%8)
	if int64(len(cur)) <= byteIdx {
		grown := make([]byte, byteIdx+1)
		copy(grown, cur)
		cur = grown
	}
	old := (cur[byteIdx] >> bitIdx) & 1
	if bit != 0 {
		cur[byteIdx] |= 1 << bitIdx
	} else {
		cur[byteIdx] &^= 1 << bitIdx
	}
	s.set(key, types.Entry{Value: types.NewString(cur), ExpiresAtMs: ttl})
	return old, nil
}

// GetBit reads the bit at offset, 0 for any offset past the string's end.
func (s *Store) GetBit(key string, offset int64, nowMs int64) (byte, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	byteIdx := offset / 8
	bitIdx := uint(7 - offset%8)
	if byteIdx >= int64(len(e.Value.Str)) {
		return 0, nil
	}
	return (e.Value.Str[byteIdx] >> bitIdx) & 1, nil
}

// BitCount counts set bits, optionally restricted to a byte range
// [start,end] with Redis's negative-index clamp semantics.
func (s *Store) BitCount(key string, hasRange bool, start, end int64, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	b := e.Value.Str
	if !hasRange {
		return int64(popcount(b)), nil
	}
	n := int64(len(b))
	start, end = normalizeRange(start, end, n)
	if start > end || n == 0 {
		return 0, nil
	}
	return int64(popcount(b[start : end+1])), nil
}

func popcount(b []byte) int {
	n := 0
	for _, c := range b {
		for c != 0 {
			n++
			c &= c - 1
		}
	}
	return n
}

// BitPos implements BITPOS, including the spec's edge case: target 0 with
// no explicit end and all bits 1 in range returns the bit position just
// past the last byte (8*len).
func (s *Store) BitPos(key string, target byte, hasRange bool, start, end int64, hasEnd bool, nowMs int64) (int64, error) {
	e, ok, err := s.getTyped(key, types.KindString, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		if target == 0 {
			return 0, nil
		}
		return -1, nil
	}
	b := e.Value.Str
	n := int64(len(b))
	rs, re := int64(0), n-1
	if hasRange {
		rs, re = normalizeRange(start, end, n)
	}
	if rs > re || n == 0 {
		return -1, nil
	}
	for byteIdx := rs; byteIdx <= re; byteIdx++ {
		for bit := 0; bit < 8; bit++ {
			v := (b[byteIdx] >> uint(7-bit)) & 1
			if v == target {
				return byteIdx*8 + int64(bit), nil
			}
		}
	}
	if target == 0 && !hasEnd {
		return n * 8, nil
	}
	return -1, nil
}

// BitOp applies a bitwise AND/OR/XOR/NOT across source key string values
// and stores the result under dest, returning the result length.
func (s *Store) BitOp(op string, dest string, sources []string, nowMs int64) (int64, error) {
	srcs := make([][]byte, 0, len(sources))
	maxLen := 0
	for _, k := range sources {
		e, ok, err := s.getTyped(k, types.KindString, nowMs)
		if err != nil {
			return 0, err
		}
		var b []byte
		if ok {
			b = e.Value.Str
		}
		srcs = append(srcs, b)
		if len(b) > maxLen {
			maxLen = len(b)
		}
	}
	if op == "NOT" && len(srcs) != 1 {
		return 0, rkerrors.SyntaxError()
	}
	out := make([]byte, maxLen)
	switch op {
	case "AND":
		for i := range out {
			var v byte = 0xff
			for _, s := range srcs {
				if i < len(s) {
					v &= s[i]
				} else {
					v = 0
				}
			}
			out[i] = v
		}
	case "OR":
		for i := range out {
			var v byte
			for _, s := range srcs {
				if i < len(s) {
					v |= s[i]
				}
			}
			out[i] = v
		}
	case "XOR":
		for i := range out {
			var v byte
			for _, s := range srcs {
				if i < len(s) {
					v ^= s[i]
				}
			}
			out[i] = v
		}
	case "NOT":
		for i := range out {
			out[i] = ^srcs[0][i]
		}
	default:
		return 0, rkerrors.SyntaxError()
	}
	if len(out) == 0 {
		s.del(dest)
		return 0, nil
	}
	s.set(dest, types.Entry{Value: types.NewString(out)})
	return int64(len(out)), nil
}
