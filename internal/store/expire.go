package store

import (
	"sort"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
)

// TTLCode is the sentinel value PTTL/TTL return for missing keys or keys
// with no expiry (spec §4.1: "{missing, no_expiry, remaining_ms}").
const (
	TTLMissing  int64 = -2
	TTLNoExpiry int64 = -1
)

// PTTLMs returns the remaining TTL in milliseconds, or one of the
// TTLMissing/TTLNoExpiry sentinels.
func (s *Store) PTTLMs(key string, nowMs int64) int64 {
	e, ok := s.lookup(key, nowMs)
	if !ok {
		return TTLMissing
	}
	if !e.HasTTL() {
		return TTLNoExpiry
	}
	remaining := e.ExpiresAtMs - nowMs
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// TTLSeconds returns PTTLMs()/1000 via integer truncation, preserving the
// -2/-1 sentinels (spec §8: "TTL(k) = PTTL(k)/1000 using integer
// truncation").
func (s *Store) TTLSeconds(key string, nowMs int64) int64 {
	ms := s.PTTLMs(key, nowMs)
	if ms == TTLMissing || ms == TTLNoExpiry {
		return ms
	}
	return ms / 1000
}

// ExpireOpt is the NX|XX|GT|LT modifier accepted by EXPIRE family
// commands.
type ExpireOpt int

const (
	ExpireOptNone ExpireOpt = iota
	ExpireOptNX
	ExpireOptXX
	ExpireOptGT
	ExpireOptLT
)

// ExpireAt sets key's absolute expiry deadline to deadlineMs, applying the
// NX|XX|GT|LT modifier against the current remaining TTL (spec §4.1).
// Returns whether the operation "applied" (Redis's EXPIRE return code).
// A deadline at or before nowMs deletes the key and still reports applied.
func (s *Store) ExpireAt(key string, deadlineMs int64, opt ExpireOpt, nowMs int64) (bool, error) {
	e, ok := s.lookup(key, nowMs)
	if !ok {
		return false, nil
	}
	switch opt {
	case ExpireOptNX:
		if e.HasTTL() {
			return false, nil
		}
	case ExpireOptXX:
		if !e.HasTTL() {
			return false, nil
		}
	case ExpireOptGT:
		if e.HasTTL() && deadlineMs <= e.ExpiresAtMs {
			return false, nil
		}
		if !e.HasTTL() {
			// GT against a persistent key: no current deadline to exceed.
			return false, nil
		}
	case ExpireOptLT:
		// LT on a persistent key applies (spec §4.1 explicitly calls this
		// out as matching Redis).
		if e.HasTTL() && deadlineMs >= e.ExpiresAtMs {
			return false, nil
		}
	}
	if deadlineMs <= nowMs {
		s.del(key)
		return true, nil
	}
	e.ExpiresAtMs = deadlineMs
	s.data[key] = e
	return true, nil
}

// ParseExpireOpt maps the textual modifier token (case-insensitive) into
// an ExpireOpt, validating the NX/XX/GT/LT mutual-exclusion rules across a
// set of tokens already collected by the caller: NX is mutually exclusive
// with XX, GT and LT, and GT is mutually exclusive with LT (spec §4.1).
func ParseExpireOpt(tokens []string) (ExpireOpt, error) {
	var nx, xx, gt, lt bool
	var opt ExpireOpt
	for _, t := range tokens {
		switch upperASCII(t) {
		case "NX":
			nx = true
			opt = ExpireOptNX
		case "XX":
			xx = true
			opt = ExpireOptXX
		case "GT":
			gt = true
			opt = ExpireOptGT
		case "LT":
			lt = true
			opt = ExpireOptLT
		default:
			return ExpireOptNone, rkerrors.SyntaxError()
		}
	}
	if nx && (xx || gt || lt) {
		return ExpireOptNone, rkerrors.SyntaxError()
	}
	if gt && lt {
		return ExpireOptNone, rkerrors.SyntaxError()
	}
	return opt, nil
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// RunActiveExpireCycle samples up to sampleLimit keys that carry a TTL,
// starting at cursor, evicting any that have expired, and returns the
// next cursor, how many keys were sampled, and how many were evicted
// (spec §4.1). The cursor advances even when nothing was evicted, to
// guarantee progress around the keyspace.
func (s *Store) RunActiveExpireCycle(nowMs int64, cursor int, sampleLimit int) (nextCursor int, sampled int, evicted int) {
	ttlKeys := s.keysWithTTL()
	n := len(ttlKeys)
	if n == 0 {
		return 0, 0, 0
	}
	start := cursor % n
	for i := 0; i < sampleLimit && i < n; i++ {
		idx := (start + i) % n
		k := ttlKeys[idx]
		e, ok := s.data[k]
		if !ok {
			continue
		}
		sampled++
		if e.Expired(nowMs) {
			s.del(k)
			evicted++
		}
	}
	steps := sampleLimit
	if steps > n {
		steps = n
	}
	nextCursor = (start + steps) % n
	return nextCursor, sampled, evicted
}

func (s *Store) keysWithTTL() []string {
	out := make([]string, 0)
	for k, e := range s.data {
		if e.HasTTL() {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
