package types

// Entry is a keyspace slot: a Value paired with an absolute expiry
// deadline. ExpiresAtMs is 0 when the entry has no TTL — this doubles as
// the state digest's "expiry epoch as little-endian u64 (0 when absent)"
// encoding (spec §3), so Entry never needs a separate "has TTL" bool.
type Entry struct {
	Value       Value
	ExpiresAtMs int64
}

// HasTTL reports whether the entry carries an expiration deadline.
func (e Entry) HasTTL() bool { return e.ExpiresAtMs != 0 }

// Expired reports whether nowMs has passed the entry's deadline. An entry
// with no TTL never expires.
func (e Entry) Expired(nowMs int64) bool {
	return e.HasTTL() && e.ExpiresAtMs <= nowMs
}

// AccountedBytes returns the deterministic, monotonic byte count used by
// maxmemory pressure classification (SPEC_FULL §3): key length plus a
// per-variant content size. It does not attempt to model Go's actual heap
// overhead — the spec only requires a reproducible accounting function.
func (e Entry) AccountedBytes(key string) int {
	total := len(key)
	switch e.Value.Kind {
	case KindString:
		total += len(e.Value.Str)
	case KindHash:
		for f, v := range e.Value.Hash {
			total += len(f) + len(v)
		}
	case KindList:
		for _, v := range e.Value.List {
			total += len(v)
		}
	case KindSet:
		for m := range e.Value.Set {
			total += len(m)
		}
	case KindSortedSet:
		if e.Value.ZSet != nil {
			for _, m := range e.Value.ZSet.Members() {
				total += len(m.Name) + 8
			}
		}
	}
	return total
}
