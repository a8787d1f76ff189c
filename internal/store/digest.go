package store

import (
	"math"
	"sort"

	"github.com/blueberrycongee/redikv/internal/digest"
	"github.com/blueberrycongee/redikv/pkg/types"
)

// typeTag returns the single-byte type tag used by the canonical digest
// encoding (spec §3: "per-entry a type tag byte").
func typeTag(k types.Kind) byte {
	switch k {
	case types.KindString:
		return 0
	case types.KindHash:
		return 1
	case types.KindList:
		return 2
	case types.KindSet:
		return 3
	case types.KindSortedSet:
		return 4
	default:
		return 0xff
	}
}

// writeEntry feeds one entry's canonical encoding into h: type tag, sorted
// content, then the expiry epoch as little-endian u64 (0 when absent).
func writeEntry(h *digest.Hasher, e types.Entry) {
	h.WriteByte(typeTag(e.Value.Kind))
	switch e.Value.Kind {
	case types.KindString:
		h.Write(e.Value.Str)
	case types.KindHash:
		fields := make([]string, 0, len(e.Value.Hash))
		for f := range e.Value.Hash {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			h.Write([]byte(f))
			h.Write(e.Value.Hash[f])
		}
	case types.KindList:
		for _, v := range e.Value.List {
			h.Write(v)
		}
	case types.KindSet:
		members := make([]string, 0, len(e.Value.Set))
		for m := range e.Value.Set {
			members = append(members, m)
		}
		sort.Strings(members)
		for _, m := range members {
			h.Write([]byte(m))
		}
	case types.KindSortedSet:
		if e.Value.ZSet != nil {
			members := e.Value.ZSet.Members()
			sorted := make([]types.Member, len(members))
			copy(sorted, members)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
			for _, m := range sorted {
				h.Write([]byte(m.Name))
				h.WriteUint64LE(math.Float64bits(m.Score))
			}
		}
	}
	var epoch uint64
	if e.HasTTL() {
		epoch = uint64(e.ExpiresAtMs)
	}
	h.WriteUint64LE(epoch)
}

// StateDigest computes the deterministic FNV-1a64 digest over the entire
// live keyspace (spec §3): keys sorted ascending, each entry's canonical
// encoding, independent of internal map iteration order.
func (s *Store) StateDigest(nowMs int64) uint64 {
	keys := s.allLiveKeys(nowMs)
	sort.Strings(keys)
	h := digest.New()
	for _, k := range keys {
		h.Write([]byte(k))
		writeEntry(h, s.data[k])
	}
	return h.Sum()
}

// KeyFingerprint returns a value that changes iff key would be observed
// differently on next read: existence, type tag, and content digest
// (spec §4.1, used by WATCH).
func (s *Store) KeyFingerprint(key string, nowMs int64) uint64 {
	e, ok := s.lookup(key, nowMs)
	h := digest.New()
	if !ok {
		h.WriteByte(0)
		return h.Sum()
	}
	h.WriteByte(1)
	writeEntry(h, e)
	return h.Sum()
}
