// Package digest provides the deterministic FNV-1a64 canonical-encoding
// helpers shared by the keyspace state digest (used by WATCH), per-key
// fingerprints, and the evidence ledger's input/output/state digests
// (spec §3, §4.3).
package digest

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Hasher accumulates bytes into a running FNV-1a 64-bit digest. It exists
// so callers build up a canonical encoding (type tag, content, expiry)
// incrementally without allocating an intermediate buffer.
type Hasher struct {
	h uint64
}

// offset64 is the FNV-1a 64-bit offset basis.
const offset64 = 14695981039346656037

// New returns a Hasher seeded with the FNV-1a offset basis.
func New() *Hasher {
	return &Hasher{h: offset64}
}

const prime64 = 1099511628211

// Write feeds bytes into the running digest.
func (d *Hasher) Write(b []byte) *Hasher {
	h := d.h
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	d.h = h
	return d
}

// WriteByte feeds a single byte into the running digest.
func (d *Hasher) WriteByte(b byte) *Hasher {
	return d.Write([]byte{b})
}

// WriteUint64LE feeds the little-endian encoding of u into the digest —
// used for the expiry epoch, per spec §3 ("the expiry epoch as
// little-endian u64 (0 when absent)").
func (d *Hasher) WriteUint64LE(u uint64) *Hasher {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return d.Write(b[:])
}

// Sum returns the current 64-bit digest value.
func (d *Hasher) Sum() uint64 {
	return d.h
}

// Hex returns the digest as a 16-hex-char string, the format mandated for
// evidence ledger input/output/state digests (spec §4.3).
func (d *Hasher) Hex() string {
	return fmt.Sprintf("%016x", d.h)
}

// Bytes64 hashes a single byte slice in one shot (FNV-1a 64-bit), for
// callers that don't need incremental accumulation.
func Bytes64(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

// HexOf renders an arbitrary byte slice's FNV-1a64 digest as 16 hex chars.
func HexOf(b []byte) string {
	return fmt.Sprintf("%016x", Bytes64(b))
}
