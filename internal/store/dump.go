package store

import (
	"encoding/binary"
	"hash/crc64"
	"math"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

// dumpVersion is the 2-byte "RDB version" footer field (SPEC_FULL §4.1);
// it has no meaning beyond round-trip compatibility within this engine.
const dumpVersion uint16 = 1

var crcTable = crc64.MakeTable(crc64.ISO)

// Dump serializes key's value into the DUMP payload format: a type byte,
// per-variant content, a 2-byte version, and an 8-byte CRC64 footer over
// everything preceding it (spec SPEC_FULL §4.1).
func (s *Store) Dump(key string, nowMs int64) ([]byte, bool, error) {
	e, ok := s.lookup(key, nowMs)
	if !ok {
		return nil, false, nil
	}
	body := []byte{typeTag(e.Value.Kind)}
	switch e.Value.Kind {
	case types.KindString:
		body = append(body, encodeBytes(e.Value.Str)...)
	case types.KindHash:
		fields := sortedFields(e.Value.Hash)
		body = append(body, encodeUint(uint64(len(fields)))...)
		for _, f := range fields {
			body = append(body, encodeBytes([]byte(f))...)
			body = append(body, encodeBytes(e.Value.Hash[f])...)
		}
	case types.KindList:
		body = append(body, encodeUint(uint64(len(e.Value.List)))...)
		for _, v := range e.Value.List {
			body = append(body, encodeBytes(v)...)
		}
	case types.KindSet:
		members := sortedSetMembers(e.Value.Set)
		body = append(body, encodeUint(uint64(len(members)))...)
		for _, m := range members {
			body = append(body, encodeBytes([]byte(m))...)
		}
	case types.KindSortedSet:
		members := e.Value.ZSet.Members()
		body = append(body, encodeUint(uint64(len(members)))...)
		for _, m := range members {
			body = append(body, encodeBytes([]byte(m.Name))...)
			var sb [8]byte
			binary.LittleEndian.PutUint64(sb[:], float64ToBits(m.Score))
			body = append(body, sb[:]...)
		}
	default:
		return nil, false, rkerrors.WrongType()
	}
	var ver [2]byte
	binary.LittleEndian.PutUint16(ver[:], dumpVersion)
	body = append(body, ver[:]...)
	crc := crc64.Checksum(body, crcTable)
	var crcBuf [8]byte
	binary.LittleEndian.PutUint64(crcBuf[:], crc)
	return append(body, crcBuf[:]...), true, nil
}

// RestoreOpts controls RESTORE's REPLACE/ABSTTL modifiers. IDLETIME/FREQ
// are accepted by the command surface but have no effect in this engine
// (no LRU/LFU clock is modeled).
type RestoreOpts struct {
	Replace bool
	AbsTTL  bool
}

// Restore validates payload's CRC64 footer and decodes it back into key,
// applying ttlMs (absolute if AbsTTL, else relative to nowMs; 0 = no
// TTL). BUSYKEY applies without REPLACE (spec SPEC_FULL §4.1).
func (s *Store) Restore(key string, ttlMs int64, payload []byte, opts RestoreOpts, nowMs int64) error {
	if !opts.Replace {
		if _, ok := s.lookup(key, nowMs); ok {
			return rkerrors.BusyKey()
		}
	}
	if len(payload) < 1+2+8 {
		return rkerrors.InvalidDumpPayload()
	}
	body := payload[:len(payload)-8]
	wantCRC := binary.LittleEndian.Uint64(payload[len(payload)-8:])
	if crc64.Checksum(body, crcTable) != wantCRC {
		return rkerrors.InvalidDumpPayload()
	}
	content := body[:len(body)-2]

	kind := content[0]
	rest := content[1:]
	var value types.Value
	var err error
	switch kind {
	case typeTag(types.KindString):
		var b []byte
		b, rest, err = decodeBytes(rest)
		if err != nil {
			return rkerrors.InvalidDumpPayload()
		}
		value = types.NewString(b)
	case typeTag(types.KindHash):
		n, r, err2 := decodeUint(rest)
		if err2 != nil {
			return rkerrors.InvalidDumpPayload()
		}
		rest = r
		h := make(map[string][]byte, n)
		for i := uint64(0); i < n; i++ {
			var f, v []byte
			f, rest, err = decodeBytes(rest)
			if err != nil {
				return rkerrors.InvalidDumpPayload()
			}
			v, rest, err = decodeBytes(rest)
			if err != nil {
				return rkerrors.InvalidDumpPayload()
			}
			h[string(f)] = v
		}
		value = types.Value{Kind: types.KindHash, Hash: h}
	case typeTag(types.KindList):
		n, r, err2 := decodeUint(rest)
		if err2 != nil {
			return rkerrors.InvalidDumpPayload()
		}
		rest = r
		list := make([][]byte, 0, n)
		for i := uint64(0); i < n; i++ {
			var v []byte
			v, rest, err = decodeBytes(rest)
			if err != nil {
				return rkerrors.InvalidDumpPayload()
			}
			list = append(list, v)
		}
		value = types.Value{Kind: types.KindList, List: list}
	case typeTag(types.KindSet):
		n, r, err2 := decodeUint(rest)
		if err2 != nil {
			return rkerrors.InvalidDumpPayload()
		}
		rest = r
		set := make(map[string]struct{}, n)
		for i := uint64(0); i < n; i++ {
			var v []byte
			v, rest, err = decodeBytes(rest)
			if err != nil {
				return rkerrors.InvalidDumpPayload()
			}
			set[string(v)] = struct{}{}
		}
		value = types.Value{Kind: types.KindSet, Set: set}
	case typeTag(types.KindSortedSet):
		n, r, err2 := decodeUint(rest)
		if err2 != nil {
			return rkerrors.InvalidDumpPayload()
		}
		rest = r
		zs := types.NewSortedSetData()
		for i := uint64(0); i < n; i++ {
			var m []byte
			m, rest, err = decodeBytes(rest)
			if err != nil {
				return rkerrors.InvalidDumpPayload()
			}
			if len(rest) < 8 {
				return rkerrors.InvalidDumpPayload()
			}
			sc := bitsToFloat64(binary.LittleEndian.Uint64(rest[:8]))
			rest = rest[8:]
			zs.Set(string(m), sc)
		}
		value = types.Value{Kind: types.KindSortedSet, ZSet: zs}
	default:
		return rkerrors.InvalidDumpPayload()
	}

	var expiresAt int64
	if ttlMs > 0 {
		if opts.AbsTTL {
			expiresAt = ttlMs
		} else {
			expiresAt = nowMs + ttlMs
		}
	}
	s.set(key, types.Entry{Value: value, ExpiresAtMs: expiresAt})
	return nil
}

func encodeUint(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func decodeUint(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, rkerrors.InvalidDumpPayload()
	}
	return binary.LittleEndian.Uint64(b[:8]), b[8:], nil
}

func encodeBytes(b []byte) []byte {
	out := encodeUint(uint64(len(b)))
	return append(out, b...)
}

func decodeBytes(b []byte) ([]byte, []byte, error) {
	n, rest, err := decodeUint(b)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, rkerrors.InvalidDumpPayload()
	}
	return rest[:n], rest[n:], nil
}

func float64ToBits(f float64) uint64 { return math.Float64bits(f) }
func bitsToFloat64(u uint64) float64 { return math.Float64frombits(u) }
