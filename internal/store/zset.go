package store

import (
	"math"
	"sort"
	"strconv"
	"strings"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

func (s *Store) zsetEntry(key string, nowMs int64) (types.Entry, bool, error) {
	return s.getTyped(key, types.KindSortedSet, nowMs)
}

// ZAddOpts controls ZADD's NX/XX/GT/LT/CH modifiers.
type ZAddOpts struct {
	NX, XX   bool
	GT, LT   bool
	CH       bool
	Incr     bool
}

// ZAdd adds or updates members. Returns the count of newly added members
// (or, with CH, the count changed), and — when Incr is set — the new
// score of the single member (nil if the NX/XX/GT/LT condition blocked
// it).
func (s *Store) ZAdd(key string, opts ZAddOpts, members []types.Member, nowMs int64) (int64, *float64, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		e = types.Entry{Value: types.NewSortedSet()}
	}
	var added, changed int64
	var incrResult *float64
	for _, m := range members {
		cur, exists := e.Value.ZSet.Score(m.Name)
		if opts.NX && exists {
			continue
		}
		if opts.XX && !exists {
			continue
		}
		newScore := m.Score
		if opts.Incr {
			newScore = cur + m.Score
			if math.IsNaN(newScore) {
				return 0, nil, rkerrors.ValueNotFloat()
			}
		}
		if opts.GT && exists && newScore <= cur {
			continue
		}
		if opts.LT && exists && newScore >= cur {
			continue
		}
		if opts.Incr {
			v := newScore
			incrResult = &v
		}
		if !exists {
			added++
			changed++
		} else if newScore != cur {
			changed++
		}
		e.Value.ZSet.Set(m.Name, newScore)
	}
	s.data[key] = e
	if opts.CH {
		return changed, incrResult, nil
	}
	return added, incrResult, nil
}

// ZScore returns member's score.
func (s *Store) ZScore(key, member string, nowMs int64) (float64, bool, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return 0, false, err
	}
	sc, exists := e.Value.ZSet.Score(member)
	return sc, exists, nil
}

// ZMScore returns scores for each member, nil entries for missing ones.
func (s *Store) ZMScore(key string, members []string, nowMs int64) ([]*float64, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil {
		return nil, err
	}
	out := make([]*float64, len(members))
	if !ok {
		return out, nil
	}
	for i, m := range members {
		if sc, exists := e.Value.ZSet.Score(m); exists {
			v := sc
			out[i] = &v
		}
	}
	return out, nil
}

// ZIncrBy increments member's score, creating the key with the delta as
// score if missing (spec §4.2: "ZINCRBY on a missing key creates it with
// the delta as score").
func (s *Store) ZIncrBy(key, member string, delta float64, nowMs int64) (float64, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil {
		return 0, err
	}
	if !ok {
		e = types.Entry{Value: types.NewSortedSet()}
	}
	cur, _ := e.Value.ZSet.Score(member)
	sum := cur + delta
	if math.IsNaN(sum) {
		return 0, rkerrors.ValueNotFloat()
	}
	e.Value.ZSet.Set(member, sum)
	s.data[key] = e
	return sum, nil
}

// ZRem removes members, returning the count removed.
func (s *Store) ZRem(key string, members []string, nowMs int64) (int64, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	for _, m := range members {
		if e.Value.ZSet.Remove(m) {
			n++
		}
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return n, nil
}

// ZCard returns the member count.
func (s *Store) ZCard(key string, nowMs int64) (int64, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return 0, err
	}
	return int64(e.Value.ZSet.Len()), nil
}

// ZRange returns members in canonical order over [start, end] inclusive,
// with negative-index support; rev=true reverses the canonical order
// before indexing (ZREVRANGE).
func (s *Store) ZRange(key string, start, end int64, rev bool, nowMs int64) ([]types.Member, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := e.Value.ZSet.Members()
	if rev {
		members = reverseMembers(members)
	}
	n := int64(len(members))
	start, end = normalizeRange(start, end, n)
	if start > end || n == 0 {
		return nil, nil
	}
	out := make([]types.Member, end-start+1)
	copy(out, members[start:end+1])
	return out, nil
}

func reverseMembers(in []types.Member) []types.Member {
	out := make([]types.Member, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}

// ScoreBound represents a parsed ZRANGEBYSCORE/ZCOUNT endpoint: a value
// plus whether it's exclusive. -inf/+inf/inf are supported per spec
// §4.1.
type ScoreBound struct {
	Value     float64
	Exclusive bool
}

// ParseScoreBound parses a ZRANGEBYSCORE-style endpoint token.
func ParseScoreBound(tok string) (ScoreBound, error) {
	excl := false
	if strings.HasPrefix(tok, "(") {
		excl = true
		tok = tok[1:]
	}
	switch strings.ToLower(tok) {
	case "-inf":
		return ScoreBound{Value: math.Inf(-1), Exclusive: excl}, nil
	case "+inf", "inf":
		return ScoreBound{Value: math.Inf(1), Exclusive: excl}, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return ScoreBound{}, rkerrors.ValueNotFloat()
	}
	return ScoreBound{Value: v, Exclusive: excl}, nil
}

func (b ScoreBound) satisfiesLower(score float64) bool {
	if b.Exclusive {
		return score > b.Value
	}
	return score >= b.Value
}

func (b ScoreBound) satisfiesUpper(score float64) bool {
	if b.Exclusive {
		return score < b.Value
	}
	return score <= b.Value
}

// ZRangeByScore returns members with min <= score <= max (honoring
// exclusivity), in canonical order (or reversed for ZREVRANGEBYSCORE),
// with an optional LIMIT offset/count.
func (s *Store) ZRangeByScore(key string, min, max ScoreBound, rev bool, offset, count int64, nowMs int64) ([]types.Member, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := e.Value.ZSet.Members()
	var out []types.Member
	for _, m := range members {
		if min.satisfiesLower(m.Score) && max.satisfiesUpper(m.Score) {
			out = append(out, m)
		}
	}
	if rev {
		out = reverseMembers(out)
	}
	return applyLimit(out, offset, count), nil
}

func applyLimit(members []types.Member, offset, count int64) []types.Member {
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(members)) {
		return nil
	}
	end := int64(len(members))
	if count >= 0 && offset+count < end {
		end = offset + count
	}
	return members[offset:end]
}

// ZCount counts members with min <= score <= max.
func (s *Store) ZCount(key string, min, max ScoreBound, nowMs int64) (int64, error) {
	members, err := s.ZRangeByScore(key, min, max, false, 0, -1, nowMs)
	if err != nil {
		return 0, err
	}
	return int64(len(members)), nil
}

// LexBound represents a parsed ZRANGEBYLEX endpoint: -, +, [x, or (x.
type LexBound struct {
	NegInf, PosInf bool
	Value          string
	Exclusive      bool
}

// ParseLexBound parses a ZRANGEBYLEX-style endpoint token.
func ParseLexBound(tok string) (LexBound, error) {
	if tok == "-" {
		return LexBound{NegInf: true}, nil
	}
	if tok == "+" {
		return LexBound{PosInf: true}, nil
	}
	if len(tok) == 0 {
		return LexBound{}, rkerrors.SyntaxError()
	}
	switch tok[0] {
	case '[':
		return LexBound{Value: tok[1:]}, nil
	case '(':
		return LexBound{Value: tok[1:], Exclusive: true}, nil
	default:
		return LexBound{}, rkerrors.SyntaxError()
	}
}

func (b LexBound) satisfiesLower(member string) bool {
	if b.NegInf {
		return true
	}
	if b.PosInf {
		return false
	}
	if b.Exclusive {
		return member > b.Value
	}
	return member >= b.Value
}

func (b LexBound) satisfiesUpper(member string) bool {
	if b.PosInf {
		return true
	}
	if b.NegInf {
		return false
	}
	if b.Exclusive {
		return member < b.Value
	}
	return member <= b.Value
}

// ZRangeByLex returns members in [min, max] lexicographic range,
// assuming uniform scores (Redis's documented precondition), with an
// optional LIMIT.
func (s *Store) ZRangeByLex(key string, min, max LexBound, rev bool, offset, count int64, nowMs int64) ([]string, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := e.Value.ZSet.Members()
	var names []string
	for _, m := range members {
		if min.satisfiesLower(m.Name) && max.satisfiesUpper(m.Name) {
			names = append(names, m.Name)
		}
	}
	if rev {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(names)) {
		return nil, nil
	}
	end := int64(len(names))
	if count >= 0 && offset+count < end {
		end = offset + count
	}
	return names[offset:end], nil
}

// ZRank returns member's 0-based rank in canonical order (or reversed for
// ZREVRANK).
func (s *Store) ZRank(key, member string, rev bool, nowMs int64) (int64, bool, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return 0, false, err
	}
	members := e.Value.ZSet.Members()
	if rev {
		members = reverseMembers(members)
	}
	for i, m := range members {
		if m.Name == member {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

// ZPop removes and returns the min or max count members.
func (s *Store) ZPop(key string, max bool, count int64, nowMs int64) ([]types.Member, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := e.Value.ZSet.Members()
	if max {
		members = reverseMembers(members)
	}
	if count > int64(len(members)) {
		count = int64(len(members))
	}
	out := members[:count]
	for _, m := range out {
		e.Value.ZSet.Remove(m.Name)
	}
	s.data[key] = e
	s.collapseIfEmpty(key)
	return out, nil
}

// ZRandMember returns up to |count| members (with scores), negative count
// allows repeats.
func (s *Store) ZRandMember(key string, count int64, withScores bool, nowMs int64) ([]types.Member, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return nil, err
	}
	members := e.Value.ZSet.Members()
	if len(members) == 0 {
		return nil, nil
	}
	if count >= 0 {
		names := make([]types.Member, len(members))
		copy(names, members)
		s.shuffleMembers(names)
		if count > int64(len(names)) {
			count = int64(len(names))
		}
		return names[:count], nil
	}
	n := -count
	out := make([]types.Member, n)
	for i := range out {
		out[i] = members[s.rng.Intn(len(members))]
	}
	return out, nil
}

func (s *Store) shuffleMembers(items []types.Member) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// ZScan implements ZSCAN's cursor-based iteration over member names sorted
// lexicographically, for determinism.
func (s *Store) ZScan(key string, cursor int, count int, match string, nowMs int64) (int, []types.Member, error) {
	e, ok, err := s.zsetEntry(key, nowMs)
	if err != nil || !ok {
		return 0, nil, err
	}
	members := e.Value.ZSet.Members()
	names := make([]string, len(members))
	byName := make(map[string]float64, len(members))
	for i, m := range members {
		names[i] = m.Name
		byName[m.Name] = m.Score
	}
	sort.Strings(names)
	if count <= 0 {
		count = 10
	}
	next, page := scanPage(names, cursor, count)
	var out []types.Member
	for _, n := range page {
		if match != "" && !MatchGlobOrAll(match, n) {
			continue
		}
		out = append(out, types.Member{Name: n, Score: byName[n]})
	}
	return next, out, nil
}

// ZDiff returns members present in the first sorted set but not in any of
// the others, in canonical order (score asc per the first set, member lex
// asc).
func (s *Store) ZDiff(keys []string, nowMs int64) ([]types.Member, error) {
	first, ok, err := s.zsetEntry(keys[0], nowMs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	excluded := map[string]struct{}{}
	for _, k := range keys[1:] {
		e, ok, err := s.zsetEntry(k, nowMs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, m := range e.Value.ZSet.Members() {
			excluded[m.Name] = struct{}{}
		}
	}
	var out []types.Member
	for _, m := range first.Value.ZSet.Members() {
		if _, skip := excluded[m.Name]; !skip {
			out = append(out, m)
		}
	}
	return out, nil
}

// ZDiffStore replaces dest with the result of ZDiff, returning its
// cardinality.
func (s *Store) ZDiffStore(dest string, keys []string, nowMs int64) (int64, error) {
	diff, err := s.ZDiff(keys, nowMs)
	if err != nil {
		return 0, err
	}
	if len(diff) == 0 {
		s.del(dest)
		return 0, nil
	}
	zs := types.NewSortedSetData()
	for _, m := range diff {
		zs.Set(m.Name, m.Score)
	}
	s.set(dest, types.Entry{Value: types.Value{Kind: types.KindSortedSet, ZSet: zs}})
	return int64(len(diff)), nil
}
