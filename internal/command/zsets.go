package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
	"github.com/blueberrycongee/redikv/pkg/types"
)

func membersFromReply(members []types.Member, withScores bool) resp.Frame {
	if withScores {
		flat := make([]resp.Frame, 0, len(members)*2)
		for _, m := range members {
			flat = append(flat, resp.BulkFromString(m.Name), resp.BulkFromString(formatFloat(m.Score)))
		}
		return resp.Array(flat)
	}
	flat := make([]resp.Frame, len(members))
	for i, m := range members {
		flat[i] = resp.BulkFromString(m.Name)
	}
	return resp.Array(flat)
}

func cmdZAdd(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	var opts store.ZAddOpts
	i := 2
loop:
	for ; i < len(argv); i++ {
		switch upper(argv[i]) {
		case "NX":
			opts.NX = true
		case "XX":
			opts.XX = true
		case "GT":
			opts.GT = true
		case "LT":
			opts.LT = true
		case "CH":
			opts.CH = true
		case "INCR":
			opts.Incr = true
		default:
			break loop
		}
	}
	if opts.NX && (opts.GT || opts.LT) {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	if opts.GT && opts.LT {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	rest := argv[i:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	if opts.Incr && len(rest) != 2 {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	members := make([]types.Member, len(rest)/2)
	for k := 0; k < len(rest); k += 2 {
		score, err := parseFloat(rest[k])
		if err != nil {
			return resp.Frame{}, err
		}
		members[k/2] = types.Member{Name: string(rest[k+1]), Score: score}
	}
	added, incrResult, err := s.ZAdd(string(argv[1]), opts, members, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if opts.Incr {
		if incrResult == nil {
			return resp.NullBulk(), nil
		}
		return resp.BulkFromString(formatFloat(*incrResult)), nil
	}
	return resp.Int(added), nil
}

func cmdZScore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	score, ok, err := s.ZScore(string(argv[1]), string(argv[2]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkFromString(formatFloat(score)), nil
}

func cmdZMScore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	scores, err := s.ZMScore(string(argv[1]), stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	frames := make([]resp.Frame, len(scores))
	for i, sc := range scores {
		if sc == nil {
			frames[i] = resp.NullBulk()
		} else {
			frames[i] = resp.BulkFromString(formatFloat(*sc))
		}
	}
	return resp.Array(frames), nil
}

func cmdZIncrBy(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	delta, err := parseFloat(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	sum, err := s.ZIncrBy(string(argv[1]), string(argv[3]), delta, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.BulkFromString(formatFloat(sum)), nil
}

func cmdZRem(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.ZRem(string(argv[1]), stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdZCard(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.ZCard(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func zrangeWithScoresFlag(args [][]byte) (rest [][]byte, withScores bool, err error) {
	for _, a := range args {
		if upper(a) == "WITHSCORES" {
			withScores = true
			continue
		}
		rest = append(rest, a)
	}
	return rest, withScores, nil
}

func cmdZRange(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrangeGeneric(s, argv, false, nowMs)
}

func cmdZRevRange(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrangeGeneric(s, argv, true, nowMs)
}

func zrangeGeneric(s *store.Store, argv [][]byte, rev bool, nowMs int64) (resp.Frame, error) {
	start, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	end, err := parseInt(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	rest, withScores, _ := zrangeWithScoresFlag(argv[4:])
	if len(rest) != 0 {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	members, err := s.ZRange(string(argv[1]), start, end, rev, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return membersFromReply(members, withScores), nil
}

func cmdZRangeByScore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrangeByScoreGeneric(s, argv, false, nowMs)
}

func cmdZRevRangeByScore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrangeByScoreGeneric(s, argv, true, nowMs)
}

func zrangeByScoreGeneric(s *store.Store, argv [][]byte, rev bool, nowMs int64) (resp.Frame, error) {
	minTok, maxTok := argv[2], argv[3]
	if rev {
		minTok, maxTok = argv[3], argv[2]
	}
	min, err := store.ParseScoreBound(string(minTok))
	if err != nil {
		return resp.Frame{}, err
	}
	max, err := store.ParseScoreBound(string(maxTok))
	if err != nil {
		return resp.Frame{}, err
	}
	withScores := false
	offset, count := int64(0), int64(-1)
	args := argv[4:]
	for i := 0; i < len(args); i++ {
		switch upper(args[i]) {
		case "WITHSCORES":
			withScores = true
		case "LIMIT":
			if i+2 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			o, err := parseInt(args[i+1])
			if err != nil {
				return resp.Frame{}, err
			}
			c, err := parseInt(args[i+2])
			if err != nil {
				return resp.Frame{}, err
			}
			offset, count = o, c
			i += 2
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	members, err := s.ZRangeByScore(string(argv[1]), min, max, rev, offset, count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return membersFromReply(members, withScores), nil
}

func cmdZCount(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	min, err := store.ParseScoreBound(string(argv[2]))
	if err != nil {
		return resp.Frame{}, err
	}
	max, err := store.ParseScoreBound(string(argv[3]))
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.ZCount(string(argv[1]), min, max, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdZRangeByLex(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrangeByLexGeneric(s, argv, false, nowMs)
}

func cmdZRevRangeByLex(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrangeByLexGeneric(s, argv, true, nowMs)
}

func zrangeByLexGeneric(s *store.Store, argv [][]byte, rev bool, nowMs int64) (resp.Frame, error) {
	minTok, maxTok := argv[2], argv[3]
	if rev {
		minTok, maxTok = argv[3], argv[2]
	}
	min, err := store.ParseLexBound(string(minTok))
	if err != nil {
		return resp.Frame{}, err
	}
	max, err := store.ParseLexBound(string(maxTok))
	if err != nil {
		return resp.Frame{}, err
	}
	offset, count := int64(0), int64(-1)
	args := argv[4:]
	for i := 0; i < len(args); i++ {
		if upper(args[i]) != "LIMIT" || i+2 >= len(args) {
			return resp.Frame{}, rkerrors.SyntaxError()
		}
		o, err := parseInt(args[i+1])
		if err != nil {
			return resp.Frame{}, err
		}
		c, err := parseInt(args[i+2])
		if err != nil {
			return resp.Frame{}, err
		}
		offset, count = o, c
		i += 2
	}
	names, err := s.ZRangeByLex(string(argv[1]), min, max, rev, offset, count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(names), nil
}

func cmdZRank(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrankGeneric(s, argv, false, nowMs)
}

func cmdZRevRank(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return zrankGeneric(s, argv, true, nowMs)
}

func zrankGeneric(s *store.Store, argv [][]byte, rev bool, nowMs int64) (resp.Frame, error) {
	withScore := len(argv) > 3 && upper(argv[3]) == "WITHSCORE"
	rank, ok, err := s.ZRank(string(argv[1]), string(argv[2]), rev, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		if withScore {
			return resp.NullArray(), nil
		}
		return resp.NullBulk(), nil
	}
	if withScore {
		score, _, _ := s.ZScore(string(argv[1]), string(argv[2]), nowMs)
		return resp.Array([]resp.Frame{resp.Int(rank), resp.BulkFromString(formatFloat(score))}), nil
	}
	return resp.Int(rank), nil
}

func popCountArg(argv [][]byte) (int64, error) {
	if len(argv) > 2 {
		return parseInt(argv[2])
	}
	return 1, nil
}

func cmdZPopMin(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	count, err := popCountArg(argv)
	if err != nil {
		return resp.Frame{}, err
	}
	members, err := s.ZPop(string(argv[1]), false, count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return membersFromReply(members, true), nil
}

func cmdZPopMax(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	count, err := popCountArg(argv)
	if err != nil {
		return resp.Frame{}, err
	}
	members, err := s.ZPop(string(argv[1]), true, count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return membersFromReply(members, true), nil
}

func cmdZRandMember(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if len(argv) == 2 {
		members, err := s.ZRandMember(string(argv[1]), 1, false, nowMs)
		if err != nil {
			return resp.Frame{}, err
		}
		if len(members) == 0 {
			return resp.NullBulk(), nil
		}
		return resp.BulkFromString(members[0].Name), nil
	}
	count, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	withScores := len(argv) > 3 && upper(argv[3]) == "WITHSCORES"
	members, err := s.ZRandMember(string(argv[1]), count, withScores, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return membersFromReply(members, withScores), nil
}

func cmdZScan(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	cursor, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	count, match, err := parseScanOpts(argv[3:])
	if err != nil {
		return resp.Frame{}, err
	}
	next, members, err := s.ZScan(string(argv[1]), int(cursor), count, match, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	flat := make([][]byte, 0, len(members)*2)
	for _, m := range members {
		flat = append(flat, []byte(m.Name), []byte(formatFloat(m.Score)))
	}
	return resp.Array([]resp.Frame{resp.BulkFromString(formatInt(int64(next))), bulkArray(flat)}), nil
}

func cmdZDiff(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	numKeys, err := parseInt(argv[1])
	if err != nil {
		return resp.Frame{}, err
	}
	keys, rest := splitNumKeys(argv[2:], numKeys)
	withScores := len(rest) > 0 && upper(rest[0]) == "WITHSCORES"
	members, err := s.ZDiff(keys, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return membersFromReply(members, withScores), nil
}

func cmdZDiffStore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	numKeys, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	keys, _ := splitNumKeys(argv[3:], numKeys)
	n, err := s.ZDiffStore(string(argv[1]), keys, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func splitNumKeys(args [][]byte, numKeys int64) (keys []string, rest [][]byte) {
	if numKeys < 0 || numKeys > int64(len(args)) {
		numKeys = int64(len(args))
	}
	return stringsOf(args[:numKeys]), args[numKeys:]
}
