package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdHSet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	fv := argv[2:]
	if len(fv)%2 != 0 {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	pairs := make([][2][]byte, len(fv)/2)
	for i := 0; i < len(fv); i += 2 {
		pairs[i/2] = [2][]byte{fv[i], fv[i+1]}
	}
	n, err := s.HSet(string(argv[1]), pairs, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdHMSet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if _, err := cmdHSet(s, argv, nowMs); err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}

func cmdHSetNX(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ok, err := s.HSetNX(string(argv[1]), string(argv[2]), argv[3], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdHGet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	v, ok, err := s.HGet(string(argv[1]), string(argv[2]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(v), nil
}

func cmdHMGet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	vals, err := s.HMGet(string(argv[1]), stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return bulkArray(vals), nil
}

func cmdHDel(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.HDel(string(argv[1]), stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdHExists(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ok, err := s.HExists(string(argv[1]), string(argv[2]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdHLen(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.HLen(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdHStrLen(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.HStrLen(string(argv[1]), string(argv[2]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdHKeys(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	fields, err := s.HKeys(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(fields), nil
}

func cmdHVals(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	vals, err := s.HVals(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return bulkArray(vals), nil
}

func cmdHGetAll(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	pairs, err := s.HGetAll(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	flat := make([][]byte, 0, len(pairs)*2)
	for _, p := range pairs {
		flat = append(flat, p[0], p[1])
	}
	return bulkArray(flat), nil
}

func cmdHIncrBy(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	delta, err := parseInt(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.HIncrBy(string(argv[1]), string(argv[2]), delta, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdHIncrByFloat(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	delta, err := parseFloat(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.HIncrByFloat(string(argv[1]), string(argv[2]), delta, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.BulkFromString(formatFloat(n)), nil
}

func cmdHRandField(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if len(argv) == 2 {
		pairs, err := s.HRandField(string(argv[1]), 1, false, nowMs)
		if err != nil {
			return resp.Frame{}, err
		}
		if len(pairs) == 0 {
			return resp.NullBulk(), nil
		}
		return resp.BulkString(pairs[0][0]), nil
	}
	count, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	withValues := false
	if len(argv) > 3 {
		if upper(argv[3]) != "WITHVALUES" {
			return resp.Frame{}, rkerrors.SyntaxError()
		}
		withValues = true
	}
	pairs, err := s.HRandField(string(argv[1]), count, withValues, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	flat := make([][]byte, 0, len(pairs)*2)
	for _, p := range pairs {
		flat = append(flat, p[0])
		if withValues {
			flat = append(flat, p[1])
		}
	}
	return bulkArray(flat), nil
}

func cmdHScan(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	cursor, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	count, match, err := parseScanOpts(argv[3:])
	if err != nil {
		return resp.Frame{}, err
	}
	next, pairs, err := s.HScan(string(argv[1]), int(cursor), count, match, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	flat := make([][]byte, 0, len(pairs)*2)
	for _, p := range pairs {
		flat = append(flat, p[0], p[1])
	}
	return resp.Array([]resp.Frame{resp.BulkFromString(formatInt(int64(next))), bulkArray(flat)}), nil
}

func parseScanOpts(args [][]byte) (count int, match string, err error) {
	for i := 0; i < len(args); i++ {
		switch upper(args[i]) {
		case "COUNT":
			if i+1 >= len(args) {
				return 0, "", rkerrors.SyntaxError()
			}
			i++
			n, e := parseInt(args[i])
			if e != nil {
				return 0, "", e
			}
			count = int(n)
		case "MATCH":
			if i+1 >= len(args) {
				return 0, "", rkerrors.SyntaxError()
			}
			i++
			match = string(args[i])
		default:
			return 0, "", rkerrors.SyntaxError()
		}
	}
	return count, match, nil
}
