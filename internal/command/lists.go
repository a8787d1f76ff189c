package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdLPush(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.LPush(string(argv[1]), argv[2:], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdRPush(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.RPush(string(argv[1]), argv[2:], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdLPushX(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.PushX(string(argv[1]), argv[2:], true, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdRPushX(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.PushX(string(argv[1]), argv[2:], false, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func popCommon(s *store.Store, argv [][]byte, left bool, nowMs int64) (resp.Frame, error) {
	hasCount := len(argv) > 2
	count := int64(1)
	if hasCount {
		n, err := parseInt(argv[2])
		if err != nil {
			return resp.Frame{}, err
		}
		if n < 0 {
			return resp.Frame{}, rkerrors.IndexOutOfRange()
		}
		count = n
	}
	out, err := s.Pop(string(argv[1]), left, count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !hasCount {
		if len(out) == 0 {
			return resp.NullBulk(), nil
		}
		return resp.BulkString(out[0]), nil
	}
	if out == nil {
		return resp.NullArray(), nil
	}
	return bulkArray(out), nil
}

func cmdLPop(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return popCommon(s, argv, true, nowMs)
}

func cmdRPop(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return popCommon(s, argv, false, nowMs)
}

func cmdLLen(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.LLen(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdLRange(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	start, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	end, err := parseInt(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	out, err := s.LRange(string(argv[1]), start, end, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return bulkArray(out), nil
}

func cmdLIndex(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	idx, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	v, ok, err := s.LIndex(string(argv[1]), idx, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(v), nil
}

func cmdLSet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	idx, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	if err := s.LSet(string(argv[1]), idx, argv[3], nowMs); err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}

func cmdLInsert(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	var before bool
	switch upper(argv[2]) {
	case "BEFORE":
		before = true
	case "AFTER":
		before = false
	default:
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	n, err := s.LInsert(string(argv[1]), before, argv[3], argv[4], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdLTrim(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	start, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	end, err := parseInt(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	if err := s.LTrim(string(argv[1]), start, end, nowMs); err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}

func cmdLRem(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	count, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.LRem(string(argv[1]), count, argv[3], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdLPos(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	var rank, maxLen int64
	args := argv[3:]
	for i := 0; i < len(args); i++ {
		switch upper(args[i]) {
		case "RANK":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			v, err := parseInt(args[i])
			if err != nil {
				return resp.Frame{}, err
			}
			rank = v
		case "MAXLEN":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			v, err := parseInt(args[i])
			if err != nil {
				return resp.Frame{}, err
			}
			maxLen = v
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	pos, found, err := s.LPos(string(argv[1]), argv[2], rank, maxLen, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !found {
		return resp.NullBulk(), nil
	}
	return resp.Int(pos), nil
}

func cmdRPopLPush(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	v, ok, err := s.LMove(string(argv[1]), string(argv[2]), false, true, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(v), nil
}

func cmdLMove(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	srcLeft, err := parseDirection(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	dstLeft, err := parseDirection(argv[4])
	if err != nil {
		return resp.Frame{}, err
	}
	v, ok, err := s.LMove(string(argv[1]), string(argv[2]), srcLeft, dstLeft, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(v), nil
}

func parseDirection(tok []byte) (bool, error) {
	switch upper(tok) {
	case "LEFT":
		return true, nil
	case "RIGHT":
		return false, nil
	default:
		return false, rkerrors.SyntaxError()
	}
}
