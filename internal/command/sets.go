package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdSAdd(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.SAdd(string(argv[1]), argv[2:], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdSRem(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.SRem(string(argv[1]), argv[2:], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdSIsMember(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ok, err := s.SIsMember(string(argv[1]), argv[2], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdSMIsMember(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SMIsMember(string(argv[1]), argv[2:], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolArray(out), nil
}

func cmdSCard(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.SCard(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdSMembers(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	members, err := s.SMembers(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(members), nil
}

func cmdSPop(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
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
	out, err := s.SPop(string(argv[1]), count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !hasCount {
		if len(out) == 0 {
			return resp.NullBulk(), nil
		}
		return resp.BulkFromString(out[0]), nil
	}
	return stringArray(out), nil
}

func cmdSRandMember(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if len(argv) == 2 {
		out, err := s.SRandMember(string(argv[1]), 1, nowMs)
		if err != nil {
			return resp.Frame{}, err
		}
		if len(out) == 0 {
			return resp.NullBulk(), nil
		}
		return resp.BulkFromString(out[0]), nil
	}
	count, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	out, err := s.SRandMember(string(argv[1]), count, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(out), nil
}

func cmdSMove(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ok, err := s.SMove(string(argv[1]), string(argv[2]), argv[3], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdSInter(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SInter(stringsOf(argv[1:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(out), nil
}

func cmdSUnion(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SUnion(stringsOf(argv[1:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(out), nil
}

func cmdSDiff(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SDiff(stringsOf(argv[1:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return stringArray(out), nil
}

func cmdSScan(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	cursor, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	count, match, err := parseScanOpts(argv[3:])
	if err != nil {
		return resp.Frame{}, err
	}
	next, members, err := s.SScan(string(argv[1]), int(cursor), count, match, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Array([]resp.Frame{resp.BulkFromString(formatInt(int64(next))), stringArray(members)}), nil
}

func cmdSInterStore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SInter(stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(s.StoreSet(string(argv[1]), out)), nil
}

func cmdSUnionStore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SUnion(stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(s.StoreSet(string(argv[1]), out)), nil
}

func cmdSDiffStore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out, err := s.SDiff(stringsOf(argv[2:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(s.StoreSet(string(argv[1]), out)), nil
}
