package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdPFAdd(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	changed, err := s.PFAdd(string(argv[1]), argv[2:], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(changed), nil
}

func cmdPFCount(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.PFCount(stringsOf(argv[1:]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(int64(n)), nil
}

func cmdPFMerge(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if err := s.PFMerge(string(argv[1]), stringsOf(argv[2:]), nowMs); err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}
