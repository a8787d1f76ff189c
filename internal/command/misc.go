package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdPing(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if len(argv) == 2 {
		return resp.BulkString(argv[1]), nil
	}
	return resp.Simple("PONG"), nil
}

func cmdEcho(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.BulkString(argv[1]), nil
}

func cmdTime(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	seconds := nowMs / 1000
	micros := (nowMs % 1000) * 1000
	return resp.Array([]resp.Frame{
		resp.BulkFromString(formatInt(seconds)),
		resp.BulkFromString(formatInt(micros)),
	}), nil
}

func cmdSelect(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	idx, err := parseInt(argv[1])
	if err != nil {
		return resp.Frame{}, err
	}
	if idx != 0 {
		return resp.Frame{}, rkerrors.DBIndexOutOfRange()
	}
	return resp.OK(), nil
}

func cmdSwapDB(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.OK(), nil
}
