package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdSort(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	var opts store.SortOpts
	args := argv[2:]
	for i := 0; i < len(args); i++ {
		switch upper(args[i]) {
		case "ASC":
		case "DESC":
			opts.Desc = true
		case "ALPHA":
			opts.Alpha = true
		case "BY":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			opts.By = string(args[i])
		case "GET":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			opts.Get = append(opts.Get, string(args[i]))
		case "LIMIT":
			if i+2 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			offset, err := parseInt(args[i+1])
			if err != nil {
				return resp.Frame{}, err
			}
			count, err := parseInt(args[i+2])
			if err != nil {
				return resp.Frame{}, err
			}
			opts.Limit = true
			opts.Offset = offset
			opts.Count = count
			i += 2
		case "STORE":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			opts.HasStore = true
			opts.Store = string(args[i])
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	out, err := s.Sort(string(argv[1]), opts, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if opts.HasStore {
		return resp.Int(int64(len(out))), nil
	}
	return bulkArray(out), nil
}

func cmdDump(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	payload, ok, err := s.Dump(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(payload), nil
}

func cmdRestore(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ttlMs, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	if ttlMs < 0 {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	var opts store.RestoreOpts
	rest := argv[4:]
	for i := 0; i < len(rest); i++ {
		switch upper(rest[i]) {
		case "REPLACE":
			opts.Replace = true
		case "ABSTTL":
			opts.AbsTTL = true
		case "IDLETIME", "FREQ":
			// accepted, no-op: no LRU/LFU clock modeled.
			if i+1 >= len(rest) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	if err := s.Restore(string(argv[1]), ttlMs, argv[3], opts, nowMs); err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}
