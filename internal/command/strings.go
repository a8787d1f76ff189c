package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdGet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	v, ok, err := s.Get(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(v), nil
}

func cmdSet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	key := string(argv[1])
	value := argv[2]
	var opts store.SetOpts
	args := argv[3:]
	for i := 0; i < len(args); i++ {
		switch upper(args[i]) {
		case "NX":
			opts.NX = true
		case "XX":
			opts.XX = true
		case "GET":
			opts.Get = true
		case "KEEPTTL":
			opts.KeepTTL = true
		case "EX", "PX", "EXAT", "PXAT":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			n, err := parseInt(args[i+1])
			if err != nil {
				return resp.Frame{}, err
			}
			i++
			opts.HasExpire = true
			switch upper(args[i-1]) {
			case "EX":
				if n <= 0 {
					return resp.Frame{}, rkerrors.InvalidExpireTime("set")
				}
				opts.ExpireAtMs = nowMs + n*1000
			case "PX":
				if n <= 0 {
					return resp.Frame{}, rkerrors.InvalidExpireTime("set")
				}
				opts.ExpireAtMs = nowMs + n
			case "EXAT":
				opts.ExpireAtMs = n * 1000
			case "PXAT":
				opts.ExpireAtMs = n
			}
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	if opts.NX && opts.XX {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	if opts.HasExpire && opts.KeepTTL {
		return resp.Frame{}, rkerrors.SyntaxError()
	}

	prior, priorExisted, wrote, err := s.Set(key, value, opts, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if opts.Get {
		if !priorExisted {
			return resp.NullBulk(), nil
		}
		return resp.BulkString(prior), nil
	}
	if !wrote {
		return resp.NullBulk(), nil
	}
	return resp.OK(), nil
}

func cmdSetNX(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ok := s.SetNX(string(argv[1]), argv[2], nowMs)
	return boolInt(ok), nil
}

func cmdSetEx(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	seconds, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	if seconds <= 0 {
		return resp.Frame{}, rkerrors.InvalidExpireTime("setex")
	}
	_, _, _, err = s.Set(string(argv[1]), argv[3], store.SetOpts{HasExpire: true, ExpireAtMs: nowMs + seconds*1000}, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}

func cmdPSetEx(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ms, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	if ms <= 0 {
		return resp.Frame{}, rkerrors.InvalidExpireTime("psetex")
	}
	_, _, _, err = s.Set(string(argv[1]), argv[3], store.SetOpts{HasExpire: true, ExpireAtMs: nowMs + ms}, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}

func cmdGetSet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	prior, exists, err := s.GetSet(string(argv[1]), argv[2], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !exists {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(prior), nil
}

func cmdGetDel(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	v, ok, err := s.GetDel(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkString(v), nil
}

func cmdAppend(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.Append(string(argv[1]), argv[2], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdStrLen(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.StrLen(string(argv[1]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdGetRange(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	start, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	end, err := parseInt(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	b, err := s.GetRange(string(argv[1]), start, end, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.BulkString(b), nil
}

func cmdSetRange(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	offset, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	if offset < 0 {
		return resp.Frame{}, rkerrors.IndexOutOfRange()
	}
	n, err := s.SetRange(string(argv[1]), offset, argv[3], nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdIncr(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.IncrBy(string(argv[1]), 1, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdDecr(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	n, err := s.IncrBy(string(argv[1]), -1, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdIncrBy(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	delta, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.IncrBy(string(argv[1]), delta, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdDecrBy(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	delta, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.IncrBy(string(argv[1]), -delta, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdIncrByFloat(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	delta, err := parseFloat(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	n, err := s.IncrByFloat(string(argv[1]), delta, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.BulkFromString(formatFloat(n)), nil
}

func cmdMSet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	pairs := argv[1:]
	for i := 0; i < len(pairs); i += 2 {
		if _, _, _, err := s.Set(string(pairs[i]), pairs[i+1], store.SetOpts{}, nowMs); err != nil {
			return resp.Frame{}, err
		}
	}
	return resp.OK(), nil
}

func cmdMSetNX(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	pairs := argv[1:]
	for i := 0; i < len(pairs); i += 2 {
		if s.Exists(string(pairs[i]), nowMs) {
			return resp.Int(0), nil
		}
	}
	for i := 0; i < len(pairs); i += 2 {
		s.Set(string(pairs[i]), pairs[i+1], store.SetOpts{}, nowMs)
	}
	return resp.Int(1), nil
}

func cmdMGet(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	out := make([][]byte, len(argv)-1)
	for i, k := range argv[1:] {
		v, ok, err := s.Get(string(k), nowMs)
		if err == nil && ok {
			out[i] = v
		}
	}
	return bulkArray(out), nil
}

// --- bit commands ------------------------------------------------------

func cmdSetBit(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	offset, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	bitVal, err := parseInt(argv[3])
	if err != nil || (bitVal != 0 && bitVal != 1) {
		return resp.Frame{}, rkerrors.ValueNotInteger()
	}
	old, err := s.SetBit(string(argv[1]), offset, byte(bitVal), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(int64(old)), nil
}

func cmdGetBit(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	offset, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	bit, err := s.GetBit(string(argv[1]), offset, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(int64(bit)), nil
}

func cmdBitCount(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	hasRange := len(argv) > 2
	var start, end int64
	if hasRange {
		if len(argv) < 4 {
			return resp.Frame{}, rkerrors.SyntaxError()
		}
		var err error
		start, err = parseInt(argv[2])
		if err != nil {
			return resp.Frame{}, err
		}
		end, err = parseInt(argv[3])
		if err != nil {
			return resp.Frame{}, err
		}
	}
	n, err := s.BitCount(string(argv[1]), hasRange, start, end, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdBitPos(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	target, err := parseInt(argv[2])
	if err != nil || (target != 0 && target != 1) {
		return resp.Frame{}, rkerrors.ValueNotInteger()
	}
	hasRange := len(argv) > 3
	hasEnd := len(argv) > 4
	var start, end int64
	if hasRange {
		start, err = parseInt(argv[3])
		if err != nil {
			return resp.Frame{}, err
		}
	}
	if hasEnd {
		end, err = parseInt(argv[4])
		if err != nil {
			return resp.Frame{}, err
		}
	} else if hasRange {
		end = -1
	}
	n, err := s.BitPos(string(argv[1]), byte(target), hasRange, start, end, hasEnd, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}

func cmdBitOp(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	op := upper(argv[1])
	dest := string(argv[2])
	sources := stringsOf(argv[3:])
	n, err := s.BitOp(op, dest, sources, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return resp.Int(n), nil
}
