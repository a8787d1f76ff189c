package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdExpire(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	seconds, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	opt, err := store.ParseExpireOpt(stringsOf(argv[3:]))
	if err != nil {
		return resp.Frame{}, err
	}
	ok, err := s.ExpireAt(string(argv[1]), nowMs+seconds*1000, opt, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdPExpire(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ms, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	opt, err := store.ParseExpireOpt(stringsOf(argv[3:]))
	if err != nil {
		return resp.Frame{}, err
	}
	ok, err := s.ExpireAt(string(argv[1]), nowMs+ms, opt, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdExpireAt(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	seconds, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	opt, err := store.ParseExpireOpt(stringsOf(argv[3:]))
	if err != nil {
		return resp.Frame{}, err
	}
	ok, err := s.ExpireAt(string(argv[1]), seconds*1000, opt, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdPExpireAt(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ms, err := parseInt(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	opt, err := store.ParseExpireOpt(stringsOf(argv[3:]))
	if err != nil {
		return resp.Frame{}, err
	}
	ok, err := s.ExpireAt(string(argv[1]), ms, opt, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdTTL(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Int(s.TTLSeconds(string(argv[1]), nowMs)), nil
}

func cmdPTTL(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Int(s.PTTLMs(string(argv[1]), nowMs)), nil
}

func cmdExpireTime(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ms := s.PTTLMs(string(argv[1]), nowMs)
	if ms == store.TTLMissing || ms == store.TTLNoExpiry {
		return resp.Int(ms), nil
	}
	return resp.Int((nowMs + ms) / 1000), nil
}

func cmdPExpireTime(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ms := s.PTTLMs(string(argv[1]), nowMs)
	if ms == store.TTLMissing || ms == store.TTLNoExpiry {
		return resp.Int(ms), nil
	}
	return resp.Int(nowMs + ms), nil
}

func cmdObject(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if upper(argv[1]) != "ENCODING" {
		return resp.Frame{}, rkerrors.SyntaxError()
	}
	if !s.Exists(string(argv[2]), nowMs) {
		return resp.Frame{}, rkerrors.NoSuchKey()
	}
	return resp.BulkFromString(objectEncodingName(s.Type(string(argv[2]), nowMs))), nil
}

func objectEncodingName(typ string) string {
	switch typ {
	case "string":
		return "raw"
	case "hash":
		return "hashtable"
	case "list":
		return "quicklist"
	case "set":
		return "hashtable"
	case "zset":
		return "skiplist"
	default:
		return "raw"
	}
}
