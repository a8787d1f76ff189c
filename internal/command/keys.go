package command

import (
	"strconv"
	"strings"

	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func cmdDel(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	keys := stringsOf(argv[1:])
	return resp.Int(s.Del(keys, nowMs)), nil
}

func cmdExists(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	keys := stringsOf(argv[1:])
	return resp.Int(s.ExistsCount(keys, nowMs)), nil
}

func cmdType(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Simple(s.Type(string(argv[1]), nowMs)), nil
}

func cmdKeys(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	keys := s.Keys(string(argv[1]), nowMs)
	return stringArray(keys), nil
}

func cmdRename(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if err := s.Rename(string(argv[1]), string(argv[2]), nowMs); err != nil {
		return resp.Frame{}, err
	}
	return resp.OK(), nil
}

func cmdRenameNX(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	ok, err := s.RenameNX(string(argv[1]), string(argv[2]), nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdCopy(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	replace := false
	for _, a := range argv[3:] {
		if upper(a) == "REPLACE" {
			replace = true
		} else {
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	ok, err := s.Copy(string(argv[1]), string(argv[2]), replace, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	return boolInt(ok), nil
}

func cmdPersist(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return boolInt(s.Persist(string(argv[1]), nowMs)), nil
}

func cmdRandomKey(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	k := s.RandomKey(nowMs)
	if k == "" {
		return resp.NullBulk(), nil
	}
	return resp.BulkFromString(k), nil
}

func cmdDBSize(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Int(s.DBSize(nowMs)), nil
}

func cmdFlushAll(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	s.FlushAll()
	return resp.OK(), nil
}

func cmdTouch(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Int(s.Touch(stringsOf(argv[1:]), nowMs)), nil
}

// cmdScan implements the keyspace-wide SCAN command's COUNT/MATCH/TYPE
// option parsing.
func cmdScan(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	cursor, err := parseInt(argv[1])
	if err != nil {
		return resp.Frame{}, err
	}
	count := 0
	match := ""
	typeFilter := ""
	args := argv[2:]
	for i := 0; i < len(args); i++ {
		switch upper(args[i]) {
		case "COUNT":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			n, err := parseInt(args[i])
			if err != nil {
				return resp.Frame{}, err
			}
			count = int(n)
		case "MATCH":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			match = string(args[i])
		case "TYPE":
			if i+1 >= len(args) {
				return resp.Frame{}, rkerrors.SyntaxError()
			}
			i++
			typeFilter = strings.ToLower(string(args[i]))
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	}
	next, keys := s.Scan(int(cursor), count, match, typeFilter, nowMs)
	return resp.Array([]resp.Frame{
		resp.BulkFromString(strconv.Itoa(next)),
		stringArray(keys),
	}), nil
}

func stringsOf(argv [][]byte) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = string(a)
	}
	return out
}

func boolInt(b bool) resp.Frame {
	if b {
		return resp.Int(1)
	}
	return resp.Int(0)
}

