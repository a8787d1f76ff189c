// Package command implements the command table and dispatcher (spec
// §4.2): argv → per-type handlers that mutate the store and return RESP
// reply frames. Arity and type contracts are fixed per command, and
// classification is case-insensitive and length-bucketed for O(1) lookup
// without dynamic allocation (spec §9 design note).
package command

import (
	"strconv"
	"strings"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

func upper(b []byte) string {
	return strings.ToUpper(string(b))
}

func parseInt(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, rkerrors.ValueNotInteger()
	}
	return n, nil
}

func parseFloat(b []byte) (float64, error) {
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, rkerrors.ValueNotFloat()
	}
	return n, nil
}

func bulkArray(items [][]byte) resp.Frame {
	frames := make([]resp.Frame, len(items))
	for i, it := range items {
		if it == nil {
			frames[i] = resp.NullBulk()
		} else {
			frames[i] = resp.BulkString(it)
		}
	}
	return resp.Array(frames)
}

func stringArray(items []string) resp.Frame {
	frames := make([]resp.Frame, len(items))
	for i, it := range items {
		frames[i] = resp.BulkFromString(it)
	}
	return resp.Array(frames)
}

func boolArray(items []bool) resp.Frame {
	frames := make([]resp.Frame, len(items))
	for i, b := range items {
		if b {
			frames[i] = resp.Int(1)
		} else {
			frames[i] = resp.Int(0)
		}
	}
	return resp.Array(frames)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// argsPreview builds the space-separated, single-quoted, CR/LF-sanitized
// preview used by UnknownCommand, capped to 128 bytes total (spec §4.2).
func argsPreview(argv [][]byte) string {
	var b strings.Builder
	for i, a := range argv {
		if i > 0 {
			b.WriteByte(' ')
		}
		s := strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' {
				return ' '
			}
			return r
		}, string(a))
		b.WriteByte('\'')
		b.WriteString(s)
		b.WriteByte('\'')
		if b.Len() >= 128 {
			break
		}
	}
	out := b.String()
	if len(out) > 128 {
		out = out[:128]
	}
	return out
}
