// Package resp defines the RESP (REdis Serialization Protocol) frame type
// the engine core consumes and produces. Byte-level socket I/O is an
// external collaborator (see spec §6); this package only models the parsed
// frame, argv extraction, and the encode/decode functions needed by the
// server's connection loop, the AOF record stream, and tests that exercise
// the wire contract directly.
package resp

import (
	"bytes"
	"fmt"
	"strconv"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
)

// Kind tags the variant of a Frame.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
	KindNullBulk
	KindNullArray
)

// Frame is a parsed RESP value. Only the fields relevant to Kind are
// meaningful; the zero Frame is an empty simple string.
type Frame struct {
	Kind  Kind
	Str   string  // Simple/Error payload
	Int   int64   // Integer payload
	Bulk  []byte  // Bulk string payload; nil only for KindNullBulk
	Items []Frame // Array items; nil only for KindNullArray
}

func Simple(s string) Frame   { return Frame{Kind: KindSimpleString, Str: s} }
func Err(msg string) Frame    { return Frame{Kind: KindError, Str: msg} }
func Int(n int64) Frame       { return Frame{Kind: KindInteger, Int: n} }
func BulkString(b []byte) Frame {
	if b == nil {
		b = []byte{}
	}
	return Frame{Kind: KindBulkString, Bulk: b}
}
func BulkFromString(s string) Frame { return BulkString([]byte(s)) }
func NullBulk() Frame               { return Frame{Kind: KindNullBulk} }
func NullArray() Frame              { return Frame{Kind: KindNullArray} }
func Array(items []Frame) Frame {
	if items == nil {
		items = []Frame{}
	}
	return Frame{Kind: KindArray, Items: items}
}

// OK is the common +OK\r\n reply.
func OK() Frame { return Simple("OK") }

// FromCommandError renders a *errors.CommandError (or any error) as an
// Error frame, funneling through the single ToReply conversion point.
func FromCommandError(err error) Frame {
	return Err(rkerrors.ToReply(err))
}

// Equal reports deep equality, used heavily by tests.
func (f Frame) Equal(o Frame) bool {
	if f.Kind != o.Kind {
		return false
	}
	switch f.Kind {
	case KindSimpleString, KindError:
		return f.Str == o.Str
	case KindInteger:
		return f.Int == o.Int
	case KindBulkString:
		return bytes.Equal(f.Bulk, o.Bulk)
	case KindArray:
		if len(f.Items) != len(o.Items) {
			return false
		}
		for i := range f.Items {
			if !f.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (f Frame) String() string {
	switch f.Kind {
	case KindSimpleString:
		return "+" + f.Str
	case KindError:
		return "-" + f.Str
	case KindInteger:
		return ":" + strconv.FormatInt(f.Int, 10)
	case KindBulkString:
		return "$" + strconv.Itoa(len(f.Bulk)) + " " + string(f.Bulk)
	case KindNullBulk:
		return "$-1"
	case KindNullArray:
		return "*-1"
	case KindArray:
		return fmt.Sprintf("*%d items", len(f.Items))
	default:
		return "<unknown frame>"
	}
}

// ArgvFromFrame converts a parsed command Array frame into an argv: a
// binary-safe slice of byte-string arguments. Per spec §4.2, elements may
// be BulkString, SimpleString, or Integer (stringified); a null array, a
// null bulk element, any other element variant, or an empty array is
// InvalidCommandFrame.
func ArgvFromFrame(f Frame) ([][]byte, error) {
	if f.Kind == KindNullArray {
		return nil, rkerrors.InvalidCommandFrame()
	}
	if f.Kind != KindArray {
		return nil, rkerrors.InvalidCommandFrame()
	}
	if len(f.Items) == 0 {
		return nil, rkerrors.InvalidCommandFrame()
	}
	argv := make([][]byte, len(f.Items))
	for i, item := range f.Items {
		switch item.Kind {
		case KindBulkString:
			argv[i] = item.Bulk
		case KindSimpleString:
			argv[i] = []byte(item.Str)
		case KindInteger:
			argv[i] = []byte(strconv.FormatInt(item.Int, 10))
		default:
			return nil, rkerrors.InvalidCommandFrame()
		}
	}
	return argv, nil
}

// ArgvToFrame builds the canonical Array-of-BulkString encoding of an argv,
// used both for AOF record encoding and for constructing test input frames.
func ArgvToFrame(argv [][]byte) Frame {
	items := make([]Frame, len(argv))
	for i, a := range argv {
		items[i] = BulkString(a)
	}
	return Array(items)
}
