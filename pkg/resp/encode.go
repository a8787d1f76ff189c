package resp

import (
	"bytes"
	"strconv"
)

// Encode appends the wire form of f to buf and returns the extended slice.
func Encode(buf []byte, f Frame) []byte {
	switch f.Kind {
	case KindSimpleString:
		buf = append(buf, '+')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case KindInteger:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, f.Int, 10)
		return append(buf, '\r', '\n')
	case KindNullBulk:
		return append(buf, '$', '-', '1', '\r', '\n')
	case KindNullArray:
		return append(buf, '*', '-', '1', '\r', '\n')
	case KindBulkString:
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(f.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, f.Bulk...)
		return append(buf, '\r', '\n')
	case KindArray:
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(f.Items)), 10)
		buf = append(buf, '\r', '\n')
		for _, item := range f.Items {
			buf = Encode(buf, item)
		}
		return buf
	default:
		return buf
	}
}

// EncodeBytes renders f as a standalone wire-format byte slice.
func EncodeBytes(f Frame) []byte {
	return Encode(nil, f)
}

// EncodeAll concatenates the wire form of each frame, in order.
func EncodeAll(frames []Frame) []byte {
	var buf bytes.Buffer
	for _, f := range frames {
		buf.Write(Encode(nil, f))
	}
	return buf.Bytes()
}
