package resp

import (
	"bufio"
	"io"
	"strconv"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
)

// MaxInlineLen bounds a single SimpleString/Error/Integer header line; it
// exists to keep a malformed stream from growing a line without limit
// before a CRLF is ever seen.
const MaxInlineLen = 64 * 1024

// Decode reads exactly one RESP frame from r. It is the inverse of Encode
// and is used by the server's connection loop, the AOF decoder, and tests
// that drive the dispatcher with literal wire bytes. Any RESP3-only type prefix is rejected per
// spec §6; array/bulk length limits beyond malformed-protocol detection
// (negative-but-not-minus-one, absurdly large) are the preflight gate's
// job, not the decoder's — the decoder only rejects what the wire format
// itself disallows.
func Decode(r *bufio.Reader) (Frame, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return Frame{}, err
	}
	switch prefix {
	case '+':
		line, err := readLine(r)
		if err != nil {
			return Frame{}, err
		}
		return Simple(line), nil
	case '-':
		line, err := readLine(r)
		if err != nil {
			return Frame{}, err
		}
		return Err(line), nil
	case ':':
		line, err := readLine(r)
		if err != nil {
			return Frame{}, err
		}
		n, perr := strconv.ParseInt(line, 10, 64)
		if perr != nil {
			return Frame{}, rkerrors.InvalidCommandFrame()
		}
		return Int(n), nil
	case '$':
		return decodeBulk(r)
	case '*':
		return decodeArray(r)
	default:
		return Frame{}, rkerrors.UnsupportedResp3Type(prefix)
	}
}

func decodeBulk(r *bufio.Reader) (Frame, error) {
	line, err := readLine(r)
	if err != nil {
		return Frame{}, err
	}
	n, perr := strconv.ParseInt(line, 10, 64)
	if perr != nil || n < -1 {
		return Frame{}, rkerrors.InvalidBulkLength()
	}
	if n == -1 {
		return Frame{Kind: KindNullBulk}, nil
	}
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Frame{}, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Frame{}, rkerrors.InvalidBulkLength()
	}
	return BulkString(buf[:n]), nil
}

func decodeArray(r *bufio.Reader) (Frame, error) {
	line, err := readLine(r)
	if err != nil {
		return Frame{}, err
	}
	n, perr := strconv.ParseInt(line, 10, 64)
	if perr != nil || n < -1 {
		return Frame{}, rkerrors.InvalidMultibulkLength()
	}
	if n == -1 {
		return Frame{Kind: KindNullArray}, nil
	}
	items := make([]Frame, n)
	for i := int64(0); i < n; i++ {
		item, err := Decode(r)
		if err != nil {
			return Frame{}, err
		}
		items[i] = item
	}
	return Array(items), nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) > MaxInlineLen {
		return "", rkerrors.InvalidCommandFrame()
	}
	// Strip trailing \r\n.
	if len(line) >= 2 && line[len(line)-2] == '\r' {
		return line[:len(line)-2], nil
	}
	if len(line) >= 1 && line[len(line)-1] == '\n' {
		return line[:len(line)-1], nil
	}
	return line, nil
}
