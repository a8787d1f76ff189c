// Package aof implements the append-only-file record stream (spec §6): a
// sequence of argv vectors encoded exactly as RESP Array-of-BulkStrings,
// identical to the client-wire encoding of the original command. It is a
// thin layer over pkg/resp's Encode/Decode — the AOF format is defined in
// terms of the same frame grammar the command dispatcher consumes, so a
// byte-for-byte replay of a connection's input is a valid AOF stream.
package aof

import (
	"bufio"
	"io"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// EncodeRecord renders one argv vector as its wire-format RESP Array frame.
func EncodeRecord(argv [][]byte) []byte {
	return resp.EncodeBytes(resp.ArgvToFrame(argv))
}

// Writer appends argv records to an underlying io.Writer, one RESP Array
// frame per record, with no framing beyond what the RESP grammar itself
// provides (the array's declared length delimits each record).
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Append writes one record. Every call maps to exactly one successful
// write command, per spec §4.3 ("AOF capture ... MUST occur per queued
// write command that succeeds, not once per EXEC").
func (w *Writer) Append(argv [][]byte) error {
	_, err := w.w.Write(EncodeRecord(argv))
	return err
}

// Reader decodes a byte stream back into argv records, the inverse of
// Writer. A malformed record — a frame that isn't an Array, an element that
// isn't a bulk string, or anything else ArgvFromFrame rejects — fails with
// InvalidFrame and must leave the
// replay keyspace untouched; callers decode one record at a time so a
// partial stream can be replayed up to (but not past) the bad record.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next decodes the next record. io.EOF signals a clean end of stream;
// any other error is InvalidFrame.
func (r *Reader) Next() ([][]byte, error) {
	frame, err := resp.Decode(r.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, rkerrors.InvalidFrame()
	}
	for _, item := range frame.Items {
		if item.Kind != resp.KindBulkString {
			return nil, rkerrors.InvalidFrame()
		}
	}
	argv, err := resp.ArgvFromFrame(frame)
	if err != nil {
		return nil, rkerrors.InvalidFrame()
	}
	return argv, nil
}

// DecodeAll reads every record from r until EOF, stopping (and returning
// the error) at the first malformed record instead of skipping it.
func DecodeAll(r io.Reader) ([][][]byte, error) {
	dec := NewReader(r)
	var out [][][]byte
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// EncodeAll renders a full record sequence in one pass, the form used by
// the round-trip property `decode(encode(records)) == records` (spec §8).
func EncodeAll(records [][][]byte) []byte {
	var out []byte
	for _, rec := range records {
		out = append(out, EncodeRecord(rec)...)
	}
	return out
}
