package aof

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripRecords(t *testing.T) {
	records := [][][]byte{
		{[]byte("SET"), []byte("k"), []byte("v")},
		{[]byte("HSET"), []byte("h"), []byte("f"), []byte("val")},
		{[]byte("DEL"), []byte("k")},
	}
	encoded := EncodeAll(records)
	decoded, err := DecodeAll(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, records, decoded)
}

func TestWriterReaderSingleRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Append([][]byte{[]byte("PING")}))

	r := NewReader(&buf)
	rec, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("PING")}, rec)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestMalformedRecordIsInvalidFrame(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("*1\r\n+notbulk\r\n")))
	_, err := r.Next()
	require.Error(t, err)
}

func TestDecodeAllStopsAtFirstBadRecord(t *testing.T) {
	good := EncodeRecord([][]byte{[]byte("SET"), []byte("a"), []byte("b")})
	bad := []byte("*1\r\n+bad\r\n")
	stream := append(append([]byte{}, good...), bad...)

	recs, err := DecodeAll(bytes.NewReader(stream))
	require.Error(t, err)
	require.Len(t, recs, 1)
}
