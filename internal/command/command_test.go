package command

import (
	"testing"

	"github.com/blueberrycongee/redikv/internal/store"
	"github.com/blueberrycongee/redikv/pkg/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func argv(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func mustDispatch(t *testing.T, s *store.Store, nowMs int64, parts ...string) resp.Frame {
	t.Helper()
	f, err := Dispatch(s, argv(parts...), nowMs)
	require.NoError(t, err)
	return f
}

func TestPingPong(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "PING")
	assert.True(t, f.Equal(resp.Simple("PONG")))
}

func TestPingWithMessage(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "PING", "hello")
	assert.True(t, f.Equal(resp.BulkFromString("hello")))
}

func TestUnknownCommand(t *testing.T) {
	s := store.New()
	_, err := Dispatch(s, argv("FROB", "x"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command 'FROB'")
}

func TestWrongArity(t *testing.T) {
	s := store.New()
	_, err := Dispatch(s, argv("GET"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong number of arguments for 'GET' command")
}

func TestCaseInsensitiveDispatch(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "set", "k", "v")
	f := mustDispatch(t, s, 0, "gEt", "k")
	assert.True(t, f.Equal(resp.BulkFromString("v")))
}

func TestSetGetAndExpire(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 1000, "SET", "k", "v", "PX", "500")
	assert.True(t, f.Equal(resp.OK()))

	f = mustDispatch(t, s, 1000, "PTTL", "k")
	assert.True(t, f.Equal(resp.Int(500)))

	f = mustDispatch(t, s, 1600, "GET", "k")
	assert.True(t, f.Equal(resp.NullBulk()))
}

func TestSetNXAndXXSyntaxError(t *testing.T) {
	s := store.New()
	f, err := Dispatch(s, argv("SET", "k", "v", "NX", "XX"), 0)
	require.NoError(t, err)
	assert.Equal(t, resp.KindError, f.Kind)
	assert.Contains(t, f.Str, "syntax error")
}

func TestSetGetOnWrongTypeErrors(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "LPUSH", "l", "a")
	_, err := Dispatch(s, argv("SET", "l", "v", "GET"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")
}

func TestIncrDecr(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "INCR", "n")
	assert.True(t, f.Equal(resp.Int(1)))
	f = mustDispatch(t, s, 0, "INCRBY", "n", "9")
	assert.True(t, f.Equal(resp.Int(10)))
	f = mustDispatch(t, s, 0, "DECR", "n")
	assert.True(t, f.Equal(resp.Int(9)))
}

func TestIncrNonIntegerValueError(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "SET", "k", "notanumber")
	f, err := Dispatch(s, argv("INCR", "k"), 0)
	require.NoError(t, err)
	assert.Equal(t, resp.KindError, f.Kind)
	assert.Contains(t, f.Str, "not an integer")
}

func TestHashRoundTrip(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "HSET", "h", "f1", "v1", "f2", "v2")
	assert.True(t, f.Equal(resp.Int(2)))

	f = mustDispatch(t, s, 0, "HGET", "h", "f1")
	assert.True(t, f.Equal(resp.BulkFromString("v1")))

	f = mustDispatch(t, s, 0, "HLEN", "h")
	assert.True(t, f.Equal(resp.Int(2)))
}

func TestHSetOddArgsIsArityError(t *testing.T) {
	s := store.New()
	_, err := Dispatch(s, argv("HSET", "h", "f1"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong number of arguments")
}

func TestListCommandsAndEmptyCollapse(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "RPUSH", "l", "a", "b", "c")
	f := mustDispatch(t, s, 0, "LRANGE", "l", "0", "-1")
	assert.True(t, f.Equal(resp.Array([]resp.Frame{
		resp.BulkFromString("a"), resp.BulkFromString("b"), resp.BulkFromString("c"),
	})))

	mustDispatch(t, s, 0, "LPOP", "l")
	mustDispatch(t, s, 0, "LPOP", "l")
	mustDispatch(t, s, 0, "LPOP", "l")
	f = mustDispatch(t, s, 0, "EXISTS", "l")
	assert.True(t, f.Equal(resp.Int(0)))
}

func TestSetCommandsAggregation(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "SADD", "a", "x", "y", "z")
	mustDispatch(t, s, 0, "SADD", "b", "y", "z")
	f := mustDispatch(t, s, 0, "SINTER", "a", "b")
	assert.True(t, f.Equal(resp.Array([]resp.Frame{
		resp.BulkFromString("y"), resp.BulkFromString("z"),
	})))

	f = mustDispatch(t, s, 0, "SINTERSTORE", "dest", "a", "b")
	assert.True(t, f.Equal(resp.Int(2)))
}

func TestZAddAndZRange(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "ZADD", "z", "1", "a", "2", "b")
	assert.True(t, f.Equal(resp.Int(2)))

	// score update only, no new member: count must stay 0.
	f = mustDispatch(t, s, 0, "ZADD", "z", "5", "a")
	assert.True(t, f.Equal(resp.Int(0)))

	f = mustDispatch(t, s, 0, "ZRANGE", "z", "0", "-1")
	assert.True(t, f.Equal(resp.Array([]resp.Frame{
		resp.BulkFromString("b"), resp.BulkFromString("a"),
	})))
}

func TestZIncrByCreatesKey(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "ZINCRBY", "z", "5", "m")
	assert.True(t, f.Equal(resp.BulkFromString("5")))
}

func TestPFAddPFCount(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "PFADD", "h", "a", "b", "c")
	f := mustDispatch(t, s, 0, "PFCOUNT", "h")
	assert.Equal(t, resp.KindInteger, f.Kind)
	assert.Equal(t, int64(3), f.Int)
}

func TestMultiBulkFrameErrorsPropagateAsWireFrame(t *testing.T) {
	s := store.New()
	mustDispatch(t, s, 0, "SADD", "s", "m")
	f, err := Dispatch(s, argv("GET", "s"), 0)
	require.NoError(t, err)
	assert.Equal(t, resp.KindError, f.Kind)
	assert.Contains(t, f.Str, "WRONGTYPE")
}

func TestClusterSubcommands(t *testing.T) {
	s := store.New()
	f := mustDispatch(t, s, 0, "CLUSTER", "MYID")
	assert.Equal(t, resp.KindBulkString, f.Kind)

	f, err = Dispatch(s, argv("CLUSTER", "BOGUS"), 0)
	require.NoError(t, err)
	assert.Equal(t, resp.KindError, f.Kind)
	assert.Contains(t, f.Str, "Unknown subcommand")
}

func TestIsWriteCommandClassification(t *testing.T) {
	assert.True(t, IsWriteCommand("SET"))
	assert.True(t, IsWriteCommand("DEL"))
	assert.False(t, IsWriteCommand("GET"))
	assert.False(t, IsWriteCommand("PING"))
}
