package runtime

import (
	"testing"

	"github.com/blueberrycongee/redikv/internal/store"
	"github.com/blueberrycongee/redikv/pkg/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameFor(args ...string) resp.Frame {
	argv := make([][]byte, len(args))
	for i, a := range args {
		argv[i] = []byte(a)
	}
	return resp.ArgvToFrame(argv)
}

func TestRuntimeSimpleSetGet(t *testing.T) {
	rt := New(store.New())
	s := NewSession()

	reply := rt.Handle(s, frameFor("SET", "k", "v"), 0)
	assert.True(t, reply.Equal(resp.OK()))

	reply = rt.Handle(s, frameFor("GET", "k"), 0)
	assert.True(t, reply.Equal(resp.BulkFromString("v")))
}

func TestRuntimeNoAuthGateRejectsUnauthenticated(t *testing.T) {
	rt := New(store.New())
	rt.Auth.SetRequirePass("secret")
	s := &Session{}

	reply := rt.Handle(s, frameFor("GET", "k"), 0)
	assert.Equal(t, resp.KindError, reply.Kind)
	assert.Contains(t, reply.Str, "NOAUTH")

	rt.Handle(s, frameFor("AUTH", "secret"), 0)
	reply = rt.Handle(s, frameFor("GET", "k"), 0)
	assert.True(t, reply.Equal(resp.NullBulk()))
}

func TestRuntimeMultiExecQueuesAndRuns(t *testing.T) {
	rt := New(store.New())
	s := NewSession()

	reply := rt.Handle(s, frameFor("MULTI"), 0)
	assert.True(t, reply.Equal(resp.OK()))

	reply = rt.Handle(s, frameFor("SET", "a", "1"), 0)
	assert.True(t, reply.Equal(resp.Simple("QUEUED")))

	reply = rt.Handle(s, frameFor("INCR", "a"), 0)
	assert.True(t, reply.Equal(resp.Simple("QUEUED")))

	reply = rt.Handle(s, frameFor("EXEC"), 0)
	require.Equal(t, resp.KindArray, reply.Kind)
	require.Len(t, reply.Items, 2)
	assert.True(t, reply.Items[0].Equal(resp.OK()))
	assert.True(t, reply.Items[1].Equal(resp.Int(2)))
}

func TestRuntimeWatchAbortsExecOnDirtyKey(t *testing.T) {
	rt := New(store.New())
	s := NewSession()

	rt.Handle(s, frameFor("SET", "a", "1"), 0)
	reply := rt.Handle(s, frameFor("WATCH", "a"), 0)
	assert.True(t, reply.Equal(resp.OK()))

	rt.Handle(s, frameFor("MULTI"), 0)
	rt.Handle(s, frameFor("GET", "a"), 0)

	other := NewSession()
	rt.Handle(other, frameFor("SET", "a", "2"), 0)

	reply = rt.Handle(s, frameFor("EXEC"), 0)
	assert.True(t, reply.Equal(resp.NullArray()))
}

func TestRuntimeMaxmemoryInterlockRejectsWrite(t *testing.T) {
	st := store.New()
	st.Set("x", []byte("0123456789"), store.SetOpts{}, 0)
	st.SetMaxmemory(1)
	st.SetEvictionPolicy("noeviction")
	rt := New(st)
	s := NewSession()

	reply := rt.Handle(s, frameFor("SET", "a", "1"), 0)
	assert.Equal(t, resp.KindError, reply.Kind)
	assert.Contains(t, reply.Str, "OOM")
}

func TestRuntimePreflightGateRejectsOversizedArray(t *testing.T) {
	rt := New(store.New())
	rt.Policy.Gate.MaxArrayLen = 1
	s := NewSession()

	reply := rt.Handle(s, frameFor("SET", "a", "1"), 0)
	assert.Equal(t, resp.KindError, reply.Kind)
	assert.Equal(t, 1, rt.Evidence.Len())
}
