package store

import (
	"testing"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	_, _, wrote, err := s.Set("k", []byte("v"), SetOpts{}, 0)
	require.NoError(t, err)
	assert.True(t, wrote)

	v, ok, err := s.Get("k", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestSetNXFailsReturnsOldValueUnderGet(t *testing.T) {
	s := New()
	s.Set("k", []byte("first"), SetOpts{}, 0)

	prior, priorExisted, wrote, err := s.Set("k", []byte("second"), SetOpts{NX: true, Get: true}, 0)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.True(t, priorExisted)
	assert.Equal(t, "first", string(prior))

	v, _, _ := s.Get("k", 0)
	assert.Equal(t, "first", string(v))
}

func TestSetTTLOnlyAppliedWhenWriteHappens(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetOpts{HasExpire: true, ExpireAtMs: 10000}, 0)
	assert.Equal(t, int64(10000), s.PTTLMs("k", 0))

	// NX fails against the existing key: TTL must be preserved, not reset.
	s.Set("k", []byte("v2"), SetOpts{NX: true, HasExpire: true, ExpireAtMs: 999}, 0)
	assert.Equal(t, int64(10000), s.PTTLMs("k", 0))
}

func TestGetSetPreservesTTL(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetOpts{HasExpire: true, ExpireAtMs: 5000}, 0)
	prior, exists, err := s.GetSet("k", []byte("v2"), 1000)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "v", string(prior))
	assert.Equal(t, int64(4000), s.PTTLMs("k", 1000))
}

func TestWrongTypeDoesNotMutate(t *testing.T) {
	s := New()
	s.SAdd("k", [][]byte{[]byte("m")}, 0)

	_, _, _, err := s.Set("k", []byte("v"), SetOpts{Get: true}, 0)
	require.Error(t, err)
	assertWrongType(t, err)

	// the set must be untouched.
	card, err := s.SCard("k", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), card)
}

func TestIncrByOverflow(t *testing.T) {
	s := New()
	s.Set("k", []byte("9223372036854775807"), SetOpts{}, 0)
	_, err := s.IncrBy("k", 1, 0)
	require.Error(t, err)
	ce, ok := err.(*rkerrors.CommandError)
	require.True(t, ok)
	assert.Contains(t, ce.Reply(), "increment or decrement would overflow")
}

func TestIncrByFloatRejectsInf(t *testing.T) {
	s := New()
	s.Set("k", []byte("1.0"), SetOpts{}, 0)
	_, err := s.IncrByFloat("k", mathInf(), 0)
	require.Error(t, err)
}

func TestSetBitAutoExtendsAndMSBFirst(t *testing.T) {
	s := New()
	old, err := s.SetBit("k", 20, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0), old)

	v, _, _ := s.Get("k", 0)
	assert.Len(t, v, 3)
	// offset 20 -> byte 2, bit index 7-(20%8)=3 -> value 1<<3 = 0x08
	assert.Equal(t, byte(0x08), v[2])
}

func TestBitPosAllOnesReturnsPastEnd(t *testing.T) {
	s := New()
	s.Set("k", []byte{0xff, 0xff}, SetOpts{}, 0)
	pos, err := s.BitPos("k", 0, false, 0, 0, false, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(16), pos)
}

func TestGetRangeStartGreaterThanEndIsEmpty(t *testing.T) {
	s := New()
	s.Set("k", []byte("hello"), SetOpts{}, 0)
	v, err := s.GetRange("k", 3, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestExpireAtDeletesAtOrBeforeNow(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetOpts{}, 0)
	applied, err := s.ExpireAt("k", 500, ExpireOptNone, 1000)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.False(t, s.Exists("k", 1000))
}

func TestExpireOptNXOnlyAppliesWithoutExistingTTL(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetOpts{HasExpire: true, ExpireAtMs: 5000}, 0)
	applied, err := s.ExpireAt("k", 9000, ExpireOptNX, 0)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(5000), s.PTTLMs("k", 0))
}

func TestExpireOptLTAppliesOnPersistentKey(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetOpts{}, 0)
	applied, err := s.ExpireAt("k", 5000, ExpireOptLT, 0)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(5000), s.PTTLMs("k", 0))
}

func TestTTLSecondsSentinelsAndTruncation(t *testing.T) {
	s := New()
	assert.Equal(t, TTLMissing, s.TTLSeconds("missing", 0))

	s.Set("k", []byte("v"), SetOpts{}, 0)
	assert.Equal(t, TTLNoExpiry, s.TTLSeconds("k", 0))

	s.Set("k2", []byte("v"), SetOpts{HasExpire: true, ExpireAtMs: 1999}, 0)
	assert.Equal(t, int64(1), s.TTLSeconds("k2", 0))
}

func TestContainerCollapsesOnLastElementRemoval(t *testing.T) {
	s := New()
	s.HSet("h", [][2][]byte{{[]byte("f"), []byte("v")}}, 0)
	s.HDel("h", []string{"f"}, 0)
	assert.False(t, s.Exists("h", 0))

	s.LPush("l", [][]byte{[]byte("a")}, 0)
	s.Pop("l", true, 1, 0)
	assert.False(t, s.Exists("l", 0))

	s.SAdd("st", [][]byte{[]byte("m")}, 0)
	s.SRem("st", [][]byte{[]byte("m")}, 0)
	assert.False(t, s.Exists("st", 0))
}

func TestHSetReturnsOnlyNewlyCreatedCount(t *testing.T) {
	s := New()
	n, err := s.HSet("h", [][2][]byte{{[]byte("f1"), []byte("a")}}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.HSet("h", [][2][]byte{{[]byte("f1"), []byte("b")}, {[]byte("f2"), []byte("c")}}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListPushPopOrdering(t *testing.T) {
	s := New()
	s.RPush("l", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, 0)
	vals, err := s.LRange("l", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, toStrings(vals))

	popped, err := s.Pop("l", true, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, toStrings(popped))
}

func TestLRangeOutOfRangeIsEmpty(t *testing.T) {
	s := New()
	s.RPush("l", [][]byte{[]byte("a")}, 0)
	vals, err := s.LRange("l", 5, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestSetAggregationsSortedAscending(t *testing.T) {
	s := New()
	s.SAdd("a", [][]byte{[]byte("z"), []byte("b"), []byte("m")}, 0)
	s.SAdd("b", [][]byte{[]byte("b"), []byte("m")}, 0)

	inter, err := s.SInter([]string{"a", "b"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "m"}, inter)
}

func TestZAddWithNoMembersAddsNothing(t *testing.T) {
	s := New()
	n, _, err := s.ZAdd("z", ZAddOpts{}, []types.Member(nil), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestZIncrByCreatesMissingKey(t *testing.T) {
	s := New()
	score, err := s.ZIncrBy("z", "m", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(5), score)
}

func TestStateDigestChangesOnMutationAndIsOrderIndependent(t *testing.T) {
	s1 := New()
	s1.Set("a", []byte("1"), SetOpts{}, 0)
	s1.Set("b", []byte("2"), SetOpts{}, 0)

	s2 := New()
	s2.Set("b", []byte("2"), SetOpts{}, 0)
	s2.Set("a", []byte("1"), SetOpts{}, 0)

	assert.Equal(t, s1.StateDigest(0), s2.StateDigest(0))

	before := s1.StateDigest(0)
	s1.Set("a", []byte("3"), SetOpts{}, 0)
	after := s1.StateDigest(0)
	assert.NotEqual(t, before, after)
}

func TestKeyFingerprintChangesOnMutation(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetOpts{}, 0)
	fp1 := s.KeyFingerprint("k", 0)
	s.Set("k", []byte("v2"), SetOpts{}, 0)
	fp2 := s.KeyFingerprint("k", 0)
	assert.NotEqual(t, fp1, fp2)
}

func TestActiveExpireCycleSkipsKeysWithoutTTL(t *testing.T) {
	s := New()
	s.Set("a", []byte("v"), SetOpts{}, 0)
	next, sampled, evicted := s.RunActiveExpireCycle(0, 0, 16)
	assert.Equal(t, 0, sampled)
	assert.Equal(t, 0, evicted)
	_ = next
}

func TestActiveExpireCycleEvictsExpiredKeys(t *testing.T) {
	s := New()
	s.Set("a", []byte("v"), SetOpts{HasExpire: true, ExpireAtMs: 100}, 0)
	_, sampled, evicted := s.RunActiveExpireCycle(1000, 0, 16)
	assert.Equal(t, 1, sampled)
	assert.Equal(t, 1, evicted)
	assert.False(t, s.Exists("a", 1000))
}

func TestMaxmemoryPressureAndEvictionLoop(t *testing.T) {
	s := New()
	s.Set("a", []byte("aaaaaaaaaa"), SetOpts{}, 0)
	s.Set("b", []byte("bbbbbbbbbb"), SetOpts{}, 0)
	s.SetMaxmemory(1)
	s.SetEvictionPolicy("allkeys-random")

	assert.Equal(t, PressureOver, s.MemoryPressure(0))
	res := s.RunEvictionLoop(0, 16, 10, true)
	assert.Equal(t, EvictionOk, res.Status)
	assert.LessOrEqual(t, res.BytesToFreeAfter, int64(0))
}

func TestMaxmemoryEvictionSafetyGateSuppressed(t *testing.T) {
	s := New()
	s.Set("a", []byte("aaaaaaaaaa"), SetOpts{}, 0)
	s.SetMaxmemory(1)
	res := s.RunEvictionLoop(0, 16, 10, false)
	assert.Equal(t, EvictionSafetyGateSuppressed, res.Status)
	assert.True(t, s.Exists("a", 0))
}

func TestRenamePreservesTTLAndOverwritesDestination(t *testing.T) {
	s := New()
	s.Set("src", []byte("v"), SetOpts{HasExpire: true, ExpireAtMs: 5000}, 0)
	s.Set("dst", []byte("old"), SetOpts{}, 0)

	err := s.Rename("src", "dst", 0)
	require.NoError(t, err)
	assert.False(t, s.Exists("src", 0))
	v, _, _ := s.Get("dst", 0)
	assert.Equal(t, "v", string(v))
	assert.Equal(t, int64(5000), s.PTTLMs("dst", 0))
}

func TestRenameNXNoopWhenDestinationExists(t *testing.T) {
	s := New()
	s.Set("src", []byte("v"), SetOpts{}, 0)
	s.Set("dst", []byte("existing"), SetOpts{}, 0)

	ok, err := s.RenameNX("src", "dst", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, s.Exists("src", 0))
	v, _, _ := s.Get("dst", 0)
	assert.Equal(t, "existing", string(v))
}

func TestKeysGlobSortedAscending(t *testing.T) {
	s := New()
	s.Set("zeta", []byte("1"), SetOpts{}, 0)
	s.Set("alpha", []byte("1"), SetOpts{}, 0)
	s.Set("beta", []byte("1"), SetOpts{}, 0)
	keys := s.Keys("*", 0)
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, keys)
}

func TestPFAddPFCountAndMerge(t *testing.T) {
	s := New()
	changed, err := s.PFAdd("hll1", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, 0)
	require.NoError(t, err)
	assert.True(t, changed)

	s.PFAdd("hll2", [][]byte{[]byte("c"), []byte("d")}, 0)

	mergedCount, err := s.PFCount([]string{"hll1", "hll2"}, 0)
	require.NoError(t, err)

	err = s.PFMerge("dest", []string{"hll1", "hll2"}, 0)
	require.NoError(t, err)
	destCount, err := s.PFCount([]string{"dest"}, 0)
	require.NoError(t, err)

	assert.Equal(t, mergedCount, destCount)
}

func TestPFAddWrongTypeAndInvalidHLL(t *testing.T) {
	s := New()
	s.SAdd("notstring", [][]byte{[]byte("m")}, 0)
	_, err := s.PFAdd("notstring", [][]byte{[]byte("x")}, 0)
	require.Error(t, err)
	assertWrongType(t, err)

	s.Set("plain", []byte("hello"), SetOpts{}, 0)
	_, err = s.PFAdd("plain", [][]byte{[]byte("x")}, 0)
	require.Error(t, err)
	ce, ok := err.(*rkerrors.CommandError)
	require.True(t, ok)
	assert.Contains(t, ce.Reply(), "not a valid HyperLogLog")
}

func assertWrongType(t *testing.T, err error) {
	t.Helper()
	ce, ok := err.(*rkerrors.CommandError)
	require.True(t, ok)
	assert.Contains(t, ce.Reply(), "WRONGTYPE")
}

func toStrings(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

func mathInf() float64 {
	var f float64 = 1
	for i := 0; i < 400; i++ {
		f *= 10
	}
	return f
}
