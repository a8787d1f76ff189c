package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// Handler dispatches one already-classified command to the store,
// producing its RESP reply or a *errors.CommandError.
type Handler func(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error)

// commandSpec is one row of the flat registration table (spec §4.2's
// length-bucketed table, mirroring the teacher's routers/factory.go
// registration-table pattern).
type commandSpec struct {
	name string

	// minArgs/maxArgs bound len(argv) including the command name itself.
	// maxArgs == -1 means unbounded.
	minArgs, maxArgs int

	// groupFrom/groupModulus, when groupModulus > 0, requires
	// (len(argv)-groupFrom) % groupModulus == 0 — e.g. HSET's field/value
	// pairs after the key, or MSET's key/value pairs after the name.
	groupFrom, groupModulus int

	handler Handler
}

func (c commandSpec) arityOK(argv [][]byte) bool {
	n := len(argv)
	if n < c.minArgs {
		return false
	}
	if c.maxArgs >= 0 && n > c.maxArgs {
		return false
	}
	if c.groupModulus > 0 && (n-c.groupFrom)%c.groupModulus != 0 {
		return false
	}
	return true
}

var commandSpecs = []commandSpec{
	// --- generic key commands ---
	{name: "DEL", minArgs: 2, maxArgs: -1, handler: cmdDel},
	{name: "UNLINK", minArgs: 2, maxArgs: -1, handler: cmdDel},
	{name: "EXISTS", minArgs: 2, maxArgs: -1, handler: cmdExists},
	{name: "TYPE", minArgs: 2, maxArgs: 2, handler: cmdType},
	{name: "KEYS", minArgs: 2, maxArgs: 2, handler: cmdKeys},
	{name: "RENAME", minArgs: 3, maxArgs: 3, handler: cmdRename},
	{name: "RENAMENX", minArgs: 3, maxArgs: 3, handler: cmdRenameNX},
	{name: "COPY", minArgs: 3, maxArgs: -1, handler: cmdCopy},
	{name: "PERSIST", minArgs: 2, maxArgs: 2, handler: cmdPersist},
	{name: "RANDOMKEY", minArgs: 1, maxArgs: 1, handler: cmdRandomKey},
	{name: "DBSIZE", minArgs: 1, maxArgs: 1, handler: cmdDBSize},
	{name: "FLUSHALL", minArgs: 1, maxArgs: -1, handler: cmdFlushAll},
	{name: "FLUSHDB", minArgs: 1, maxArgs: -1, handler: cmdFlushAll},
	{name: "TOUCH", minArgs: 2, maxArgs: -1, handler: cmdTouch},
	{name: "SCAN", minArgs: 2, maxArgs: -1, handler: cmdScan},

	// --- expire family ---
	{name: "EXPIRE", minArgs: 3, maxArgs: 4, handler: cmdExpire},
	{name: "PEXPIRE", minArgs: 3, maxArgs: 4, handler: cmdPExpire},
	{name: "EXPIREAT", minArgs: 3, maxArgs: 4, handler: cmdExpireAt},
	{name: "PEXPIREAT", minArgs: 3, maxArgs: 4, handler: cmdPExpireAt},
	{name: "TTL", minArgs: 2, maxArgs: 2, handler: cmdTTL},
	{name: "PTTL", minArgs: 2, maxArgs: 2, handler: cmdPTTL},
	{name: "EXPIRETIME", minArgs: 2, maxArgs: 2, handler: cmdExpireTime},
	{name: "PEXPIRETIME", minArgs: 2, maxArgs: 2, handler: cmdPExpireTime},
	{name: "OBJECT", minArgs: 3, maxArgs: 3, handler: cmdObject},

	// --- strings ---
	{name: "GET", minArgs: 2, maxArgs: 2, handler: cmdGet},
	{name: "SET", minArgs: 3, maxArgs: -1, handler: cmdSet},
	{name: "SETNX", minArgs: 3, maxArgs: 3, handler: cmdSetNX},
	{name: "SETEX", minArgs: 4, maxArgs: 4, handler: cmdSetEx},
	{name: "PSETEX", minArgs: 4, maxArgs: 4, handler: cmdPSetEx},
	{name: "GETSET", minArgs: 3, maxArgs: 3, handler: cmdGetSet},
	{name: "GETDEL", minArgs: 2, maxArgs: 2, handler: cmdGetDel},
	{name: "APPEND", minArgs: 3, maxArgs: 3, handler: cmdAppend},
	{name: "STRLEN", minArgs: 2, maxArgs: 2, handler: cmdStrLen},
	{name: "GETRANGE", minArgs: 4, maxArgs: 4, handler: cmdGetRange},
	{name: "SETRANGE", minArgs: 4, maxArgs: 4, handler: cmdSetRange},
	{name: "INCR", minArgs: 2, maxArgs: 2, handler: cmdIncr},
	{name: "DECR", minArgs: 2, maxArgs: 2, handler: cmdDecr},
	{name: "INCRBY", minArgs: 3, maxArgs: 3, handler: cmdIncrBy},
	{name: "DECRBY", minArgs: 3, maxArgs: 3, handler: cmdDecrBy},
	{name: "INCRBYFLOAT", minArgs: 3, maxArgs: 3, handler: cmdIncrByFloat},
	{name: "MSET", minArgs: 3, maxArgs: -1, groupFrom: 1, groupModulus: 2, handler: cmdMSet},
	{name: "MSETNX", minArgs: 3, maxArgs: -1, groupFrom: 1, groupModulus: 2, handler: cmdMSetNX},
	{name: "MGET", minArgs: 2, maxArgs: -1, handler: cmdMGet},
	{name: "SETBIT", minArgs: 4, maxArgs: 4, handler: cmdSetBit},
	{name: "GETBIT", minArgs: 3, maxArgs: 3, handler: cmdGetBit},
	{name: "BITCOUNT", minArgs: 2, maxArgs: 4, handler: cmdBitCount},
	{name: "BITPOS", minArgs: 3, maxArgs: 5, handler: cmdBitPos},
	{name: "BITOP", minArgs: 4, maxArgs: -1, handler: cmdBitOp},

	// --- hashes ---
	{name: "HSET", minArgs: 4, maxArgs: -1, groupFrom: 2, groupModulus: 2, handler: cmdHSet},
	{name: "HMSET", minArgs: 4, maxArgs: -1, groupFrom: 2, groupModulus: 2, handler: cmdHMSet},
	{name: "HSETNX", minArgs: 4, maxArgs: 4, handler: cmdHSetNX},
	{name: "HGET", minArgs: 3, maxArgs: 3, handler: cmdHGet},
	{name: "HMGET", minArgs: 3, maxArgs: -1, handler: cmdHMGet},
	{name: "HDEL", minArgs: 3, maxArgs: -1, handler: cmdHDel},
	{name: "HEXISTS", minArgs: 3, maxArgs: 3, handler: cmdHExists},
	{name: "HLEN", minArgs: 2, maxArgs: 2, handler: cmdHLen},
	{name: "HSTRLEN", minArgs: 3, maxArgs: 3, handler: cmdHStrLen},
	{name: "HKEYS", minArgs: 2, maxArgs: 2, handler: cmdHKeys},
	{name: "HVALS", minArgs: 2, maxArgs: 2, handler: cmdHVals},
	{name: "HGETALL", minArgs: 2, maxArgs: 2, handler: cmdHGetAll},
	{name: "HINCRBY", minArgs: 4, maxArgs: 4, handler: cmdHIncrBy},
	{name: "HINCRBYFLOAT", minArgs: 4, maxArgs: 4, handler: cmdHIncrByFloat},
	{name: "HRANDFIELD", minArgs: 2, maxArgs: 4, handler: cmdHRandField},
	{name: "HSCAN", minArgs: 3, maxArgs: -1, handler: cmdHScan},

	// --- lists ---
	{name: "LPUSH", minArgs: 3, maxArgs: -1, handler: cmdLPush},
	{name: "RPUSH", minArgs: 3, maxArgs: -1, handler: cmdRPush},
	{name: "LPUSHX", minArgs: 3, maxArgs: -1, handler: cmdLPushX},
	{name: "RPUSHX", minArgs: 3, maxArgs: -1, handler: cmdRPushX},
	{name: "LPOP", minArgs: 2, maxArgs: 3, handler: cmdLPop},
	{name: "RPOP", minArgs: 2, maxArgs: 3, handler: cmdRPop},
	{name: "LLEN", minArgs: 2, maxArgs: 2, handler: cmdLLen},
	{name: "LRANGE", minArgs: 4, maxArgs: 4, handler: cmdLRange},
	{name: "LINDEX", minArgs: 3, maxArgs: 3, handler: cmdLIndex},
	{name: "LSET", minArgs: 4, maxArgs: 4, handler: cmdLSet},
	{name: "LINSERT", minArgs: 5, maxArgs: 5, handler: cmdLInsert},
	{name: "LTRIM", minArgs: 4, maxArgs: 4, handler: cmdLTrim},
	{name: "LREM", minArgs: 4, maxArgs: 4, handler: cmdLRem},
	{name: "LPOS", minArgs: 3, maxArgs: -1, handler: cmdLPos},
	{name: "RPOPLPUSH", minArgs: 3, maxArgs: 3, handler: cmdRPopLPush},
	{name: "LMOVE", minArgs: 5, maxArgs: 5, handler: cmdLMove},

	// --- sets ---
	{name: "SADD", minArgs: 3, maxArgs: -1, handler: cmdSAdd},
	{name: "SREM", minArgs: 3, maxArgs: -1, handler: cmdSRem},
	{name: "SISMEMBER", minArgs: 3, maxArgs: 3, handler: cmdSIsMember},
	{name: "SMISMEMBER", minArgs: 3, maxArgs: -1, handler: cmdSMIsMember},
	{name: "SCARD", minArgs: 2, maxArgs: 2, handler: cmdSCard},
	{name: "SMEMBERS", minArgs: 2, maxArgs: 2, handler: cmdSMembers},
	{name: "SPOP", minArgs: 2, maxArgs: 3, handler: cmdSPop},
	{name: "SRANDMEMBER", minArgs: 2, maxArgs: 3, handler: cmdSRandMember},
	{name: "SMOVE", minArgs: 4, maxArgs: 4, handler: cmdSMove},
	{name: "SINTER", minArgs: 2, maxArgs: -1, handler: cmdSInter},
	{name: "SUNION", minArgs: 2, maxArgs: -1, handler: cmdSUnion},
	{name: "SDIFF", minArgs: 2, maxArgs: -1, handler: cmdSDiff},
	{name: "SINTERSTORE", minArgs: 3, maxArgs: -1, handler: cmdSInterStore},
	{name: "SUNIONSTORE", minArgs: 3, maxArgs: -1, handler: cmdSUnionStore},
	{name: "SDIFFSTORE", minArgs: 3, maxArgs: -1, handler: cmdSDiffStore},
	{name: "SSCAN", minArgs: 3, maxArgs: -1, handler: cmdSScan},

	// --- sorted sets ---
	{name: "ZADD", minArgs: 4, maxArgs: -1, handler: cmdZAdd},
	{name: "ZSCORE", minArgs: 3, maxArgs: 3, handler: cmdZScore},
	{name: "ZMSCORE", minArgs: 3, maxArgs: -1, handler: cmdZMScore},
	{name: "ZINCRBY", minArgs: 4, maxArgs: 4, handler: cmdZIncrBy},
	{name: "ZREM", minArgs: 3, maxArgs: -1, handler: cmdZRem},
	{name: "ZCARD", minArgs: 2, maxArgs: 2, handler: cmdZCard},
	{name: "ZRANGE", minArgs: 4, maxArgs: 5, handler: cmdZRange},
	{name: "ZREVRANGE", minArgs: 4, maxArgs: 5, handler: cmdZRevRange},
	{name: "ZRANGEBYSCORE", minArgs: 4, maxArgs: -1, handler: cmdZRangeByScore},
	{name: "ZREVRANGEBYSCORE", minArgs: 4, maxArgs: -1, handler: cmdZRevRangeByScore},
	{name: "ZCOUNT", minArgs: 4, maxArgs: 4, handler: cmdZCount},
	{name: "ZRANGEBYLEX", minArgs: 4, maxArgs: -1, handler: cmdZRangeByLex},
	{name: "ZREVRANGEBYLEX", minArgs: 4, maxArgs: -1, handler: cmdZRevRangeByLex},
	{name: "ZRANK", minArgs: 3, maxArgs: 4, handler: cmdZRank},
	{name: "ZREVRANK", minArgs: 3, maxArgs: 4, handler: cmdZRevRank},
	{name: "ZPOPMIN", minArgs: 2, maxArgs: 3, handler: cmdZPopMin},
	{name: "ZPOPMAX", minArgs: 2, maxArgs: 3, handler: cmdZPopMax},
	{name: "ZRANDMEMBER", minArgs: 2, maxArgs: 4, handler: cmdZRandMember},
	{name: "ZSCAN", minArgs: 3, maxArgs: -1, handler: cmdZScan},
	{name: "ZDIFF", minArgs: 3, maxArgs: -1, handler: cmdZDiff},
	{name: "ZDIFFSTORE", minArgs: 4, maxArgs: -1, handler: cmdZDiffStore},

	// --- HyperLogLog ---
	{name: "PFADD", minArgs: 2, maxArgs: -1, handler: cmdPFAdd},
	{name: "PFCOUNT", minArgs: 2, maxArgs: -1, handler: cmdPFCount},
	{name: "PFMERGE", minArgs: 2, maxArgs: -1, handler: cmdPFMerge},

	// --- sort / dump-restore ---
	{name: "SORT", minArgs: 2, maxArgs: -1, handler: cmdSort},
	{name: "DUMP", minArgs: 2, maxArgs: 2, handler: cmdDump},
	{name: "RESTORE", minArgs: 4, maxArgs: -1, handler: cmdRestore},

	// --- connection / server ---
	{name: "PING", minArgs: 1, maxArgs: 2, handler: cmdPing},
	{name: "ECHO", minArgs: 2, maxArgs: 2, handler: cmdEcho},
	{name: "TIME", minArgs: 1, maxArgs: 1, handler: cmdTime},
	{name: "SELECT", minArgs: 2, maxArgs: 2, handler: cmdSelect},
	{name: "SWAPDB", minArgs: 3, maxArgs: 3, handler: cmdSwapDB},

	// --- stubs (spec §4.2: recognized, intentionally unimplemented) ---
	{name: "SUBSCRIBE", minArgs: 2, maxArgs: -1, handler: cmdNotSupported},
	{name: "UNSUBSCRIBE", minArgs: 1, maxArgs: -1, handler: cmdNotSupported},
	{name: "PUBLISH", minArgs: 3, maxArgs: 3, handler: cmdNotSupported},
	{name: "PSUBSCRIBE", minArgs: 2, maxArgs: -1, handler: cmdNotSupported},
	{name: "CLUSTER", minArgs: 1, maxArgs: -1, handler: cmdCluster},
	{name: "EVAL", minArgs: 3, maxArgs: -1, handler: cmdUnsupportedStub},
	{name: "EVALSHA", minArgs: 3, maxArgs: -1, handler: cmdUnsupportedStub},
	{name: "SCRIPT", minArgs: 2, maxArgs: -1, handler: cmdUnsupportedStub},
	{name: "FUNCTION", minArgs: 2, maxArgs: -1, handler: cmdUnsupportedStub},
	{name: "XADD", minArgs: 5, maxArgs: -1, handler: cmdUnsupportedStub},
}

// table buckets command rows by argv[0] length (0..16, overflow in the
// last bucket) per spec §9's length-bucketed dispatch design.
var table [17][]commandSpec

func init() {
	for _, spec := range commandSpecs {
		idx := len(spec.name)
		if idx > 16 {
			idx = 16
		}
		table[idx] = append(table[idx], spec)
	}
}

func lookup(name string) (commandSpec, bool) {
	idx := len(name)
	if idx > 16 {
		idx = 16
	}
	for _, spec := range table[idx] {
		if spec.name == name {
			return spec, true
		}
	}
	return commandSpec{}, false
}
