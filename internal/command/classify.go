package command

// writeCommands is the fixed, name-based classification of commands that
// advance the replication offset and participate in the maxmemory
// interlock (spec §3: "the set of 'write commands' is a fixed, name-based
// classification"). Read-only and admin/special commands are absent and
// never trigger OOM rejection.
var writeCommands = map[string]bool{
	"SET": true, "SETNX": true, "SETEX": true, "PSETEX": true, "GETSET": true,
	"GETDEL": true, "APPEND": true, "SETRANGE": true, "INCR": true, "INCRBY": true,
	"DECR": true, "DECRBY": true, "INCRBYFLOAT": true, "SETBIT": true, "MSET": true,
	"MSETNX": true, "DEL": true, "UNLINK": true, "RENAME": true, "RENAMENX": true,
	"EXPIRE": true, "PEXPIRE": true, "EXPIREAT": true, "PEXPIREAT": true, "PERSIST": true,
	"COPY": true, "FLUSHDB": true, "FLUSHALL": true, "HSET": true, "HSETNX": true,
	"HMSET": true, "HDEL": true, "HINCRBY": true, "HINCRBYFLOAT": true,
	"LPUSH": true, "RPUSH": true, "LPUSHX": true, "RPUSHX": true, "LPOP": true,
	"RPOP": true, "LSET": true, "LINSERT": true, "LTRIM": true, "LREM": true,
	"RPOPLPUSH": true, "LMOVE": true, "SADD": true, "SREM": true, "SPOP": true,
	"SMOVE": true, "SINTERSTORE": true, "SUNIONSTORE": true, "SDIFFSTORE": true,
	"ZADD": true, "ZINCRBY": true, "ZREM": true, "ZPOPMIN": true, "ZPOPMAX": true,
	"ZDIFFSTORE": true, "PFADD": true, "PFMERGE": true, "BITOP": true,
	"SORT": true, "RESTORE": true,
}

// IsWriteCommand reports whether name (already uppercased) advances the
// replication offset when dispatched.
func IsWriteCommand(name string) bool {
	return writeCommands[name]
}
