package runtime

import (
	"sort"
	"strconv"
	"strings"

	"github.com/blueberrycongee/redikv/internal/glob"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// DynamicConfig is the CONFIG-adjacent key/value surface for parameters
// with no first-class bridge elsewhere in the runtime (spec §4.3): a
// fixed catalog of static defaults plus a small set of "known-harmless"
// keys that accept SET as a no-op, generalized from the teacher's
// internal/config.Manager into a RESP-addressable store instead of a
// file-backed one.
type DynamicConfig struct {
	overrides map[string]string
}

// NewDynamicConfig seeds the catalog with Redis-compatible static
// defaults. Keys with first-class behavior (requirepass, maxmemory,
// maxmemory-policy, acllog-max-len) are resolved dynamically by
// Runtime.HandleConfig instead of living here.
func NewDynamicConfig() *DynamicConfig {
	return &DynamicConfig{
		overrides: map[string]string{
			"bind":                    "127.0.0.1",
			"port":                    "6379",
			"appendonly":              "no",
			"appendfsync":             "everysec",
			"slowlog-log-slower-than": "10000",
			"slowlog-max-len":         "128",
			"timeout":                 "0",
			"tcp-keepalive":           "300",
			"databases":               "1",
			"save":                    "",
			"dir":                     ".",
			"logfile":                 "",
			"tls-port":                "0",
		},
	}
}

// configurableNoop lists keys accepted by CONFIG SET as a no-op: the
// engine records the value but nothing reads it back to change behavior.
var configurableNoop = map[string]bool{
	"bind": true, "port": true, "appendonly": true, "appendfsync": true,
	"slowlog-log-slower-than": true, "slowlog-max-len": true, "timeout": true,
	"tcp-keepalive": true, "save": true, "dir": true, "logfile": true,
}

// HandleConfig implements CONFIG GET/SET pattern|key [key ...] (spec
// §4.3): requirepass, maxmemory, maxmemory-policy and acllog-max-len
// bridge to live runtime state; the rest round-trip through the static
// catalog. SET rejects any key outside both sets with
// UnsupportedConfigParameter. The config-file reload path does not go
// through this function.
func (rt *Runtime) HandleConfig(argv [][]byte) (resp.Frame, error) {
	if len(argv) < 2 {
		return resp.Frame{}, rkerrors.WrongArity("CONFIG")
	}
	switch strings.ToUpper(string(argv[1])) {
	case "GET":
		return rt.configGet(argv[2:])
	case "SET":
		return rt.configSet(argv[2:])
	case "REWRITE":
		return resp.OK(), nil
	case "RESETSTAT":
		return resp.OK(), nil
	default:
		return resp.Frame{}, rkerrors.SyntaxErrorWith("Unknown CONFIG subcommand or wrong number of arguments")
	}
}

func (rt *Runtime) configSnapshot() map[string]string {
	out := make(map[string]string, len(rt.Config.overrides)+4)
	for k, v := range rt.Config.overrides {
		out[k] = v
	}
	out["requirepass"] = rt.Auth.RequirePassHash()
	if out["requirepass"] != "" {
		// The configured secret is never echoed back in plaintext or hash
		// form over RESP; CONFIG GET only reports whether one is set.
		out["requirepass"] = "(configured)"
	}
	out["maxmemory"] = strconv.FormatInt(rt.Store.MaxmemoryBytes(), 10)
	policy := rt.Store.EvictionPolicy()
	if policy == "" {
		policy = "noeviction"
	}
	out["maxmemory-policy"] = policy
	out["acllog-max-len"] = strconv.Itoa(rt.Auth.AclLogMaxLen())
	return out
}

func (rt *Runtime) configGet(patterns [][]byte) (resp.Frame, error) {
	if len(patterns) == 0 {
		return resp.Frame{}, rkerrors.WrongArity("CONFIG")
	}
	snapshot := rt.configSnapshot()
	seen := map[string]bool{}
	var keys []string
	for _, p := range patterns {
		pat := string(p)
		for k := range snapshot {
			if seen[k] {
				continue
			}
			if glob.Match(pat, k) {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	out := make([]resp.Frame, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, resp.BulkFromString(k), resp.BulkFromString(snapshot[k]))
	}
	return resp.Array(out), nil
}

func (rt *Runtime) configSet(args [][]byte) (resp.Frame, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return resp.Frame{}, rkerrors.WrongArity("CONFIG")
	}
	// Validate every pair before applying any of them: a single unknown
	// key must leave the whole SET un-applied.
	type pair struct{ key, val string }
	pairs := make([]pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key := strings.ToLower(string(args[i]))
		val := string(args[i+1])
		if !rt.configKeyKnown(key) {
			return resp.Frame{}, rkerrors.UnsupportedConfigParameter()
		}
		pairs = append(pairs, pair{key, val})
	}
	for _, p := range pairs {
		if err := rt.applyConfigPair(p.key, p.val); err != nil {
			return resp.Frame{}, err
		}
	}
	return resp.OK(), nil
}

func (rt *Runtime) configKeyKnown(key string) bool {
	switch key {
	case "requirepass", "maxmemory", "maxmemory-policy", "acllog-max-len":
		return true
	}
	if _, ok := rt.Config.overrides[key]; ok {
		return true
	}
	return configurableNoop[key]
}

func (rt *Runtime) applyConfigPair(key, val string) error {
	switch key {
	case "requirepass":
		rt.Auth.SetRequirePass(val)
		return nil
	case "maxmemory":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n < 0 {
			return rkerrors.ValueNotInteger()
		}
		rt.Store.SetMaxmemory(n)
		return nil
	case "maxmemory-policy":
		rt.Store.SetEvictionPolicy(val)
		return nil
	case "acllog-max-len":
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return rkerrors.ValueNotInteger()
		}
		rt.Auth.SetAclLogMaxLen(n)
		return nil
	default:
		rt.Config.overrides[key] = val
		return nil
	}
}
