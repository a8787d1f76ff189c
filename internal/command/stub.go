package command

import (
	"strings"

	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// cmdNotSupported renders the fixed reply used by commands whose
// internals the engine explicitly does not implement (pub/sub).
func cmdNotSupported(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Frame{}, rkerrors.CommandNotSupportedInBuild()
}

// cmdUnsupportedStub renders "ERR unsupported command '<NAME>'" for
// recognized-but-intentionally-unimplemented command families (Lua,
// streams), distinguishing them from a typo'd UnknownCommand.
func cmdUnsupportedStub(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	return resp.Frame{}, rkerrors.UnsupportedCommand(strings.ToUpper(string(argv[0])))
}

// cmdCluster implements the small set of CLUSTER subcommands that report
// a single, unsharded node; any other subcommand is an "Unknown CLUSTER
// subcommand" error.
func cmdCluster(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if len(argv) < 2 {
		return resp.Frame{}, rkerrors.UnknownClusterSubcommand()
	}
	switch upper(argv[1]) {
	case "INFO":
		return resp.BulkFromString("cluster_enabled:0\r\ncluster_state:ok\r\ncluster_slots_assigned:0\r\ncluster_known_nodes:1\r\n"), nil
	case "MYID":
		return resp.BulkFromString("0000000000000000000000000000000000000000"), nil
	case "SLOTS":
		return resp.Array(nil), nil
	case "SHARDS":
		return resp.Array(nil), nil
	default:
		return resp.Frame{}, rkerrors.UnknownClusterSubcommand()
	}
}
