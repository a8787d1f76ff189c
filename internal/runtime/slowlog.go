package runtime

import (
	"strings"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// HandleSlowlog implements SLOWLOG GET/LEN/RESET/HELP. The engine never
// samples command latency into a real log (there is no timing-sensitive
// collaborator to drive it from in this core), so GET always reports
// empty and LEN always reports 0 — a stub surface present for client
// compatibility, not a dropped feature (spec §4.2's stub-command list).
func HandleSlowlog(argv [][]byte) (resp.Frame, error) {
	if len(argv) < 2 {
		return resp.Frame{}, rkerrors.WrongArity("SLOWLOG")
	}
	switch strings.ToUpper(string(argv[1])) {
	case "GET":
		return resp.Array(nil), nil
	case "LEN":
		return resp.Int(0), nil
	case "RESET":
		return resp.OK(), nil
	case "HELP":
		return resp.Array([]resp.Frame{resp.BulkFromString("SLOWLOG GET|LEN|RESET|HELP")}), nil
	default:
		return resp.Frame{}, rkerrors.SyntaxErrorWith("Unknown SLOWLOG subcommand or wrong number of arguments")
	}
}
