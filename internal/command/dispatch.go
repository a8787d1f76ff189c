package command

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// Dispatch classifies argv[0] (case-insensitive, length-bucketed per spec
// §9), validates arity, and invokes the matching handler against s.
// Unknown commands carry the args-preview wording required by spec §4.2;
// arity violations carry the command's own (upper-cased) name.
func Dispatch(s *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if len(argv) == 0 {
		return resp.Frame{}, rkerrors.InvalidCommandFrame()
	}
	name := upper(argv[0])
	spec, ok := lookup(name)
	if !ok {
		return resp.Frame{}, rkerrors.UnknownCommand(string(argv[0]), argsPreview(argv[1:]))
	}
	if !spec.arityOK(argv) {
		return resp.Frame{}, rkerrors.WrongArity(name)
	}
	reply, err := spec.handler(s, argv, nowMs)
	if err != nil {
		return resp.FromCommandError(err), nil
	}
	return reply, nil
}
