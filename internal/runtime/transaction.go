package runtime

import (
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// multiAlreadyInProgress renders MULTI's rejection of a nested MULTI.
func multiAlreadyInProgress() *rkerrors.CommandError {
	return rkerrors.SyntaxErrorWith("MULTI calls can not be nested")
}

// HandleMulti starts queueing for s.
func HandleMulti(s *Session) (resp.Frame, error) {
	if s.InMultiQueue {
		return resp.Frame{}, multiAlreadyInProgress()
	}
	s.InMultiQueue = true
	s.QueueError = false
	s.Queue = nil
	return resp.OK(), nil
}

// HandleDiscard abandons a queued transaction.
func HandleDiscard(s *Session) (resp.Frame, error) {
	if !s.InMultiQueue {
		return resp.Frame{}, rkerrors.SyntaxErrorWith("DISCARD without MULTI")
	}
	s.InMultiQueue = false
	s.QueueError = false
	s.Queue = nil
	s.Watches = nil
	return resp.OK(), nil
}

// HandleWatch records fingerprints for the given keys. Rejected inside a
// MULTI block (spec §4.3: "WATCH inside MULTI is rejected").
func HandleWatch(s *Session, st *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if s.InMultiQueue {
		return resp.Frame{}, rkerrors.SyntaxErrorWith("WATCH inside MULTI is not allowed")
	}
	if len(argv) < 2 {
		return resp.Frame{}, rkerrors.WrongArity("WATCH")
	}
	if s.Watches == nil {
		s.Watches = make(map[string]uint64, len(argv)-1)
	}
	for _, k := range argv[1:] {
		key := string(k)
		s.Watches[key] = st.KeyFingerprint(key, nowMs)
	}
	return resp.OK(), nil
}

// HandleUnwatch clears all watched keys.
func HandleUnwatch(s *Session) (resp.Frame, error) {
	s.Watches = nil
	return resp.OK(), nil
}

// Enqueue appends argv to the open transaction's queue, returning the
// +QUEUED reply.
func Enqueue(s *Session, argv [][]byte) resp.Frame {
	s.Queue = append(s.Queue, argv)
	return resp.Simple("QUEUED")
}

// watchesDirty reports whether any watched key's fingerprint has changed
// since WATCH was issued.
func watchesDirty(s *Session, st *store.Store, nowMs int64) bool {
	for key, fp := range s.Watches {
		if st.KeyFingerprint(key, nowMs) != fp {
			return true
		}
	}
	return false
}

// ExecFn dispatches one already-parsed command, identical to
// command.Dispatch's signature — threaded in rather than imported
// directly so this file has no dependency on internal/command beyond
// what Runtime wires in.
type ExecFn func(st *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error)

// HandleExec re-validates every watched key's fingerprint, then runs the
// queued commands in order against st. A dirty watch (or an earlier
// queue-time syntax error) aborts with a null array and never touches
// the store (spec §4.3). exec is called once per queued command so the
// caller can advance AOF/replication offsets per write, not once per
// EXEC.
func HandleExec(s *Session, st *store.Store, nowMs int64, exec ExecFn) (resp.Frame, error) {
	if !s.InMultiQueue {
		return resp.Frame{}, rkerrors.SyntaxErrorWith("EXEC without MULTI")
	}
	queue := s.Queue
	dirty := s.QueueError || watchesDirty(s, st, nowMs)
	s.InMultiQueue = false
	s.QueueError = false
	s.Queue = nil
	s.Watches = nil

	if dirty {
		return resp.NullArray(), nil
	}

	replies := make([]resp.Frame, len(queue))
	for i, argv := range queue {
		reply, err := exec(st, argv, nowMs)
		if err != nil {
			reply = resp.FromCommandError(err)
		}
		replies[i] = reply
	}
	return resp.Array(replies), nil
}
