package runtime

import (
	"io"
	"strings"

	"github.com/blueberrycongee/redikv/internal/aof"
	"github.com/blueberrycongee/redikv/internal/command"
	"github.com/blueberrycongee/redikv/internal/metrics"
	"github.com/blueberrycongee/redikv/internal/store"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// fastExpireSampleLimit / slowExpireSampleLimit are the sample budgets
// named by spec §4.1: "fast runs on the command path (sample=16), slow
// runs on the server cron (sample=4)".
const (
	fastExpireSampleLimit = 16
	slowExpireSampleLimit = 4
)

// Runtime composes the gate, auth, transaction, maxmemory-interlock and
// evidence layers around a Store, giving each connection a single entry
// point for handling one parsed command frame (spec §4.3). It is the
// generalization of the teacher's governance.Engine: policy evaluated
// before a request proceeds, outcomes recorded after, over RESP commands
// instead of LLM requests.
type Runtime struct {
	Store       *store.Store
	Policy      *RuntimePolicy
	Auth        *AuthState
	Evidence    *Ledger
	Interlock   MaxmemoryInterlock
	Replication *ReplicationState
	TLS         *TLSConfigState
	Config      *DynamicConfig
	AOF         *aof.Writer

	clients          *clientRegistry
	fastExpireCursor int
}

// New wires a Runtime around an existing store using default policy and
// interlock settings. AOF capture is disabled (nil writer) until SetAOF
// is called; callers that don't need durability can ignore it entirely.
func New(st *store.Store) *Runtime {
	return &Runtime{
		Store:       st,
		Policy:      NewRuntimePolicy(),
		Auth:        NewAuthState(),
		Evidence:    NewLedger(nil),
		Interlock:   DefaultMaxmemoryInterlock,
		Replication: NewReplicationState(),
		TLS:         NewTLSConfigState(),
		Config:      NewDynamicConfig(),
		clients:     newClientRegistry(),
	}
}

// SetAOF attaches an AOF record sink; every successfully dispatched write
// command is appended to it (spec §4.3/§6).
func (rt *Runtime) SetAOF(w io.Writer) {
	rt.AOF = aof.NewWriter(w)
}

func isAdmissionExempt(name string) bool {
	switch name {
	case "AUTH", "HELLO", "RESET", "QUIT":
		return true
	default:
		return false
	}
}

// Handle runs one parsed command frame through the full pipeline:
// preflight gate, AUTH/HELLO passthrough, the NOAUTH admission gate,
// MULTI/EXEC/WATCH transaction handling, the maxmemory interlock for
// write commands, and finally command.Dispatch.
func (rt *Runtime) Handle(s *Session, frame resp.Frame, nowMs int64) resp.Frame {
	if rej, ok := rt.Policy.CheckFrame(frame); !ok {
		if rt.Policy.EmitEvidenceLedger {
			rt.Evidence.Append(nowMs, Event{
				Mode:           rt.Policy.Mode,
				Severity:       rej.Severity,
				ThreatClass:    rej.ThreatClass,
				DecisionAction: rej.Decision,
				Subsystem:      "gate",
				Action:         "preflight",
				ReasonCode:     rej.ReasonCode,
			})
		}
		return resp.FromCommandError(rej.Err)
	}

	argv, err := resp.ArgvFromFrame(frame)
	if err != nil {
		return resp.FromCommandError(err)
	}
	name := strings.ToUpper(string(argv[0]))

	reply, derr := rt.route(s, name, argv, nowMs)
	outcome := "ok"
	if derr != nil || reply.Kind == resp.KindError {
		outcome = "error"
	} else if s.InMultiQueue && name != "EXEC" && name != "MULTI" && name != "DISCARD" {
		outcome = "queued"
	}
	metrics.ObserveCommand(name, outcome)
	if derr != nil {
		return resp.FromCommandError(derr)
	}
	return reply
}

func (rt *Runtime) route(s *Session, name string, argv [][]byte, nowMs int64) (resp.Frame, error) {
	if name == "AUTH" {
		return rt.Auth.HandleAuth(argv, s)
	}
	if name == "HELLO" {
		return rt.Auth.HandleHello(argv, s)
	}
	if name == "RESET" {
		s.Reset()
		return resp.Simple("RESET"), nil
	}

	if !isAdmissionExempt(name) {
		if err := rt.Auth.NoAuthGate(s); err != nil {
			return resp.Frame{}, err
		}
	}

	switch name {
	case "MULTI":
		return HandleMulti(s)
	case "DISCARD":
		return HandleDiscard(s)
	case "WATCH":
		return HandleWatch(s, rt.Store, argv, nowMs)
	case "UNWATCH":
		return HandleUnwatch(s)
	case "EXEC":
		return HandleExec(s, rt.Store, nowMs, rt.execQueued)
	}

	if s.InMultiQueue {
		return Enqueue(s, argv), nil
	}

	switch name {
	case "ACL":
		return rt.Auth.HandleACL(argv, s)
	case "WAIT":
		return HandleWait(rt.Replication, argv)
	case "WAITAOF":
		return HandleWaitAOF(rt.Replication, argv)
	case "CONFIG":
		return rt.HandleConfig(argv)
	case "CLIENT":
		return rt.HandleClient(s, argv)
	case "SLOWLOG":
		return HandleSlowlog(argv)
	}

	return rt.execQueued(rt.Store, argv, nowMs)
}

// execQueued is the ExecFn passed both to direct dispatch and to EXEC's
// per-queued-command replay: it runs the maxmemory interlock ahead of write
// commands and one fast active-expire cycle ahead of every command (spec
// §2's control flow), dispatches, and on success captures the AOF record and advances the
// replication offset — once per call, never once per EXEC (spec §4.3).
func (rt *Runtime) execQueued(st *store.Store, argv [][]byte, nowMs int64) (resp.Frame, error) {
	name := strings.ToUpper(string(argv[0]))
	isWrite := command.IsWriteCommand(name)

	if isWrite {
		if err := rt.EnforceMaxmemory(nowMs); err != nil {
			return resp.Frame{}, err
		}
	}
	rt.runFastExpireCycle(nowMs)

	reply, err := command.Dispatch(st, argv, nowMs)
	if err != nil {
		return resp.Frame{}, err
	}
	// Dispatch already folds handler-level errors into an Error frame with
	// a nil Go error; only a frame that isn't itself an error counts as a
	// "successful" write for AOF capture / replication-offset purposes.
	if isWrite && reply.Kind != resp.KindError {
		rt.Replication.AdvanceWrite()
		if rt.AOF != nil {
			_ = rt.AOF.Append(argv)
		}
	}
	return reply, nil
}

// runFastExpireCycle drives one fast active-expire sampling pass (spec
// §4.1: sample_limit=16) from the runtime's own persistent cursor, so
// successive commands sweep the keyspace instead of resampling the same
// keys.
func (rt *Runtime) runFastExpireCycle(nowMs int64) {
	next, sampled, evicted := rt.Store.RunActiveExpireCycle(nowMs, rt.fastExpireCursor, fastExpireSampleLimit)
	rt.fastExpireCursor = next
	metrics.ObserveActiveExpireCycle(sampled, evicted)
}

// RunSlowExpireCycle drives one slow active-expire sampling pass (spec
// §4.1: sample_limit=4), intended to be invoked by the server's own cron
// tick independently of command dispatch.
func (rt *Runtime) RunSlowExpireCycle(nowMs int64) {
	next, sampled, evicted := rt.Store.RunActiveExpireCycle(nowMs, rt.fastExpireCursor, slowExpireSampleLimit)
	rt.fastExpireCursor = next
	metrics.ObserveActiveExpireCycle(sampled, evicted)
}
