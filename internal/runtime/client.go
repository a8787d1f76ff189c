package runtime

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// clientRegistry is the CLIENT LIST/ID address book: one entry per live
// session, assigned an ID once and never reused within the process
// lifetime. Connection teardown (byte-level socket close) is the
// surrounding reactor's job (spec §6's external-collaborator boundary);
// this registry only tracks whatever Register/Unregister it is told
// about.
type clientRegistry struct {
	mu      sync.Mutex
	nextID  int64
	clients map[int64]*Session
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{clients: map[int64]*Session{}}
}

// Register assigns s a fresh ClientID and tracks it for CLIENT LIST.
func (r *clientRegistry) Register(s *Session) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ClientID = r.nextID
	r.clients[s.ClientID] = s
	return s.ClientID
}

// Unregister removes a session from the registry, e.g. on disconnect.
func (r *clientRegistry) Unregister(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

func (r *clientRegistry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.clients))
	for _, s := range r.clients {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// RegisterClient assigns a fresh ClientID to a newly established session,
// the entry point a connection handler calls once at accept time.
func (rt *Runtime) RegisterClient(s *Session) int64 {
	return rt.clients.Register(s)
}

// UnregisterClient forgets a session at disconnect time.
func (rt *Runtime) UnregisterClient(id int64) {
	rt.clients.Unregister(id)
}

func clientInfoLine(s *Session) string {
	name := s.ClientName
	return fmt.Sprintf("id=%d addr=? laddr=? fd=? name=%s age=0 idle=0 flags=N db=0 sub=0 psub=0 ssub=0 multi=%d watch=%d qbuf=0 qbuf-free=0 argv-mem=0 multi-mem=0 tot-mem=0 rbs=0 rbp=0 obl=0 oll=0 omem=0 events=r cmd=client|info user=%s redir=-1 resp=%d lib-name= lib-ver=",
		s.ClientID, name, boolToQueuedLen(s), len(s.Watches), s.AuthenticatedUser, s.Proto)
}

func boolToQueuedLen(s *Session) int {
	if !s.InMultiQueue {
		return -1
	}
	return len(s.Queue)
}

// HandleClient implements CLIENT ID/GETNAME/SETNAME/LIST/INFO/RESET/
// NO-EVICT/NO-TOUCH (spec §4.2 [NEW]).
func (rt *Runtime) HandleClient(s *Session, argv [][]byte) (resp.Frame, error) {
	if len(argv) < 2 {
		return resp.Frame{}, rkerrors.WrongArity("CLIENT")
	}
	switch strings.ToUpper(string(argv[1])) {
	case "ID":
		return resp.Int(s.ClientID), nil
	case "GETNAME":
		return resp.BulkFromString(s.ClientName), nil
	case "SETNAME":
		if len(argv) != 3 {
			return resp.Frame{}, rkerrors.WrongArity("CLIENT")
		}
		name := string(argv[2])
		if strings.ContainsAny(name, " \n") {
			return resp.Frame{}, rkerrors.SyntaxErrorWith("Client names cannot contain spaces, newlines or special characters.")
		}
		s.ClientName = name
		return resp.OK(), nil
	case "LIST":
		lines := make([]string, 0)
		for _, cs := range rt.clients.snapshot() {
			lines = append(lines, clientInfoLine(cs))
		}
		return resp.BulkFromString(strings.Join(lines, "\n")), nil
	case "INFO":
		return resp.BulkFromString(clientInfoLine(s)), nil
	case "RESET":
		s.Reset()
		return resp.Simple("RESET"), nil
	case "NO-EVICT", "NO-TOUCH":
		if len(argv) != 3 {
			return resp.Frame{}, rkerrors.WrongArity("CLIENT")
		}
		switch strings.ToUpper(string(argv[2])) {
		case "ON", "OFF":
			return resp.OK(), nil
		default:
			return resp.Frame{}, rkerrors.SyntaxError()
		}
	default:
		return resp.Frame{}, rkerrors.UnsupportedCommand("CLIENT " + string(argv[1]))
	}
}
