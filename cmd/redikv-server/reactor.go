package main

import (
	"bufio"
	"crypto/tls"
	"log/slog"
	"net"
	"time"

	"github.com/blueberrycongee/redikv/internal/eventloop"
	"github.com/blueberrycongee/redikv/internal/observability"
	"github.com/blueberrycongee/redikv/internal/runtime"
	"github.com/blueberrycongee/redikv/internal/store"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// acceptedConn is a TCP connection that has completed net.Listener.Accept
// but not yet been handed a read goroutine; tagged so the reactor's
// TLSAcceptSplit can bound new-TLS-handshake admission separately from
// plaintext admission (spec §5).
type acceptedConn struct {
	conn  net.Conn
	isTLS bool
}

// cmdRequest is one decoded frame waiting for the single-threaded core to
// process it; replyCh always receives exactly one frame.
type cmdRequest struct {
	sess    *runtime.Session
	frame   resp.Frame
	nowMs   int64
	replyCh chan resp.Frame
}

// defaultReactorLimits bounds how much work a tick may admit; the defaults
// mirror eventloop's own exported TickLimits shape scaled for a
// single-process in-memory engine rather than a multi-tenant gateway.
var defaultReactorLimits = eventloop.TickLimits{
	MaxAcceptsPerTick:  64,
	MaxCommandsPerTick: 512,
	BlockedMaxAccepts:  4,
	BlockedMaxCommands: 32,
}

const maxNewTLSPerCycle = 16

// reactor is the single-threaded core loop (spec §5): every command frame
// is handled on one goroutine; the only Runtime calls made elsewhere are
// RegisterClient/UnregisterClient from serveConn, which go through the
// mutex-guarded client registry. Connection I/O happens on
// per-connection goroutines that hand decoded frames to the core over
// commandQueue and block for the reply; the core paces how much of that
// backlog (and of the pending-accept backlog) it admits per tick using
// eventloop.PlanTick/TickBudget/TLSAcceptSplit, the same admission-control
// habit the teacher's internal/resilience.RateLimiter applies to per-
// tenant LLM request shaping, generalized here to per-tick accept/command
// admission.
type reactor struct {
	store  *store.Store
	rt     *runtime.Runtime
	logger *slog.Logger

	plainAccepts chan acceptedConn
	tlsAccepts   chan acceptedConn
	commands     chan *cmdRequest
	shutdown     chan struct{}

	budget *eventloop.TickBudget
}

func newReactor(st *store.Store, rt *runtime.Runtime, logger *slog.Logger) *reactor {
	return &reactor{
		store:        st,
		rt:           rt,
		logger:       logger,
		plainAccepts: make(chan acceptedConn, 256),
		tlsAccepts:   make(chan acceptedConn, 256),
		commands:     make(chan *cmdRequest, 4096),
		shutdown:     make(chan struct{}),
		budget:       eventloop.NewTickBudget(50000, 2000),
	}
}

func (rx *reactor) Stop() { close(rx.shutdown) }

// run is the core loop. It never touches net.Conn directly — connection
// I/O lives in serveConn — so Store/Runtime access stays confined to this
// one goroutine for the lifetime of the process.
func (rx *reactor) run() {
	for {
		select {
		case <-rx.shutdown:
			return
		default:
		}

		pendingPlainTLS := len(rx.tlsAccepts)
		pendingPlain := len(rx.plainAccepts)
		pendingCommands := len(rx.commands)

		plan := eventloop.PlanTick(defaultReactorLimits, false, pendingPlainTLS+pendingPlain, pendingCommands)
		admitTLS, admitPlain := eventloop.TLSAcceptSplit(plan.AdmitAccepts, maxNewTLSPerCycle, pendingPlainTLS, pendingPlain)

		admitCommands := plan.AdmitCommands
		if tokens := int(rx.budget.TokensAt(time.Now())); tokens < admitCommands {
			admitCommands = tokens
		}
		if admitCommands < 0 {
			admitCommands = 0
		}

		rx.drainAccepts(rx.tlsAccepts, admitTLS)
		rx.drainAccepts(rx.plainAccepts, admitPlain)
		admitted := rx.drainCommands(admitCommands)
		if admitted > 0 {
			rx.budget.Allow(time.Now(), admitted)
		}

		if plan.PollTimeoutMs == 0 {
			continue
		}

		timer := time.NewTimer(time.Duration(plan.PollTimeoutMs) * time.Millisecond)
		select {
		case <-rx.shutdown:
			timer.Stop()
			return
		case ac := <-rx.plainAccepts:
			// Work arrived; the item received here is served at once
			// (it has already left its queue), then the loop re-plans
			// the tick.
			timer.Stop()
			go rx.serveConn(ac)
		case ac := <-rx.tlsAccepts:
			timer.Stop()
			go rx.serveConn(ac)
		case req := <-rx.commands:
			timer.Stop()
			req.replyCh <- rx.rt.Handle(req.sess, req.frame, req.nowMs)
		case <-timer.C:
			rx.rt.RunSlowExpireCycle(nowMs())
		}
	}
}

func (rx *reactor) drainAccepts(ch chan acceptedConn, n int) {
	for i := 0; i < n; i++ {
		select {
		case ac := <-ch:
			go rx.serveConn(ac)
		default:
			return
		}
	}
}

func (rx *reactor) drainCommands(n int) int {
	admitted := 0
	for admitted < n {
		select {
		case req := <-rx.commands:
			req.replyCh <- rx.rt.Handle(req.sess, req.frame, req.nowMs)
			admitted++
		default:
			return admitted
		}
	}
	return admitted
}

// serveConn owns one connection's I/O: decode a frame, hand it to the
// core, write back whatever the core replies, repeat. RESP is a strict
// request/reply protocol per connection, so no pipelining buffer is
// needed here beyond the bufio.Reader/Writer themselves.
func (rx *reactor) serveConn(ac acceptedConn) {
	conn := ac.conn
	defer conn.Close()

	connID := observability.GenerateConnectionID()
	sess := runtime.NewSession()
	clientID := rx.rt.RegisterClient(sess)
	defer rx.rt.UnregisterClient(clientID)

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		frame, err := resp.Decode(reader)
		if err != nil {
			if cmdErr, ok := err.(interface{ Error() string }); ok && !isConnClosed(err) {
				_, _ = writer.Write(resp.EncodeBytes(resp.FromCommandError(cmdErr)))
				_ = writer.Flush()
			}
			return
		}

		req := &cmdRequest{sess: sess, frame: frame, nowMs: nowMs(), replyCh: make(chan resp.Frame, 1)}
		select {
		case rx.commands <- req:
		case <-rx.shutdown:
			return
		}

		reply := <-req.replyCh
		if _, err := writer.Write(resp.EncodeBytes(reply)); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
		_ = connID // reserved for structured per-connection logging once wired to a request-scoped logger
	}
}

func isConnClosed(err error) bool {
	return err.Error() == "EOF"
}

// listenAndAccept runs a plain-TCP accept loop, pushing every accepted
// connection onto the reactor's plaintext accept queue.
func (rx *reactor) listenAndAccept(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-rx.shutdown:
				return
			default:
				rx.logger.Error("accept failed", "error", err)
				return
			}
		}
		select {
		case rx.plainAccepts <- acceptedConn{conn: conn}:
		case <-rx.shutdown:
			_ = conn.Close()
			return
		}
	}
}

// listenAndAcceptTLS mirrors listenAndAccept for the TLS listener a
// positive tls-port candidate enables (spec §4.3 apply_tls_config); the
// handshake itself is performed by crypto/tls inside Accept, never by the
// pure TLSConfigState planner.
func (rx *reactor) listenAndAcceptTLS(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-rx.shutdown:
				return
			default:
				rx.logger.Error("tls accept failed", "error", err)
				return
			}
		}
		select {
		case rx.tlsAccepts <- acceptedConn{conn: conn, isTLS: true}:
		case <-rx.shutdown:
			_ = conn.Close()
			return
		}
	}
}

// buildTLSListener wraps a TCP listener with crypto/tls using the
// candidate config the pure TLSConfigState already validated and
// accepted; this is the "surrounding listener" SPEC_FULL §4.3 describes
// the planner as never touching directly.
func buildTLSListener(addr string, candidate runtime.TLSCandidateConfig) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(candidate.CertFile, candidate.KeyFile)
	if err != nil {
		return nil, err
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	switch candidate.AuthClients {
	case runtime.ClientAuthRequired:
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	case runtime.ClientAuthOptional:
		tlsCfg.ClientAuth = tls.VerifyClientCertIfGiven
	default:
		tlsCfg.ClientAuth = tls.NoClientCert
	}
	return tls.Listen("tcp", addr, tlsCfg)
}
