// Package eventloop holds the pure planning helpers a surrounding reactor
// uses to drive the single-threaded core (spec §5, §6): how many pending
// accepts/commands a tick may admit before yielding back to the OS poll
// step, and the token-bucket admission budget that bounds it. None of
// this package touches a socket, a goroutine, or a clock on its own —
// every decision is a function of explicit inputs, the same habit the
// core Store follows by threading nowMs instead of calling time.Now().
package eventloop

import (
	"time"

	"golang.org/x/time/rate"
)

// TickBudget is a token-bucket admission limiter for "how many
// commands/accepts may this tick admit", generalized from the teacher's
// internal/resilience.RateLimiter (per-tenant LLM request shaping) to
// per-tick command/accept admission. Unlike the teacher's hand-rolled
// bucket, this wraps golang.org/x/time/rate directly — the decision
// surface needed here (Allow/AllowN/Tokens) is exactly what rate.Limiter
// already exposes.
type TickBudget struct {
	limiter *rate.Limiter
}

// NewTickBudget creates a budget refilling at ratePerSecond tokens/second
// with a bucket capacity of burst tokens.
func NewTickBudget(ratePerSecond float64, burst int) *TickBudget {
	return &TickBudget{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Allow reports whether n tokens are available at t, consuming them if so.
// It never blocks and never allocates.
func (b *TickBudget) Allow(t time.Time, n int) bool {
	res := b.limiter.ReserveN(t, n)
	if !res.OK() {
		return false
	}
	if delay := res.DelayFrom(t); delay > 0 {
		res.CancelAt(t)
		return false
	}
	return true
}

// TokensAt reports the number of tokens available at t without consuming
// any — used by the planner to decide how much of a pending backlog a
// tick can admit.
func (b *TickBudget) TokensAt(t time.Time) float64 {
	return b.limiter.TokensAt(t)
}

// TickLimits are the per-tick resource bounds (spec §5): a normal ceiling
// and, when the reactor is in blocked/backpressure mode, a tighter one.
type TickLimits struct {
	MaxAcceptsPerTick  int
	MaxCommandsPerTick int
	BlockedMaxAccepts  int
	BlockedMaxCommands int
}

// TickPlan is the outcome of PlanTick: how many pending accepts and
// commands this tick may process, and the poll timeout the reactor should
// pass to its OS poll step afterward.
type TickPlan struct {
	AdmitAccepts  int
	AdmitCommands int
	PollTimeoutMs int
}

// PlanTick decides how much of the pending backlog a tick may admit,
// given the configured limits, whether the reactor is currently in
// blocked mode, and how many accepts/commands are actually pending. Per
// spec §5 ("backlog present ⇒ poll_timeout = 0"), any admitted or
// remaining backlog forces a zero poll timeout so the reactor does not
// sleep while there is still work queued.
func PlanTick(limits TickLimits, blocked bool, pendingAccepts, pendingCommands int) TickPlan {
	maxAccepts := limits.MaxAcceptsPerTick
	maxCommands := limits.MaxCommandsPerTick
	if blocked {
		maxAccepts = limits.BlockedMaxAccepts
		maxCommands = limits.BlockedMaxCommands
	}

	admitAccepts := clampAdmit(pendingAccepts, maxAccepts)
	admitCommands := clampAdmit(pendingCommands, maxCommands)

	pollTimeout := 50
	if admitAccepts > 0 || admitCommands > 0 ||
		pendingAccepts > admitAccepts || pendingCommands > admitCommands {
		pollTimeout = 0
	}

	return TickPlan{
		AdmitAccepts:  admitAccepts,
		AdmitCommands: admitCommands,
		PollTimeoutMs: pollTimeout,
	}
}

func clampAdmit(pending, max int) int {
	if max <= 0 {
		return pending
	}
	if pending > max {
		return max
	}
	return pending
}

// TLSAcceptSplit implements the per-tick TLS accept clamp (spec §5): given
// a cap on new TLS connections per cycle and the number of pending TLS
// and plaintext accepts, returns how many of each to admit this tick. The
// non-TLS portion absorbs whatever headroom remains under the overall
// per-tick accept budget after TLS is capped.
func TLSAcceptSplit(overallBudget, maxNewTLSPerCycle, pendingTLS, pendingPlain int) (admitTLS, admitPlain int) {
	admitTLS = clampAdmit(pendingTLS, maxNewTLSPerCycle)
	if admitTLS > overallBudget {
		admitTLS = overallBudget
	}
	remaining := overallBudget - admitTLS
	if remaining <= 0 {
		return admitTLS, 0
	}
	admitPlain = clampAdmit(pendingPlain, remaining)
	return admitTLS, admitPlain
}
