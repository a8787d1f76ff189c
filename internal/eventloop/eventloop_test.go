package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickBudgetAllowsWithinBurst(t *testing.T) {
	b := NewTickBudget(10, 5)
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		require.True(t, b.Allow(now, 1), "token %d should be available", i)
	}
	require.False(t, b.Allow(now, 1), "burst exhausted, no refill has elapsed")
}

func TestTickBudgetRefillsOverTime(t *testing.T) {
	b := NewTickBudget(10, 1)
	now := time.Unix(0, 0)
	require.True(t, b.Allow(now, 1))
	require.False(t, b.Allow(now, 1))
	later := now.Add(200 * time.Millisecond)
	require.True(t, b.Allow(later, 1))
}

func TestPlanTickClampsToLimitsAndForcesZeroTimeoutOnBacklog(t *testing.T) {
	limits := TickLimits{MaxAcceptsPerTick: 2, MaxCommandsPerTick: 4}
	plan := PlanTick(limits, false, 5, 10)
	require.Equal(t, 2, plan.AdmitAccepts)
	require.Equal(t, 4, plan.AdmitCommands)
	require.Equal(t, 0, plan.PollTimeoutMs)
}

func TestPlanTickUsesBlockedCeilingsWhenBlocked(t *testing.T) {
	limits := TickLimits{
		MaxAcceptsPerTick: 100, MaxCommandsPerTick: 100,
		BlockedMaxAccepts: 1, BlockedMaxCommands: 2,
	}
	plan := PlanTick(limits, true, 5, 5)
	require.Equal(t, 1, plan.AdmitAccepts)
	require.Equal(t, 2, plan.AdmitCommands)
}

func TestPlanTickIdleYieldsNonzeroTimeout(t *testing.T) {
	limits := TickLimits{MaxAcceptsPerTick: 10, MaxCommandsPerTick: 10}
	plan := PlanTick(limits, false, 0, 0)
	require.Equal(t, 0, plan.AdmitAccepts)
	require.Equal(t, 0, plan.AdmitCommands)
	require.NotEqual(t, 0, plan.PollTimeoutMs)
}

func TestTLSAcceptSplitCapsTLSAndFillsRemainderWithPlain(t *testing.T) {
	tls, plain := TLSAcceptSplit(10, 3, 8, 20)
	require.Equal(t, 3, tls)
	require.Equal(t, 7, plain)
}

func TestTLSAcceptSplitNoPendingTLS(t *testing.T) {
	tls, plain := TLSAcceptSplit(10, 3, 0, 20)
	require.Equal(t, 0, tls)
	require.Equal(t, 10, plain)
}
