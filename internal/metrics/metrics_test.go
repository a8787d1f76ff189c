package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveCommandIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(CommandsTotal.WithLabelValues("GET", "ok"))
	ObserveCommand("GET", "ok")
	after := testutil.ToFloat64(CommandsTotal.WithLabelValues("GET", "ok"))
	require.Equal(t, before+1, after)
}

func TestObserveKeyspaceSetsGauges(t *testing.T) {
	ObserveKeyspace(42, 1024)
	require.Equal(t, float64(42), testutil.ToFloat64(KeyspaceKeys))
	require.Equal(t, float64(1024), testutil.ToFloat64(AccountedBytes))
}

func TestObserveEvictionSkipsZero(t *testing.T) {
	before := testutil.ToFloat64(EvictionsTotal.WithLabelValues("noop-policy"))
	ObserveEviction("noop-policy", 0)
	require.Equal(t, before, testutil.ToFloat64(EvictionsTotal.WithLabelValues("noop-policy")))

	ObserveEviction("noop-policy", 3)
	require.Equal(t, before+3, testutil.ToFloat64(EvictionsTotal.WithLabelValues("noop-policy")))
}

func TestObserveEvidenceEvent(t *testing.T) {
	before := testutil.ToFloat64(EvidenceEventsTotal.WithLabelValues("gate", "preflight", "FailClosed"))
	ObserveEvidenceEvent("gate", "preflight", "FailClosed")
	require.Equal(t, before+1, testutil.ToFloat64(EvidenceEventsTotal.WithLabelValues("gate", "preflight", "FailClosed")))
}

func TestObserveActiveExpireCycle(t *testing.T) {
	beforeSampled := testutil.ToFloat64(ActiveExpireSampledTotal)
	beforeEvicted := testutil.ToFloat64(ActiveExpireEvictedTotal)
	ObserveActiveExpireCycle(16, 2)
	require.Equal(t, beforeSampled+16, testutil.ToFloat64(ActiveExpireSampledTotal))
	require.Equal(t, beforeEvicted+2, testutil.ToFloat64(ActiveExpireEvictedTotal))
}
