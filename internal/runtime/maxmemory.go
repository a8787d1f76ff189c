package runtime

import (
	"github.com/blueberrycongee/redikv/internal/metrics"
	"github.com/blueberrycongee/redikv/internal/store"
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
)

// MaxmemoryInterlock parameters bound the eviction loop's work per write
// (spec §4.1): at most sampleLimit keys sampled per cycle, at most
// maxCycles cycles.
type MaxmemoryInterlock struct {
	SampleLimit int
	MaxCycles   int
}

// DefaultMaxmemoryInterlock samples 16 keys per pass (the fast
// active-expire cycle's budget) and runs at most 64 passes per write.
var DefaultMaxmemoryInterlock = MaxmemoryInterlock{SampleLimit: 16, MaxCycles: 64}

// reasonCodeForEviction maps a non-Ok eviction outcome, combined with
// whether the safety gate allowed the loop to run at all, to the
// evidence reason code named in spec §4.1/§4.3.
func reasonCodeForEviction(res store.EvictionResult, safetyGate bool) string {
	switch res.Status {
	case store.EvictionSafetyGateSuppressed:
		if !safetyGate {
			return "expireevict.hardened_nonallowlisted_rejected"
		}
		return "evict.safety_gate_contract_violation"
	case store.EvictionCandidatesExhausted:
		return "evict.eviction_loop_contract_violation"
	default:
		return ""
	}
}

// EnforceMaxmemory runs the bounded eviction loop ahead of a write command
// when a maxmemory budget is configured, emitting an evidence event and
// returning OOM on anything but a clean outcome. Read commands must never
// call this. Strict mode always attempts real eviction; Hardened mode
// suppresses it unless ResourceClamp is on the Hardened allowlist.
func (rt *Runtime) EnforceMaxmemory(nowMs int64) error {
	if rt.Store.MaxmemoryBytes() <= 0 {
		return nil
	}
	decision, severity := rt.Policy.Decide("ResourceExhaustion", ResourceClamp)

	safetyGate := true
	if rt.Policy.Mode == Hardened {
		safetyGate = rt.Policy.HardenedAllowlist[ResourceClamp]
	}

	res := rt.Store.RunEvictionLoop(nowMs, rt.Interlock.SampleLimit, rt.Interlock.MaxCycles, safetyGate)
	metrics.ObserveEviction(rt.Store.EvictionPolicy(), len(res.Evicted))
	if res.Status == store.EvictionOk {
		return nil
	}

	if rt.Policy.EmitEvidenceLedger {
		rt.Evidence.Append(nowMs, Event{
			Mode:           rt.Policy.Mode,
			Severity:       severity,
			ThreatClass:    "ResourceExhaustion",
			DecisionAction: decision,
			Subsystem:      "maxmemory",
			Action:         "evict",
			ReasonCode:     reasonCodeForEviction(res, safetyGate),
			Reason:         res.Failure,
		})
	}
	return rkerrors.OOM()
}
