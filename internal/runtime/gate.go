package runtime

import (
	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// The preflight gate (RuntimePolicy.CheckFrame) inspects a parsed command
// frame before any dispatch
// (spec §4.3): an array with more than Gate.MaxArrayLen elements, or any
// bulk element longer than Gate.MaxBulkLen, is rejected in both Strict
// and Hardened modes (Hardened only changes the recorded decision/
// severity, never whether the command runs). On rejection it returns the
// RESP error plus enough detail for the caller to append an evidence
// event.
type GateRejection struct {
	Err            *rkerrors.CommandError
	ReasonCode     string
	ThreatClass    string
	Decision       DecisionAction
	Severity       DriftSeverity
}

// CheckFrame runs the preflight gate against frame, returning (nil, true)
// when it passes, or the rejection detail when it doesn't.
func (p *RuntimePolicy) CheckFrame(frame resp.Frame) (*GateRejection, bool) {
	if frame.Kind != resp.KindArray {
		return nil, true
	}
	if len(frame.Items) > p.Gate.MaxArrayLen {
		decision, severity := p.Decide("ResourceExhaustion", ResourceClamp)
		return &GateRejection{
			Err:         rkerrors.GateArrayLenExceeded(),
			ReasonCode:  "compat_array_len_exceeded",
			ThreatClass: "ResourceExhaustion",
			Decision:    decision,
			Severity:    severity,
		}, false
	}
	for _, item := range frame.Items {
		if item.Kind == resp.KindBulkString && len(item.Bulk) > p.Gate.MaxBulkLen {
			decision, severity := p.Decide("ResourceExhaustion", ResourceClamp)
			return &GateRejection{
				Err:         rkerrors.GateBulkLenExceeded(),
				ReasonCode:  "compat_bulk_len_exceeded",
				ThreatClass: "ResourceExhaustion",
				Decision:    decision,
				Severity:    severity,
			}, false
		}
	}
	return nil, true
}
