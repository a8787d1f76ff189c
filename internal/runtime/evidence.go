package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/blueberrycongee/redikv/internal/metrics"
	otellog "go.opentelemetry.io/otel/log"
)

// Event is one append-only evidence ledger entry (spec §4.3).
type Event struct {
	TimestampUnixMs  int64
	PacketID         uint64
	Mode             Mode
	Severity         DriftSeverity
	ThreatClass      string
	DecisionAction   DecisionAction
	Subsystem        string
	Action           string
	ReasonCode       string
	Reason           string
	InputDigest      string
	OutputDigest     string
	StateDigestBefore string
	StateDigestAfter  string
	ReplayHint       string
	ArtifactRefs     []string
}

// Ledger is the append-only in-memory evidence log. Each appended event
// also increments a prometheus counter and, when an otel logger is
// configured, is mirrored as a log record — both are side effects of the
// same append, never a second source of truth (spec §4.3 [NEW]).
type Ledger struct {
	mu       sync.Mutex
	events   []Event
	nextID   uint64
	otelLog  otellog.Logger
}

// NewLedger returns an empty ledger. otelLogger may be nil, in which case
// only the in-memory log and the prometheus counter are updated.
func NewLedger(otelLogger otellog.Logger) *Ledger {
	return &Ledger{otelLog: otelLogger}
}

// SetOtelLogger attaches (or replaces) the otel log mirror after
// construction.
func (l *Ledger) SetOtelLogger(otelLogger otellog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.otelLog = otelLogger
}

// Append records e, filling in TimestampUnixMs/PacketID, and returns the
// completed event.
func (l *Ledger) Append(nowMs int64, e Event) Event {
	l.mu.Lock()
	l.nextID++
	e.TimestampUnixMs = nowMs
	e.PacketID = l.nextID
	l.events = append(l.events, e)
	l.mu.Unlock()

	metrics.ObserveEvidenceEvent(e.Subsystem, e.Action, string(e.DecisionAction))
	l.mirrorOtel(e)
	return e
}

func (l *Ledger) mirrorOtel(e Event) {
	if l.otelLog == nil {
		return
	}
	rec := otellog.Record{}
	rec.SetTimestamp(time.UnixMilli(e.TimestampUnixMs))
	rec.SetBody(otellog.StringValue(e.Action))
	rec.AddAttributes(
		otellog.String("subsystem", e.Subsystem),
		otellog.String("decision_action", string(e.DecisionAction)),
		otellog.String("severity", string(e.Severity)),
		otellog.String("threat_class", e.ThreatClass),
		otellog.String("reason_code", e.ReasonCode),
		otellog.String("reason", e.Reason),
		otellog.Int64("packet_id", int64(e.PacketID)),
	)
	l.otelLog.Emit(context.Background(), rec)
}

// Events returns a snapshot of every event appended so far, in append
// order.
func (l *Ledger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len reports how many events have been appended.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
