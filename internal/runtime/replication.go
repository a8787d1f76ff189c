package runtime

import (
	"strconv"
	"sync"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/resp"
)

// ReplicationState tracks the primary write offset and the replica
// ack/fsync vectors WAIT/WAITAOF gate against (spec §3, §4.4). The core
// is pure here: acks are supplied by the caller (the surrounding
// reactor/replication link), never observed over a socket by this type.
type ReplicationState struct {
	mu               sync.Mutex
	primaryOffset    int64
	localFsyncOffset int64
	replicaAcks      []int64
	replicaFsyncs    []int64
}

// NewReplicationState returns a ReplicationState with a zero offset and no
// known replicas.
func NewReplicationState() *ReplicationState {
	return &ReplicationState{}
}

// AdvanceWrite advances the primary write offset by exactly 1, the only
// way the offset moves (spec §3: "advanced by exactly 1 for each
// successfully dispatched write command").
func (r *ReplicationState) AdvanceWrite() {
	r.mu.Lock()
	r.primaryOffset++
	r.mu.Unlock()
}

// AdvanceLocalFsync advances the local fsync offset to match the current
// primary offset, the effect of an AOF fsync completing.
func (r *ReplicationState) AdvanceLocalFsync() {
	r.mu.Lock()
	r.localFsyncOffset = r.primaryOffset
	r.mu.Unlock()
}

// PrimaryOffset returns the current write offset.
func (r *ReplicationState) PrimaryOffset() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.primaryOffset
}

// SetReplicaAcks replaces the full vector of per-replica acknowledged
// offsets, as reported by the replication link.
func (r *ReplicationState) SetReplicaAcks(acks []int64) {
	r.mu.Lock()
	r.replicaAcks = append([]int64(nil), acks...)
	r.mu.Unlock()
}

// SetReplicaFsyncs replaces the full vector of per-replica fsynced
// offsets.
func (r *ReplicationState) SetReplicaFsyncs(fsyncs []int64) {
	r.mu.Lock()
	r.replicaFsyncs = append([]int64(nil), fsyncs...)
	r.mu.Unlock()
}

// countAtLeast reports how many entries of offsets are >= required.
func countAtLeast(offsets []int64, required int64) int64 {
	var n int64
	for _, o := range offsets {
		if o >= required {
			n++
		}
	}
	return n
}

// Wait implements WAIT numreplicas timeout (spec §4.4): counts how many
// replica ack offsets are >= the current primary write offset. timeout is
// accepted but unused — the spec's WAIT is pure and returns the
// currently-known count synchronously; blocking for new acks is the
// caller's responsibility.
func (r *ReplicationState) Wait(numReplicas, timeoutMs int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return countAtLeast(r.replicaAcks, r.primaryOffset)
}

// WaitAOF implements WAITAOF numlocal numreplicas timeout (spec §4.4):
// returns whether the required local fsync offset has been reached and
// how many replicas have fsynced at least the required offset. The
// required local offset is the primary offset when numlocal >= 1, else 0;
// the required replica offset follows the same rule for numreplicas.
func (r *ReplicationState) WaitAOF(numLocal, numReplicas, timeoutMs int64) (localOK bool, replicasOK int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requiredLocal := int64(0)
	if numLocal >= 1 {
		requiredLocal = r.primaryOffset
	}
	requiredReplica := int64(0)
	if numReplicas >= 1 {
		requiredReplica = r.primaryOffset
	}
	localOK = r.localFsyncOffset >= requiredLocal
	replicasOK = countAtLeast(r.replicaFsyncs, requiredReplica)
	return localOK, replicasOK
}

// HandleWait implements the WAIT command frame.
func HandleWait(repl *ReplicationState, argv [][]byte) (resp.Frame, error) {
	if len(argv) != 3 {
		return resp.Frame{}, rkerrors.WrongArity("WAIT")
	}
	numReplicas, err := parseIntArg(argv[1])
	if err != nil {
		return resp.Frame{}, err
	}
	timeout, err := parseIntArg(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	if numReplicas < 0 || timeout < 0 {
		return resp.Frame{}, rkerrors.ValueNotInteger()
	}
	return resp.Int(repl.Wait(numReplicas, timeout)), nil
}

// HandleWaitAOF implements the WAITAOF command frame.
func HandleWaitAOF(repl *ReplicationState, argv [][]byte) (resp.Frame, error) {
	if len(argv) != 4 {
		return resp.Frame{}, rkerrors.WrongArity("WAITAOF")
	}
	numLocal, err := parseIntArg(argv[1])
	if err != nil {
		return resp.Frame{}, err
	}
	numReplicas, err := parseIntArg(argv[2])
	if err != nil {
		return resp.Frame{}, err
	}
	timeout, err := parseIntArg(argv[3])
	if err != nil {
		return resp.Frame{}, err
	}
	if numLocal < 0 || numReplicas < 0 || timeout < 0 {
		return resp.Frame{}, rkerrors.ValueNotInteger()
	}
	localOK, replicasOK := repl.WaitAOF(numLocal, numReplicas, timeout)
	localInt := int64(0)
	if localOK {
		localInt = 1
	}
	return resp.Array([]resp.Frame{resp.Int(localInt), resp.Int(replicasOK)}), nil
}

func parseIntArg(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, rkerrors.ValueNotInteger()
	}
	return n, nil
}
