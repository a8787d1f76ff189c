package store

import "sort"

// Pressure classifies how the accounted byte total relates to the
// configured maxmemory budget (spec §4.1).
type Pressure int

const (
	// PressureUnbounded means no maxmemory budget is configured.
	PressureUnbounded Pressure = iota
	PressureOK
	PressureOver
)

// AccountedBytes returns the total accounted size of every live entry
// (key + per-variant content, per Entry.AccountedBytes), minus the
// caller-supplied "not counted" allowance, floored at zero.
func (s *Store) AccountedBytes(nowMs int64) int64 {
	var total int64
	for k, e := range s.data {
		if e.Expired(nowMs) {
			continue
		}
		total += int64(e.AccountedBytes(k))
	}
	total -= s.notCounted
	if total < 0 {
		total = 0
	}
	return total
}

// MemoryPressure classifies the current accounted total against the
// configured budget.
func (s *Store) MemoryPressure(nowMs int64) Pressure {
	if s.maxmemoryBytes <= 0 {
		return PressureUnbounded
	}
	if s.AccountedBytes(nowMs) > s.maxmemoryBytes {
		return PressureOver
	}
	return PressureOK
}

// EvictionStatus is the outcome of a bounded eviction loop run.
type EvictionStatus int

const (
	EvictionOk EvictionStatus = iota
	EvictionCandidatesExhausted
	EvictionSafetyGateSuppressed
)

// EvictionResult is returned by RunEvictionLoop.
type EvictionResult struct {
	Status          EvictionStatus
	BytesToFreeAfter int64
	Failure         string
	Evicted         []string
}

// RunEvictionLoop repeats up to maxCycles a sampling pass that evicts the
// lowest-priority candidate (per the configured eviction policy) until
// bytes-to-free <= 0 or no candidates remain (spec §4.1). safetyGate, when
// false, suppresses eviction entirely (e.g. Hardened mode rejecting a
// non-allowlisted ResourceClamp deviation) and reports
// EvictionSafetyGateSuppressed without evicting anything. The noeviction
// policy gives the same result: nothing is evicted and the status is
// EvictionSafetyGateSuppressed.
func (s *Store) RunEvictionLoop(nowMs int64, sampleLimit, maxCycles int, safetyGate bool) EvictionResult {
	if s.bytesOverBudget(nowMs) <= 0 {
		return EvictionResult{Status: EvictionOk, BytesToFreeAfter: 0}
	}
	if s.evictionPolicy == "noeviction" {
		return EvictionResult{Status: EvictionSafetyGateSuppressed, BytesToFreeAfter: s.bytesOverBudget(nowMs)}
	}
	if !safetyGate {
		return EvictionResult{Status: EvictionSafetyGateSuppressed, BytesToFreeAfter: s.bytesOverBudget(nowMs)}
	}

	var evicted []string
	for cycle := 0; cycle < maxCycles; cycle++ {
		toFree := s.bytesOverBudget(nowMs)
		if toFree <= 0 {
			return EvictionResult{Status: EvictionOk, BytesToFreeAfter: 0, Evicted: evicted}
		}
		candidate, ok := s.selectEvictionCandidate(nowMs, sampleLimit)
		if !ok {
			return EvictionResult{
				Status:           EvictionCandidatesExhausted,
				BytesToFreeAfter: toFree,
				Failure:          "no eviction candidates remain",
				Evicted:          evicted,
			}
		}
		s.del(candidate)
		evicted = append(evicted, candidate)
	}
	return EvictionResult{Status: EvictionOk, BytesToFreeAfter: s.bytesOverBudget(nowMs), Evicted: evicted}
}

func (s *Store) bytesOverBudget(nowMs int64) int64 {
	if s.maxmemoryBytes <= 0 {
		return 0
	}
	over := s.AccountedBytes(nowMs) - s.maxmemoryBytes
	if over < 0 {
		return 0
	}
	return over
}

// selectEvictionCandidate picks one key to evict per the configured
// maxmemory-policy, sampling at most sampleLimit keys from the relevant
// pool (spec §9 Open Question, resolved in SPEC_FULL §4.1).
func (s *Store) selectEvictionCandidate(nowMs int64, sampleLimit int) (string, bool) {
	switch s.evictionPolicy {
	case "allkeys-random":
		pool := s.allLiveKeys(nowMs)
		return s.randomFromPool(pool, sampleLimit)
	case "volatile-random":
		pool := s.keysWithTTL()
		return s.randomFromPool(pool, sampleLimit)
	case "volatile-ttl":
		return s.soonestExpiringCandidate(nowMs, sampleLimit)
	default:
		// Deterministic fallback mandated by spec §9: "first expiring key
		// among the sampled set".
		return s.soonestExpiringCandidate(nowMs, sampleLimit)
	}
}

func (s *Store) randomFromPool(pool []string, sampleLimit int) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	sort.Strings(pool)
	n := sampleLimit
	if n > len(pool) {
		n = len(pool)
	}
	idx := s.rng.Intn(n)
	return pool[idx], true
}

// soonestExpiringCandidate samples up to sampleLimit TTL-bearing keys
// (sorted for determinism) and returns the one with the nearest deadline
// — the spec's "first expiring key" default, also used for volatile-ttl.
func (s *Store) soonestExpiringCandidate(nowMs int64, sampleLimit int) (string, bool) {
	pool := s.keysWithTTL()
	if len(pool) == 0 {
		return "", false
	}
	n := sampleLimit
	if n > len(pool) {
		n = len(pool)
	}
	best := ""
	bestDeadline := int64(0)
	found := false
	for i := 0; i < n; i++ {
		k := pool[i]
		e, ok := s.data[k]
		if !ok {
			continue
		}
		if !found || e.ExpiresAtMs < bestDeadline {
			best = k
			bestDeadline = e.ExpiresAtMs
			found = true
		}
	}
	return best, found
}
