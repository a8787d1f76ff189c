package types

import "testing"

func TestSortedSetCanonicalOrder(t *testing.T) {
	z := NewSortedSetData()
	z.Set("b", 1)
	z.Set("a", 1)
	z.Set("c", 0)
	members := z.Members()
	want := []string{"c", "a", "b"}
	for i, m := range members {
		if m.Name != want[i] {
			t.Fatalf("position %d: got %s want %s", i, m.Name, want[i])
		}
	}
}

func TestSortedSetNaNDeterministic(t *testing.T) {
	z := NewSortedSetData()
	z.Set("nan1", nanValue())
	z.Set("normal", 5)
	z.Set("nan2", nanValue())
	members := z.Members()
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	// normal (finite) score must sort before both NaNs under total_cmp.
	if members[0].Name != "normal" {
		t.Fatalf("expected normal first, got %s", members[0].Name)
	}
}

func nanValue() float64 {
	return totalCmpNaN()
}

func totalCmpNaN() float64 {
	var zero float64
	return zero / zero
}

func TestValueIsEmpty(t *testing.T) {
	h := NewHash()
	if !h.IsEmpty() {
		t.Fatal("new hash should be empty")
	}
	h.Hash["f"] = []byte("v")
	if h.IsEmpty() {
		t.Fatal("hash with a field should not be empty")
	}

	s := NewString([]byte(""))
	if s.IsEmpty() {
		t.Fatal("strings are never considered empty containers")
	}
}

func TestEntryHasTTL(t *testing.T) {
	e := Entry{Value: NewString([]byte("v"))}
	if e.HasTTL() {
		t.Fatal("zero ExpiresAtMs means no TTL")
	}
	e.ExpiresAtMs = 100
	if !e.HasTTL() {
		t.Fatal("expected TTL")
	}
	if !e.Expired(100) {
		t.Fatal("deadline <= now should be expired")
	}
	if e.Expired(99) {
		t.Fatal("deadline > now should not be expired")
	}
}
