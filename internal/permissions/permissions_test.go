package permissions

import "testing"

func TestHasAddRemove(t *testing.T) {
	s := None.Add(ProcessSales)
	if !s.Has(ProcessSales) {
		t.Fatalf("added bit must be present")
	}
	if s.Has(ManageUsers) {
		t.Fatalf("unrelated bit must be absent")
	}

	s = s.Remove(ProcessSales)
	if s.Has(ProcessSales) {
		t.Fatalf("removed bit must be absent")
	}
	if s != None {
		t.Fatalf("expected empty set, got %v", s)
	}
}

func TestRemoveAbsentBitIsNoop(t *testing.T) {
	s := None.Add(AccessReports)
	if got := s.Remove(ManageProducts); got != s {
		t.Fatalf("removing an absent bit must not change the set")
	}
}

func TestBitsArePairwiseDistinctPowersOfTwo(t *testing.T) {
	cat := Catalog()
	seen := map[Set]string{}
	for _, p := range cat {
		if p.Value == 0 || p.Value&(p.Value-1) != 0 {
			t.Fatalf("%s (%d) is not a power of two", p.Name, p.Value)
		}
		if prev, dup := seen[p.Value]; dup {
			t.Fatalf("%s and %s share bit %d", p.Name, prev, p.Value)
		}
		seen[p.Value] = p.Name
	}
	// distinct bits give distinct singleton sets
	if None.Add(ProcessSales) == None.Add(AccessReports) {
		t.Fatalf("distinct bits must yield distinct sets")
	}
}

func TestParseSetRoundTrip(t *testing.T) {
	s := None.Add(ProcessSales).Add(ManageExpenses)
	if got := ParseSet(s.String()); got != s {
		t.Fatalf("round trip mismatch: %v != %v", got, s)
	}
	if got := ParseSet(""); got != None {
		t.Fatalf("empty string parses to empty set, got %v", got)
	}
	if got := ParseSet("not-a-number"); got != None {
		t.Fatalf("malformed input parses to empty set, got %v", got)
	}
}
