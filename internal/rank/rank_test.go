package rank

import "testing"

func TestBoundaryTracksKSmallest(t *testing.T) {
	s := NewSmallest(3)
	for _, v := range []int64{50, 10, 40, 30, 20, 60} {
		s.Offer(v)
	}
	boundary, ok := s.Boundary()
	if !ok {
		t.Fatalf("expected a boundary")
	}
	if boundary != 30 {
		t.Fatalf("expected boundary 30, got %d", boundary)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 retained, got %d", s.Len())
	}
}

func TestBoundaryUnderCapacity(t *testing.T) {
	s := NewSmallest(5)
	s.Offer(7)
	s.Offer(3)
	boundary, ok := s.Boundary()
	if !ok || boundary != 7 {
		t.Fatalf("expected boundary 7, got %d ok=%v", boundary, ok)
	}
}

func TestZeroCapacityRetainsNothing(t *testing.T) {
	s := NewSmallest(0)
	s.Offer(1)
	s.Offer(2)
	if _, ok := s.Boundary(); ok {
		t.Fatalf("expected no boundary at zero capacity")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty selector, got %d", s.Len())
	}
}

func TestNegativeCapacityTreatedAsZero(t *testing.T) {
	s := NewSmallest(-2)
	s.Offer(1)
	if _, ok := s.Boundary(); ok {
		t.Fatalf("expected no boundary for negative capacity")
	}
}

func TestDuplicateValuesRetained(t *testing.T) {
	s := NewSmallest(2)
	for _, v := range []int64{5, 5, 5, 1} {
		s.Offer(v)
	}
	boundary, ok := s.Boundary()
	if !ok || boundary != 5 {
		t.Fatalf("expected boundary 5, got %d ok=%v", boundary, ok)
	}
}
