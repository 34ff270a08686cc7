package strategy

import "testing"

func TestOrderIDAllocatorRejectsOversizedTag(t *testing.T) {
	t.Parallel()
	if _, err := NewOrderIDAllocator(1 << 16); err == nil {
		t.Fatal("expected an error for a tag that does not fit in 16 bits")
	}
}

func TestOrderIDAllocatorMonotonicAndTagged(t *testing.T) {
	t.Parallel()
	a, err := NewOrderIDAllocator(123)
	if err != nil {
		t.Fatalf("NewOrderIDAllocator: %v", err)
	}
	first := a.Next()
	second := a.Next()

	if first.Tag() != 123 || second.Tag() != 123 {
		t.Fatalf("tags = %d, %d, want 123, 123", first.Tag(), second.Tag())
	}
	if second.Counter() != first.Counter()+1 {
		t.Fatalf("counters = %d, %d, want consecutive", first.Counter(), second.Counter())
	}
}
