package stream

import (
	"context"
	"testing"
)

type tsItem struct {
	ts  uint64
	tag string
}

func (t tsItem) GetTs() uint64 { return t.ts }

func drain[T any](t *testing.T, ctx context.Context, s Source[T]) []T {
	t.Helper()
	var out []T
	for {
		v, ok, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestMergeOrdersByTimestamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s1 := NewSliceSource([]tsItem{{1, "a1"}, {3, "a3"}, {5, "a5"}})
	s2 := NewSliceSource([]tsItem{{2, "b2"}, {4, "b4"}})

	got := drain[tsItem](t, ctx, Merge[tsItem](s1, s2))
	want := []string{"a1", "b2", "a3", "b4", "a5"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %v", len(got), len(want), got)
	}
	for i, g := range got {
		if g.tag != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, g.tag, want[i])
		}
	}
}

func TestMergeTiesFavorFirstStream(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s1 := NewSliceSource([]tsItem{{5, "first"}})
	s2 := NewSliceSource([]tsItem{{5, "second"}})

	got := drain[tsItem](t, ctx, Merge[tsItem](s1, s2))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].tag != "first" {
		t.Errorf("got[0] = %s, want 'first' to win the tie", got[0].tag)
	}
}

func TestMergeOneSidedDrainWhenOtherEnds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s1 := NewSliceSource([]tsItem{{1, "a1"}})
	s2 := NewSliceSource([]tsItem{{2, "b2"}, {3, "b3"}, {4, "b4"}})

	got := drain[tsItem](t, ctx, Merge[tsItem](s1, s2))
	want := []string{"a1", "b2", "b3", "b4"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %v", len(got), len(want), got)
	}
	for i, g := range got {
		if g.tag != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, g.tag, want[i])
		}
	}
}
