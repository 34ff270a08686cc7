package stream

import "context"

// merge implements the timestamp-ordered merge of two sources with a
// one-slot lookahead per side. Ties favor the first source.
type merge[T Timestamped] struct {
	s1, s2       Source[T]
	p1, p2       *T
	done1, done2 bool
}

// Merge combines s1 and s2 into a single Source that emits items in
// non-decreasing timestamp order. It terminates once both sources have
// ended; if one ends first, the other drains freely.
func Merge[T Timestamped](s1, s2 Source[T]) Source[T] {
	return &merge[T]{s1: s1, s2: s2}
}

func (m *merge[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		if m.p1 == nil && !m.done1 {
			v, ok, err := m.s1.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				m.done1 = true
			} else {
				m.p1 = &v
			}
		}
		if m.p2 == nil && !m.done2 {
			v, ok, err := m.s2.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				m.done2 = true
			} else {
				m.p2 = &v
			}
		}

		switch {
		case m.p1 == nil && m.p2 == nil:
			return zero, false, nil
		case m.p1 == nil:
			v := *m.p2
			m.p2 = nil
			return v, true, nil
		case m.p2 == nil:
			v := *m.p1
			m.p1 = nil
			return v, true, nil
		default:
			if (*m.p1).GetTs() <= (*m.p2).GetTs() {
				v := *m.p1
				m.p1 = nil
				return v, true, nil
			}
			v := *m.p2
			m.p2 = nil
			return v, true, nil
		}
	}
}
