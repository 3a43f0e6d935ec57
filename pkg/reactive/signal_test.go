package reactive

import "testing"

func TestSignalGetSetUpdate(t *testing.T) {
	s := NewSignal(1)
	if got := s.Get(); got != 1 {
		t.Fatalf("Get() = %d, want 1", got)
	}

	s.Set(5)
	if got := s.Peek(); got != 5 {
		t.Fatalf("Peek() after Set(5) = %d, want 5", got)
	}

	if got := s.Update(func(n int) int { return n * 2 }); got != 10 {
		t.Fatalf("Update() returned %d, want 10", got)
	}
	if got := s.Get(); got != 10 {
		t.Fatalf("Get() after Update = %d, want 10", got)
	}
}

func TestSignalEqualityPolicies(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*Signal[int]) *Signal[int]
		writes    []int
		wantRuns  int
	}{
		{
			name:      "default equality skips identical writes",
			configure: func(s *Signal[int]) *Signal[int] { return s },
			writes:    []int{0, 0, 0},
			wantRuns:  1,
		},
		{
			name:      "always notify recomputes on every write",
			configure: func(s *Signal[int]) *Signal[int] { return s.AlwaysNotify() },
			writes:    []int{0, 0, 0},
			wantRuns:  4,
		},
		{
			name: "custom equality compares parity",
			configure: func(s *Signal[int]) *Signal[int] {
				return s.WithEquals(func(a, b int) bool { return a%2 == b%2 })
			},
			writes:   []int{2, 4, 5},
			wantRuns: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.configure(NewSignal(0))
			runs := 0
			m := NewMemo(func(int) int {
				runs++
				return s.Get()
			}, 0)

			m.Get()
			for _, v := range tt.writes {
				s.Set(v)
				m.Get()
			}

			if runs != tt.wantRuns {
				t.Errorf("memo ran %d times, want %d", runs, tt.wantRuns)
			}
		})
	}
}

func TestSignalDeepEqualForStructs(t *testing.T) {
	type point struct {
		X, Y int
		Tags []string
	}
	s := NewSignal(point{X: 1, Tags: []string{"a"}})

	runs := 0
	m := NewMemo(func(point) point {
		runs++
		return s.Get()
	}, point{})
	m.Get()

	s.Set(point{X: 1, Tags: []string{"a"}})
	m.Get()
	if runs != 1 {
		t.Fatalf("deep-equal write caused recomputation: runs = %d, want 1", runs)
	}

	s.Set(point{X: 2, Tags: []string{"a"}})
	m.Get()
	if runs != 2 {
		t.Fatalf("changed write did not recompute: runs = %d, want 2", runs)
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	s := NewSignal(1)
	m := NewMemo(func(int) int { return s.Peek() }, 0)
	m.Get()

	if n := s.Subscribers(); n != 0 {
		t.Fatalf("Subscribers() = %d after Peek, want 0", n)
	}
}
