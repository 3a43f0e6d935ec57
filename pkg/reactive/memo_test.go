package reactive

import (
	"fmt"
	"testing"
)

func TestMemoIsLazy(t *testing.T) {
	runs := 0
	m := NewMemo(func(int) int {
		runs++
		return 42
	}, 0)

	if runs != 0 {
		t.Fatalf("memo computed before first read: runs = %d", runs)
	}
	if got := m.Get(); got != 42 {
		t.Fatalf("Get() = %d, want 42", got)
	}
	m.Get()
	if runs != 1 {
		t.Fatalf("runs = %d after two reads, want 1", runs)
	}
}

func TestMemoReceivesPreviousValue(t *testing.T) {
	step := NewSignal(1)
	total := NewMemo(func(prev int) int {
		return prev + step.Get()
	}, 10)

	if got := total.Get(); got != 11 {
		t.Fatalf("first Get() = %d, want 11 (seed 10 + 1)", got)
	}
	step.Set(5)
	if got := total.Get(); got != 16 {
		t.Fatalf("Get() after Set(5) = %d, want 16", got)
	}
}

func TestMemoEqualValueStopsPropagation(t *testing.T) {
	a := NewSignal(1)
	parity := NewMemo(func(int) int { return a.Get() % 2 }, 0)

	downstreamRuns := 0
	label := NewMemo(func(string) string {
		downstreamRuns++
		return fmt.Sprintf("parity %d", parity.Get())
	}, "")

	if got := label.Get(); got != "parity 1" {
		t.Fatalf("label = %q, want %q", got, "parity 1")
	}

	a.Set(3)
	if got := label.Get(); got != "parity 1" {
		t.Fatalf("label = %q, want %q", got, "parity 1")
	}
	if downstreamRuns != 1 {
		t.Fatalf("downstream recomputed for an equal upstream value: runs = %d, want 1", downstreamRuns)
	}

	a.Set(4)
	if got := label.Get(); got != "parity 0" {
		t.Fatalf("label = %q, want %q", got, "parity 0")
	}
	if downstreamRuns != 2 {
		t.Fatalf("runs = %d, want 2", downstreamRuns)
	}
}

func TestMemoDiamondRecomputesOnce(t *testing.T) {
	a := NewSignal(1)
	b := NewMemo(func(int) int { return a.Get() * 2 }, 0)
	c := NewMemo(func(int) int { return a.Get() * 3 }, 0)

	dRuns := 0
	d := NewMemo(func(int) int {
		dRuns++
		return b.Get() + c.Get()
	}, 0)

	if got := d.Get(); got != 5 {
		t.Fatalf("d = %d, want 5", got)
	}

	a.Set(2)
	if got := d.Get(); got != 10 {
		t.Fatalf("d = %d, want 10", got)
	}
	if dRuns != 2 {
		t.Fatalf("d ran %d times, want 2", dRuns)
	}
}

func TestMemoWithEquals(t *testing.T) {
	n := NewSignal(10)
	bucket := NewMemo(func(int) int { return n.Get() }, 0).
		WithEquals(func(a, b int) bool { return a/10 == b/10 })

	runs := 0
	out := NewMemo(func(int) int {
		runs++
		return bucket.Get()
	}, 0)

	out.Get()
	n.Set(15)
	out.Get()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1 (same bucket)", runs)
	}
	n.Set(25)
	if got := out.Get(); got != 25 {
		t.Fatalf("out = %d, want 25", got)
	}
}

func TestMemoSelfReadPanics(t *testing.T) {
	var m *Memo[int]
	m = NewMemo(func(int) int { return m.Get() + 1 }, 0)

	defer func() {
		if r := recover(); r != ErrCycle {
			t.Fatalf("recover() = %v, want ErrCycle", r)
		}
	}()
	m.Get()
}

func TestMemoMutualReadPanics(t *testing.T) {
	var a, b *Memo[int]
	a = NewMemo(func(int) int { return b.Get() + 1 }, 0)
	b = NewMemo(func(int) int { return a.Get() + 1 }, 0)

	defer func() {
		if r := recover(); r != ErrCycle {
			t.Fatalf("recover() = %v, want ErrCycle", r)
		}
		if a.computing || b.computing {
			t.Fatal("memo left in computing state after cycle")
		}
	}()
	a.Get()
}

func TestMemoDisposedWithOwner(t *testing.T) {
	src := NewSignal(1)
	owner := NewOwner(nil)

	m := RunWithOwner(owner, func() *Memo[int] {
		return NewMemo(func(int) int { return src.Get() * 10 }, 0)
	})

	if got := m.Get(); got != 10 {
		t.Fatalf("Get() = %d, want 10", got)
	}
	if n := src.Subscribers(); n != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n)
	}

	owner.Dispose()

	if !m.IsDisposed() {
		t.Fatal("memo not disposed with its owner")
	}
	if n := src.Subscribers(); n != 0 {
		t.Fatalf("Subscribers() after dispose = %d, want 0", n)
	}

	src.Set(2)
	if got := m.Get(); got != 20 {
		t.Fatalf("detached Get() = %d, want 20", got)
	}
}
