package reactive

import "testing"

func TestEffectScheduledOnOwner(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	count := NewSignal(0)
	var seen []int

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			seen = append(seen, count.Get())
			return nil
		})
	})

	if len(seen) != 1 || seen[0] != 0 {
		t.Fatalf("initial run: seen = %v, want [0]", seen)
	}

	count.Set(1)
	if !owner.HasPendingEffects() {
		t.Fatal("HasPendingEffects() = false after a tracked write")
	}
	if len(seen) != 1 {
		t.Fatalf("effect ran before flush: seen = %v", seen)
	}

	owner.RunPendingEffects()
	if len(seen) != 2 || seen[1] != 1 {
		t.Fatalf("after flush: seen = %v, want [0 1]", seen)
	}
}

func TestEffectCleanupOrder(t *testing.T) {
	owner := NewOwner(nil)
	count := NewSignal(0)
	var log []string

	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			n := count.Get()
			log = append(log, "run")
			return func() {
				_ = n
				log = append(log, "cleanup")
			}
		})
	})

	count.Set(1)
	owner.RunPendingEffects()
	owner.Dispose()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestEffectSkipsWhenMemoUnchanged(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	n := NewSignal(2)
	even := NewMemo(func(bool) bool { return n.Get()%2 == 0 }, false)

	runs := 0
	WithOwner(owner, func() {
		CreateEffect(func() Cleanup {
			runs++
			_ = even.Get()
			return nil
		})
	})

	n.Set(4)
	owner.RunPendingEffects()
	if runs != 1 {
		t.Fatalf("effect re-ran for an unchanged memo: runs = %d, want 1", runs)
	}

	n.Set(5)
	owner.RunPendingEffects()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

func TestEffectWithoutOwnerRunsSynchronously(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}
