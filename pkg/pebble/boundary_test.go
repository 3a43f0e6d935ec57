package pebble

import (
	"errors"
	"sync"
	"testing"

	"github.com/vango-dev/pebble/pkg/reactive"
)

func TestNewBoundary_MissingOwner(t *testing.T) {
	disposed := reactive.NewOwner(nil)
	disposed.Dispose()

	tests := []struct {
		name  string
		owner *reactive.Owner
	}{
		{"nil owner", nil},
		{"disposed owner", disposed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBoundary(tt.owner); !errors.Is(err, ErrMissingOwner) {
				t.Errorf("NewBoundary error = %v, want ErrMissingOwner", err)
			}
			if _, err := Provide(tt.owner); !errors.Is(err, ErrMissingOwner) {
				t.Errorf("Provide error = %v, want ErrMissingOwner", err)
			}
		})
	}
}

func TestCurrent_OutsideBoundary(t *testing.T) {
	if _, err := Current(); !errors.Is(err, ErrMissingBoundary) {
		t.Errorf("Current() error = %v, want ErrMissingBoundary", err)
	}

	owner := reactive.NewOwner(nil)
	defer owner.Dispose()

	reactive.WithOwner(owner, func() {
		if _, err := Current(); !errors.Is(err, ErrMissingBoundary) {
			t.Errorf("Current() under bare owner error = %v, want ErrMissingBoundary", err)
		}
		if _, err := UsePebble(NewPebble(0)); !errors.Is(err, ErrMissingBoundary) {
			t.Errorf("UsePebble error = %v, want ErrMissingBoundary", err)
		}
		if _, err := Use(NewPebble(0)); !errors.Is(err, ErrMissingBoundary) {
			t.Errorf("Use error = %v, want ErrMissingBoundary", err)
		}
	})
}

func TestProvide_DescendantsFindBoundary(t *testing.T) {
	root := reactive.NewOwner(nil)
	defer root.Dispose()

	b, err := Provide(root, WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("Provide: %v", err)
	}
	if b.Owner().Parent() != root {
		t.Fatal("Provide should create a child of parent")
	}

	grandchild := reactive.NewOwner(reactive.NewOwner(b.Owner()))
	m, err := FromOwner(grandchild)
	if err != nil {
		t.Fatalf("FromOwner: %v", err)
	}
	if m != b.Manager() {
		t.Error("FromOwner should find the nearest boundary")
	}

	if _, err := FromOwner(root); !errors.Is(err, ErrMissingBoundary) {
		t.Errorf("FromOwner(root) error = %v, want ErrMissingBoundary", err)
	}
}

func TestProvide_NestedBoundariesAreIsolated(t *testing.T) {
	count := NewPebble(0, WithName("count"))
	outer := newTestBoundary(t)
	inner, err := Provide(outer.Owner(), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("Provide: %v", err)
	}

	reactive.WithOwner(outer.Owner(), func() {
		s, err := UsePebble(count)
		if err != nil {
			t.Fatalf("UsePebble outer: %v", err)
		}
		s.Set(1)
	})

	reactive.WithOwner(inner.Owner(), func() {
		s, err := UsePebble(count)
		if err != nil {
			t.Fatalf("UsePebble inner: %v", err)
		}
		if got := s.Get(); got != 0 {
			t.Errorf("inner count = %d, want 0", got)
		}
	})

	outer.Dispose()
	if _, err := FromOwner(inner.Owner()); !errors.Is(err, ErrMissingBoundary) {
		t.Errorf("FromOwner after dispose error = %v, want ErrMissingBoundary", err)
	}
}

func TestUse_Accessors(t *testing.T) {
	cells := newCounterCells(2)
	b := newTestBoundary(t)

	reactive.WithOwner(b.Owner(), func() {
		memo, err := UseComputed(cells.title)
		if err != nil {
			t.Fatalf("UseComputed: %v", err)
		}
		proxy, err := UseProxy(cells.doubled)
		if err != nil {
			t.Fatalf("UseProxy: %v", err)
		}
		custom, err := UseCustom(cells.ticks)
		if err != nil {
			t.Fatalf("UseCustom: %v", err)
		}

		if got := proxy.Set(1); got != 3 {
			t.Errorf("proxy.Set(1) = %d, want 3", got)
		}
		if got := memo.Get(); got != "Count: 3" {
			t.Errorf("memo.Get() = %q, want %q", got, "Count: 3")
		}
		if got := custom.Set(5); got != 5 {
			t.Errorf("custom.Set(5) = %d, want 5", got)
		}
		if got := custom.Peek(); got != 5 {
			t.Errorf("custom.Peek() = %d, want 5", got)
		}

		title, err := Use(cells.title)
		if err != nil {
			t.Fatalf("Use: %v", err)
		}
		if !title.ReadOnly() {
			t.Error("computed accessor should be read-only")
		}
		if _, err := title.Set("x"); !errors.Is(err, ErrReadOnly) {
			t.Errorf("title.Set error = %v, want ErrReadOnly", err)
		}

		count, err := Use(cells.count)
		if err != nil {
			t.Fatalf("Use: %v", err)
		}
		if _, err := count.Set(10); err != nil {
			t.Fatalf("count.Set: %v", err)
		}
		if got := title.Get(); got != "Count: 10" {
			t.Errorf("title.Get() = %v, want %q", got, "Count: 10")
		}

		if _, err := Use(&Pebble[int]{}); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("Use(zero) error = %v, want ErrUnknownKind", err)
		}
	})
}

func TestBoundary_Do(t *testing.T) {
	cells := newCounterCells(0)
	b := newTestBoundary(t)

	var seen []string
	err := b.Do(func(m *Manager) error {
		reactive.CreateEffect(func() reactive.Cleanup {
			seen = append(seen, Get(m, cells.title))
			return nil
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Do(func(m *Manager) error {
				Update(m, cells.count, func(n int) int { return n + 1 })
				return nil
			})
		}()
	}
	wg.Wait()

	if got := Get(b.Manager(), cells.count); got != 8 {
		t.Errorf("count = %d, want 8", got)
	}
	if last := seen[len(seen)-1]; last != "Count: 8" {
		t.Errorf("effect last saw %q, want %q", last, "Count: 8")
	}

	err = b.Do(func(m *Manager) error {
		m.Set(cells.title, "nope")
		return nil
	})
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("Do error = %v, want ErrReadOnly", err)
	}

	b.Dispose()
	if err := b.Do(func(*Manager) error { return nil }); !errors.Is(err, ErrMissingBoundary) {
		t.Errorf("Do after dispose error = %v, want ErrMissingBoundary", err)
	}
}
