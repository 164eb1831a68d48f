package event

import (
	"testing"
)

func TestSignalEmitOrder(t *testing.T) {
	s := NewSignal[int]()
	var got []string
	s.Connect("a", func(int) { got = append(got, "a") })
	s.Connect("b", func(int) { got = append(got, "b") })
	s.Connect("c", func(int) { got = append(got, "c") })

	s.Emit(1)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected connection order a,b,c got %v", got)
	}
}

func TestSignalConnectIdempotent(t *testing.T) {
	s := NewSignal[int]()
	calls := 0
	s.Connect("a", func(int) { calls++ })
	s.Connect("a", func(int) { calls++ })

	s.Emit(1)
	if calls != 1 {
		t.Fatalf("duplicate connect must not double-invoke, got %d calls", calls)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", s.Len())
	}
}

func TestSignalReconnectKeepsPosition(t *testing.T) {
	s := NewSignal[int]()
	var got []string
	s.Connect("a", func(int) { got = append(got, "a1") })
	s.Connect("b", func(int) { got = append(got, "b") })
	// 替换 a 的回调，顺序位置不变
	s.Connect("a", func(int) { got = append(got, "a2") })

	s.Emit(1)
	if len(got) != 2 || got[0] != "a2" || got[1] != "b" {
		t.Fatalf("expected a2,b got %v", got)
	}
}

func TestSignalDisconnect(t *testing.T) {
	s := NewSignal[int]()
	calls := 0
	s.Connect("a", func(int) { calls++ })
	s.Disconnect("a")
	s.Disconnect("missing") // no-op

	s.Emit(1)
	if calls != 0 {
		t.Fatalf("disconnected handler invoked")
	}
	if s.Connected("a") {
		t.Fatalf("a still connected")
	}
}

func TestSignalMutationDuringEmit(t *testing.T) {
	s := NewSignal[int]()
	var got []string
	s.Connect("a", func(int) {
		got = append(got, "a")
		// 本轮不生效，下一轮生效
		s.Connect("late", func(int) { got = append(got, "late") })
		s.Disconnect("b")
	})
	s.Connect("b", func(int) { got = append(got, "b") })

	s.Emit(1)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("mutation leaked into current emission: %v", got)
	}

	got = nil
	s.Emit(2)
	if len(got) != 2 || got[0] != "a" || got[1] != "late" {
		t.Fatalf("mutation not applied to next emission: %v", got)
	}
}

func TestSignalEmitNoSubscribers(t *testing.T) {
	s := NewSignal[string]()
	s.Emit("ok") // must not panic
}
