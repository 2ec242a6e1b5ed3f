package app

import "testing"

func TestNotifier(t *testing.T) {
	n := NewNotifier()

	var calls []string
	unsubA := n.Subscribe(func() { calls = append(calls, "a") })
	n.Subscribe(func() { calls = append(calls, "b") })
	if n.Len() != 2 {
		t.Fatalf("expected 2 listeners, got %d", n.Len())
	}

	n.Publish()
	if len(calls) != 2 {
		t.Fatalf("expected each listener once, got %v", calls)
	}

	unsubA()
	unsubA()
	calls = nil
	n.Publish()
	if len(calls) != 1 || calls[0] != "b" {
		t.Fatalf("expected only b after unsubscribe, got %v", calls)
	}
}

func TestNotifier_SubscribeDuringPublish(t *testing.T) {
	n := NewNotifier()

	late := 0
	n.Subscribe(func() {
		n.Subscribe(func() { late++ })
	})

	n.Publish()
	if late != 0 {
		t.Fatalf("listener added during publish must not run in the same round, ran %d", late)
	}
	n.Publish()
	if late != 1 {
		t.Fatalf("expected late listener to run once, ran %d", late)
	}
}
