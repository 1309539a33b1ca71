package lock

import "testing"

func TestAcquireReleaseRoundTrip(t *testing.T) {
	root := t.TempDir()
	l := New(root)

	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestTryAcquireFailsWhileHeld(t *testing.T) {
	root := t.TempDir()
	first := New(root)
	if err := first.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer first.Release()

	second := New(root)
	ok, err := second.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if ok {
		t.Fatalf("expected TryAcquire to fail while first holds the lock")
	}
}
