package lifecycle

import "testing"

func TestStopUnblocksDone(t *testing.T) {
	l := New()
	if l.Stopped() {
		t.Fatal("new lifecycle already stopped")
	}

	select {
	case <-l.Done():
		t.Fatal("done closed before stop")
	default:
	}

	l.Stop()
	l.Stop() // idempotent

	select {
	case <-l.Done():
	default:
		t.Fatal("done not closed after stop")
	}
	if !l.Stopped() {
		t.Fatal("expected stopped after stop")
	}
}
