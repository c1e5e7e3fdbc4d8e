package app

import "testing"

func TestErrorTracker(t *testing.T) {
	et := NewErrorTracker()

	if n := et.RecordFailure(largeAddr); n != 1 {
		t.Errorf("first failure = %d, want 1", n)
	}
	if n := et.RecordFailure(largeAddr); n != 2 {
		t.Errorf("second failure = %d, want 2", n)
	}
	et.RecordFailure(allAddr)

	failing := et.Failing()
	if len(failing) != 2 || failing[0] != largeAddr || failing[1] != allAddr {
		t.Errorf("unexpected failing list: %v", failing)
	}

	if prev := et.RecordSuccess(largeAddr); prev != 2 {
		t.Errorf("RecordSuccess returned %d, want 2", prev)
	}
	if et.Count(largeAddr) != 0 {
		t.Errorf("count not reset: %d", et.Count(largeAddr))
	}
	if prev := et.RecordSuccess(largeAddr); prev != 0 {
		t.Errorf("second RecordSuccess returned %d, want 0", prev)
	}

	snap := et.Snapshot()
	if len(snap) != 1 || snap[allAddr] != 1 {
		t.Errorf("unexpected snapshot: %v", snap)
	}
}
