package model

import "testing"

func TestIDListIntersects(t *testing.T) {
	a := IDList{1, 2, 3}
	if !a.Intersects(IDList{3, 4}) {
		t.Fatal("expected intersection on shared id")
	}
	if a.Intersects(IDList{4, 5}) {
		t.Fatal("unexpected intersection")
	}
	if a.Intersects(nil) {
		t.Fatal("nil list should not intersect")
	}
}

func TestIDListScan(t *testing.T) {
	var l IDList
	if err := l.Scan([]byte(`[7,8]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(l) != 2 || !l.Contains(7) || !l.Contains(8) {
		t.Fatalf("scanned list = %v", l)
	}

	if err := l.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("scanned nil = %v, want empty", l)
	}

	if err := l.Scan(42); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestInterviewEndTime(t *testing.T) {
	iv := Interview{DurationMins: 45}
	if got := iv.EndTime().Sub(iv.Date).Minutes(); got != 45 {
		t.Fatalf("window length = %v minutes, want 45", got)
	}
}
