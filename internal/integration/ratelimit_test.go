package integration

import "testing"

func TestTokenBucketLimiterBurst(t *testing.T) {
	l := NewTokenBucketLimiter(60, 2)
	if !l.Allow(1, "zoho") {
		t.Fatal("first call should be allowed")
	}
	if !l.Allow(1, "zoho") {
		t.Fatal("second call should be allowed within burst")
	}
	if l.Allow(1, "zoho") {
		t.Fatal("third call should be throttled")
	}
}

func TestTokenBucketLimiterKeysAreIndependent(t *testing.T) {
	l := NewTokenBucketLimiter(60, 1)
	if !l.Allow(1, "zoho") {
		t.Fatal("tenant 1 zoho should be allowed")
	}
	if !l.Allow(1, "google") {
		t.Fatal("same tenant, different provider should have its own bucket")
	}
	if !l.Allow(2, "zoho") {
		t.Fatal("different tenant, same provider should have its own bucket")
	}
	if l.Allow(1, "zoho") {
		t.Fatal("tenant 1 zoho should now be throttled")
	}
}
