package utils

import "testing"

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("rahasia-lppm")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "rahasia-lppm" || len(hash) < 50 {
		t.Fatalf("unexpected hash %q", hash)
	}
	if !CheckPassword(hash, "rahasia-lppm") {
		t.Fatalf("expected password to match its hash")
	}
	if CheckPassword(hash, "salah") {
		t.Fatalf("expected wrong password to be rejected")
	}
}
