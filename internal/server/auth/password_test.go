package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "pw" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !CheckPasswordHash(hash, "pw") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPasswordHash(hash, "wrong") {
		t.Fatalf("expected non-matching password to fail")
	}
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	t.Parallel()

	if CheckPasswordHash("not-a-bcrypt-hash", "pw") {
		t.Fatalf("expected invalid hash to fail verification")
	}
}
