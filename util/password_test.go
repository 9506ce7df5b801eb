package util

import "testing"

func TestGenerateSaltUnique(t *testing.T) {
	s1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	s2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("expected unique salts, both %s", s1)
	}
}

func TestHashPasswordArgon2Deterministic(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	h1, err := HashPasswordArgon2("password123", salt)
	if err != nil {
		t.Fatalf("HashPasswordArgon2 failed: %v", err)
	}
	h2, err := HashPasswordArgon2("password123", salt)
	if err != nil {
		t.Fatalf("HashPasswordArgon2 failed: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected same hash for same salt, got %s vs %s", h1, h2)
	}
}

func TestHashPasswordArgon2DifferentSalts(t *testing.T) {
	s1, _ := GenerateSalt()
	s2, _ := GenerateSalt()
	h1, err := HashPasswordArgon2("password123", s1)
	if err != nil {
		t.Fatalf("HashPasswordArgon2 failed: %v", err)
	}
	h2, err := HashPasswordArgon2("password123", s2)
	if err != nil {
		t.Fatalf("HashPasswordArgon2 failed: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected different hashes for different salts, both %s", h1)
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, _ := GenerateSalt()
	hashed, err := HashPasswordArgon2("correct-horse", salt)
	if err != nil {
		t.Fatalf("HashPasswordArgon2 failed: %v", err)
	}

	match, err := VerifyPassword("correct-horse", hashed, salt)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Fatalf("expected matching password to verify")
	}

	match, err = VerifyPassword("wrong-horse", hashed, salt)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if match {
		t.Fatalf("expected non-matching password to fail verification")
	}
}

func TestVerifyPasswordInvalidSalt(t *testing.T) {
	if _, err := HashPasswordArgon2("pw", "!!!not-base64!!!"); err == nil {
		t.Fatalf("expected error for invalid salt")
	}
}

func TestSetJWTSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	got := GetJWTSecretByte()
	if string(got) != "test-secret" {
		t.Fatalf("expected test-secret, got %s", got)
	}

	// returned slice must be a copy
	got[0] = 'X'
	if string(GetJWTSecretByte()) != "test-secret" {
		t.Fatalf("expected secret to be immutable through returned copy")
	}
}
