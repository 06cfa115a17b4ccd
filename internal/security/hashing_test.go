package security

import (
	"strings"
	"testing"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == "Secret123!" {
		t.Fatalf("Hash = %q, want a bcrypt hash", hash)
	}
	if err := h.Compare(hash, "Secret123!"); err != nil {
		t.Fatalf("Compare: %v", err)
	}
}

func TestHasher_CompareWrongPassword(t *testing.T) {
	h := NewHasher(4)
	hash, _ := h.Hash("secret123")
	if err := h.Compare(hash, "wrong"); err == nil {
		t.Fatal("Compare with wrong password should fail")
	}
}

func TestHasher_Cost(t *testing.T) {
	if h := NewHasher(12); h.Cost != 12 {
		t.Errorf("Cost = %d, want 12", h.Cost)
	}
	if h := NewHasher(0); h.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h.Cost)
	}
	if h := NewHasher(99); h.Cost != 31 {
		t.Errorf("Cost = %d, want 31", h.Cost)
	}
}

func TestIsHashed(t *testing.T) {
	h := NewHasher(4)
	hash, _ := h.Hash("pw")
	if !IsHashed(hash) {
		t.Errorf("IsHashed(%q) = false, want true", hash)
	}
	for _, s := range []string{"", "pw", "$2a$", strings.Repeat("x", 60)} {
		if IsHashed(s) {
			t.Errorf("IsHashed(%q) = true, want false", s)
		}
	}
}

func TestHasher_HashIfPlain(t *testing.T) {
	h := NewHasher(4)
	first, err := h.HashIfPlain("pw")
	if err != nil {
		t.Fatalf("HashIfPlain: %v", err)
	}
	second, err := h.HashIfPlain(first)
	if err != nil {
		t.Fatalf("HashIfPlain: %v", err)
	}
	if second != first {
		t.Errorf("already hashed value was re-hashed: %q -> %q", first, second)
	}
}
