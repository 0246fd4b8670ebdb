package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if digest == "pw1" {
		t.Fatalf("digest must not equal the plaintext")
	}

	if !h.Verify("pw1", digest) {
		t.Fatalf("expected correct password to verify")
	}

	if h.Verify("pw2", digest) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")

	if a == b {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestHasher_MalformedDigestIsMismatch(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("anything", digest) {
			t.Fatalf("digest %q should not verify", digest)
		}
	}
}

func TestHasher_Cost(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, bcrypt.DefaultCost},
		{1, bcrypt.MinCost},
		{10, 10},
		{99, bcrypt.MaxCost},
	}

	for _, tt := range tests {
		if got := NewHasher(tt.in).Cost(); got != tt.want {
			t.Fatalf("NewHasher(%d).Cost() = %d, want %d", tt.in, got, tt.want)
		}
	}

	digest, err := NewHasher(bcrypt.MinCost).Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(digest, "$2a$04$") {
		t.Fatalf("unexpected digest prefix: %s", digest[:7])
	}
}
