package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/mindlog/mindlog/internal/model"
)

// cheap keeps the suite fast; production uses DefaultParams.
var cheap = Params{Time: 1, Memory: 8 * 1024, Threads: 1}

func TestHasher_Format(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(cheap).Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[3] != "m=8192,t=1,p=1" {
		t.Errorf("Expected m=8192,t=1,p=1, got: %s", parts[3])
	}
}

func TestNewHasher_Defaults(t *testing.T) {
	t.Parallel()

	h := NewHasher(Params{})
	if h.params != DefaultParams {
		t.Errorf("zero Params should fall back to defaults, got %+v", h.params)
	}
}

func TestHasher_SaltedUniqueness(t *testing.T) {
	t.Parallel()

	h := NewHasher(cheap)
	hash1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	for _, hash := range []string{hash1, hash2} {
		ok, err := h.Verify("same-password", hash)
		if err != nil || !ok {
			t.Errorf("Verify(%s) = %v, %v; want true, nil", hash, ok, err)
		}
	}
}

func TestVerifyPassword_Incorrect(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(cheap).Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := VerifyPassword("hashed_s3cret", hash)
	if err != nil {
		t.Fatalf("VerifyPassword should not return error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"legacy placeholder", "hashed_password", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := VerifyPassword("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("VerifyPassword with %q error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Fatal("empty context should have no principal")
	}
	if UserIDFromContext(ctx) != "" {
		t.Fatal("empty context should have no user id")
	}

	ctx = ContextWithPrincipal(ctx, &model.Principal{UserID: "u1", Username: "alice"})
	if got := MustPrincipal(ctx).Username; got != "alice" {
		t.Errorf("Username = %q, want alice", got)
	}
	if got := UserIDFromContext(ctx); got != "u1" {
		t.Errorf("UserID = %q, want u1", got)
	}
}
