package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func testKeyer(t *testing.T, secret string) *CredentialKeyer {
	t.Helper()
	k, err := NewCredentialKeyer([]byte(secret))
	if err != nil {
		t.Fatalf("NewCredentialKeyer: %v", err)
	}
	return k
}

func TestCredentialKeyer_Key(t *testing.T) {
	t.Parallel()

	k := testKeyer(t, strings.Repeat("a", MinCredentialSecretLen))

	if k.Key("alice", "pw") != k.Key("alice", "pw") {
		t.Error("same credentials should produce the same key")
	}
	if k.Key("alice", "pw") == k.Key("alic", "epw") {
		t.Error("username/password boundary must be part of the key")
	}
	if len(k.Key("bob", "x")) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k.Key("bob", "x")))
	}
}

func TestCredentialKeyer_DependsOnSecret(t *testing.T) {
	t.Parallel()

	a := testKeyer(t, strings.Repeat("a", MinCredentialSecretLen))
	b := testKeyer(t, strings.Repeat("b", MinCredentialSecretLen))

	if a.Key("alice", "hunter2") == b.Key("alice", "hunter2") {
		t.Error("keys under different secrets must differ")
	}

	// Without the secret a plain hash of a guess must not match.
	guess := sha256.Sum256([]byte("alice\x00hunter2"))
	if strings.HasPrefix(a.Key("alice", "hunter2"), hex.EncodeToString(guess[:16])) {
		t.Error("key is guessable from an unkeyed hash")
	}
}

func TestNewCredentialKeyer_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewCredentialKeyer([]byte("short")); err != ErrWeakSecret {
		t.Errorf("err = %v, want ErrWeakSecret", err)
	}
}

func TestRandomCredentialKeyer(t *testing.T) {
	t.Parallel()

	a, err := RandomCredentialKeyer()
	if err != nil {
		t.Fatal(err)
	}
	b, err := RandomCredentialKeyer()
	if err != nil {
		t.Fatal(err)
	}
	if a.Key("ann", "pw") == b.Key("ann", "pw") {
		t.Error("random keyers should not share a secret")
	}
}
