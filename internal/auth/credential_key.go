package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MinCredentialSecretLen is the shortest accepted credential cache secret.
const MinCredentialSecretLen = 32

// ErrWeakSecret is returned for credential cache secrets that are too short.
var ErrWeakSecret = fmt.Errorf("credential cache secret must be at least %d bytes", MinCredentialSecretLen)

// CredentialKeyer derives cache keys for verified username/password pairs.
// Keys are HMAC-SHA256 under a server secret, so a key read from Redis
// cannot be checked against password guesses without the secret.
type CredentialKeyer struct {
	secret []byte
}

// NewCredentialKeyer returns a keyer for secret.
func NewCredentialKeyer(secret []byte) (*CredentialKeyer, error) {
	if len(secret) < MinCredentialSecretLen {
		return nil, ErrWeakSecret
	}
	return &CredentialKeyer{secret: append([]byte(nil), secret...)}, nil
}

// RandomCredentialKeyer uses a fresh random secret. Cached credentials then
// only survive as long as the process.
func RandomCredentialKeyer() (*CredentialKeyer, error) {
	secret := make([]byte, MinCredentialSecretLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate credential cache secret: %w", err)
	}
	return &CredentialKeyer{secret: secret}, nil
}

// Key returns the hex HMAC of the pair. The NUL separator keeps
// ("alic", "epw") and ("alice", "pw") apart.
func (k *CredentialKeyer) Key(username, password string) string {
	mac := hmac.New(sha256.New, k.secret)
	mac.Write([]byte(username))
	mac.Write([]byte{0})
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}
