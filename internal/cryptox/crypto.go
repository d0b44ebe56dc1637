// Package cryptox hashes the per-entry deletion secrets so they are never
// kept in plain text in the backing sheet.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	hashPrefix = "argon2id"

	saltSize = 16
	keySize  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var b64 = base64.RawStdEncoding

// HashSecret derives an argon2id key from secret with a fresh random salt and
// returns it encoded as "argon2id$<salt>$<key>".
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty secret")
	}
	salt := common.GenerateRandByteArray(saltSize)
	key := derive([]byte(secret), salt)
	return hashPrefix + "$" + b64.EncodeToString(salt) + "$" + b64.EncodeToString(key), nil
}

// VerifySecret reports whether candidate matches the stored value. Values
// that are not argon2id encodings are treated as legacy plain-text secrets.
// Both branches compare in constant time.
func VerifySecret(stored, candidate string) bool {
	if stored == "" || candidate == "" {
		return false
	}
	if !IsHashed(stored) {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}
	salt, err := b64.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := b64.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := derive([]byte(candidate), salt)
	return subtle.ConstantTimeCompare(want, got) == 1
}

// IsHashed reports whether stored looks like a HashSecret encoding.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, hashPrefix+"$")
}

func derive(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, keySize)
}
