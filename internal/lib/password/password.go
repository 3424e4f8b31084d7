// Package password derives and checks salted PBKDF2 credentials.
//
// A credential is a hex salt plus a hash of the form "<iterations>$<hex key>",
// so the work factor can be raised without invalidating stored records.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes = 16
	keyBytes  = 64

	DefaultIterations = 100000
)

// Hasher creates credentials with a fixed iteration count.
type Hasher struct {
	iterations int
}

func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash returns a fresh hex salt and the encoded hash of password.
func (h *Hasher) Hash(password string) (salt, hash string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return salt, encode(h.iterations, derive(password, salt, h.iterations)), nil
}

// Verify reports whether password matches the stored salt and hash.
func Verify(password, salt, hash string) bool {
	iterations, key, err := decode(hash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derive(password, salt, iterations), key) == 1
}

func derive(password, salt string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, sha512.New)
}

func encode(iterations int, key []byte) string {
	return strconv.Itoa(iterations) + "$" + hex.EncodeToString(key)
}

func decode(hash string) (int, []byte, error) {
	iterText, keyText, ok := strings.Cut(hash, "$")
	if !ok {
		return 0, nil, fmt.Errorf("malformed credential hash")
	}
	iterations, err := strconv.Atoi(iterText)
	if err != nil || iterations <= 0 {
		return 0, nil, fmt.Errorf("malformed iteration count %q", iterText)
	}
	key, err := hex.DecodeString(keyText)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed credential key: %w", err)
	}
	return iterations, key, nil
}
