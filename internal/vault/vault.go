// Package vault implements sift's pattern vault: password-derived AES-128-GCM
// encryption of user regex patterns, and PBKDF2-based password verification.
//
// # Design
//
// Two unrelated keys come from the same password:
//
//   - Verification key: a PBKDF2 hash (random salt, PHC-style encoded
//     string) used only to authenticate the user against the stored hash.
//   - Encryption key: the raw password bytes, right-padded with NULs to
//     16 bytes or truncated to 16 bytes, used directly as an AES-128 key.
//
// The encryption key derivation is deliberately weak — ctor a security
// boundary of "possession of the password", not a hardened KDF. It is kept
// this way for parity with the original implementation; the PBKDF2 path
// already exists for the verification side, and a future implementation
// targeting new deployments should switch the encryption key to it too.
//
// Ciphertext is encoded as hex(iv) + "/" + hex(ciphertext) + "/" + hex(tag),
// a fresh 12-byte IV per pattern, 16-byte GCM tag.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

func sha256New() hash.Hash { return sha256.New() }

const (
	keySize   = 16 // AES-128
	ivSize    = 12
	tagSize   = 16
	pbkdf2Iters = 600_000
	pbkdf2SaltSize = 16
	pbkdf2KeyLen   = 32
)

// getValidKey right-pads with NULs to 16 bytes, or truncates to 16 bytes.
func getValidKey(password string) []byte {
	b := []byte(password)
	switch {
	case len(b) < keySize:
		padded := make([]byte, keySize)
		copy(padded, b)
		return padded
	case len(b) > keySize:
		return b[:keySize]
	default:
		return b
	}
}

// Encrypt encrypts plain under password, returning the encoded blob
// "hex(iv)/hex(ciphertext)/hex(tag)".
func Encrypt(plain []byte, password string) (string, error) {
	key := getValidKey(password)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("vault: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return "", fmt.Errorf("vault: new gcm: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, plain, nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		hex.EncodeToString(iv),
		hex.EncodeToString(ciphertext),
		hex.EncodeToString(tag),
	}, "/"), nil
}

// Decrypt reverses Encrypt. The blob must split into exactly three
// slash-delimited hex segments; any other shape or a failed hex decode or
// GCM authentication is a deterministic failure.
func Decrypt(blob string, password string) ([]byte, error) {
	parts := strings.Split(blob, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("vault: malformed blob: expected 3 segments, got %d", len(parts))
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("vault: decode iv: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("vault: decode ciphertext: %w", err)
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("vault: decode tag: %w", err)
	}

	key := getValidKey(password)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, fmt.Errorf("vault: new gcm: %w", err)
	}

	sealed := append(append([]byte{}, ciphertext...), tag...)
	plain, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("vault: decrypt: %w", err)
	}
	return plain, nil
}

// phcPrefix identifies sift's PBKDF2 password-hash encoding, loosely
// modeled on the PHC string format: $pbkdf2-sha256$i=<iters>$<salt>$<hash>.
const phcPrefix = "$pbkdf2-sha256$"

// HashPassword derives a PBKDF2-SHA256 verification hash with a random
// salt, encoded as a PHC-style string.
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("vault: generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), salt, pbkdf2Iters, pbkdf2KeyLen, sha256New)

	return fmt.Sprintf("%si=%d$%s$%s", phcPrefix, pbkdf2Iters,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(derived)), nil
}

// VerifyPassword checks password against a hash produced by HashPassword.
func VerifyPassword(password, hash string) bool {
	if !strings.HasPrefix(hash, phcPrefix) {
		return false
	}
	fields := strings.Split(strings.TrimPrefix(hash, phcPrefix), "$")
	if len(fields) != 3 {
		return false
	}

	iterField := strings.TrimPrefix(fields[0], "i=")
	iters, err := strconv.Atoi(iterField)
	if err != nil || iters <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(fields[1])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iters, len(want), sha256New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
