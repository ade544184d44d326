// Package cryptox derives password verifiers for the accounts server. The
// password itself is never stored: only a random salt and the SHA-256 of
// the argon2id key derived from it.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
)

const SaltSize = 32

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// NewVerifier returns a fresh salt and the verifier of password under it.
func NewVerifier(password []byte) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// CheckPassword reports in constant time whether password matches the
// stored salt and verifier.
func CheckPassword(password, salt, verifier []byte) bool {
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
