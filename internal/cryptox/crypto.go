// Package cryptox derives and checks password hashes for stored identities.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// DeriveKey stretches password with salt using argon2id.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// HashPassword returns an argon2id hash of password together with the fresh
// random salt it was derived with.
func HashPassword(password string) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return DeriveKey(pw, salt), salt
}

// VerifyPassword reports whether password matches hash under salt.
func VerifyPassword(password string, salt, hash []byte) bool {
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return subtle.ConstantTimeCompare(DeriveKey(pw, salt), hash) == 1
}
