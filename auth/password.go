package auth

import (
	"crypto/md5"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// md5Hex is the pre-hash applied by the game client before bcrypt.
func md5Hex(password string) []byte {
	sum := md5.Sum([]byte(password))
	dst := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(dst, sum[:])
	return dst
}

// HashPassword produces a hash in the account store's format:
// bcrypt(md5_hex(password)).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(md5Hex(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), md5Hex(password)) == nil
}
