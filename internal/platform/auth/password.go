package auth

import "github.com/alexedwards/argon2id"

// HashPassword produces a one-way argon2id hash of the plaintext.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// CheckPassword compares a plaintext candidate against a stored hash.
func CheckPassword(password, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(password, hash)
	return err == nil && ok
}
