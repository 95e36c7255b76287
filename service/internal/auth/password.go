package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of a room password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches hash. An empty hash means
// the room is open.
func CheckPassword(hash []byte, password string) bool {
	if len(hash) == 0 {
		return true
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
