package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen is the shortest password accepted at signup and on
// profile update.
const MinPasswordLen = 6

// HashPassword returns a bcrypt hash using the given cost.  Costs outside
// bcrypt's range fall back to the library default.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
