package utils

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for every stored password.
const PasswordCost = 12

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// IsPasswordHash reports whether s already looks like a bcrypt hash.
func IsPasswordHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, p) {
			_, err := bcrypt.Cost([]byte(s))
			return err == nil
		}
	}
	return false
}

func NewID() string { return uuid.NewString() }
