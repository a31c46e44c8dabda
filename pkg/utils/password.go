package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored digest.
const PasswordCost = bcrypt.DefaultCost

const (
	minPasswordLength = 8
	// bcrypt refuses longer inputs.
	maxPasswordBytes = 72
)

var errPasswordPolicy = errors.New("password must be 8 to 72 characters and contain a letter and a number")

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches the digest. A malformed
// digest is a mismatch.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func ValidatePassword(password string) error {
	var hasLetter, hasNumber bool

	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if len([]rune(password)) < minPasswordLength || len(password) > maxPasswordBytes || !hasLetter || !hasNumber {
		return errPasswordPolicy
	}

	return nil
}
