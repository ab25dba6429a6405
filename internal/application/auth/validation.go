package auth

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/jhoicas/nordiqua-api/internal/domain"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
)

// ValidEmail comprueba que s sea una dirección simple (sin nombre visible).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, ".")
}

func validatePassword(verr *domain.ValidationError, password string) {
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len([]rune(password)) < minPasswordLength {
		verr.Add("password", "la contraseña debe tener al menos 6 caracteres")
		return
	}
	if !lower || !upper || !digit {
		verr.Add("password", "la contraseña debe contener una minúscula, una mayúscula y un dígito")
	}
}

func validateName(verr *domain.ValidationError, name string) {
	if len([]rune(name)) < minNameLength {
		verr.Add("name", "el nombre debe tener al menos 2 caracteres")
	}
}

func validateEmail(verr *domain.ValidationError, email string) {
	if !ValidEmail(email) {
		verr.Add("email", "email inválido")
	}
}
