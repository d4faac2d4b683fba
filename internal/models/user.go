package models

import (
	"errors"
	"golang.org/x/crypto/bcrypt"
	"html"
	"strings"
)

type User struct {
	Model
	Username string `gorm:"size:100;not null;unique" json:"username"`
	Email    string `gorm:"size:100" json:"email"`
	Password string `gorm:"size:100;not null" json:"password"`
}

func Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword compares a bcrypt hash with a plain text candidate.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (u *User) Prepare() {
	u.Username = html.EscapeString(strings.TrimSpace(u.Username))
}

func (u *User) Validate() error {
	if len(u.Username) == 0 {
		return errors.New("required username")
	}
	if len(u.Password) == 0 {
		return errors.New("required password")
	}
	return nil
}
