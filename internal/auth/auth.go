package auth

import (
	"context"
	"errors"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/models"
)

const usernamePasswordFalse = "username or password false"

type AuthService struct {
	*environment.Env
}

// DoLogin validates the credentials in <user> against the stored record
// and fills in the user id on success.
//
// The same error is returned for an unknown username, a wrong password and
// an unreadable stored hash, so callers learn nothing about which part failed.
func (c *AuthService) DoLogin(user *models.User) error {
	var foundUser models.User

	err := c.FindUserLoginCredentials(context.Background(), user.Username, &foundUser)
	if err != nil {
		return errors.New(usernamePasswordFalse)
	}

	err = models.VerifyPassword(foundUser.Password, user.Password)
	if err != nil {
		return errors.New(usernamePasswordFalse)
	}

	user.ID = foundUser.ID
	return nil
}
